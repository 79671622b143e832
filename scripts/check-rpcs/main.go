// check-rpcs: probes every built-in RPC of every supported network in
// parallel and prints latency and head block per endpoint.
//
// Run from the module root:
//
//	go run ./scripts/check-rpcs
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Mohsinsiddi/w3nft/internal/chain"
	"github.com/Mohsinsiddi/w3nft/internal/rpc"
)

const rpcTimeout = 12 * time.Second

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NETWORK\tCHAIN ID\tRPC\tLATENCY\tBLOCK\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 18)+"\t"+
		strings.Repeat("-", 9)+"\t"+
		strings.Repeat("-", 40)+"\t"+
		strings.Repeat("-", 8)+"\t"+
		strings.Repeat("-", 10)+"\t"+
		strings.Repeat("-", 12))

	failed := 0
	for _, n := range chain.NewRegistry().All() {
		for _, r := range rpc.BenchmarkEVM(ctx, n.RPCURLs) {
			latency, block, note := fmt.Sprintf("%dms", r.Latency.Milliseconds()), fmt.Sprintf("%d", r.BlockNumber), ""
			if r.Err != nil {
				latency, block, note = "-", "-", shortErr(r.Err)
				failed++
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n", n.Name, n.ChainID, r.URL, latency, block, note)
		}
	}
	w.Flush()

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d endpoint(s) unreachable\n", failed)
	}
}

func shortErr(err error) string {
	s := err.Error()
	if len(s) > 30 {
		return s[:30] + "…"
	}
	return s
}
