package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/Mohsinsiddi/w3nft/internal/chain"
	"github.com/ethereum/go-ethereum/log"
)

// pingTimeout bounds a single endpoint probe.
const pingTimeout = 5 * time.Second

// BenchmarkResult holds the result of a single endpoint probe.
type BenchmarkResult struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Err         error
}

// BenchmarkEVM pings all RPC URLs in parallel and returns results in input order.
func BenchmarkEVM(ctx context.Context, urls []string) []BenchmarkResult {
	results := make([]BenchmarkResult, len(urls))
	var wg sync.WaitGroup

	for i, url := range urls {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			results[idx] = probe(ctx, u)
		}(i, url)
	}

	wg.Wait()
	return results
}

func probe(ctx context.Context, url string) BenchmarkResult {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	res := BenchmarkResult{URL: url}
	c, err := chain.Dial(ctx, url)
	if err != nil {
		res.Err = err
		return res
	}
	defer c.Close()

	res.Latency, res.BlockNumber, res.Err = c.Ping(ctx)
	if res.Err != nil {
		log.Debug("RPC probe failed", "url", url, "err", res.Err)
	}
	return res
}

// ResultsToEndpoints converts benchmark results to picker Endpoints.
// All returned endpoints have Checked: true since they have been actively tested.
func ResultsToEndpoints(results []BenchmarkResult) []Endpoint {
	endpoints := make([]Endpoint, 0, len(results))
	for _, r := range results {
		endpoints = append(endpoints, Endpoint{
			URL:         r.URL,
			Latency:     r.Latency,
			BlockNumber: r.BlockNumber,
			Healthy:     r.Err == nil,
			Checked:     true,
		})
	}
	return endpoints
}

// BestEVM benchmarks urls and returns the winner under algo.
func BestEVM(ctx context.Context, urls []string, algo Algorithm) (string, error) {
	if len(urls) == 1 {
		return urls[0], nil
	}

	endpoints := ResultsToEndpoints(BenchmarkEVM(ctx, urls))
	winner, err := NewPicker(algo).Pick(endpoints)
	if err != nil {
		return "", err
	}
	log.Debug("Selected RPC endpoint", "url", winner.URL, "latency", winner.Latency, "block", winner.BlockNumber)
	return winner.URL, nil
}
