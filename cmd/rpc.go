package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3nft/internal/chain"
	"github.com/Mohsinsiddi/w3nft/internal/config"
	"github.com/Mohsinsiddi/w3nft/internal/rpc"
	"github.com/Mohsinsiddi/w3nft/internal/ui"
	"github.com/spf13/cobra"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage RPC endpoints",
}

var rpcAddCmd = &cobra.Command{
	Use:   "add <network> <url>",
	Short: "Add a custom RPC URL for a network",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, url := args[0], args[1]
		if _, err := chain.NewRegistry().GetByName(name); err != nil {
			return fmt.Errorf("unknown network %q", name)
		}
		if err := cfg.AddRPC(name, url); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Added RPC for %s: %s", ui.ChainName(name), url)))
		return nil
	},
}

var rpcRemoveCmd = &cobra.Command{
	Use:   "remove <network> <url>",
	Short: "Remove a custom RPC URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, url := args[0], args[1]
		if err := cfg.RemoveRPC(name, url); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Removed RPC for %s: %s", name, url)))
		return nil
	},
}

var rpcListCmd = &cobra.Command{
	Use:   "list [network]",
	Short: "List the RPCs of a network, custom ones first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			networkFlag = args[0]
		}
		n, err := resolveNetwork()
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", ui.StyleTitle.Render(fmt.Sprintf("RPCs for %s", n.DisplayName)))
		if custom := cfg.GetRPCs(n.Name); len(custom) > 0 {
			fmt.Println(ui.StyleHeader.Render("Custom RPCs:"))
			for _, r := range custom {
				fmt.Printf("  %s\n", r)
			}
		}
		fmt.Println(ui.StyleHeader.Render("Built-in RPCs:"))
		for _, r := range n.RPCURLs {
			fmt.Printf("  %s\n", r)
		}
		return nil
	},
}

var rpcBenchmarkCmd = &cobra.Command{
	Use:   "benchmark [network]",
	Short: "Benchmark every RPC of a network",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			networkFlag = args[0]
		}
		n, err := resolveNetwork()
		if err != nil {
			return err
		}
		urls := append(append([]string{}, cfg.GetRPCs(n.Name)...), n.RPCURLs...)

		fmt.Printf("%s\n\n", ui.StyleTitle.Render(fmt.Sprintf("Benchmarking %s RPCs...", n.DisplayName)))

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()
		results := rpc.BenchmarkEVM(ctx, urls)

		t := ui.NewTable([]ui.Column{
			{Title: "RPC URL", Width: 44, Elide: ui.ElideMiddle},
			{Title: "Latency", Width: 10},
			{Title: "Block #", Width: 12},
			{Title: "Status", Width: 10},
		})
		for _, r := range results {
			status := ui.Success("healthy")
			latency := fmt.Sprintf("%dms", r.Latency.Milliseconds())
			block := fmt.Sprintf("%d", r.BlockNumber)
			if r.Err != nil {
				status = ui.Err("down")
				latency, block = "-", "-"
			}
			t.AddRow(ui.Row{r.URL, latency, block, status})
		}
		fmt.Println(t.Render())

		if best, err := rpc.NewPicker(rpc.Algorithm(cfg.RPCAlgorithm)).Pick(rpc.ResultsToEndpoints(results)); err == nil {
			fmt.Println(ui.Meta(fmt.Sprintf("Selected (%s): %s", cfg.RPCAlgorithm, best.URL)))
		}
		return nil
	},
}

var rpcAlgorithmCmd = &cobra.Command{
	Use:   "algorithm <fastest|failover>",
	Short: "Set the RPC selection algorithm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		algo := rpc.Algorithm(args[0])
		switch algo {
		case rpc.AlgorithmFastest, rpc.AlgorithmFailover:
		default:
			return fmt.Errorf("invalid algorithm %q, choose: fastest, failover", algo)
		}
		cfg.RPCAlgorithm = string(algo)
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("RPC algorithm set to %q", algo)))
		return nil
	},
}

func init() {
	rpcCmd.AddCommand(rpcAddCmd, rpcRemoveCmd, rpcListCmd, rpcBenchmarkCmd, rpcAlgorithmCmd)
}
