package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Mohsinsiddi/w3nft/internal/chain"
	"github.com/Mohsinsiddi/w3nft/internal/ui"
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Inspect and select networks",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the supported networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := chain.NewRegistry()
		t := ui.NewTable([]ui.Column{
			{Title: "#", Width: 3},
			{Title: "Name", Width: 18},
			{Title: "Display", Width: 20},
			{Title: "Chain ID", Width: 12},
			{Title: "Currency", Width: 8},
			{Title: "Wallet", Width: 8},
		})

		for i, n := range reg.All() {
			name := ui.ChainName(n.Name)
			if n.Name == cfg.DefaultNetwork {
				name += " " + ui.StyleSuccess.Render("*")
			}
			known := ""
			if walletKnows(n) {
				known = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{
				fmt.Sprintf("%d", i+1),
				name,
				n.DisplayName,
				fmt.Sprintf("%d", n.ChainID),
				n.NativeCurrency.Symbol,
				known,
			})
		}

		fmt.Println(t.Render())
		fmt.Println(ui.Meta("* default network  ·  ✓ known to the local wallet"))
		return nil
	},
}

var networkShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show the parameters of a network",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			networkFlag = args[0]
		}
		n, err := resolveNetwork()
		if err != nil {
			return err
		}
		rpcs := append(append([]string{}, cfg.GetRPCs(n.Name)...), n.RPCURLs...)
		pairs := [][2]string{
			{"Name", n.Name},
			{"Chain ID", fmt.Sprintf("%d (%s)", n.ChainID, n.HexChainID())},
			{"Currency", fmt.Sprintf("%s (%s, %d decimals)", n.NativeCurrency.Name, n.NativeCurrency.Symbol, n.NativeCurrency.Decimals)},
			{"RPC", strings.Join(rpcs, ", ")},
		}
		if n.ExplorerURL != "" {
			pairs = append(pairs, [2]string{"Explorer", n.ExplorerURL})
		}
		if n.FaucetURL != "" {
			pairs = append(pairs, [2]string{"Faucet", n.FaucetURL})
		}
		fmt.Println(ui.KeyValueBlock(n.DisplayName, pairs))
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if _, err := chain.NewRegistry().GetByName(name); err != nil {
			return fmt.Errorf("unknown network %q, run `w3nft network list` to see all networks", name)
		}
		cfg.DefaultNetwork = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default network set to %s", ui.ChainName(name))))
		if cfg.ContractAddress != "" {
			fmt.Println(ui.Hint("The configured collection address is unchanged; make sure it exists on this network."))
		}
		return nil
	},
}

// walletKnows reports whether the local wallet has been told about n, either
// by an earlier add-network request or because it currently sits on it.
func walletKnows(n chain.Network) bool {
	if cfg.Session != nil && cfg.Session.ChainID == n.ChainID {
		return true
	}
	return slices.Contains(cfg.WalletNetworks, n.Name)
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkShowCmd, networkUseCmd)
}
