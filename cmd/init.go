package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3nft/internal/chain"
	"github.com/Mohsinsiddi/w3nft/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup wizard",
	Long:  "Launch the interactive setup wizard to pick a network, RPC strategy, collection and IPFS gateway.",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.Banner())

		var names []string
		for _, n := range chain.NewRegistry().All() {
			names = append(names, n.Name)
		}
		result, err := ui.RunWizard(names, cfg.IPFSGateway)
		if err != nil {
			return err
		}
		if result == nil {
			fmt.Println(ui.Meta("Setup cancelled, nothing saved."))
			return nil
		}

		if result.DefaultNetwork != "" {
			cfg.DefaultNetwork = result.DefaultNetwork
		}
		if result.RPCAlgorithm != "" {
			cfg.RPCAlgorithm = result.RPCAlgorithm
		}
		if result.IPFSGateway != "" {
			cfg.IPFSGateway = result.IPFSGateway
		}
		if result.ContractAddress != "" {
			if !common.IsHexAddress(result.ContractAddress) {
				fmt.Println(ui.Warn(fmt.Sprintf("Ignoring invalid collection address %q", result.ContractAddress)))
			} else {
				cfg.ContractAddress = common.HexToAddress(result.ContractAddress).Hex()
			}
		}

		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Println(ui.Success("w3nft configured! Run `w3nft --help` to explore commands."))
		if len(newWalletManager().Signing()) == 0 {
			fmt.Println(ui.Hint("Next: add a signing wallet with `w3nft wallet add <name> --key <private-key>`"))
		} else {
			fmt.Println(ui.Hint("Next: connect your wallet with `w3nft connect`"))
		}
		if cfg.ContractAddress == "" {
			fmt.Println(ui.Hint("No collection yet: deploy one with `w3nft deploy --artifact <path>`"))
		}
		return nil
	},
}
