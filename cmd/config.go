package cmd

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/Mohsinsiddi/w3nft/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		return nil
	},
}

var configSetContractCmd = &cobra.Command{
	Use:   "set-contract <address>",
	Short: "Set the collection address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !common.IsHexAddress(args[0]) {
			return fmt.Errorf("invalid address %q", args[0])
		}
		cfg.ContractAddress = common.HexToAddress(args[0]).Hex()
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("Collection set to " + ui.Addr(cfg.ContractAddress)))
		return nil
	},
}

var configSetGatewayCmd = &cobra.Command{
	Use:   "set-gateway <url>",
	Short: "Set the IPFS gateway used to resolve ipfs:// URIs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := url.Parse(args[0])
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid gateway URL %q", args[0])
		}
		cfg.IPFSGateway = args[0]
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("IPFS gateway set to %s", args[0])))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configListCmd, configSetContractCmd, configSetGatewayCmd)
}
