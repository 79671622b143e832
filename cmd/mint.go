package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3nft/internal/config"
	"github.com/Mohsinsiddi/w3nft/internal/metadata"
	"github.com/Mohsinsiddi/w3nft/internal/token"
	"github.com/Mohsinsiddi/w3nft/internal/ui"
	"github.com/spf13/cobra"
)

var mintCheckMetadata bool

var mintCmd = &cobra.Command{
	Use:   "mint [metadata-uri]",
	Short: "Mint an NFT to the connected wallet",
	Long: `Mint a new token whose tokenURI is the given metadata URI. The token is
minted to the connected account, which pays the gas.

The URI is stored as-is; without an argument it is prompted for. Use --check to fetch and validate the metadata
document before anything is sent.

Examples:
  w3nft mint ipfs://bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi/1.json
  w3nft mint https://example.com/meta/7.json --check`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var uri string
		if len(args) == 1 {
			uri = args[0]
		} else {
			uri = ui.Ask("Metadata URI", "")
		}
		ctx := cmd.Context()

		if mintCheckMetadata {
			f := metadata.NewFetcher(cfg.IPFSGateway, config.MetadataTimeout)
			md, err := f.Fetch(ctx, uri)
			if err != nil {
				return fmt.Errorf("metadata check failed: %w", err)
			}
			fmt.Println(ui.Success(fmt.Sprintf("Metadata OK: %q", md.Name)))
		}

		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.close()

		if _, err := s.connect(ctx); err != nil {
			return err
		}

		progress, stop := progressSpinner(s.network)
		defer stop()
		svc := token.NewService(s.gw, token.WithProgress(progress))
		return printResult(s.network, svc.MintToken(ctx, uri))
	},
}

var (
	transferTo string
	transferID string
)

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Transfer an NFT from the connected wallet",
	Long: `Transfer a token owned by the connected account to another address.

The recipient is not checked for ERC-721 support. Tokens sent to a contract
that cannot handle them are lost.

Examples:
  w3nft transfer --to 0x70997970C51812dc3A010C7d01b50e0d17dc79C8 --id 3`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseTokenID(transferID)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.close()

		if _, err := s.connect(ctx); err != nil {
			return err
		}

		progress, stop := progressSpinner(s.network)
		defer stop()
		svc := token.NewService(s.gw, token.WithProgress(progress))
		return printResult(s.network, svc.TransferToken(ctx, transferTo, id))
	},
}

func init() {
	mintCmd.Flags().BoolVar(&mintCheckMetadata, "check", false, "fetch and validate the metadata before minting")

	transferCmd.Flags().StringVar(&transferTo, "to", "", "recipient address")
	transferCmd.Flags().StringVar(&transferID, "id", "", "token id")
	_ = transferCmd.MarkFlagRequired("to")
	_ = transferCmd.MarkFlagRequired("id")
}
