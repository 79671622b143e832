package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3nft/internal/config"
	"github.com/Mohsinsiddi/w3nft/internal/contract"
	"github.com/Mohsinsiddi/w3nft/internal/metadata"
	"github.com/Mohsinsiddi/w3nft/internal/token"
	"github.com/Mohsinsiddi/w3nft/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// metadataWorkers bounds concurrent metadata downloads.
const metadataWorkers = 4

var (
	collectionMetadata  bool
	collectionStrategy  string
	collectionFromBlock uint64
)

var collectionCmd = &cobra.Command{
	Use:   "collection [address]",
	Short: "List the NFTs an address owns",
	Long: `List the tokens of the collection owned by an address, in ascending id
order. Without an address the connected account is used.

Strategies:
  scan  ask ownerOf for every minted id (default, works on any ERC-721)
  logs  replay Transfer events from --from-block (faster on large collections)

Examples:
  w3nft collection
  w3nft collection 0x70997970C51812dc3A010C7d01b50e0d17dc79C8 --metadata
  w3nft collection --strategy logs --from-block 1200000`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enum, err := enumeratorFor(collectionStrategy, collectionFromBlock)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.close()

		acct, err := s.connect(ctx)
		if err != nil {
			return err
		}
		owner := acct.Hex()
		if len(args) == 1 {
			owner = args[0]
		}

		rctx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
		defer cancel()

		sp := ui.NewSpinner(fmt.Sprintf("Loading NFTs of %s...", ui.TruncateAddr(owner)))
		sp.Start()
		svc := token.NewService(s.gw, token.WithEnumerator(enum))
		tokens, err := svc.ListOwnedTokens(rctx, owner)
		if err != nil {
			sp.Stop()
			return fmt.Errorf("failed to fetch NFTs: %w", err)
		}

		var docs []*metadata.Metadata
		if collectionMetadata && len(tokens) > 0 {
			sp.SetMsg(fmt.Sprintf("Fetching metadata for %d NFT(s)...", len(tokens)))
			docs = fetchAll(rctx, metadata.NewFetcher(cfg.IPFSGateway, config.MetadataTimeout), tokens)
		}
		sp.Stop()

		if len(tokens) == 0 {
			fmt.Println(ui.Info(fmt.Sprintf("No NFTs owned by %s.", ui.Addr(owner))))
			fmt.Println(ui.Hint("Mint one with: w3nft mint <metadata-uri>"))
			return nil
		}

		rows := make([]ui.Row, len(tokens))
		for i, t := range tokens {
			name := ""
			if docs != nil {
				name = ui.Meta("(metadata unavailable)")
				if docs[i] != nil {
					name = docs[i].Name
				}
			}
			rows[i] = ui.Row{t.ID.String(), name, t.URI}
		}
		fmt.Println(ui.TokenTable(rows))
		fmt.Println(ui.Meta(fmt.Sprintf("%d NFT(s) owned by %s", len(tokens), owner)))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one NFT with its metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseTokenID(args[0])
		if err != nil {
			return err
		}
		n, err := resolveNetwork()
		if err != nil {
			return err
		}
		addr, err := resolveContract()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		client, err := dialNetwork(ctx, n)
		if err != nil {
			return err
		}
		defer client.Close()

		c := contract.NewERC721(addr, common.Address{}, n.BigChainID(), client, nil)
		owner, err := c.OwnerOf(ctx, id)
		if err != nil {
			return fmt.Errorf("token %s does not exist: %w", id, err)
		}
		uri, err := c.TokenURI(ctx, id)
		if err != nil {
			return fmt.Errorf("reading token URI: %w", err)
		}

		card := ui.Card{ID: id.String(), Owner: owner.Hex(), URI: uri, Link: n.TokenURL(addr.Hex(), id.String())}
		f := metadata.NewFetcher(cfg.IPFSGateway, config.MetadataTimeout)
		sp := ui.NewSpinner("Fetching metadata...")
		sp.Start()
		md, err := f.Fetch(ctx, uri)
		sp.Stop()
		if err != nil {
			card.Err = err.Error()
		} else {
			fillCard(&card, md, f.Gateway())
		}
		fmt.Println(ui.TokenCard(card))
		return nil
	},
}

// enumeratorFor maps --strategy to a token enumerator.
func enumeratorFor(strategy string, fromBlock uint64) (token.Enumerator, error) {
	switch strategy {
	case "", "scan":
		return token.ScanEnumerator{}, nil
	case "logs":
		return token.LogEnumerator{FromBlock: fromBlock}, nil
	}
	return nil, fmt.Errorf("unknown strategy %q, choose: scan, logs", strategy)
}

// fetchAll downloads the metadata of every token. A failed document leaves
// a nil entry at its index.
func fetchAll(ctx context.Context, f *metadata.Fetcher, tokens []token.TokenHandle) []*metadata.Metadata {
	docs := make([]*metadata.Metadata, len(tokens))
	var g errgroup.Group
	g.SetLimit(metadataWorkers)
	for i, t := range tokens {
		g.Go(func() error {
			md, err := f.Fetch(ctx, t.URI)
			if err != nil {
				log.Debug("Metadata fetch failed", "id", t.ID, "uri", t.URI, "err", err)
				return nil
			}
			docs[i] = md
			return nil
		})
	}
	g.Wait()
	return docs
}

func fillCard(c *ui.Card, md *metadata.Metadata, gateway string) {
	c.Name = md.Name
	c.Description = md.Description
	c.Image = md.ImageURL(gateway)
	for _, a := range md.Attributes {
		c.Attributes = append(c.Attributes, [2]string{a.TraitType, a.ValueString()})
	}
}
