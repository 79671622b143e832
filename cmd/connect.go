package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/w3nft/internal/chain"
	"github.com/Mohsinsiddi/w3nft/internal/contract"
	"github.com/Mohsinsiddi/w3nft/internal/ui"
	"github.com/Mohsinsiddi/w3nft/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a wallet and switch it to the collection's network",
	Long: `Authorize a wallet account for w3nft and make sure the wallet is on the
collection's network. If the wallet does not know the network yet it is
asked to add it first.

Examples:
  w3nft connect
  w3nft connect --wallet alice
  w3nft connect --signer ~/.clef/clef.ipc`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
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
		fmt.Println(ui.Success("Connected " + ui.Addr(acct.Hex())))
		fmt.Println(ui.KeyValueBlock("", [][2]string{
			{"Network", fmt.Sprintf("%s (%s)", s.network.DisplayName, s.network.HexChainID())},
			{"Collection", s.gw.ContractAddress().Hex()},
		}))
		return nil
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Revoke the wallet authorization",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Session == nil || cfg.Session.Account == "" {
			fmt.Println(ui.Meta("No wallet connected, nothing to do."))
			return nil
		}
		n, err := resolveNetwork()
		if err != nil {
			return err
		}
		p, closeFn, err := newProvider(n)
		if err != nil {
			return err
		}
		if closeFn != nil {
			defer closeFn()
		}
		_, connected, err := followAccountChange(cmd.Context(), p, n, func() error {
			p.Disconnect()
			return nil
		})
		if err != nil {
			return err
		}
		if err := saveProviderState(p); err != nil {
			return err
		}
		if connected {
			return errors.New("wallet still reports a connected account")
		}
		fmt.Println(ui.Success("Wallet disconnected."))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the wallet connection, network and collection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := resolveNetwork()
		if err != nil {
			return err
		}

		account := ui.Meta("not connected")
		walletChain := ""
		if cfg.Session != nil {
			if cfg.Session.Account != "" {
				account = ui.Addr(cfg.Session.Account)
			}
			walletChain = fmt.Sprintf("%d", cfg.Session.ChainID)
			if wn, err := chain.NewRegistry().GetByChainID(cfg.Session.ChainID); err == nil {
				walletChain = wn.DisplayName
			}
		}
		pairs := [][2]string{
			{"Account", account},
			{"Network", fmt.Sprintf("%s (%s)", n.DisplayName, n.HexChainID())},
		}
		if walletChain != "" {
			pairs = append(pairs, [2]string{"Wallet on", walletChain})
		}
		if wallet.SessionActive() {
			pairs = append(pairs, [2]string{"Keys", "unlocked"})
		}
		fmt.Println(ui.KeyValueBlock("w3nft status", pairs))

		ctx := cmd.Context()
		client, err := dialNetwork(ctx, n)
		if err != nil {
			fmt.Println(ui.Warn(err.Error()))
			return nil
		}
		defer client.Close()

		latency, head, err := client.Ping(ctx)
		if err != nil {
			fmt.Println(ui.Warn(fmt.Sprintf("RPC %s unreachable: %v", client.URL(), err)))
			return nil
		}
		fmt.Println(ui.Meta(fmt.Sprintf("RPC %s  ·  block %d  ·  %dms", client.URL(), head, latency.Milliseconds())))

		addr, err := resolveContract()
		if err != nil {
			fmt.Println(ui.Hint(err.Error()))
			return nil
		}
		return printCollection(ctx, n, client, addr)
	},
}

// printCollection reads the collection's identity with a read-only handle.
func printCollection(ctx context.Context, n *chain.Network, client *chain.Client, addr common.Address) error {
	c := contract.NewERC721(addr, common.Address{}, n.BigChainID(), client, nil)

	pairs := [][2]string{{"Address", addr.Hex()}}
	if name, err := c.Name(ctx); err == nil {
		pairs = append(pairs, [2]string{"Name", name})
	}
	if sym, err := c.Symbol(ctx); err == nil {
		pairs = append(pairs, [2]string{"Symbol", sym})
	}
	supply, err := c.TotalSupply(ctx)
	if err != nil {
		fmt.Println(ui.KeyValueBlock("Collection", pairs))
		return fmt.Errorf("reading collection %s: %w", addr.Hex(), err)
	}
	pairs = append(pairs, [2]string{"Minted", supply.String()})
	if ok, err := c.SupportsERC721(ctx); err == nil && !ok {
		pairs = append(pairs, [2]string{"Warning", "contract does not report ERC-721 support"})
	}
	if link := n.AddressURL(addr.Hex()); link != "" {
		pairs = append(pairs, [2]string{"Explorer", link})
	}
	fmt.Println(ui.KeyValueBlock("Collection", pairs))
	return nil
}
