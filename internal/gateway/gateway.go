// Package gateway mediates access to the user's wallet and hands out
// contract handles bound to the authorized account.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Mohsinsiddi/w3nft/internal/chain"
	"github.com/Mohsinsiddi/w3nft/internal/contract"
	"github.com/Mohsinsiddi/w3nft/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
)

// Errors.
var (
	ErrWalletUnavailable = errors.New("no wallet available")
	ErrUserRejected      = errors.New("user rejected the request")
	ErrNetworkMismatch   = errors.New("wallet is on the wrong network")
	ErrNotConnected      = errors.New("wallet not connected")
)

// Gateway is the single shared handle to wallet capabilities.
type Gateway struct {
	provider wallet.Provider
	backend  contract.Backend
	network  chain.Network
	address  common.Address

	mintGas, transferGas uint64

	mu      sync.Mutex
	account *common.Address
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithFallbackGas sets the gas limits used when the node cannot estimate.
func WithFallbackGas(mint, transfer uint64) Option {
	return func(g *Gateway) {
		g.mintGas, g.transferGas = mint, transfer
	}
}

// New creates a gateway for the collection at address on network. provider
// may be nil, in which case every wallet operation fails with
// ErrWalletUnavailable.
func New(provider wallet.Provider, backend contract.Backend, network chain.Network, address common.Address, opts ...Option) *Gateway {
	g := &Gateway{
		provider: provider,
		backend:  backend,
		network:  network,
		address:  address,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ContractAddress returns the collection address.
func (g *Gateway) ContractAddress() common.Address { return g.address }

// Account returns the connected account, if any.
func (g *Gateway) Account() (common.Address, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.account == nil {
		return common.Address{}, false
	}
	return *g.account, true
}

func (g *Gateway) setAccount(a *common.Address) {
	g.mu.Lock()
	g.account = a
	g.mu.Unlock()
}

// RequestConnection returns the active account, prompting the wallet for
// authorization only when no account is authorized yet.
func (g *Gateway) RequestConnection(ctx context.Context) (common.Address, error) {
	if g.provider == nil {
		return common.Address{}, ErrWalletUnavailable
	}

	accts, err := g.provider.Accounts(ctx)
	if err != nil {
		return common.Address{}, classify(err, "reading accounts", nil)
	}
	if len(accts) == 0 {
		accts, err = g.provider.RequestAccounts(ctx)
		if err != nil {
			return common.Address{}, classify(err, "requesting accounts", nil)
		}
	}
	if len(accts) == 0 {
		return common.Address{}, fmt.Errorf("%w: no account was authorized", ErrUserRejected)
	}

	acct := accts[0]
	g.setAccount(&acct)
	log.Debug("Wallet connected", "account", acct)
	return acct, nil
}

// EnsureNetwork makes the wallet's active network target. When the wallet
// does not know target it is asked to add it, then to switch once more.
// A second failure is returned; nothing is retried beyond that.
func (g *Gateway) EnsureNetwork(ctx context.Context, target chain.Network) error {
	if g.provider == nil {
		return ErrWalletUnavailable
	}

	current, err := g.provider.ChainID(ctx)
	if err != nil {
		return classify(err, "reading chain id", nil)
	}
	want := target.BigChainID()
	if current.Cmp(want) == 0 {
		return nil
	}

	log.Debug("Switching wallet network", "from", current, "to", target.HexChainID())
	err = g.provider.SwitchChain(ctx, want)
	if err == nil {
		return nil
	}
	if !wallet.IsCode(err, wallet.CodeUnrecognizedChain) {
		return classify(err, "switching to "+target.DisplayName, ErrNetworkMismatch)
	}

	log.Info("Wallet does not know the network, adding it", "network", target.Name, "chainId", target.HexChainID())
	if err := g.provider.AddChain(ctx, target); err != nil {
		return classify(err, "adding "+target.DisplayName, ErrNetworkMismatch)
	}
	if err := g.provider.SwitchChain(ctx, want); err != nil {
		return classify(err, "switching to "+target.DisplayName, ErrNetworkMismatch)
	}
	return nil
}

// Connect authorizes an account and puts the wallet on the collection's
// network.
func (g *Gateway) Connect(ctx context.Context) (common.Address, error) {
	acct, err := g.RequestConnection(ctx)
	if err != nil {
		return common.Address{}, err
	}
	if err := g.EnsureNetwork(ctx, g.network); err != nil {
		return acct, err
	}
	return acct, nil
}

// Disconnect forgets the connected account. The wallet's own authorization
// is untouched.
func (g *Gateway) Disconnect() {
	g.setAccount(nil)
}

// ContractHandle returns a handle on the collection bound to the connected
// account.
func (g *Gateway) ContractHandle(ctx context.Context) (contract.Handle, error) {
	if g.provider == nil {
		return nil, ErrWalletUnavailable
	}
	acct, ok := g.Account()
	if !ok {
		return nil, ErrNotConnected
	}
	chainID, err := g.provider.ChainID(ctx)
	if err != nil {
		return nil, classify(err, "reading chain id", nil)
	}

	h := contract.NewERC721(g.address, acct, chainID, g.backend, g.provider)
	h.MintGas, h.TransferGas = g.mintGas, g.transferGas
	return h, nil
}

// WatchAccounts follows the wallet's accounts-changed notifications until
// ctx ends or the subscription is closed. An empty list disconnects; a new
// first account replaces the connected one. onChange may be nil.
func (g *Gateway) WatchAccounts(ctx context.Context, onChange func(account common.Address, connected bool)) event.Subscription {
	if g.provider == nil {
		return event.NewSubscription(func(<-chan struct{}) error { return ErrWalletUnavailable })
	}

	ch := make(chan []common.Address, 4)
	sub := g.provider.SubscribeAccountsChanged(ch)

	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case accts := <-ch:
				if len(accts) == 0 {
					g.setAccount(nil)
					log.Info("Wallet disconnected")
					if onChange != nil {
						onChange(common.Address{}, false)
					}
					continue
				}
				acct := accts[0]
				g.setAccount(&acct)
				log.Info("Wallet account changed", "account", acct)
				if onChange != nil {
					onChange(acct, true)
				}
			case err := <-sub.Err():
				return err
			case <-ctx.Done():
				return nil
			case <-quit:
				return nil
			}
		}
	})
}

// classify maps a provider failure onto the gateway's error taxonomy,
// keeping the original error in the chain. Codes the taxonomy does not name
// are wrapped in kind, or returned plain when kind is nil.
func classify(err error, op string, kind error) error {
	switch {
	case wallet.IsCode(err, wallet.CodeUserRejected):
		return fmt.Errorf("%s: %w: %w", op, ErrUserRejected, err)
	case wallet.IsCode(err, wallet.CodeDisconnected), wallet.IsCode(err, wallet.CodeUnauthorized):
		return fmt.Errorf("%s: %w: %w", op, ErrWalletUnavailable, err)
	case wallet.IsCode(err, wallet.CodeUnrecognizedChain):
		return fmt.Errorf("%s: %w: %w", op, ErrNetworkMismatch, err)
	case kind != nil:
		return fmt.Errorf("%s: %w: %w", op, kind, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
