package wallet

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/w3nft/internal/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
)

// ErrPromptDismissed is returned by a Prompter when the user declines.
var ErrPromptDismissed = errors.New("prompt dismissed")

// TxRequest is what the user is asked to approve before a signature.
type TxRequest struct {
	From    common.Address
	To      *common.Address
	Value   *big.Int
	Data    []byte
	Gas     uint64
	Network chain.Network
}

// Prompter is the wallet's approval UI.
type Prompter interface {
	// ChooseAccount returns the account to authorize, or ErrPromptDismissed.
	ChooseAccount(candidates []*Wallet) (*Wallet, error)
	ApproveSwitch(to chain.Network) bool
	ApproveAddNetwork(n chain.Network) bool
	ApproveTransaction(req TxRequest) bool
}

// LocalProvider is a wallet backed by the local wallet manager and keystore.
type LocalProvider struct {
	mgr    *Manager
	prompt Prompter
	book   *chainBook

	mu         sync.Mutex
	authorized *Wallet
}

// LocalOptions seeds a LocalProvider with state persisted by a previous run.
type LocalOptions struct {
	Current chain.Network   // network the wallet starts on
	Known   []chain.Network // networks added earlier
	Account string          // previously authorized address, "" if none
}

// NewLocalProvider creates a wallet provider over mgr.
func NewLocalProvider(mgr *Manager, prompt Prompter, opts LocalOptions) *LocalProvider {
	p := &LocalProvider{
		mgr:    mgr,
		prompt: prompt,
		book:   newChainBook(opts.Current, opts.Known),
	}
	if opts.Account != "" {
		if w, err := mgr.FindByAddress(opts.Account); err == nil && w.Type == TypeSigning {
			p.authorized = w
		}
	}
	return p
}

func (p *LocalProvider) Accounts(context.Context) ([]common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.authorized == nil {
		return []common.Address{}, nil
	}
	return []common.Address{p.authorized.CommonAddress()}, nil
}

func (p *LocalProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if accts, _ := p.Accounts(ctx); len(accts) > 0 {
		return accts, nil
	}

	candidates := p.mgr.Signing()
	if len(candidates) == 0 {
		return nil, &ProviderError{Code: CodeUnauthorized, Message: "wallet has no signing accounts"}
	}

	w, err := p.prompt.ChooseAccount(candidates)
	if errors.Is(err, ErrPromptDismissed) || (err == nil && w == nil) {
		return nil, rejected("User rejected the request.")
	}
	if err != nil {
		return nil, err
	}

	p.setAuthorized(w)
	return []common.Address{w.CommonAddress()}, nil
}

func (p *LocalProvider) ChainID(context.Context) (*big.Int, error) {
	return p.book.chainID(), nil
}

func (p *LocalProvider) SwitchChain(_ context.Context, chainID *big.Int) error {
	if p.book.chainID().Cmp(chainID) == 0 {
		return nil
	}
	n, ok := p.book.lookup(chainID)
	if !ok {
		return unrecognized(chainID)
	}
	if !p.prompt.ApproveSwitch(n) {
		return rejected("User rejected the network switch.")
	}
	p.book.switchTo(chainID)
	log.Debug("Wallet switched network", "chain", n.Name, "id", n.ChainID)
	return nil
}

func (p *LocalProvider) AddChain(_ context.Context, n chain.Network) error {
	if err := validateNetwork(n); err != nil {
		return err
	}
	if _, ok := p.book.lookup(n.BigChainID()); ok {
		return nil
	}
	if !p.prompt.ApproveAddNetwork(n) {
		return rejected("User rejected adding the network.")
	}
	p.book.add(n)
	log.Debug("Wallet added network", "chain", n.Name, "id", n.ChainID)
	return nil
}

func (p *LocalProvider) SubscribeAccountsChanged(ch chan<- []common.Address) event.Subscription {
	return p.book.feed.Subscribe(ch)
}

func (p *LocalProvider) SignTx(_ context.Context, from common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	p.mu.Lock()
	w := p.authorized
	p.mu.Unlock()
	if w == nil || w.CommonAddress() != from {
		return nil, &ProviderError{Code: CodeUnauthorized, Message: "account " + from.Hex() + " is not authorized"}
	}

	n, _ := p.book.lookup(chainID)
	req := TxRequest{From: from, To: tx.To(), Value: tx.Value(), Data: tx.Data(), Gas: tx.Gas(), Network: n}
	if !p.prompt.ApproveTransaction(req) {
		return nil, rejected("User denied transaction signature.")
	}
	return signWithKey(w, p.mgr.KeyStore(), tx, chainID)
}

// SelectAccount switches the authorized account to the wallet called name,
// notifying subscribers. Only valid while connected.
func (p *LocalProvider) SelectAccount(name string) error {
	w, err := p.mgr.Get(name)
	if err != nil {
		return err
	}
	if w.Type != TypeSigning {
		return errWatchOnly(w)
	}
	p.mu.Lock()
	connected := p.authorized != nil
	p.mu.Unlock()
	if !connected {
		return &ProviderError{Code: CodeUnauthorized, Message: "wallet is not connected"}
	}
	p.setAuthorized(w)
	return nil
}

// Disconnect revokes the authorization; subscribers receive an empty list.
func (p *LocalProvider) Disconnect() {
	p.mu.Lock()
	was := p.authorized
	p.authorized = nil
	p.mu.Unlock()
	if was != nil {
		p.book.feed.Send([]common.Address{})
	}
}

// State returns what the caller should persist between runs.
func (p *LocalProvider) State() (account string, chainID int64, known []chain.Network) {
	p.mu.Lock()
	if p.authorized != nil {
		account = p.authorized.Address
	}
	p.mu.Unlock()
	return account, p.book.chainID().Int64(), p.book.known()
}

func (p *LocalProvider) setAuthorized(w *Wallet) {
	p.mu.Lock()
	changed := p.authorized == nil || p.authorized.Address != w.Address
	p.authorized = w
	p.mu.Unlock()
	if changed {
		p.book.feed.Send([]common.Address{w.CommonAddress()})
	}
}
