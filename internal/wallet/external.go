package wallet

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/Mohsinsiddi/w3nft/internal/chain"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/external"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// ExternalProvider delegates account disclosure and signing to a Clef
// instance, whose UI plays the part of the wallet popup. Clef has no notion
// of a selected network, so switching is tracked locally.
type ExternalProvider struct {
	signer *external.ExternalSigner
	book   *chainBook

	mu         sync.Mutex
	authorized *common.Address
}

// DialExternal connects to Clef at endpoint (IPC path or http URL).
func DialExternal(endpoint string, current chain.Network, known []chain.Network) (*ExternalProvider, error) {
	s, err := external.NewExternalSigner(endpoint)
	if err != nil {
		return nil, fmt.Errorf("connecting to external signer: %w", err)
	}
	return &ExternalProvider{signer: s, book: newChainBook(current, known)}, nil
}

func (p *ExternalProvider) Accounts(context.Context) ([]common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.authorized == nil {
		return []common.Address{}, nil
	}
	return []common.Address{*p.authorized}, nil
}

// RequestAccounts asks Clef to list accounts; the operator approves which
// ones are revealed. An empty answer is treated as a rejection.
func (p *ExternalProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if accts, _ := p.Accounts(ctx); len(accts) > 0 {
		return accts, nil
	}
	listed := p.signer.Accounts()
	if len(listed) == 0 {
		return nil, rejected("User rejected the request.")
	}
	addr := listed[0].Address

	p.mu.Lock()
	p.authorized = &addr
	p.mu.Unlock()
	p.book.feed.Send([]common.Address{addr})

	out := make([]common.Address, len(listed))
	for i, a := range listed {
		out[i] = a.Address
	}
	return out, nil
}

func (p *ExternalProvider) ChainID(context.Context) (*big.Int, error) {
	return p.book.chainID(), nil
}

func (p *ExternalProvider) SwitchChain(_ context.Context, chainID *big.Int) error {
	if _, ok := p.book.lookup(chainID); !ok {
		return unrecognized(chainID)
	}
	p.book.switchTo(chainID)
	return nil
}

func (p *ExternalProvider) AddChain(_ context.Context, n chain.Network) error {
	if err := validateNetwork(n); err != nil {
		return err
	}
	p.book.add(n)
	return nil
}

func (p *ExternalProvider) SubscribeAccountsChanged(ch chan<- []common.Address) event.Subscription {
	return p.book.feed.Subscribe(ch)
}

func (p *ExternalProvider) SignTx(_ context.Context, from common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	p.mu.Lock()
	ok := p.authorized != nil && *p.authorized == from
	p.mu.Unlock()
	if !ok {
		return nil, &ProviderError{Code: CodeUnauthorized, Message: "account " + from.Hex() + " is not authorized"}
	}

	signed, err := p.signer.SignTx(accounts.Account{Address: from}, tx, chainID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "denied") {
			return nil, rejected(err.Error())
		}
		return nil, fmt.Errorf("external signer: %w", err)
	}
	return signed, nil
}

// Disconnect forgets the authorized account.
func (p *ExternalProvider) Disconnect() {
	p.mu.Lock()
	was := p.authorized
	p.authorized = nil
	p.mu.Unlock()
	if was != nil {
		p.book.feed.Send([]common.Address{})
	}
}

// State mirrors LocalProvider.State for persistence.
func (p *ExternalProvider) State() (account string, chainID int64, known []chain.Network) {
	p.mu.Lock()
	if p.authorized != nil {
		account = p.authorized.Hex()
	}
	p.mu.Unlock()
	return account, p.book.chainID().Int64(), p.book.known()
}

// Close releases the Clef connection.
func (p *ExternalProvider) Close() error {
	return p.signer.Close()
}
