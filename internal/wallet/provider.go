package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/w3nft/internal/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rpc"
)

// EIP-1193 provider error codes.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeDisconnected      = 4900
	CodeUnrecognizedChain = 4902
	CodeInvalidParams     = -32602
)

// ProviderError is a wallet-reported failure carrying an EIP-1193 code.
// It satisfies go-ethereum's rpc.Error.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string  { return fmt.Sprintf("%s (code %d)", e.Message, e.Code) }
func (e *ProviderError) ErrorCode() int { return e.Code }

var _ rpc.Error = (*ProviderError)(nil)

// IsCode reports whether err carries the given provider/RPC error code.
func IsCode(err error, code int) bool {
	var rerr rpc.Error
	return errors.As(err, &rerr) && rerr.ErrorCode() == code
}

func rejected(msg string) error {
	return &ProviderError{Code: CodeUserRejected, Message: msg}
}

// Provider is the wallet surface the gateway consumes: account authorization,
// chain identity, network switching and transaction signing.
type Provider interface {
	// Accounts returns already-authorized accounts without prompting.
	Accounts(ctx context.Context) ([]common.Address, error)
	// RequestAccounts prompts for authorization when none is granted yet.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	ChainID(ctx context.Context) (*big.Int, error)
	// SwitchChain fails with CodeUnrecognizedChain for unknown chains.
	SwitchChain(ctx context.Context, chainID *big.Int) error
	AddChain(ctx context.Context, n chain.Network) error
	SubscribeAccountsChanged(ch chan<- []common.Address) event.Subscription
	SignTx(ctx context.Context, from common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// chainBook tracks the networks a wallet knows and the one it is on, plus
// the accounts-changed feed. Shared by both provider implementations.
type chainBook struct {
	mu       sync.Mutex
	networks map[int64]chain.Network
	current  int64
	feed     event.Feed
}

func newChainBook(current chain.Network, known []chain.Network) *chainBook {
	b := &chainBook{networks: make(map[int64]chain.Network), current: current.ChainID}
	b.networks[current.ChainID] = current
	for _, n := range known {
		b.networks[n.ChainID] = n
	}
	return b
}

func (b *chainBook) chainID() *big.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return big.NewInt(b.current)
}

func (b *chainBook) lookup(id *big.Int) (chain.Network, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.networks[id.Int64()]
	return n, ok
}

func (b *chainBook) switchTo(id *big.Int) {
	b.mu.Lock()
	b.current = id.Int64()
	b.mu.Unlock()
}

func (b *chainBook) add(n chain.Network) {
	b.mu.Lock()
	b.networks[n.ChainID] = n
	b.mu.Unlock()
}

func (b *chainBook) known() []chain.Network {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]chain.Network, 0, len(b.networks))
	for _, n := range b.networks {
		out = append(out, n)
	}
	return out
}

func unrecognized(id *big.Int) error {
	return &ProviderError{
		Code:    CodeUnrecognizedChain,
		Message: fmt.Sprintf("Unrecognized chain ID 0x%x. Try adding the chain using wallet_addEthereumChain first.", id),
	}
}

func validateNetwork(n chain.Network) error {
	if n.ChainID <= 0 {
		return &ProviderError{Code: CodeInvalidParams, Message: "chain id must be positive"}
	}
	if n.RPCURL() == "" {
		return &ProviderError{Code: CodeInvalidParams, Message: "at least one RPC URL is required"}
	}
	if n.NativeCurrency.Symbol == "" || n.NativeCurrency.Decimals <= 0 {
		return &ProviderError{Code: CodeInvalidParams, Message: "native currency symbol and decimals are required"}
	}
	return nil
}
