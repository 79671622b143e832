package gateway

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3nft/internal/chain"
	"github.com/Mohsinsiddi/w3nft/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice      = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	bob        = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	collection = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
)

// fakeProvider is a scripted wallet that counts every call.
type fakeProvider struct {
	authorized []common.Address
	grant      []common.Address
	requestErr error

	chainID   int64
	known     map[int64]bool
	switchErr error // returned by every switch when set
	addErr    error

	accountsCalls, requestCalls, switchCalls, addCalls, chainCalls int

	feed event.Feed
}

func newFakeProvider(chainID int64) *fakeProvider {
	return &fakeProvider{chainID: chainID, known: map[int64]bool{chainID: true}}
}

func (f *fakeProvider) Accounts(context.Context) ([]common.Address, error) {
	f.accountsCalls++
	return f.authorized, nil
}

func (f *fakeProvider) RequestAccounts(context.Context) ([]common.Address, error) {
	f.requestCalls++
	if f.requestErr != nil {
		return nil, f.requestErr
	}
	f.authorized = f.grant
	return f.grant, nil
}

func (f *fakeProvider) ChainID(context.Context) (*big.Int, error) {
	f.chainCalls++
	return big.NewInt(f.chainID), nil
}

func (f *fakeProvider) SwitchChain(_ context.Context, id *big.Int) error {
	f.switchCalls++
	if f.switchErr != nil {
		return f.switchErr
	}
	if !f.known[id.Int64()] {
		return &wallet.ProviderError{Code: wallet.CodeUnrecognizedChain, Message: "Unrecognized chain ID"}
	}
	f.chainID = id.Int64()
	return nil
}

func (f *fakeProvider) AddChain(_ context.Context, n chain.Network) error {
	f.addCalls++
	if f.addErr != nil {
		return f.addErr
	}
	f.known[n.ChainID] = true
	return nil
}

func (f *fakeProvider) SubscribeAccountsChanged(ch chan<- []common.Address) event.Subscription {
	return f.feed.Subscribe(ch)
}

func (f *fakeProvider) SignTx(context.Context, common.Address, *types.Transaction, *big.Int) (*types.Transaction, error) {
	return nil, errors.New("not used")
}

func etherlink(t *testing.T) chain.Network {
	t.Helper()
	n, err := chain.NewRegistry().GetByName("etherlink-testnet")
	require.NoError(t, err)
	return *n
}

func newGateway(t *testing.T, p wallet.Provider) *Gateway {
	t.Helper()
	return New(p, nil, etherlink(t), collection)
}

// ---------------------------------------------------------------------------
// RequestConnection
// ---------------------------------------------------------------------------

func TestRequestConnectionNoWallet(t *testing.T) {
	g := New(nil, nil, etherlink(t), collection)
	_, err := g.RequestConnection(context.Background())
	assert.ErrorIs(t, err, ErrWalletUnavailable)
	assert.ErrorIs(t, g.EnsureNetwork(context.Background(), etherlink(t)), ErrWalletUnavailable)
	_, err = g.ContractHandle(context.Background())
	assert.ErrorIs(t, err, ErrWalletUnavailable)
}

func TestRequestConnectionPrompts(t *testing.T) {
	p := newFakeProvider(chain.EtherlinkTestnetChainID)
	p.grant = []common.Address{alice}
	g := newGateway(t, p)

	acct, err := g.RequestConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, alice, acct)
	assert.Equal(t, 1, p.requestCalls)

	got, ok := g.Account()
	assert.True(t, ok)
	assert.Equal(t, alice, got)
}

func TestRequestConnectionAlreadyAuthorized(t *testing.T) {
	p := newFakeProvider(chain.EtherlinkTestnetChainID)
	p.authorized = []common.Address{bob}
	g := newGateway(t, p)

	acct, err := g.RequestConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bob, acct)
	assert.Zero(t, p.requestCalls, "no prompt when already authorized")
}

func TestRequestConnectionRejected(t *testing.T) {
	p := newFakeProvider(chain.EtherlinkTestnetChainID)
	p.requestErr = &wallet.ProviderError{Code: wallet.CodeUserRejected, Message: "User rejected the request."}
	g := newGateway(t, p)

	_, err := g.RequestConnection(context.Background())
	assert.ErrorIs(t, err, ErrUserRejected)
	assert.True(t, wallet.IsCode(err, wallet.CodeUserRejected), "original error is kept")
	_, ok := g.Account()
	assert.False(t, ok)
}

func TestRequestConnectionEmptyGrant(t *testing.T) {
	p := newFakeProvider(chain.EtherlinkTestnetChainID)
	g := newGateway(t, p)

	_, err := g.RequestConnection(context.Background())
	assert.ErrorIs(t, err, ErrUserRejected)
}

// ---------------------------------------------------------------------------
// EnsureNetwork
// ---------------------------------------------------------------------------

func TestEnsureNetworkAlreadyOnTarget(t *testing.T) {
	p := newFakeProvider(chain.EtherlinkTestnetChainID)
	g := newGateway(t, p)

	require.NoError(t, g.EnsureNetwork(context.Background(), etherlink(t)))
	assert.Zero(t, p.switchCalls)
	assert.Zero(t, p.addCalls)
}

func TestEnsureNetworkSwitchesKnownChain(t *testing.T) {
	p := newFakeProvider(1)
	p.known[chain.EtherlinkTestnetChainID] = true
	g := newGateway(t, p)

	require.NoError(t, g.EnsureNetwork(context.Background(), etherlink(t)))
	assert.Equal(t, 1, p.switchCalls)
	assert.Zero(t, p.addCalls)
	assert.Equal(t, int64(chain.EtherlinkTestnetChainID), p.chainID)
}

func TestEnsureNetworkAddsUnknownChain(t *testing.T) {
	p := newFakeProvider(1)
	g := newGateway(t, p)

	require.NoError(t, g.EnsureNetwork(context.Background(), etherlink(t)))
	assert.Equal(t, 1, p.addCalls)
	assert.Equal(t, 2, p.switchCalls)
	assert.Equal(t, int64(chain.EtherlinkTestnetChainID), p.chainID)
}

func TestEnsureNetworkGivesUpAfterOneAdd(t *testing.T) {
	p := newFakeProvider(1)
	p.switchErr = &wallet.ProviderError{Code: wallet.CodeUnrecognizedChain, Message: "still unknown"}
	g := newGateway(t, p)

	err := g.EnsureNetwork(context.Background(), etherlink(t))
	assert.ErrorIs(t, err, ErrNetworkMismatch)
	assert.Equal(t, 1, p.addCalls, "add attempted at most once")
	assert.Equal(t, 2, p.switchCalls, "switch retried at most once")
}

func TestEnsureNetworkAddRejected(t *testing.T) {
	p := newFakeProvider(1)
	p.addErr = &wallet.ProviderError{Code: wallet.CodeUserRejected, Message: "User rejected adding the network."}
	g := newGateway(t, p)

	err := g.EnsureNetwork(context.Background(), etherlink(t))
	assert.ErrorIs(t, err, ErrUserRejected)
	assert.Equal(t, 1, p.switchCalls)
	assert.Equal(t, int64(1), p.chainID)
}

func TestEnsureNetworkSwitchRejected(t *testing.T) {
	p := newFakeProvider(1)
	p.switchErr = &wallet.ProviderError{Code: wallet.CodeUserRejected, Message: "User rejected the network switch."}
	g := newGateway(t, p)

	err := g.EnsureNetwork(context.Background(), etherlink(t))
	assert.ErrorIs(t, err, ErrUserRejected)
	assert.Zero(t, p.addCalls)
}

func TestEnsureNetworkOtherFailure(t *testing.T) {
	p := newFakeProvider(1)
	p.switchErr = errors.New("internal wallet error")
	g := newGateway(t, p)

	err := g.EnsureNetwork(context.Background(), etherlink(t))
	assert.ErrorIs(t, err, ErrNetworkMismatch)
	assert.Zero(t, p.addCalls)
}

// ---------------------------------------------------------------------------
// Connect / ContractHandle / accounts
// ---------------------------------------------------------------------------

func TestConnect(t *testing.T) {
	p := newFakeProvider(1)
	p.grant = []common.Address{alice}
	g := newGateway(t, p)

	acct, err := g.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, alice, acct)
	assert.Equal(t, int64(chain.EtherlinkTestnetChainID), p.chainID)
}

func TestContractHandleRequiresConnection(t *testing.T) {
	p := newFakeProvider(chain.EtherlinkTestnetChainID)
	p.grant = []common.Address{alice}
	g := newGateway(t, p)

	_, err := g.ContractHandle(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = g.RequestConnection(context.Background())
	require.NoError(t, err)

	h, err := g.ContractHandle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, alice, h.Signer())
	assert.Equal(t, collection, h.Address())

	g.Disconnect()
	_, err = g.ContractHandle(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestWatchAccounts(t *testing.T) {
	p := newFakeProvider(chain.EtherlinkTestnetChainID)
	p.grant = []common.Address{alice}
	g := newGateway(t, p)
	_, err := g.RequestConnection(context.Background())
	require.NoError(t, err)

	type change struct {
		acct      common.Address
		connected bool
	}
	changes := make(chan change, 2)
	sub := g.WatchAccounts(context.Background(), func(a common.Address, ok bool) {
		changes <- change{a, ok}
	})
	defer sub.Unsubscribe()

	p.feed.Send([]common.Address{bob})
	select {
	case c := <-changes:
		assert.Equal(t, change{bob, true}, c)
	case <-time.After(2 * time.Second):
		t.Fatal("no change delivered")
	}
	acct, _ := g.Account()
	assert.Equal(t, bob, acct)

	p.feed.Send([]common.Address{})
	select {
	case c := <-changes:
		assert.False(t, c.connected)
	case <-time.After(2 * time.Second):
		t.Fatal("no disconnect delivered")
	}
	_, ok := g.Account()
	assert.False(t, ok)
}
