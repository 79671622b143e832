package wallet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hardhat/anvil account #0.
const (
	testKey     = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

	// Hardhat/anvil account #1.
	testKey2     = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	testAddress2 = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

func TestAddWithKeyDerivesAddress(t *testing.T) {
	m := NewManager()
	w, err := m.AddWithKey("alice", testKey)
	require.NoError(t, err)
	assert.Equal(t, testAddress, w.Address)
	assert.Equal(t, TypeSigning, w.Type)
	assert.Equal(t, "w3nft.alice", w.KeyRef)

	stored, err := m.KeyStore().Retrieve(w.KeyRef)
	require.NoError(t, err)
	assert.Equal(t, testKey[2:], stored)
}

func TestAddWithKeyRejectsGarbage(t *testing.T) {
	m := NewManager()
	_, err := m.AddWithKey("bad", "0xnothex")
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.Empty(t, m.List())
}

func TestAddDuplicateName(t *testing.T) {
	m := NewManager()
	_, err := m.AddWithKey("alice", testKey)
	require.NoError(t, err)
	_, err = m.AddWithKey("alice", testKey2)
	assert.ErrorIs(t, err, ErrWalletExists)
	assert.ErrorIs(t, m.AddWatchOnly("alice", testAddress2), ErrWalletExists)
}

func TestAddWatchOnly(t *testing.T) {
	m := NewManager()
	assert.ErrorIs(t, m.AddWatchOnly("x", "0x1234"), ErrInvalidAddress)

	require.NoError(t, m.AddWatchOnly("viewer", "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"))
	w, err := m.Get("viewer")
	require.NoError(t, err)
	assert.Equal(t, testAddress2, w.Address, "address is stored checksummed")
	assert.Empty(t, m.Signing())
}

func TestFindByAddressIgnoresCase(t *testing.T) {
	m := NewManager()
	_, err := m.AddWithKey("alice", testKey)
	require.NoError(t, err)

	w, err := m.FindByAddress("0xF39FD6E51AAD88F6F4CE6AB8827279CFFFB92266")
	require.NoError(t, err)
	assert.Equal(t, "alice", w.Name)

	_, err = m.FindByAddress(testAddress2)
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestRemoveDeletesKey(t *testing.T) {
	m := NewManager()
	w, err := m.AddWithKey("alice", testKey)
	require.NoError(t, err)

	require.NoError(t, m.Remove("alice"))
	_, err = m.KeyStore().Retrieve(w.KeyRef)
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.ErrorIs(t, m.Remove("alice"), ErrWalletNotFound)
}

func TestDefaultWallet(t *testing.T) {
	m := NewManager()
	assert.Nil(t, m.Default())

	_, err := m.AddWithKey("alice", testKey)
	require.NoError(t, err)
	require.NotNil(t, m.Default(), "single wallet is the implicit default")

	_, err = m.AddWithKey("bob", testKey2)
	require.NoError(t, err)
	assert.Nil(t, m.Default())

	require.NoError(t, m.SetDefault("bob"))
	assert.Equal(t, "bob", m.Default().Name)
	assert.ErrorIs(t, m.SetDefault("carol"), ErrWalletNotFound)
}

func TestListSorted(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.AddWatchOnly("zed", testAddress))
	require.NoError(t, m.AddWatchOnly("amy", testAddress2))

	names := []string{}
	for _, w := range m.List() {
		names = append(names, w.Name)
	}
	assert.Equal(t, []string{"amy", "zed"}, names)
}

func TestJSONStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")
	ks := NewMemoryKeyStore()

	m := NewManager(WithStore(NewJSONStore(path)), WithKeyStore(ks))
	_, err := m.AddWithKey("alice", testKey)
	require.NoError(t, err)
	require.NoError(t, m.SetDefault("alice"))

	reopened := NewManager(WithStore(NewJSONStore(path)), WithKeyStore(ks))
	w, err := reopened.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, testAddress, w.Address)
	assert.True(t, w.IsDefault)
}

func TestJSONStoreMissingFile(t *testing.T) {
	s := NewJSONStore(filepath.Join(t.TempDir(), "nope.json"))
	wallets, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, wallets)
}
