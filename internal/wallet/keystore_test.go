package wallet

import (
	"path/filepath"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTempSession(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	orig := sessionFilePath
	sessionFilePath = func() string { return path }
	t.Cleanup(func() { sessionFilePath = orig })
}

func fileKeychain(t *testing.T) *Keychain {
	t.Helper()
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      keychainService,
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          t.TempDir(),
		FilePasswordFunc: keyring.FixedStringPrompt("test"),
	})
	require.NoError(t, err)
	return NewKeychainWithRing(ring)
}

func TestNormaliseHexKey(t *testing.T) {
	assert.Equal(t, "abcd", normaliseHexKey("  0xabcd\n"))
	assert.Equal(t, "abcd", normaliseHexKey("0Xabcd"))
	assert.Equal(t, "abcd", normaliseHexKey("abcd"))
	assert.Equal(t, "", normaliseHexKey("0x"))
}

func TestKeychainStoreRetrieveDelete(t *testing.T) {
	withTempSession(t)
	kc := fileKeychain(t)

	ref, err := kc.Store("alice", testKey)
	require.NoError(t, err)
	assert.Equal(t, "w3nft.alice", ref)

	got, err := kc.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, testKey[2:], got)

	require.NoError(t, kc.Delete(ref))
	_, err = kc.Retrieve(ref)
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.NoError(t, kc.Delete(ref), "deleting twice is not an error")
}

func TestRemoveWalletWhoseKeyIsGone(t *testing.T) {
	withTempSession(t)
	kc := fileKeychain(t)
	m := NewManager(WithInMemoryStore(), WithKeyStore(kc))

	w, err := m.AddWithKey("alice", testKey)
	require.NoError(t, err)
	require.NoError(t, kc.Delete(w.KeyRef))

	require.NoError(t, m.Remove("alice"))
	_, err = m.Get("alice")
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestKeychainPrefersSession(t *testing.T) {
	withTempSession(t)
	kc := fileKeychain(t)

	require.NoError(t, PutSessionKey("w3nft.cached", "feed"))
	got, err := kc.Retrieve("w3nft.cached")
	require.NoError(t, err)
	assert.Equal(t, "feed", got)
}

func TestMemoryKeyStore(t *testing.T) {
	ks := NewMemoryKeyStore()
	ref, err := ks.Store("bob", testKey2)
	require.NoError(t, err)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, testKey2, got)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
