package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	withTempSession(t)
	assert.False(t, SessionActive())

	require.NoError(t, PutSessionKey("w3nft.a", "aa"))
	require.NoError(t, PutSessionKey("w3nft.b", "bb"))
	assert.True(t, SessionActive())

	v, ok := GetSessionKey("w3nft.a")
	assert.True(t, ok)
	assert.Equal(t, "aa", v)

	RemoveSessionKey("w3nft.a")
	_, ok = GetSessionKey("w3nft.a")
	assert.False(t, ok)
	assert.True(t, SessionActive())

	require.NoError(t, ClearSession())
	assert.False(t, SessionActive())
	assert.NoError(t, ClearSession(), "clearing an absent session is fine")
}

func TestUnlock(t *testing.T) {
	withTempSession(t)
	m := NewManager()
	w, err := m.AddWithKey("alice", testKey)
	require.NoError(t, err)

	require.NoError(t, Unlock(w, m.KeyStore()))
	v, ok := GetSessionKey(w.KeyRef)
	assert.True(t, ok)
	assert.Equal(t, testKey[2:], v)

	require.NoError(t, m.AddWatchOnly("viewer", testAddress2))
	viewer, _ := m.Get("viewer")
	assert.Error(t, Unlock(viewer, m.KeyStore()))
}
