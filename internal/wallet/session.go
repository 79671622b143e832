package wallet

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// sessionFilePath returns the per-user session cache file, e.g.
// ~/.cache/w3nft/session.json on Linux. Overridden in tests.
var sessionFilePath = func() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "w3nft", "session.json")
}

// loadSessionKeys reads the session file. Returns an empty map (never nil) on any error.
func loadSessionKeys() map[string]string {
	data, err := os.ReadFile(sessionFilePath())
	if err != nil {
		return make(map[string]string)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return make(map[string]string)
	}
	return m
}

func saveSessionKeys(m map[string]string) error {
	path := sessionFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	_ = os.Chmod(path, 0o600)
	return nil
}

// GetSessionKey returns a cached key for ref, or ("", false) if not cached.
func GetSessionKey(ref string) (string, bool) {
	v, ok := loadSessionKeys()[ref]
	return v, ok
}

// PutSessionKey caches a key for ref in the session file.
func PutSessionKey(ref, hexKey string) error {
	m := loadSessionKeys()
	m[ref] = hexKey
	return saveSessionKeys(m)
}

// RemoveSessionKey evicts a single key from the session file.
func RemoveSessionKey(ref string) {
	m := loadSessionKeys()
	if _, ok := m[ref]; !ok {
		return
	}
	delete(m, ref)
	_ = saveSessionKeys(m)
}

// ClearSession removes all cached keys by deleting the session file.
func ClearSession() error {
	err := os.Remove(sessionFilePath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// SessionActive reports whether any key is cached.
func SessionActive() bool {
	return len(loadSessionKeys()) > 0
}

// Unlock copies a wallet's key from ks into the session cache.
func Unlock(w *Wallet, ks KeyStore) error {
	if w.Type != TypeSigning {
		return errWatchOnly(w)
	}
	hexKey, err := ks.Retrieve(w.KeyRef)
	if err != nil {
		return err
	}
	return PutSessionKey(w.KeyRef, hexKey)
}
