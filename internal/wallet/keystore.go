package wallet

import (
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
)

const keychainService = "w3nft"

// ErrKeyNotFound is returned when no key exists for a reference.
var ErrKeyNotFound = errors.New("key not found")

// KeyStore persists private keys outside wallets.json.
type KeyStore interface {
	Store(name, hexKey string) (ref string, err error)
	Retrieve(ref string) (string, error)
	Delete(ref string) error
}

// Keychain is a KeyStore backed by the OS keychain, with the session file as
// a read-through cache so an unlocked key does not prompt again.
type Keychain struct {
	ring keyring.Keyring
}

// NewKeychain opens the OS keychain. fileDir is used for the encrypted-file
// fallback on hosts without a secret service.
func NewKeychain(fileDir string) *Keychain {
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.TerminalPrompt,
	}

	// On Linux without a GUI, fall back to file-based storage.
	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		ring, _ = keyring.Open(keyring.Config{
			ServiceName:      keychainService,
			AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
			FileDir:          fileDir,
			FilePasswordFunc: keyring.TerminalPrompt,
		})
	}
	return &Keychain{ring: ring}
}

// NewKeychainWithRing wraps an already-open keyring (tests use the file backend).
func NewKeychainWithRing(ring keyring.Keyring) *Keychain {
	return &Keychain{ring: ring}
}

// Store saves a private key for a wallet name and returns its reference.
func (k *Keychain) Store(name, hexKey string) (string, error) {
	if k.ring == nil {
		return "", fmt.Errorf("keystore not available")
	}
	ref := keyRef(name)
	if err := k.ring.Set(keyring.Item{Key: ref, Data: []byte(normaliseHexKey(hexKey))}); err != nil {
		return "", fmt.Errorf("keychain store: %w", err)
	}
	return ref, nil
}

// Retrieve returns the key for ref, preferring the session cache.
func (k *Keychain) Retrieve(ref string) (string, error) {
	if v, ok := GetSessionKey(ref); ok {
		return v, nil
	}
	if k.ring == nil {
		return "", fmt.Errorf("keystore not available")
	}
	item, err := k.ring.Get(ref)
	if errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, ref)
	}
	if err != nil {
		return "", fmt.Errorf("keychain retrieve: %w", err)
	}
	return string(item.Data), nil
}

// Delete removes a stored key and evicts it from the session cache.
func (k *Keychain) Delete(ref string) error {
	RemoveSessionKey(ref)
	if k.ring == nil {
		return nil
	}
	err := k.ring.Remove(ref)
	// the file backend reports a missing key as a plain not-exist error
	if errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryKeyStore keeps keys in memory (tests, ephemeral wallets).
type MemoryKeyStore struct {
	data map[string]string
}

// NewMemoryKeyStore creates an empty in-memory keystore.
func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{data: make(map[string]string)}
}

func (k *MemoryKeyStore) Store(name, hexKey string) (string, error) {
	ref := keyRef(name)
	k.data[ref] = normaliseHexKey(hexKey)
	return ref, nil
}

func (k *MemoryKeyStore) Retrieve(ref string) (string, error) {
	v, ok := k.data[ref]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, ref)
	}
	return v, nil
}

func (k *MemoryKeyStore) Delete(ref string) error {
	delete(k.data, ref)
	return nil
}

func keyRef(name string) string {
	return keychainService + "." + name
}

// normaliseHexKey trims whitespace and any 0x prefix.
func normaliseHexKey(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s[2:]
	}
	return s
}
