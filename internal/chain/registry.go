package chain

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// ErrNetworkNotFound is returned when a network is not in the registry.
var ErrNetworkNotFound = errors.New("network not found")

// Currency describes a chain's native currency the way wallets expect it.
type Currency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// Network is the static identity of a target chain.
type Network struct {
	Name           string   `json:"name"` // slug, e.g. "etherlink-testnet"
	DisplayName    string   `json:"display_name"`
	ChainID        int64    `json:"chain_id"`
	NativeCurrency Currency `json:"native_currency"`
	RPCURLs        []string `json:"rpc_urls"`
	ExplorerURL    string   `json:"explorer_url,omitempty"`
	FaucetURL      string   `json:"faucet_url,omitempty"`
}

// BigChainID returns the chain id as a *big.Int for signers.
func (n *Network) BigChainID() *big.Int {
	return big.NewInt(n.ChainID)
}

// HexChainID returns the 0x-prefixed hex chain id, e.g. "0x1f47b".
func (n *Network) HexChainID() string {
	return fmt.Sprintf("0x%x", n.ChainID)
}

// RPCURL returns the canonical RPC endpoint.
func (n *Network) RPCURL() string {
	if len(n.RPCURLs) == 0 {
		return ""
	}
	return n.RPCURLs[0]
}

// TxURL returns an explorer link for a transaction, or "" without an explorer.
func (n *Network) TxURL(hash string) string {
	if n.ExplorerURL == "" {
		return ""
	}
	return strings.TrimRight(n.ExplorerURL, "/") + "/tx/" + hash
}

// AddressURL returns an explorer link for an address, or "" without an explorer.
func (n *Network) AddressURL(addr string) string {
	if n.ExplorerURL == "" {
		return ""
	}
	return strings.TrimRight(n.ExplorerURL, "/") + "/address/" + addr
}

// TokenURL returns an explorer link for one token of a collection, or "" without an explorer.
func (n *Network) TokenURL(collection, id string) string {
	if n.ExplorerURL == "" {
		return ""
	}
	return strings.TrimRight(n.ExplorerURL, "/") + "/token/" + collection + "/instance/" + id
}

// Registry is the network registry.
type Registry struct {
	networks []Network
	byName   map[string]*Network
	byID     map[int64]*Network
}

// NewRegistry returns the registry of built-in networks.
func NewRegistry() *Registry {
	return newRegistry(builtinNetworks())
}

func newRegistry(networks []Network) *Registry {
	r := &Registry{
		networks: networks,
		byName:   make(map[string]*Network, len(networks)),
		byID:     make(map[int64]*Network, len(networks)),
	}
	for i := range r.networks {
		n := &r.networks[i]
		r.byName[n.Name] = n
		r.byID[n.ChainID] = n
	}
	return r
}

// All returns every network sorted by name.
func (r *Registry) All() []Network {
	out := make([]Network, len(r.networks))
	copy(out, r.networks)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetByName finds a network by its slug.
func (r *Registry) GetByName(name string) (*Network, error) {
	n, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, ErrNetworkNotFound
	}
	return n, nil
}

// GetByChainID finds a network by its numeric chain id.
func (r *Registry) GetByChainID(id int64) (*Network, error) {
	n, ok := r.byID[id]
	if !ok {
		return nil, ErrNetworkNotFound
	}
	return n, nil
}

// --- network data ---

// EtherlinkTestnetChainID is 0x1f47b.
const EtherlinkTestnetChainID = 128123

func builtinNetworks() []Network {
	return []Network{
		{
			Name: "etherlink-testnet", DisplayName: "Etherlink Testnet", ChainID: EtherlinkTestnetChainID,
			NativeCurrency: Currency{Name: "Tez", Symbol: "TEZ", Decimals: 18},
			RPCURLs:        []string{"https://node.ghostnet.etherlink.com"},
			ExplorerURL:    "https://testnet.explorer.etherlink.com",
			FaucetURL:      "https://faucet.etherlink.com",
		},
		{
			Name: "sepolia", DisplayName: "Sepolia", ChainID: 11155111,
			NativeCurrency: Currency{Name: "Sepolia Ether", Symbol: "ETH", Decimals: 18},
			RPCURLs:        []string{"https://ethereum-sepolia-rpc.publicnode.com", "https://rpc.sepolia.org"},
			ExplorerURL:    "https://sepolia.etherscan.io",
		},
		{
			Name: "localhost", DisplayName: "Local Dev Chain", ChainID: 31337,
			NativeCurrency: Currency{Name: "Ether", Symbol: "ETH", Decimals: 18},
			RPCURLs:        []string{"http://127.0.0.1:8545"},
		},
	}
}
