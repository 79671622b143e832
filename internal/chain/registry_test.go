package chain_test

import (
	"testing"

	"github.com/Mohsinsiddi/w3nft/internal/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryHasBuiltinNetworks(t *testing.T) {
	registry := chain.NewRegistry()
	assert.Len(t, registry.All(), 3)
}

func TestRegistryAllSortedByName(t *testing.T) {
	all := chain.NewRegistry().All()
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Name, all[i].Name)
	}
}

func TestRegistryGetByName(t *testing.T) {
	registry := chain.NewRegistry()

	tests := []struct {
		name    string
		chainID int64
	}{
		{"etherlink-testnet", 128123},
		{"sepolia", 11155111},
		{"localhost", 31337},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := registry.GetByName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.chainID, n.ChainID)
			assert.NotEmpty(t, n.RPCURL())
		})
	}
}

func TestRegistryGetByNameCaseInsensitive(t *testing.T) {
	n, err := chain.NewRegistry().GetByName("Etherlink-Testnet")
	require.NoError(t, err)
	assert.Equal(t, "etherlink-testnet", n.Name)
}

func TestRegistryGetByNameUnknown(t *testing.T) {
	_, err := chain.NewRegistry().GetByName("nonexistent")
	assert.ErrorIs(t, err, chain.ErrNetworkNotFound)
}

func TestRegistryGetByChainID(t *testing.T) {
	registry := chain.NewRegistry()

	n, err := registry.GetByChainID(128123)
	require.NoError(t, err)
	assert.Equal(t, "etherlink-testnet", n.Name)

	_, err = registry.GetByChainID(999999)
	assert.ErrorIs(t, err, chain.ErrNetworkNotFound)
}

func TestEtherlinkTestnetIdentity(t *testing.T) {
	n, err := chain.NewRegistry().GetByName("etherlink-testnet")
	require.NoError(t, err)

	assert.Equal(t, "0x1f47b", n.HexChainID())
	assert.Equal(t, "Etherlink Testnet", n.DisplayName)
	assert.Equal(t, chain.Currency{Name: "Tez", Symbol: "TEZ", Decimals: 18}, n.NativeCurrency)
	assert.Equal(t, "https://node.ghostnet.etherlink.com", n.RPCURL())
	assert.Equal(t, "https://testnet.explorer.etherlink.com", n.ExplorerURL)
	assert.Equal(t, int64(128123), n.BigChainID().Int64())
}

func TestNetworkExplorerLinks(t *testing.T) {
	n := chain.Network{ExplorerURL: "https://explorer.example/"}
	assert.Equal(t, "https://explorer.example/tx/0xabc", n.TxURL("0xabc"))
	assert.Equal(t, "https://explorer.example/address/0xdef", n.AddressURL("0xdef"))
	assert.Equal(t, "https://explorer.example/token/0xdef/instance/7", n.TokenURL("0xdef", "7"))
}

func TestNetworkExplorerLinksWithoutExplorer(t *testing.T) {
	n, err := chain.NewRegistry().GetByName("localhost")
	require.NoError(t, err)
	assert.Empty(t, n.TxURL("0xabc"))
	assert.Empty(t, n.AddressURL("0xabc"))
	assert.Empty(t, n.TokenURL("0xabc", "1"))
}

func TestNetworkRPCURLEmpty(t *testing.T) {
	var n chain.Network
	assert.Empty(t, n.RPCURL())
}
