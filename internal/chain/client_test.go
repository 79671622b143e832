package chain

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rpcMock creates a test HTTP server that responds to JSON-RPC calls.
// responses maps method name → result value.
func rpcMock(t *testing.T, responses map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string          `json:"method"`
			ID     json.RawMessage `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if result, ok := responses[req.Method]; ok {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"result":  result,
			})
		} else {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"error":   map[string]interface{}{"code": -32601, "message": "method not found"},
			})
		}
	}))
}

func receiptJSON(status string) map[string]interface{} {
	return map[string]interface{}{
		"status":            status,
		"cumulativeGasUsed": "0x5208",
		"gasUsed":           "0x5208",
		"logsBloom":         "0x" + strings.Repeat("0", 512),
		"logs":              []interface{}{},
		"transactionHash":   "0x" + strings.Repeat("ab", 32),
		"blockHash":         "0x" + strings.Repeat("cd", 32),
		"blockNumber":       "0x10",
		"transactionIndex":  "0x0",
		"contractAddress":   nil,
		"effectiveGasPrice": "0x1",
		"type":              "0x0",
	}
}

func testTx() *types.Transaction {
	to := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	return types.NewTx(&types.LegacyTx{Nonce: 1, To: &to, Gas: 21000, GasPrice: big.NewInt(1), Value: big.NewInt(0)})
}

func TestDialAndPing(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_blockNumber": "0x64"})
	defer srv.Close()

	c, err := Dial(context.Background(), srv.URL)
	require.NoError(t, err)
	defer c.Close()

	latency, block, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(100), block)
	assert.Greater(t, latency, time.Duration(0))
	assert.Equal(t, srv.URL, c.URL())
}

func TestPingRPCError(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{})
	defer srv.Close()

	c, err := Dial(context.Background(), srv.URL)
	require.NoError(t, err)
	defer c.Close()

	_, _, err = c.Ping(context.Background())
	assert.Error(t, err)
}

func TestWaitMinedSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": receiptJSON("0x1")})
	defer srv.Close()

	c, err := Dial(context.Background(), srv.URL)
	require.NoError(t, err)
	defer c.Close()

	receipt, err := WaitMined(context.Background(), c, testTx())
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	assert.Equal(t, uint64(16), receipt.BlockNumber.Uint64())
}

func TestWaitMinedReverted(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": receiptJSON("0x0")})
	defer srv.Close()

	c, err := Dial(context.Background(), srv.URL)
	require.NoError(t, err)
	defer c.Close()

	receipt, err := WaitMined(context.Background(), c, testTx())
	require.ErrorIs(t, err, ErrReverted)
	require.NotNil(t, receipt)
	assert.Equal(t, types.ReceiptStatusFailed, receipt.Status)
}

func TestWaitMinedHonoursContext(t *testing.T) {
	// A null receipt means "still pending"; the context ends the wait.
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": nil})
	defer srv.Close()

	c, err := Dial(context.Background(), srv.URL)
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err = WaitMined(ctx, c, testTx())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
