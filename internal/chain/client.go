package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrReverted is returned by WaitMined when the receipt status is 0.
var ErrReverted = errors.New("transaction reverted")

// Client is a node connection. It satisfies bind.ContractBackend and
// bind.DeployBackend through the embedded ethclient.
type Client struct {
	*ethclient.Client
	url string
}

// Dial connects to an EVM JSON-RPC endpoint.
func Dial(ctx context.Context, url string) (*Client, error) {
	c, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return &Client{Client: c, url: url}, nil
}

// URL returns the endpoint this client is connected to.
func (c *Client) URL() string { return c.url }

// Ping measures round-trip latency with eth_blockNumber.
func (c *Client) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	blockNum, err = c.BlockNumber(ctx)
	return time.Since(start), blockNum, err
}

// WaitMined blocks until tx is included and returns its receipt. A receipt
// with status 0 is returned together with ErrReverted.
func WaitMined(ctx context.Context, backend bind.DeployBackend, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, backend, tx)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w (hash: %s)", ErrReverted, tx.Hash().Hex())
	}
	return receipt, nil
}
