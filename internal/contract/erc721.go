package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/w3nft/internal/chain"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
)

// Backend is what an ERC721 handle needs from a node connection.
// *chain.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// TxSigner signs on behalf of an account; wallet providers satisfy it.
type TxSigner interface {
	SignTx(ctx context.Context, from common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// TransferEvent is a decoded ERC-721 Transfer log.
type TransferEvent struct {
	From        common.Address
	To          common.Address
	TokenId     *big.Int
	BlockNumber uint64
	LogIndex    uint
}

// Handle is a contract handle bound to one signer.
type Handle interface {
	Address() common.Address
	Signer() common.Address

	TotalSupply(ctx context.Context) (*big.Int, error)
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error)
	TokenURI(ctx context.Context, tokenID *big.Int) (string, error)
	Transfers(ctx context.Context, fromBlock uint64) ([]TransferEvent, error)

	SafeMint(ctx context.Context, to common.Address, uri string) (*types.Transaction, error)
	TransferFrom(ctx context.Context, from, to common.Address, tokenID *big.Int) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// ERC721 is a Handle over a deployed collection.
type ERC721 struct {
	address  common.Address
	from     common.Address
	chainID  *big.Int
	backend  Backend
	signer   TxSigner
	contract *bind.BoundContract

	// Fallback gas limits, used only when the node cannot estimate.
	MintGas     uint64
	TransferGas uint64
}

var _ Handle = (*ERC721)(nil)

// NewERC721 binds the collection at addr. Transactions are sent from `from`
// and signed by signer for chainID.
func NewERC721(addr, from common.Address, chainID *big.Int, backend Backend, signer TxSigner) *ERC721 {
	return &ERC721{
		address:  addr,
		from:     from,
		chainID:  chainID,
		backend:  backend,
		signer:   signer,
		contract: bind.NewBoundContract(addr, parsedERC721, backend, backend, backend),
	}
}

func (c *ERC721) Address() common.Address { return c.address }
func (c *ERC721) Signer() common.Address  { return c.from }

// --- reads ---

func (c *ERC721) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx, From: c.from}, &out, method, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: empty result", method)
	}
	return out, nil
}

func (c *ERC721) TotalSupply(ctx context.Context) (*big.Int, error) {
	out, err := c.call(ctx, "totalSupply")
	if err != nil {
		return nil, err
	}
	return *abiConvert[*big.Int](out[0]), nil
}

func (c *ERC721) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	out, err := c.call(ctx, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return *abiConvert[*big.Int](out[0]), nil
}

func (c *ERC721) OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	out, err := c.call(ctx, "ownerOf", tokenID)
	if err != nil {
		return common.Address{}, err
	}
	return *abiConvert[common.Address](out[0]), nil
}

func (c *ERC721) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	out, err := c.call(ctx, "tokenURI", tokenID)
	if err != nil {
		return "", err
	}
	return *abiConvert[string](out[0]), nil
}

// Name returns the collection name.
func (c *ERC721) Name(ctx context.Context) (string, error) {
	out, err := c.call(ctx, "name")
	if err != nil {
		return "", err
	}
	return *abiConvert[string](out[0]), nil
}

// Symbol returns the collection symbol.
func (c *ERC721) Symbol(ctx context.Context) (string, error) {
	out, err := c.call(ctx, "symbol")
	if err != nil {
		return "", err
	}
	return *abiConvert[string](out[0]), nil
}

// SupportsERC721 asks the contract, via ERC-165, whether it is an ERC-721.
func (c *ERC721) SupportsERC721(ctx context.Context) (bool, error) {
	out, err := c.call(ctx, "supportsInterface", InterfaceIDERC721)
	if err != nil {
		return false, err
	}
	return *abiConvert[bool](out[0]), nil
}

// Transfers returns every Transfer log emitted by the collection since
// fromBlock, in chain order.
func (c *ERC721) Transfers(ctx context.Context, fromBlock uint64) ([]TransferEvent, error) {
	q := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		Addresses: []common.Address{c.address},
		Topics:    [][]common.Hash{{parsedERC721.Events["Transfer"].ID}},
	}
	logs, err := c.backend.FilterLogs(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("filtering Transfer logs: %w", err)
	}

	events := make([]TransferEvent, 0, len(logs))
	for _, l := range logs {
		if l.Removed {
			continue
		}
		var ev struct {
			From    common.Address
			To      common.Address
			TokenId *big.Int
		}
		if err := c.contract.UnpackLog(&ev, "Transfer", l); err != nil {
			return nil, fmt.Errorf("decoding Transfer log %s/%d: %w", l.TxHash.Hex(), l.Index, err)
		}
		events = append(events, TransferEvent{
			From: ev.From, To: ev.To, TokenId: ev.TokenId,
			BlockNumber: l.BlockNumber, LogIndex: l.Index,
		})
	}
	return events, nil
}

// --- writes ---

func (c *ERC721) SafeMint(ctx context.Context, to common.Address, uri string) (*types.Transaction, error) {
	return c.transact(ctx, c.MintGas, "safeMint", to, uri)
}

func (c *ERC721) TransferFrom(ctx context.Context, from, to common.Address, tokenID *big.Int) (*types.Transaction, error) {
	return c.transact(ctx, c.TransferGas, "transferFrom", from, to, tokenID)
}

func (c *ERC721) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return chain.WaitMined(ctx, c.backend, tx)
}

func (c *ERC721) transactOpts(ctx context.Context) *bind.TransactOpts {
	return &bind.TransactOpts{
		From:    c.from,
		Context: ctx,
		Signer: func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
			return c.signer.SignTx(ctx, addr, tx, c.chainID)
		},
	}
}

func (c *ERC721) transact(ctx context.Context, fallbackGas uint64, method string, args ...interface{}) (*types.Transaction, error) {
	tx, err := c.contract.Transact(c.transactOpts(ctx), method, args...)
	if err != nil && fallbackGas > 0 && estimationUnavailable(err) {
		log.Debug("Gas estimation failed, using fallback limit", "method", method, "gas", fallbackGas, "err", err)
		opts := c.transactOpts(ctx)
		opts.GasLimit = fallbackGas
		tx, err = c.contract.Transact(opts, method, args...)
	}
	if err != nil {
		return nil, err
	}
	log.Info("Submitted transaction", "method", method, "hash", tx.Hash(), "nonce", tx.Nonce())
	return tx, nil
}

// estimationUnavailable reports an estimateGas failure that is not a revert.
// A revert during estimation would revert on chain too, so it is surfaced.
func estimationUnavailable(err error) bool {
	var de rpcDataError
	if errors.As(err, &de) {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "failed to estimate gas") && !strings.Contains(msg, "revert")
}

// rpcDataError matches node errors that carry revert data.
type rpcDataError interface {
	ErrorData() interface{}
}

func abiConvert[T any](v interface{}) *T {
	return abi.ConvertType(v, new(T)).(*T)
}

// MintedTokenID finds the id of the token minted to `to` in a receipt from
// collection, by its Transfer log from the zero address.
func MintedTokenID(rcpt *types.Receipt, collection, to common.Address) (*big.Int, bool) {
	topic := parsedERC721.Events["Transfer"].ID
	for _, l := range rcpt.Logs {
		if l.Address != collection || len(l.Topics) != 4 || l.Topics[0] != topic {
			continue
		}
		if common.BytesToAddress(l.Topics[1].Bytes()) != (common.Address{}) {
			continue
		}
		if common.BytesToAddress(l.Topics[2].Bytes()) != to {
			continue
		}
		return l.Topics[3].Big(), true
	}
	return nil, false
}
