// Package token implements the collection's user operations: listing the
// tokens an address owns, minting, and transferring.
package token

import (
	"context"
	"errors"
	"math/big"

	"github.com/Mohsinsiddi/w3nft/internal/contract"
	"github.com/ethereum/go-ethereum/common"
)

// Errors.
var (
	ErrInvalidAddress      = errors.New("invalid address")
	ErrContractCall        = errors.New("contract call failed")
	ErrTransactionReverted = errors.New("transaction reverted")
	ErrRejected            = errors.New("operation rejected")
)

// Result messages.
const (
	MintSuccess     = "NFT minted successfully!"
	MintFailure     = "Error minting NFT: "
	TransferSuccess = "NFT transferred successfully!"
	TransferFailure = "Error transferring NFT: "
)

// TokenHandle is one discovered token, as of the listing that produced it.
type TokenHandle struct {
	ID    *big.Int
	Owner common.Address
	URI   string
}

// Phase is where a mint or transfer is in its lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseAwaitingConfirmation
	PhaseConfirmed
	PhaseReverted
	PhaseRejected
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseAwaitingConfirmation:
		return "awaiting confirmation"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseReverted:
		return "reverted"
	case PhaseRejected:
		return "rejected"
	}
	return "unknown"
}

// Terminal reports whether no further transition follows p.
func (p Phase) Terminal() bool {
	return p == PhaseConfirmed || p == PhaseReverted || p == PhaseRejected
}

// OperationResult is the single outcome of a mint or transfer.
type OperationResult struct {
	Success bool
	Status  string
	Phase   Phase
	TxHash  common.Hash // zero when nothing was submitted
	TokenID *big.Int    // minted id, when the receipt names it
	Err     error       // nil on success
}

// Gateway hands out contract handles bound to the connected account.
type Gateway interface {
	ContractHandle(ctx context.Context) (contract.Handle, error)
}

// Enumerator finds the tokens owned by an address.
type Enumerator interface {
	EnumerateOwned(ctx context.Context, h contract.Handle, owner common.Address) ([]TokenHandle, error)
}

// ProgressFunc observes phase transitions. tx is zero before submission.
type ProgressFunc func(phase Phase, tx common.Hash)
