package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
)

// Deployment is the outcome of Deploy.
type Deployment struct {
	Address common.Address
	Tx      *types.Transaction
}

// Deploy sends the artifact's creation transaction from `from`, signed by
// signer, and waits until code exists at the new address. args are passed
// to the constructor.
func Deploy(ctx context.Context, art *Artifact, backend Backend, from common.Address, chainID *big.Int, signer TxSigner, args ...interface{}) (*Deployment, error) {
	opts := &bind.TransactOpts{
		From:    from,
		Context: ctx,
		Signer: func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
			return signer.SignTx(ctx, addr, tx, chainID)
		},
	}

	addr, tx, _, err := bind.DeployContract(opts, art.ABI, art.Bytecode, backend, args...)
	if err != nil {
		return nil, fmt.Errorf("deploying %s: %w", art.Name, err)
	}
	log.Info("Deployment submitted", "contract", art.Name, "address", addr, "hash", tx.Hash())

	if _, err := bind.WaitDeployed(ctx, backend, tx); err != nil {
		return nil, fmt.Errorf("waiting for deployment: %w", err)
	}
	return &Deployment{Address: addr, Tx: tx}, nil
}
