package token

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/w3nft/internal/chain"
	"github.com/Mohsinsiddi/w3nft/internal/contract"
	"github.com/Mohsinsiddi/w3nft/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
)

// Service runs token operations against the collection the gateway binds.
type Service struct {
	gw       Gateway
	enum     Enumerator
	progress ProgressFunc
}

// Option configures a Service.
type Option func(*Service)

// WithEnumerator replaces the default ScanEnumerator.
func WithEnumerator(e Enumerator) Option {
	return func(s *Service) { s.enum = e }
}

// WithProgress registers an observer for mint and transfer phases.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Service) { s.progress = fn }
}

// NewService creates a token service over gw.
func NewService(gw Gateway, opts ...Option) *Service {
	s := &Service{gw: gw, enum: ScanEnumerator{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListOwnedTokens returns the tokens owner holds in ascending id order. An
// owner with no tokens yields an empty slice and a nil error; an error means
// the listing itself failed. Failures on individual ids are skipped.
func (s *Service) ListOwnedTokens(ctx context.Context, owner string) ([]TokenHandle, error) {
	ownerAddr, err := ParseAddress(owner)
	if err != nil {
		return nil, err
	}
	h, err := s.gw.ContractHandle(ctx)
	if err != nil {
		return nil, err
	}
	tokens, err := s.enum.EnumerateOwned(ctx, h, ownerAddr)
	if err != nil {
		log.Warn("Listing tokens failed", "owner", owner, "err", err)
		return nil, err
	}
	return tokens, nil
}

// MintToken mints a token with metadataURI to the connected account and
// waits for it to be confirmed.
func (s *Service) MintToken(ctx context.Context, metadataURI string) OperationResult {
	op := s.begin(MintSuccess, MintFailure)

	if strings.TrimSpace(metadataURI) == "" {
		return op.reject(fmt.Errorf("%w: metadata URI is empty", ErrRejected))
	}
	h, err := s.gw.ContractHandle(ctx)
	if err != nil {
		return op.reject(err)
	}

	op.step(PhaseSubmitting)
	tx, err := h.SafeMint(ctx, h.Signer(), metadataURI)
	if err != nil {
		return op.reject(err)
	}

	res, rcpt := op.await(ctx, h, tx)
	if rcpt != nil && res.Success {
		if id, ok := contract.MintedTokenID(rcpt, h.Address(), h.Signer()); ok {
			res.TokenID = id
		}
	}
	return res
}

// TransferToken moves tokenID from the connected account to `to` with the
// unchecked transferFrom entrypoint and waits for confirmation. A malformed
// recipient is rejected before anything is sent.
func (s *Service) TransferToken(ctx context.Context, to string, tokenID *big.Int) OperationResult {
	op := s.begin(TransferSuccess, TransferFailure)

	recipient, err := ParseAddress(to)
	if err != nil {
		return op.reject(err)
	}
	if tokenID == nil || tokenID.Sign() < 0 {
		return op.reject(fmt.Errorf("%w: token id must be a non-negative integer", ErrRejected))
	}
	h, err := s.gw.ContractHandle(ctx)
	if err != nil {
		return op.reject(err)
	}

	op.step(PhaseSubmitting)
	tx, err := h.TransferFrom(ctx, h.Signer(), recipient, tokenID)
	if err != nil {
		return op.reject(err)
	}

	res, _ := op.await(ctx, h, tx)
	return res
}

// ParseAddress accepts a 20-byte hex address. All-lowercase and
// all-uppercase forms carry no checksum; a mixed-case address must pass
// EIP-55.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	body := s
	if len(body) >= 2 && body[0] == '0' && (body[1] == 'x' || body[1] == 'X') {
		body = body[2:]
	}
	if body != strings.ToLower(body) && body != strings.ToUpper(body) {
		m, err := common.NewMixedcaseAddressFromString("0x" + body)
		if err != nil || !m.ValidChecksum() {
			return common.Address{}, fmt.Errorf("%w: bad checksum %q", ErrInvalidAddress, s)
		}
	}
	return common.HexToAddress(body), nil
}

// operation tracks one mint or transfer through its phases.
type operation struct {
	progress ProgressFunc
	success  string
	failure  string
	phase    Phase
	tx       common.Hash
}

func (s *Service) begin(success, failure string) *operation {
	return &operation{progress: s.progress, success: success, failure: failure, phase: PhaseIdle}
}

func (o *operation) step(p Phase) {
	o.phase = p
	if o.progress != nil {
		o.progress(p, o.tx)
	}
}

func (o *operation) fail(p Phase, err error) OperationResult {
	o.step(p)
	log.Debug("Operation failed", "phase", p, "tx", o.tx, "err", err)
	return OperationResult{
		Status: o.failure + message(err),
		Phase:  p,
		TxHash: o.tx,
		Err:    err,
	}
}

func (o *operation) reject(err error) OperationResult {
	return o.fail(PhaseRejected, err)
}

func (o *operation) await(ctx context.Context, h contract.Handle, tx *types.Transaction) (OperationResult, *types.Receipt) {
	o.tx = tx.Hash()
	o.step(PhaseAwaitingConfirmation)

	rcpt, err := h.WaitMined(ctx, tx)
	if err != nil {
		if errors.Is(err, chain.ErrReverted) {
			err = fmt.Errorf("%w: %w", ErrTransactionReverted, err)
		}
		return o.fail(PhaseReverted, err), rcpt
	}

	o.step(PhaseConfirmed)
	return OperationResult{Success: true, Status: o.success, Phase: PhaseConfirmed, TxHash: o.tx}, rcpt
}

// message is the human-readable part of err. Provider errors are reported
// by their message alone, the way wallets show them.
func message(err error) string {
	var perr *wallet.ProviderError
	if errors.As(err, &perr) {
		return perr.Message
	}
	return err.Error()
}
