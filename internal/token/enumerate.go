package token

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/Mohsinsiddi/w3nft/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// ScanEnumerator walks every id in [0, totalSupply) and asks for its owner.
// Ids whose reads fail (burned or never minted) are skipped. It costs one
// or two calls per id, so it suits small collections only.
type ScanEnumerator struct{}

func (ScanEnumerator) EnumerateOwned(ctx context.Context, h contract.Handle, owner common.Address) ([]TokenHandle, error) {
	supply, err := h.TotalSupply(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContractCall, err)
	}

	out := []TokenHandle{}
	one := big.NewInt(1)
	for id := new(big.Int); id.Cmp(supply) < 0; id = new(big.Int).Add(id, one) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		got, err := h.OwnerOf(ctx, id)
		if err != nil {
			log.Debug("Skipping token", "id", id, "err", err)
			continue
		}
		if got != owner {
			continue
		}
		uri, err := h.TokenURI(ctx, id)
		if err != nil {
			log.Debug("Skipping token without URI", "id", id, "err", err)
			continue
		}
		out = append(out, TokenHandle{ID: id, Owner: got, URI: uri})
	}
	return out, nil
}

// LogEnumerator replays the collection's Transfer events from FromBlock to
// find current owners, then reads each owned token's URI.
type LogEnumerator struct {
	FromBlock uint64
}

func (e LogEnumerator) EnumerateOwned(ctx context.Context, h contract.Handle, owner common.Address) ([]TokenHandle, error) {
	events, err := h.Transfers(ctx, e.FromBlock)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContractCall, err)
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].BlockNumber != events[j].BlockNumber {
			return events[i].BlockNumber < events[j].BlockNumber
		}
		return events[i].LogIndex < events[j].LogIndex
	})

	owners := make(map[string]common.Address)
	ids := make(map[string]*big.Int)
	for _, ev := range events {
		key := ev.TokenId.String()
		owners[key] = ev.To
		ids[key] = ev.TokenId
	}

	var owned []*big.Int
	for key, o := range owners {
		if o == owner {
			owned = append(owned, ids[key])
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].Cmp(owned[j]) < 0 })

	out := []TokenHandle{}
	for _, id := range owned {
		uri, err := h.TokenURI(ctx, id)
		if err != nil {
			log.Debug("Skipping token without URI", "id", id, "err", err)
			continue
		}
		out = append(out, TokenHandle{ID: id, Owner: owner, URI: uri})
	}
	return out, nil
}
