package indexer

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/dxpool/hns-backend/internal/model"
	"github.com/dxpool/hns-backend/internal/store"
)

const secondsPerDay = 86400

// rollback undoes every block above height h: it deletes the coins,
// transactions, blocks, and freshly-opened names those blocks introduced,
// clears spends they performed on older coins, replays the second-price
// auction rule from scratch for every name whose REVEALs may have changed,
// and recomputes the day-summary straddling the rollback boundary (spec.md
// §4.2 rollback). It must be called with ix.mu held.
func (ix *Indexer) rollback(ctx context.Context, h uint32) error {
	boundary, err := ix.store.GetBlockByHeight(ctx, h)
	if err != nil {
		return errors.Wrapf(err, "reading boundary block %d", h)
	}

	survivingNames, err := ix.store.ListNamesWithOpenAtMost(ctx, h)
	if err != nil {
		return errors.Wrap(err, "listing surviving names")
	}

	if err := ix.store.DeleteCoinsAbove(ctx, h); err != nil {
		return errors.Wrap(err, "deleting coins above rollback height")
	}
	if err := ix.store.ClearSpentAbove(ctx, h); err != nil {
		return errors.Wrap(err, "clearing spends above rollback height")
	}
	if err := ix.store.DeleteTransactionsAbove(ctx, h); err != nil {
		return errors.Wrap(err, "deleting transactions above rollback height")
	}
	if err := ix.store.DeleteNamesWithOpenAbove(ctx, h); err != nil {
		return errors.Wrap(err, "deleting names opened above rollback height")
	}
	if err := ix.store.DeleteBlocksAbove(ctx, h); err != nil {
		return errors.Wrap(err, "deleting blocks above rollback height")
	}

	for _, name := range survivingNames {
		if err := ix.replayAuction(ctx, name.NameHash); err != nil {
			return err
		}
	}

	return ix.recomputeBoundaryDay(ctx, boundary)
}

// replayAuction recomputes a name's (value, highest) from scratch by
// folding the second-price rule over every REVEAL coin still present for
// it, ascending by height (spec.md §4.2 rollback).
func (ix *Indexer) replayAuction(ctx context.Context, nameHash string) error {
	reveals, err := ix.store.ListRevealCoinsByNameHash(ctx, nameHash)
	if err != nil {
		return errors.Wrapf(err, "listing reveals for %s", nameHash)
	}
	sort.Slice(reveals, func(i, j int) bool {
		if reveals[i].Height != reveals[j].Height {
			return reveals[i].Height < reveals[j].Height
		}
		if reveals[i].Txid != reveals[j].Txid {
			return reveals[i].Txid < reveals[j].Txid
		}
		return reveals[i].Index < reveals[j].Index
	})

	var value, highest uint64
	for _, coin := range reveals {
		value, highest = applyReveal(value, highest, coin.Value)
	}
	return ix.store.UpdateNameAuction(ctx, nameHash, value, highest)
}

// recomputeBoundaryDay rebuilds the day-summary record for the UTC day
// containing the rollback boundary block (or deletes it if no blocks
// remain in it), and deletes every later day entirely (spec.md §4.2
// rollback). boundary is nil when rolling back to before the first
// indexed block, in which case every summary is erased.
func (ix *Indexer) recomputeBoundaryDay(ctx context.Context, boundary *store.BlockRecord) error {
	if boundary == nil {
		return ix.store.DeleteSummariesAfter(ctx, -1)
	}

	dayTime := model.DayBucket(boundary.Time)
	blocks, err := ix.store.ListBlocksInTimeRange(ctx, dayTime-1, dayTime+secondsPerDay-1)
	if err != nil {
		return errors.Wrapf(err, "listing remaining blocks for day %d", dayTime)
	}

	if len(blocks) == 0 {
		return ix.store.DeleteSummariesAfter(ctx, dayTime-1)
	}

	var blockCount, txs int
	var difficultySum, supplySum, burnedSum float64
	for _, b := range blocks {
		blockCount++
		txs += b.Txs
		difficultySum += b.Difficulty
		supplySum += b.SupplyDelta
		burnedSum += b.BurnedDelta
	}

	prev, err := ix.store.GetLatestSummaryBefore(ctx, dayTime)
	if err != nil {
		return errors.Wrapf(err, "reading previous summary before day %d", dayTime)
	}
	totalTxs := int64(txs)
	supply, burned := supplySum, burnedSum
	if prev != nil {
		totalTxs += prev.TotalTxs
		supply += prev.Supply
		burned += prev.Burned
	}

	if err := ix.store.PutSummary(ctx, model.Summary{
		Time:       dayTime,
		Blocks:     blockCount,
		Txs:        txs,
		TotalTxs:   totalTxs,
		Difficulty: difficultySum,
		Supply:     supply,
		Burned:     burned,
	}); err != nil {
		return errors.Wrapf(err, "writing recomputed summary for day %d", dayTime)
	}

	return ix.store.DeleteSummariesAfter(ctx, dayTime)
}
