package store

import (
	"context"

	"github.com/dxpool/hns-backend/internal/model"
)

// BlockRecord augments model.Block with two store-only bookkeeping fields
// that make rollback recomputation exact (SPEC_FULL.md §4.2 rollback):
// the whole-coin supply and burned contributed by this specific block, so
// a day-summary that straddles a rollback boundary can be recomputed from
// the blocks that remain instead of needing a separate ledger.
type BlockRecord struct {
	model.Block
	SupplyDelta float64
	BurnedDelta float64
}

// BlockStore is the Block collection's contract (spec.md §3).
type BlockStore interface {
	// UpsertBlock inserts or replaces the block record at b.Height.
	UpsertBlock(ctx context.Context, b BlockRecord) error
	// GetBlockByHeight returns the block at height, or nil if absent.
	GetBlockByHeight(ctx context.Context, height uint32) (*BlockRecord, error)
	// MaxBlockHeight returns the highest height present, or 0 if the
	// collection is empty (spec.md §4.2 "read persisted H... or 0").
	MaxBlockHeight(ctx context.Context) (uint32, error)
	// ListBlocksDesc returns blocks sorted by height descending, paginated
	// from the tip (spec.md §6.1 /blocks, "offset is blocks from the tip").
	ListBlocksDesc(ctx context.Context, offset, limit int) (Page[BlockRecord], error)
	// ListBlocksInTimeRange returns blocks with time in (start, end],
	// for pool-distribution aggregation (spec.md §4.3 getPoolDistribution).
	ListBlocksInTimeRange(ctx context.Context, start, end int64) ([]BlockRecord, error)
	// ListBlocksDescLimit returns the most recent limit blocks, newest
	// first, for hashrate calculation (spec.md §6.1).
	ListBlocksDescLimit(ctx context.Context, limit int) ([]BlockRecord, error)
	// DeleteBlocksAbove deletes every block record with height > h.
	DeleteBlocksAbove(ctx context.Context, h uint32) error
}
