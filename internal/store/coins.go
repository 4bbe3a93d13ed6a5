package store

import (
	"context"

	"github.com/dxpool/hns-backend/internal/model"
)

// CoinRecord augments model.Coin with the store-only SpentHeight field, so
// rollback (spec.md §4.2) can clear exactly the spends performed by blocks
// being rolled back without re-deriving it from the (possibly
// already-deleted) spending transaction.
type CoinRecord struct {
	model.Coin
	SpentHeight *uint32 `bson:"spentHeight,omitempty"`
}

// CoinStore is the Coin collection's contract (spec.md §3).
type CoinStore interface {
	// UpsertCoinIfAbsent inserts a new unspent coin record, matching
	// spec.md §4.2 step 2 ("if newly inserted, spent=false"); a coin that
	// already exists (replay of an already-applied block) is left
	// untouched so idempotent replay never clobbers a later mark-spent.
	UpsertCoinIfAbsent(ctx context.Context, c model.Coin) error
	// GetCoin returns the coin at (txid, index), or nil if absent.
	GetCoin(ctx context.Context, txid string, index uint32) (*CoinRecord, error)
	// MarkSpent marks the coin at (txid, index) spent by
	// (spentTxid, spentIndex) at spentHeight. A no-op if the coin is
	// already spent (idempotent replay).
	MarkSpent(ctx context.Context, txid string, index uint32, spentTxid string, spentIndex uint32, spentHeight uint32) error
	// ListCoinsByAddress returns every coin ever owned by address, for
	// balance aggregation (spec.md §4.3 getAddress).
	ListCoinsByAddress(ctx context.Context, address string) ([]CoinRecord, error)
	// ListCoinsByNameHash returns every coin carrying nameHash's covenant,
	// sorted by time descending (spec.md §4.3 getNameBids/getNameHistory
	// consume this ordering/filter it further).
	ListCoinsByNameHash(ctx context.Context, nameHash string) ([]CoinRecord, error)
	// ListRevealCoinsByNameHash returns REVEAL-covenant coins for
	// nameHash, sorted by height ascending then (txid, index) ascending,
	// for auction-state replay after rollback (spec.md §4.2 rollback).
	ListRevealCoinsByNameHash(ctx context.Context, nameHash string) ([]CoinRecord, error)
	// ListBidsSince returns BID-covenant coins with time >= sinceTime,
	// sorted by value descending, for the 7d/30d top-bid aggregate
	// (spec.md §4.4).
	ListBidsSince(ctx context.Context, sinceTime int64) ([]CoinRecord, error)
	// ClearSpentAbove clears spent/spentTxid/spentIndex/spentHeight on
	// every coin whose SpentHeight > h (spec.md §4.2 rollback).
	ClearSpentAbove(ctx context.Context, h uint32) error
	// DeleteCoinsAbove deletes every coin record with height > h.
	DeleteCoinsAbove(ctx context.Context, h uint32) error
}
