package store

import (
	"context"

	"github.com/dxpool/hns-backend/internal/model"
)

// NameStore is the Name collection's contract (spec.md §3).
type NameStore interface {
	// UpsertNameOpen (re)seeds a name's auction record on a CLAIM/OPEN
	// covenant: {name, open: openHeight, value: 0, highest: 0} (spec.md
	// §4.2 step 2).
	UpsertNameOpen(ctx context.Context, nameHash, name string, openHeight uint32) error
	// GetName returns the name record by nameHash, or nil if absent.
	GetName(ctx context.Context, nameHash string) (*model.Name, error)
	// GetNameByName returns the name record by its ASCII name, or nil.
	GetNameByName(ctx context.Context, name string) (*model.Name, error)
	// UpdateNameAuction sets value/highest for nameHash (spec.md §4.2's
	// second-price update, and rollback's from-scratch replay).
	UpdateNameAuction(ctx context.Context, nameHash string, value, highest uint64) error
	// ListNamesByValueDesc returns name records sorted by value
	// descending (spec.md §4.3 getNames type=value).
	ListNamesByValueDesc(ctx context.Context, offset, limit int) (Page[model.Name], error)
	// ListNamesByOpenRange returns name records with open in
	// (minExclusive, maxInclusive], sorted by open descending (spec.md
	// §4.3 getNamesByStatus).
	ListNamesByOpenRange(ctx context.Context, minExclusive, maxInclusive uint32, offset, limit int) (Page[model.Name], error)
	// ListTopNamesByValue returns up to limit name records sorted by
	// value descending, for the top-value cached aggregate (spec.md
	// §4.4.1).
	ListTopNamesByValue(ctx context.Context, limit int) ([]model.Name, error)
	// DeleteNamesWithOpenAbove deletes name records with open > h
	// (spec.md §4.2 rollback).
	DeleteNamesWithOpenAbove(ctx context.Context, h uint32) error
	// ListNamesWithOpenAtMost returns every name record with open <= h,
	// used by rollback to find auctions whose value/highest may need
	// replay (spec.md §4.2 rollback).
	ListNamesWithOpenAtMost(ctx context.Context, h uint32) ([]model.Name, error)
}
