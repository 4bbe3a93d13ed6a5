// Package store defines the Secondary Store (component A, SPEC_FULL.md
// §4.6): the durable document collections with compound secondary indexes
// that spec.md §3/§6.4 describe but leave as an assumed interface. The
// concrete implementation (internal/store/mongostore) backs it with
// go.mongodb.org/mongo-driver; internal/store/memstore backs it with plain
// Go maps for the property tests in SPEC_FULL.md §8.
package store

import "context"

// Page is a generic paginated result, grounded on daglabs-btcd/apiserver's
// {total, limit, offset, result} response shape (spec.md §6.1).
type Page[T any] struct {
	Total  int64
	Offset int
	Limit  int
	Items  []T
}

// Store is the full secondary-store contract. Every method is safe for
// concurrent use; writes are confined to the Indexer, reads are
// unrestricted (spec.md §5 "Shared resources").
type Store interface {
	BlockStore
	TransactionStore
	CoinStore
	NameStore
	SummaryStore

	// EnsureIndexes creates every collection's secondary indexes
	// idempotently. Called once at store-open time (SPEC_FULL.md §4.6,
	// replacing the teacher's golang-migrate step since there is no
	// relational schema to migrate).
	EnsureIndexes(ctx context.Context) error
}
