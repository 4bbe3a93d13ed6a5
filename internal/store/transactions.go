package store

import (
	"context"

	"github.com/dxpool/hns-backend/internal/model"
)

// TransactionStore is the Transaction collection's contract (spec.md §3).
type TransactionStore interface {
	// UpsertTransaction inserts or replaces the transaction record keyed
	// by Txid.
	UpsertTransaction(ctx context.Context, tx model.Transaction) error
	// GetTransaction returns the transaction by txid, or nil if absent.
	GetTransaction(ctx context.Context, txid string) (*model.Transaction, error)
	// ListTransactionsByAddress returns transactions where address
	// participates, sorted by height descending (spec.md §4.3
	// getTransactionsByAddress).
	ListTransactionsByAddress(ctx context.Context, address string, offset, limit int) (Page[model.Transaction], error)
	// ListTransactionsDesc walks indexed transactions newest-first,
	// stopping at limit (spec.md §4.3 getTransactions).
	ListTransactionsDesc(ctx context.Context, limit int) ([]model.Transaction, error)
	// DeleteTransactionsAbove deletes every transaction with height > h.
	DeleteTransactionsAbove(ctx context.Context, h uint32) error
}
