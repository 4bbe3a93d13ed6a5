// Package mongostore backs the Secondary Store contract (internal/store)
// with go.mongodb.org/mongo-driver, grounded on the original dxpool/hns-backend
// service's choice of MongoDB as its document store (SPEC_FULL.md §4.6): one
// collection per record type from spec.md §3, indexed the way §3/§6.4
// describe, with EnsureIndexes taking the place of the teacher's
// golang-migrate schema step since there is no relational schema here.
package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dxpool/hns-backend/internal/logger"
	"github.com/dxpool/hns-backend/internal/logs"
	"github.com/dxpool/hns-backend/internal/store"
)

const (
	collBlocks       = "blocks"
	collTransactions = "transactions"
	collCoins        = "coins"
	collNames        = "names"
	collSummaries    = "summaries"
)

// Store is the MongoDB-backed store.Store implementation.
type Store struct {
	db  *mongo.Database
	log *logs.Logger

	blocks       *mongo.Collection
	transactions *mongo.Collection
	coins        *mongo.Collection
	names        *mongo.Collection
	summaries    *mongo.Collection
}

// Connect dials uri and returns a Store bound to database dbName.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return New(client.Database(dbName)), nil
}

// New wraps an already-connected *mongo.Database.
func New(db *mongo.Database) *Store {
	return &Store{
		db:           db,
		log:          logger.Get(logger.SubsystemStore),
		blocks:       db.Collection(collBlocks),
		transactions: db.Collection(collTransactions),
		coins:        db.Collection(collCoins),
		names:        db.Collection(collNames),
		summaries:    db.Collection(collSummaries),
	}
}

// Disconnect closes the underlying client connection.
func (s *Store) Disconnect(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

var _ store.Store = (*Store)(nil)
