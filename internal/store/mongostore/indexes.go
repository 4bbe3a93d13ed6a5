package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func indexOpts(unique bool) *options.IndexOptions {
	return options.Index().SetUnique(unique)
}

// EnsureIndexes creates every collection's secondary indexes idempotently
// (spec.md §3/§6.4), called once at store-open time in place of the
// teacher's golang-migrate schema-migration step.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	idx := func(coll *mongo.Collection, models []mongo.IndexModel) error {
		_, err := coll.Indexes().CreateMany(ctx, models)
		return err
	}

	if err := idx(s.blocks, []mongo.IndexModel{
		{Keys: bson.D{{Key: "height", Value: -1}}, Options: indexOpts(true)},
		{Keys: bson.D{{Key: "time", Value: 1}}},
		{Keys: bson.D{{Key: "miner", Value: 1}}},
	}); err != nil {
		return err
	}

	if err := idx(s.transactions, []mongo.IndexModel{
		{Keys: bson.D{{Key: "txid", Value: 1}}, Options: indexOpts(true)},
		{Keys: bson.D{{Key: "addresses", Value: 1}}},
		{Keys: bson.D{{Key: "height", Value: -1}}},
	}); err != nil {
		return err
	}

	if err := idx(s.coins, []mongo.IndexModel{
		{Keys: bson.D{{Key: "txid", Value: 1}, {Key: "index", Value: 1}}, Options: indexOpts(true)},
		{Keys: bson.D{{Key: "nameHash", Value: 1}}},
		{Keys: bson.D{{Key: "covenant.type", Value: 1}}},
		{Keys: bson.D{{Key: "address", Value: 1}}},
		{Keys: bson.D{{Key: "time", Value: -1}}},
		{Keys: bson.D{{Key: "value", Value: -1}}},
		{Keys: bson.D{{Key: "spent", Value: 1}}},
		{
			Keys:    bson.D{{Key: "spentTxid", Value: 1}, {Key: "spentIndex", Value: 1}},
			Options: indexOpts(true).SetSparse(true),
		},
	}); err != nil {
		return err
	}

	if err := idx(s.names, []mongo.IndexModel{
		{Keys: bson.D{{Key: "nameHash", Value: 1}}, Options: indexOpts(true)},
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: indexOpts(true)},
		{Keys: bson.D{{Key: "open", Value: -1}}},
		{Keys: bson.D{{Key: "value", Value: -1}}},
	}); err != nil {
		return err
	}

	if err := idx(s.summaries, []mongo.IndexModel{
		{Keys: bson.D{{Key: "time", Value: 1}}, Options: indexOpts(true)},
	}); err != nil {
		return err
	}

	return nil
}
