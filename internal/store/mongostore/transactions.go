package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dxpool/hns-backend/internal/model"
	"github.com/dxpool/hns-backend/internal/store"
)

func (s *Store) UpsertTransaction(ctx context.Context, tx model.Transaction) error {
	_, err := s.transactions.ReplaceOne(ctx, bson.M{"txid": tx.Txid}, tx, options.Replace().SetUpsert(true))
	return err
}

func (s *Store) GetTransaction(ctx context.Context, txid string) (*model.Transaction, error) {
	var tx model.Transaction
	err := s.transactions.FindOne(ctx, bson.M{"txid": txid}).Decode(&tx)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *Store) ListTransactionsByAddress(ctx context.Context, address string, offset, limit int) (store.Page[model.Transaction], error) {
	filter := bson.M{"addresses": address}
	total, err := s.transactions.CountDocuments(ctx, filter)
	if err != nil {
		return store.Page[model.Transaction]{}, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "height", Value: -1}}).SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.transactions.Find(ctx, filter, opts)
	if err != nil {
		return store.Page[model.Transaction]{}, err
	}
	defer cur.Close(ctx)
	var items []model.Transaction
	if err := cur.All(ctx, &items); err != nil {
		return store.Page[model.Transaction]{}, err
	}
	return store.Page[model.Transaction]{Total: total, Offset: offset, Limit: limit, Items: items}, nil
}

func (s *Store) ListTransactionsDesc(ctx context.Context, limit int) ([]model.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "height", Value: -1}}).SetLimit(int64(limit))
	cur, err := s.transactions.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []model.Transaction
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeleteTransactionsAbove(ctx context.Context, h uint32) error {
	_, err := s.transactions.DeleteMany(ctx, bson.M{"height": bson.M{"$gt": h}})
	return err
}

var _ store.TransactionStore = (*Store)(nil)
