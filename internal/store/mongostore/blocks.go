package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dxpool/hns-backend/internal/store"
)

func (s *Store) UpsertBlock(ctx context.Context, b store.BlockRecord) error {
	_, err := s.blocks.ReplaceOne(ctx, bson.M{"height": b.Height}, b, options.Replace().SetUpsert(true))
	return err
}

func (s *Store) GetBlockByHeight(ctx context.Context, height uint32) (*store.BlockRecord, error) {
	var rec store.BlockRecord
	err := s.blocks.FindOne(ctx, bson.M{"height": height}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) MaxBlockHeight(ctx context.Context) (uint32, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "height", Value: -1}})
	var rec store.BlockRecord
	err := s.blocks.FindOne(ctx, bson.M{}, opts).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rec.Height, nil
}

func (s *Store) ListBlocksDesc(ctx context.Context, offset, limit int) (store.Page[store.BlockRecord], error) {
	total, err := s.blocks.CountDocuments(ctx, bson.M{})
	if err != nil {
		return store.Page[store.BlockRecord]{}, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "height", Value: -1}}).SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.blocks.Find(ctx, bson.M{}, opts)
	if err != nil {
		return store.Page[store.BlockRecord]{}, err
	}
	defer cur.Close(ctx)
	var items []store.BlockRecord
	if err := cur.All(ctx, &items); err != nil {
		return store.Page[store.BlockRecord]{}, err
	}
	return store.Page[store.BlockRecord]{Total: total, Offset: offset, Limit: limit, Items: items}, nil
}

func (s *Store) ListBlocksInTimeRange(ctx context.Context, start, end int64) ([]store.BlockRecord, error) {
	filter := bson.M{"time": bson.M{"$gt": start, "$lte": end}}
	cur, err := s.blocks.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []store.BlockRecord
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListBlocksDescLimit(ctx context.Context, limit int) ([]store.BlockRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "height", Value: -1}}).SetLimit(int64(limit))
	cur, err := s.blocks.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []store.BlockRecord
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeleteBlocksAbove(ctx context.Context, h uint32) error {
	_, err := s.blocks.DeleteMany(ctx, bson.M{"height": bson.M{"$gt": h}})
	return err
}

var _ store.BlockStore = (*Store)(nil)
