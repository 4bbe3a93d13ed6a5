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

func (s *Store) UpsertNameOpen(ctx context.Context, nameHash, name string, openHeight uint32) error {
	rec := model.Name{NameHash: nameHash, Name: name, Open: openHeight, Value: 0, Highest: 0}
	_, err := s.names.ReplaceOne(ctx, bson.M{"nameHash": nameHash}, rec, options.Replace().SetUpsert(true))
	return err
}

func (s *Store) GetName(ctx context.Context, nameHash string) (*model.Name, error) {
	var rec model.Name
	err := s.names.FindOne(ctx, bson.M{"nameHash": nameHash}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) GetNameByName(ctx context.Context, name string) (*model.Name, error) {
	var rec model.Name
	err := s.names.FindOne(ctx, bson.M{"name": name}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) UpdateNameAuction(ctx context.Context, nameHash string, value, highest uint64) error {
	_, err := s.names.UpdateOne(ctx,
		bson.M{"nameHash": nameHash},
		bson.M{"$set": bson.M{"value": value, "highest": highest}},
	)
	return err
}

func (s *Store) ListNamesByValueDesc(ctx context.Context, offset, limit int) (store.Page[model.Name], error) {
	return s.pagedNames(ctx, bson.M{}, bson.D{{Key: "value", Value: -1}}, offset, limit)
}

func (s *Store) ListNamesByOpenRange(ctx context.Context, minExclusive, maxInclusive uint32, offset, limit int) (store.Page[model.Name], error) {
	filter := bson.M{"open": bson.M{"$gt": minExclusive, "$lte": maxInclusive}}
	return s.pagedNames(ctx, filter, bson.D{{Key: "open", Value: -1}}, offset, limit)
}

func (s *Store) pagedNames(ctx context.Context, filter bson.M, sort bson.D, offset, limit int) (store.Page[model.Name], error) {
	total, err := s.names.CountDocuments(ctx, filter)
	if err != nil {
		return store.Page[model.Name]{}, err
	}
	opts := options.Find().SetSort(sort).SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.names.Find(ctx, filter, opts)
	if err != nil {
		return store.Page[model.Name]{}, err
	}
	defer cur.Close(ctx)
	var items []model.Name
	if err := cur.All(ctx, &items); err != nil {
		return store.Page[model.Name]{}, err
	}
	return store.Page[model.Name]{Total: total, Offset: offset, Limit: limit, Items: items}, nil
}

func (s *Store) ListTopNamesByValue(ctx context.Context, limit int) ([]model.Name, error) {
	opts := options.Find().SetSort(bson.D{{Key: "value", Value: -1}}).SetLimit(int64(limit))
	cur, err := s.names.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []model.Name
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeleteNamesWithOpenAbove(ctx context.Context, h uint32) error {
	_, err := s.names.DeleteMany(ctx, bson.M{"open": bson.M{"$gt": h}})
	return err
}

func (s *Store) ListNamesWithOpenAtMost(ctx context.Context, h uint32) ([]model.Name, error) {
	cur, err := s.names.Find(ctx, bson.M{"open": bson.M{"$lte": h}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []model.Name
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

var _ store.NameStore = (*Store)(nil)
