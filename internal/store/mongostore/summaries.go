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

func (s *Store) IncrementSummary(ctx context.Context, dayTime int64, delta model.Summary) error {
	_, err := s.summaries.UpdateOne(ctx,
		bson.M{"time": dayTime},
		bson.M{
			"$setOnInsert": bson.M{"time": dayTime},
			"$inc": bson.M{
				"blocks":     delta.Blocks,
				"txs":        delta.Txs,
				"totalTxs":   delta.TotalTxs,
				"difficulty": delta.Difficulty,
				"supply":     delta.Supply,
				"burned":     delta.Burned,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *Store) PutSummary(ctx context.Context, sum model.Summary) error {
	_, err := s.summaries.ReplaceOne(ctx, bson.M{"time": sum.Time}, sum, options.Replace().SetUpsert(true))
	return err
}

func (s *Store) GetSummary(ctx context.Context, dayTime int64) (*model.Summary, error) {
	var rec model.Summary
	err := s.summaries.FindOne(ctx, bson.M{"time": dayTime}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) GetLatestSummaryBefore(ctx context.Context, dayTime int64) (*model.Summary, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "time", Value: -1}})
	var rec model.Summary
	err := s.summaries.FindOne(ctx, bson.M{"time": bson.M{"$lt": dayTime}}, opts).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) ListSummariesInRange(ctx context.Context, start, end int64) ([]model.Summary, error) {
	filter := bson.M{"time": bson.M{"$gte": start, "$lte": end}}
	opts := options.Find().SetSort(bson.D{{Key: "time", Value: 1}})
	cur, err := s.summaries.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []model.Summary
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeleteSummariesAfter(ctx context.Context, dayTime int64) error {
	_, err := s.summaries.DeleteMany(ctx, bson.M{"time": bson.M{"$gt": dayTime}})
	return err
}

var _ store.SummaryStore = (*Store)(nil)
