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

func coinKeyFilter(txid string, index uint32) bson.M {
	return bson.M{"txid": txid, "index": index}
}

func (s *Store) UpsertCoinIfAbsent(ctx context.Context, c model.Coin) error {
	rec := store.CoinRecord{Coin: c}
	_, err := s.coins.UpdateOne(ctx,
		coinKeyFilter(c.Txid, c.Index),
		bson.M{"$setOnInsert": rec},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *Store) GetCoin(ctx context.Context, txid string, index uint32) (*store.CoinRecord, error) {
	var rec store.CoinRecord
	err := s.coins.FindOne(ctx, coinKeyFilter(txid, index)).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) MarkSpent(ctx context.Context, txid string, index uint32, spentTxid string, spentIndex uint32, spentHeight uint32) error {
	_, err := s.coins.UpdateOne(ctx,
		bson.M{"txid": txid, "index": index, "spent": false},
		bson.M{"$set": bson.M{
			"spent":       true,
			"spentTxid":   spentTxid,
			"spentIndex":  spentIndex,
			"spentHeight": spentHeight,
		}},
	)
	return err
}

func (s *Store) ListCoinsByAddress(ctx context.Context, address string) ([]store.CoinRecord, error) {
	cur, err := s.coins.Find(ctx, bson.M{"address": address})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []store.CoinRecord
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListCoinsByNameHash(ctx context.Context, nameHash string) ([]store.CoinRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "time", Value: -1}})
	cur, err := s.coins.Find(ctx, bson.M{"nameHash": nameHash}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []store.CoinRecord
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListRevealCoinsByNameHash(ctx context.Context, nameHash string) ([]store.CoinRecord, error) {
	filter := bson.M{"nameHash": nameHash, "covenant.type": model.CovenantReveal}
	opts := options.Find().SetSort(bson.D{{Key: "height", Value: 1}, {Key: "txid", Value: 1}, {Key: "index", Value: 1}})
	cur, err := s.coins.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []store.CoinRecord
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListBidsSince(ctx context.Context, sinceTime int64) ([]store.CoinRecord, error) {
	filter := bson.M{"covenant.type": model.CovenantBid, "time": bson.M{"$gte": sinceTime}}
	opts := options.Find().SetSort(bson.D{{Key: "value", Value: -1}})
	cur, err := s.coins.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []store.CoinRecord
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ClearSpentAbove(ctx context.Context, h uint32) error {
	_, err := s.coins.UpdateMany(ctx,
		bson.M{"spentHeight": bson.M{"$gt": h}},
		bson.M{"$set": bson.M{"spent": false}, "$unset": bson.M{"spentTxid": "", "spentIndex": "", "spentHeight": ""}},
	)
	return err
}

func (s *Store) DeleteCoinsAbove(ctx context.Context, h uint32) error {
	_, err := s.coins.DeleteMany(ctx, bson.M{"height": bson.M{"$gt": h}})
	return err
}

var _ store.CoinStore = (*Store)(nil)
