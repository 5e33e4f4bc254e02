// Package mongodb is the production store implementation. Correctness under
// concurrent toggles depends on the unique pair indexes created by
// lib.EnsureIndexes; a duplicate-key error on a ledger insert means another
// request won the race and the row is already present.
package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jumuiya/community-backend/src/store"
)

type Store struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

var _ store.Store = (*Store)(nil)

func translateErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

// regexFilter builds the case-insensitive substring match used by search.
func regexFilter(field, search string) bson.M {
	return bson.M{field: bson.M{"$regex": search, "$options": "i"}}
}

func findPaged(ctx context.Context, col *mongo.Collection, filter bson.M, sort bson.D, page store.Page, out interface{}) (int64, error) {
	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, err
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64(page.Skip())).
		SetLimit(int64(page.Limit))
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return 0, err
	}
	return total, nil
}

// toggle implements the reaction-ledger contract: look up the unique pair
// row, delete it when present, insert it when absent. Two concurrent inserts
// can both observe "absent"; the loser's duplicate-key error is read as
// "already present", not as a failure.
func (s *Store) toggle(ctx context.Context, collection string, pair bson.M) (bool, error) {
	col := s.db.Collection(collection)

	err := col.FindOne(ctx, pair).Err()
	if err == nil {
		if _, err := col.DeleteOne(ctx, pair); err != nil {
			return false, err
		}
		return false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return false, err
	}

	doc := bson.M{"created_at": time.Now()}
	for k, v := range pair {
		doc[k] = v
	}
	if _, err := col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) countPair(ctx context.Context, collection string, filter bson.M) (int64, error) {
	return s.db.Collection(collection).CountDocuments(ctx, filter)
}

func (s *Store) deleteMany(ctx context.Context, collection string, filter bson.M) error {
	_, err := s.db.Collection(collection).DeleteMany(ctx, filter)
	return err
}

func (s *Store) deleteByID(ctx context.Context, collection string, id primitive.ObjectID) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
