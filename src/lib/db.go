package lib

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB opens the Mongo connection and verifies it with a ping.
func ConnectDB(cfg Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	log.Println("Connected to MongoDB")
	return client.Database(cfg.MongoDatabase), nil
}

// EnsureIndexes creates the unique indexes the application relies on. The
// reaction-ledger pair indexes are the only concurrency guard in the system:
// concurrent duplicate toggle inserts must fail at the index, not duplicate.
// Conversations intentionally get no unique pair index.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	indexes := map[string]mongo.IndexModel{
		"users":    {Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		"articles": {Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
		"article_likes": {
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "article", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		"article_views": {
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "article", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		"comment_likes": {
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "comment", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		"prayer_supports": {
			Keys:    bson.D{{Key: "prayer", Value: 1}, {Key: "user", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		"prayer_response_likes": {
			Keys:    bson.D{{Key: "response", Value: 1}, {Key: "user", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		"comments":      {Keys: bson.D{{Key: "article", Value: 1}, {Key: "parent", Value: 1}}},
		"messages":      {Keys: bson.D{{Key: "conversation", Value: 1}, {Key: "created_at", Value: 1}}},
		"conversations": {Keys: bson.D{{Key: "participants", Value: 1}}},
	}

	for collection, model := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateOne(ctx, model); err != nil {
			return err
		}
	}

	log.Println("Database indexes ensured")
	return nil
}
