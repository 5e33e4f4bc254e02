package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jumuiya/community-backend/src/models"
	"github.com/jumuiya/community-backend/src/store"
)

func (s *Store) ListListings(ctx context.Context, f store.ListingFilter, page store.Page) ([]models.MarketplaceListing, int64, error) {
	filter := bson.M{}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Search != "" {
		filter["$or"] = []bson.M{
			regexFilter("title", f.Search),
			regexFilter("description", f.Search),
		}
	}

	listings := []models.MarketplaceListing{}
	total, err := findPaged(ctx, s.db.Collection("marketplace_listings"), filter,
		bson.D{{Key: "created_at", Value: -1}}, page, &listings)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (s *Store) InsertListing(ctx context.Context, listing *models.MarketplaceListing) error {
	now := time.Now()
	if listing.Id.IsZero() {
		listing.Id = primitive.NewObjectID()
	}
	listing.CreatedAt = now
	listing.UpdatedAt = now

	_, err := s.db.Collection("marketplace_listings").InsertOne(ctx, listing)
	return err
}

func (s *Store) FindListing(ctx context.Context, id primitive.ObjectID) (*models.MarketplaceListing, error) {
	var listing models.MarketplaceListing
	err := s.db.Collection("marketplace_listings").FindOne(ctx, bson.M{"_id": id}).Decode(&listing)
	if err != nil {
		return nil, translateErr(err)
	}
	return &listing, nil
}

func (s *Store) SaveListing(ctx context.Context, listing *models.MarketplaceListing) error {
	listing.UpdatedAt = time.Now()
	res, err := s.db.Collection("marketplace_listings").ReplaceOne(ctx, bson.M{"_id": listing.Id}, listing)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteListing(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteByID(ctx, "marketplace_listings", id)
}
