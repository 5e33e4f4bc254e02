package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jumuiya/community-backend/src/models"
	"github.com/jumuiya/community-backend/src/store"
)

func (s *Store) ListPrayers(ctx context.Context, f store.PrayerFilter, page store.Page) ([]models.Prayer, int64, error) {
	filter := bson.M{"is_public": true}
	if f.Type != "" {
		filter["prayer_type"] = f.Type
	}
	if f.Search != "" {
		filter["$or"] = []bson.M{
			regexFilter("title", f.Search),
			regexFilter("content", f.Search),
		}
	}

	prayers := []models.Prayer{}
	total, err := findPaged(ctx, s.db.Collection("prayers"), filter,
		bson.D{{Key: "created_at", Value: -1}}, page, &prayers)
	if err != nil {
		return nil, 0, err
	}
	return prayers, total, nil
}

func (s *Store) InsertPrayer(ctx context.Context, prayer *models.Prayer) error {
	now := time.Now()
	if prayer.Id.IsZero() {
		prayer.Id = primitive.NewObjectID()
	}
	prayer.CreatedAt = now
	prayer.UpdatedAt = now

	_, err := s.db.Collection("prayers").InsertOne(ctx, prayer)
	return err
}

func (s *Store) FindPrayer(ctx context.Context, id primitive.ObjectID) (*models.Prayer, error) {
	var prayer models.Prayer
	err := s.db.Collection("prayers").FindOne(ctx, bson.M{"_id": id}).Decode(&prayer)
	if err != nil {
		return nil, translateErr(err)
	}
	return &prayer, nil
}

func (s *Store) SavePrayer(ctx context.Context, prayer *models.Prayer) error {
	prayer.UpdatedAt = time.Now()
	res, err := s.db.Collection("prayers").ReplaceOne(ctx, bson.M{"_id": prayer.Id}, prayer)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeletePrayer(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteByID(ctx, "prayers", id)
}

func (s *Store) TogglePrayerSupport(ctx context.Context, prayer, user primitive.ObjectID) (bool, error) {
	return s.toggle(ctx, "prayer_supports", bson.M{"prayer": prayer, "user": user})
}

func (s *Store) CountSupports(ctx context.Context, prayer primitive.ObjectID) (int64, error) {
	return s.countPair(ctx, "prayer_supports", bson.M{"prayer": prayer})
}

func (s *Store) ListResponses(ctx context.Context, prayer primitive.ObjectID, page store.Page) ([]models.PrayerResponse, int64, error) {
	responses := []models.PrayerResponse{}
	total, err := findPaged(ctx, s.db.Collection("prayer_responses"), bson.M{"prayer": prayer},
		bson.D{{Key: "created_at", Value: -1}}, page, &responses)
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

func (s *Store) CountResponses(ctx context.Context, prayer primitive.ObjectID) (int64, error) {
	return s.db.Collection("prayer_responses").CountDocuments(ctx, bson.M{"prayer": prayer})
}

func (s *Store) InsertResponse(ctx context.Context, response *models.PrayerResponse) error {
	now := time.Now()
	if response.Id.IsZero() {
		response.Id = primitive.NewObjectID()
	}
	response.CreatedAt = now
	response.UpdatedAt = now

	_, err := s.db.Collection("prayer_responses").InsertOne(ctx, response)
	return err
}

func (s *Store) FindResponse(ctx context.Context, id primitive.ObjectID) (*models.PrayerResponse, error) {
	var response models.PrayerResponse
	err := s.db.Collection("prayer_responses").FindOne(ctx, bson.M{"_id": id}).Decode(&response)
	if err != nil {
		return nil, translateErr(err)
	}
	return &response, nil
}

func (s *Store) DeleteResponse(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteByID(ctx, "prayer_responses", id)
}

func (s *Store) ToggleResponseLike(ctx context.Context, response, user primitive.ObjectID) (bool, error) {
	return s.toggle(ctx, "prayer_response_likes", bson.M{"response": response, "user": user})
}

func (s *Store) CountResponseLikes(ctx context.Context, response primitive.ObjectID) (int64, error) {
	return s.countPair(ctx, "prayer_response_likes", bson.M{"response": response})
}

func (s *Store) DeleteResponsesByPrayer(ctx context.Context, prayer primitive.ObjectID) error {
	return s.deleteMany(ctx, "prayer_responses", bson.M{"prayer": prayer})
}

func (s *Store) DeleteSupportsByPrayer(ctx context.Context, prayer primitive.ObjectID) error {
	return s.deleteMany(ctx, "prayer_supports", bson.M{"prayer": prayer})
}

func (s *Store) DeleteResponseLikesByResponse(ctx context.Context, response primitive.ObjectID) error {
	return s.deleteMany(ctx, "prayer_response_likes", bson.M{"response": response})
}
