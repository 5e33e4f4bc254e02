package memory

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jumuiya/community-backend/src/models"
	"github.com/jumuiya/community-backend/src/store"
)

func (s *Store) ListPrayers(_ context.Context, f store.PrayerFilter, page store.Page) ([]models.Prayer, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.Prayer{}
	for _, p := range s.prayers {
		if !p.IsPublic {
			continue
		}
		if f.Type != "" && string(p.PrayerType) != f.Type {
			continue
		}
		if f.Search != "" && !matchesSearch(f.Search, p.Title, p.Content) {
			continue
		}
		matched = append(matched, p)
	}

	sortBy(matched, func(p models.Prayer) time.Time { return p.CreatedAt },
		func(p models.Prayer) primitive.ObjectID { return p.Id }, true)
	return paginate(matched, page), int64(len(matched)), nil
}

func (s *Store) InsertPrayer(_ context.Context, prayer *models.Prayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if prayer.Id.IsZero() {
		prayer.Id = primitive.NewObjectID()
	}
	prayer.CreatedAt = now
	prayer.UpdatedAt = now

	s.prayers[prayer.Id] = *prayer
	return nil
}

func (s *Store) FindPrayer(_ context.Context, id primitive.ObjectID) (*models.Prayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prayer, ok := s.prayers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &prayer, nil
}

func (s *Store) SavePrayer(_ context.Context, prayer *models.Prayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prayers[prayer.Id]; !ok {
		return store.ErrNotFound
	}
	prayer.UpdatedAt = time.Now()
	s.prayers[prayer.Id] = *prayer
	return nil
}

func (s *Store) DeletePrayer(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prayers[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.prayers, id)
	return nil
}

func (s *Store) TogglePrayerSupport(_ context.Context, prayer, user primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return toggle(s.prayerSupports, pair{a: prayer, b: user}), nil
}

func (s *Store) CountSupports(_ context.Context, prayer primitive.ObjectID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countByA(s.prayerSupports, prayer), nil
}

func (s *Store) ListResponses(_ context.Context, prayer primitive.ObjectID, page store.Page) ([]models.PrayerResponse, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.PrayerResponse{}
	for _, r := range s.responses {
		if r.Prayer == prayer {
			matched = append(matched, r)
		}
	}

	sortBy(matched, func(r models.PrayerResponse) time.Time { return r.CreatedAt },
		func(r models.PrayerResponse) primitive.ObjectID { return r.Id }, true)
	return paginate(matched, page), int64(len(matched)), nil
}

func (s *Store) CountResponses(_ context.Context, prayer primitive.ObjectID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, r := range s.responses {
		if r.Prayer == prayer {
			n++
		}
	}
	return n, nil
}

func (s *Store) InsertResponse(_ context.Context, response *models.PrayerResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if response.Id.IsZero() {
		response.Id = primitive.NewObjectID()
	}
	response.CreatedAt = now
	response.UpdatedAt = now

	s.responses[response.Id] = *response
	return nil
}

func (s *Store) FindResponse(_ context.Context, id primitive.ObjectID) (*models.PrayerResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	response, ok := s.responses[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &response, nil
}

func (s *Store) DeleteResponse(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.responses[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.responses, id)
	return nil
}

func (s *Store) ToggleResponseLike(_ context.Context, response, user primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return toggle(s.responseLikes, pair{a: response, b: user}), nil
}

func (s *Store) CountResponseLikes(_ context.Context, response primitive.ObjectID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countByA(s.responseLikes, response), nil
}

func (s *Store) DeleteResponsesByPrayer(_ context.Context, prayer primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, r := range s.responses {
		if r.Prayer == prayer {
			delete(s.responses, id)
		}
	}
	return nil
}

func (s *Store) DeleteSupportsByPrayer(_ context.Context, prayer primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleteByA(s.prayerSupports, prayer)
	return nil
}

func (s *Store) DeleteResponseLikesByResponse(_ context.Context, response primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleteByA(s.responseLikes, response)
	return nil
}
