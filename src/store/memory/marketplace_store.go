package memory

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jumuiya/community-backend/src/models"
	"github.com/jumuiya/community-backend/src/store"
)

func (s *Store) ListListings(_ context.Context, f store.ListingFilter, page store.Page) ([]models.MarketplaceListing, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.MarketplaceListing{}
	for _, l := range s.listings {
		if f.Type != "" && string(l.Type) != f.Type {
			continue
		}
		if f.Search != "" && !matchesSearch(f.Search, l.Title, l.Description) {
			continue
		}
		matched = append(matched, l)
	}

	sortBy(matched, func(l models.MarketplaceListing) time.Time { return l.CreatedAt },
		func(l models.MarketplaceListing) primitive.ObjectID { return l.Id }, true)
	return paginate(matched, page), int64(len(matched)), nil
}

func (s *Store) InsertListing(_ context.Context, listing *models.MarketplaceListing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if listing.Id.IsZero() {
		listing.Id = primitive.NewObjectID()
	}
	listing.CreatedAt = now
	listing.UpdatedAt = now

	s.listings[listing.Id] = *listing
	return nil
}

func (s *Store) FindListing(_ context.Context, id primitive.ObjectID) (*models.MarketplaceListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listing, ok := s.listings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &listing, nil
}

func (s *Store) SaveListing(_ context.Context, listing *models.MarketplaceListing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listings[listing.Id]; !ok {
		return store.ErrNotFound
	}
	listing.UpdatedAt = time.Now()
	s.listings[listing.Id] = *listing
	return nil
}

func (s *Store) DeleteListing(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listings[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.listings, id)
	return nil
}
