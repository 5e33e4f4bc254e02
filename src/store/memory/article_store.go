package memory

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jumuiya/community-backend/src/models"
	"github.com/jumuiya/community-backend/src/store"
)

func (s *Store) ListArticles(_ context.Context, f store.ArticleFilter, page store.Page) ([]models.Article, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.Article{}
	for _, a := range s.articles {
		if f.Status != "" && string(a.Status) != f.Status {
			continue
		}
		if f.Category != "" && a.Category != f.Category {
			continue
		}
		if f.Search != "" && !matchesSearch(f.Search, a.Title, a.Content) {
			continue
		}
		matched = append(matched, a)
	}

	sortBy(matched, func(a models.Article) time.Time { return a.CreatedAt },
		func(a models.Article) primitive.ObjectID { return a.Id }, true)
	return paginate(matched, page), int64(len(matched)), nil
}

func (s *Store) InsertArticle(_ context.Context, article *models.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if article.Id.IsZero() {
		article.Id = primitive.NewObjectID()
	}
	article.CreatedAt = now
	article.UpdatedAt = now
	article.ApplyPublishState(now)

	s.articles[article.Id] = *article
	return nil
}

func (s *Store) FindArticle(_ context.Context, id primitive.ObjectID) (*models.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	article, ok := s.articles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &article, nil
}

func (s *Store) SaveArticle(_ context.Context, article *models.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.articles[article.Id]
	if !ok {
		return store.ErrNotFound
	}
	now := time.Now()
	article.UpdatedAt = now
	article.ApplyPublishState(now)
	// view_count is owned by IncrementViews; a stale in-flight entity must
	// not roll it back.
	article.ViewCount = current.ViewCount

	s.articles[article.Id] = *article
	return nil
}

func (s *Store) DeleteArticle(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.articles, id)
	return nil
}

func (s *Store) RecordView(_ context.Context, article, user primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pair{a: user, b: article}
	if _, ok := s.articleViews[key]; !ok {
		s.articleViews[key] = time.Now()
	}
	return nil
}

func (s *Store) IncrementViews(_ context.Context, article primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.articles[article]; ok {
		a.ViewCount++
		s.articles[article] = a
	}
	return nil
}

func (s *Store) ToggleArticleLike(_ context.Context, article, user primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return toggle(s.articleLikes, pair{a: user, b: article}), nil
}

func (s *Store) CountArticleLikes(_ context.Context, article primitive.ObjectID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countByB(s.articleLikes, article), nil
}

func (s *Store) ListComments(_ context.Context, article primitive.ObjectID, page store.Page) ([]models.Comment, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.Comment{}
	for _, c := range s.comments {
		if c.Article == article && c.Parent == nil {
			matched = append(matched, c)
		}
	}

	sortBy(matched, func(c models.Comment) time.Time { return c.CreatedAt },
		func(c models.Comment) primitive.ObjectID { return c.Id }, true)
	return paginate(matched, page), int64(len(matched)), nil
}

func (s *Store) ListReplies(_ context.Context, parent primitive.ObjectID) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	replies := []models.Comment{}
	for _, c := range s.comments {
		if c.Parent != nil && *c.Parent == parent {
			replies = append(replies, c)
		}
	}

	sortBy(replies, func(c models.Comment) time.Time { return c.CreatedAt },
		func(c models.Comment) primitive.ObjectID { return c.Id }, false)
	return replies, nil
}

func (s *Store) CountComments(_ context.Context, article primitive.ObjectID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, c := range s.comments {
		if c.Article == article && c.Parent == nil {
			n++
		}
	}
	return n, nil
}

func (s *Store) InsertComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if comment.Id.IsZero() {
		comment.Id = primitive.NewObjectID()
	}
	comment.CreatedAt = now
	comment.UpdatedAt = now

	s.comments[comment.Id] = *comment
	return nil
}

func (s *Store) FindComment(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &comment, nil
}

func (s *Store) SaveComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[comment.Id]; !ok {
		return store.ErrNotFound
	}
	comment.UpdatedAt = time.Now()
	s.comments[comment.Id] = *comment
	return nil
}

func (s *Store) DeleteComment(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s *Store) ToggleCommentLike(_ context.Context, comment, user primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return toggle(s.commentLikes, pair{a: user, b: comment}), nil
}

func (s *Store) CountCommentLikes(_ context.Context, comment primitive.ObjectID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countByB(s.commentLikes, comment), nil
}

func (s *Store) DeleteCommentsByArticle(_ context.Context, article primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range s.comments {
		if c.Article == article {
			delete(s.comments, id)
		}
	}
	return nil
}

func (s *Store) DeleteArticleLikesByArticle(_ context.Context, article primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleteByB(s.articleLikes, article)
	return nil
}

func (s *Store) DeleteArticleViewsByArticle(_ context.Context, article primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleteByB(s.articleViews, article)
	return nil
}

func (s *Store) DeleteCommentLikesByComment(_ context.Context, comment primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleteByB(s.commentLikes, comment)
	return nil
}

// CountArticleViews reports the number of distinct-viewer dedup rows. Only
// the memory store exposes it; tests use it to check the dedup invariant.
func (s *Store) CountArticleViews(article primitive.ObjectID) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countByB(s.articleViews, article)
}
