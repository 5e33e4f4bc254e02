package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jumuiya/community-backend/src/models"
	"github.com/jumuiya/community-backend/src/store"
)

func articleListFilter(f store.ArticleFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Search != "" {
		filter["$or"] = []bson.M{
			regexFilter("title", f.Search),
			regexFilter("content", f.Search),
		}
	}
	return filter
}

func (s *Store) ListArticles(ctx context.Context, f store.ArticleFilter, page store.Page) ([]models.Article, int64, error) {
	articles := []models.Article{}
	total, err := findPaged(ctx, s.db.Collection("articles"), articleListFilter(f),
		bson.D{{Key: "created_at", Value: -1}}, page, &articles)
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

func (s *Store) InsertArticle(ctx context.Context, article *models.Article) error {
	now := time.Now()
	if article.Id.IsZero() {
		article.Id = primitive.NewObjectID()
	}
	article.CreatedAt = now
	article.UpdatedAt = now
	article.ApplyPublishState(now)

	_, err := s.db.Collection("articles").InsertOne(ctx, article)
	return err
}

func (s *Store) FindArticle(ctx context.Context, id primitive.ObjectID) (*models.Article, error) {
	var article models.Article
	err := s.db.Collection("articles").FindOne(ctx, bson.M{"_id": id}).Decode(&article)
	if err != nil {
		return nil, translateErr(err)
	}
	return &article, nil
}

func (s *Store) SaveArticle(ctx context.Context, article *models.Article) error {
	now := time.Now()
	article.UpdatedAt = now
	article.ApplyPublishState(now)

	res, err := s.db.Collection("articles").ReplaceOne(ctx, bson.M{"_id": article.Id}, article)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteArticle(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteByID(ctx, "articles", id)
}

func (s *Store) RecordView(ctx context.Context, article, user primitive.ObjectID) error {
	// Upsert keyed on the pair: the first call inserts the dedup row, repeat
	// calls just re-set the key fields.
	_, err := s.db.Collection("article_views").UpdateOne(ctx,
		bson.M{"user": user, "article": article},
		bson.M{
			"$set":         bson.M{"user": user, "article": article},
			"$setOnInsert": bson.M{"created_at": time.Now()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *Store) IncrementViews(ctx context.Context, article primitive.ObjectID) error {
	// $inc keeps concurrent gets from losing increments. It does not touch
	// updated_at: reads are not edits.
	_, err := s.db.Collection("articles").UpdateOne(ctx,
		bson.M{"_id": article},
		bson.M{"$inc": bson.M{"view_count": 1}},
	)
	return err
}

func (s *Store) ToggleArticleLike(ctx context.Context, article, user primitive.ObjectID) (bool, error) {
	return s.toggle(ctx, "article_likes", bson.M{"user": user, "article": article})
}

func (s *Store) CountArticleLikes(ctx context.Context, article primitive.ObjectID) (int64, error) {
	return s.countPair(ctx, "article_likes", bson.M{"article": article})
}

func (s *Store) ListComments(ctx context.Context, article primitive.ObjectID, page store.Page) ([]models.Comment, int64, error) {
	comments := []models.Comment{}
	filter := bson.M{"article": article, "parent": nil}
	total, err := findPaged(ctx, s.db.Collection("comments"), filter,
		bson.D{{Key: "created_at", Value: -1}}, page, &comments)
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (s *Store) ListReplies(ctx context.Context, parent primitive.ObjectID) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.db.Collection("comments").Find(ctx, bson.M{"parent": parent}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	replies := []models.Comment{}
	if err := cursor.All(ctx, &replies); err != nil {
		return nil, err
	}
	return replies, nil
}

func (s *Store) CountComments(ctx context.Context, article primitive.ObjectID) (int64, error) {
	return s.db.Collection("comments").CountDocuments(ctx, bson.M{"article": article, "parent": nil})
}

func (s *Store) InsertComment(ctx context.Context, comment *models.Comment) error {
	now := time.Now()
	if comment.Id.IsZero() {
		comment.Id = primitive.NewObjectID()
	}
	comment.CreatedAt = now
	comment.UpdatedAt = now

	_, err := s.db.Collection("comments").InsertOne(ctx, comment)
	return err
}

func (s *Store) FindComment(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.Collection("comments").FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		return nil, translateErr(err)
	}
	return &comment, nil
}

func (s *Store) SaveComment(ctx context.Context, comment *models.Comment) error {
	comment.UpdatedAt = time.Now()
	res, err := s.db.Collection("comments").ReplaceOne(ctx, bson.M{"_id": comment.Id}, comment)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteByID(ctx, "comments", id)
}

func (s *Store) ToggleCommentLike(ctx context.Context, comment, user primitive.ObjectID) (bool, error) {
	return s.toggle(ctx, "comment_likes", bson.M{"user": user, "comment": comment})
}

func (s *Store) CountCommentLikes(ctx context.Context, comment primitive.ObjectID) (int64, error) {
	return s.countPair(ctx, "comment_likes", bson.M{"comment": comment})
}

func (s *Store) DeleteCommentsByArticle(ctx context.Context, article primitive.ObjectID) error {
	return s.deleteMany(ctx, "comments", bson.M{"article": article})
}

func (s *Store) DeleteArticleLikesByArticle(ctx context.Context, article primitive.ObjectID) error {
	return s.deleteMany(ctx, "article_likes", bson.M{"article": article})
}

func (s *Store) DeleteArticleViewsByArticle(ctx context.Context, article primitive.ObjectID) error {
	return s.deleteMany(ctx, "article_views", bson.M{"article": article})
}

func (s *Store) DeleteCommentLikesByComment(ctx context.Context, comment primitive.ObjectID) error {
	return s.deleteMany(ctx, "comment_likes", bson.M{"comment": comment})
}
