package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
)

type Article struct {
	Id            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title         string             `json:"title" bson:"title"`
	Slug          string             `json:"slug" bson:"slug"`
	Content       string             `json:"content" bson:"content"`
	Excerpt       string             `json:"excerpt" bson:"excerpt"`
	FeaturedImage string             `json:"featured_image,omitempty" bson:"featured_image,omitempty"`
	Author        primitive.ObjectID `json:"author" bson:"author"`
	Category      string             `json:"category" bson:"category"`
	Status        ArticleStatus      `json:"status" bson:"status"`
	ViewCount     int64              `json:"view_count" bson:"view_count"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
	PublishedAt   *time.Time         `json:"published_at,omitempty" bson:"published_at,omitempty"`
}

// ApplyPublishState stamps published_at the first time the article reaches
// published status. It runs in the persistence step so create and update get
// the same set-once behavior.
func (a *Article) ApplyPublishState(now time.Time) {
	if a.Status == ArticleStatusPublished && a.PublishedAt == nil {
		a.PublishedAt = &now
	}
}

type Comment struct {
	Id        primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	Article   primitive.ObjectID  `json:"article" bson:"article"`
	Author    primitive.ObjectID  `json:"author" bson:"author"`
	Content   string              `json:"content" bson:"content"`
	Parent    *primitive.ObjectID `json:"parent" bson:"parent"`
	CreatedAt time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time           `json:"updated_at" bson:"updated_at"`
}

type ArticleLike struct {
	Id        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Article   primitive.ObjectID `json:"article" bson:"article"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

type ArticleView struct {
	Id        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Article   primitive.ObjectID `json:"article" bson:"article"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

type CommentLike struct {
	Id        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Comment   primitive.ObjectID `json:"comment" bson:"comment"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// ArticleDto is an Article with its author populated. The outer Author field
// shadows the embedded ObjectID on the wire.
type ArticleDto struct {
	Article
	Author UserRef `json:"author"`
}

type CommentDto struct {
	Comment
	Author UserRef `json:"author"`
}
