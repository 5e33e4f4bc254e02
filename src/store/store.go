// Package store defines the storage interfaces the controllers are built
// against. Two implementations exist: mongodb (production) and memory
// (tests and storeless development). The choice is made once at startup;
// nothing in the application reaches for a store singleton.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jumuiya/community-backend/src/models"
)

// ErrNotFound is returned by every Find* method when the id does not resolve.
var ErrNotFound = errors.New("store: not found")

// Page is a 1-based pagination window.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Skip() int {
	return (p.Page - 1) * p.Limit
}

type ArticleFilter struct {
	Status   string
	Category string
	Search   string // case-insensitive substring over title and content
}

type PrayerFilter struct {
	Type   string
	Search string
}

type ListingFilter struct {
	Type   string
	Search string
}

type UserStore interface {
	InsertUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// FindUsersByIDs resolves a batch of user ids; absent ids are simply
	// missing from the result map.
	FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
}

type ArticleStore interface {
	ListArticles(ctx context.Context, filter ArticleFilter, page Page) ([]models.Article, int64, error)
	InsertArticle(ctx context.Context, article *models.Article) error
	FindArticle(ctx context.Context, id primitive.ObjectID) (*models.Article, error)
	SaveArticle(ctx context.Context, article *models.Article) error
	DeleteArticle(ctx context.Context, id primitive.ObjectID) error

	// RecordView upserts the (user, article) dedup row; repeat calls are
	// no-ops. IncrementViews bumps the raw fetch counter on every call.
	RecordView(ctx context.Context, article, user primitive.ObjectID) error
	IncrementViews(ctx context.Context, article primitive.ObjectID) error

	ToggleArticleLike(ctx context.Context, article, user primitive.ObjectID) (liked bool, err error)
	CountArticleLikes(ctx context.Context, article primitive.ObjectID) (int64, error)

	ListComments(ctx context.Context, article primitive.ObjectID, page Page) ([]models.Comment, int64, error)
	ListReplies(ctx context.Context, parent primitive.ObjectID) ([]models.Comment, error)
	CountComments(ctx context.Context, article primitive.ObjectID) (int64, error)
	InsertComment(ctx context.Context, comment *models.Comment) error
	FindComment(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	SaveComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id primitive.ObjectID) error
	ToggleCommentLike(ctx context.Context, comment, user primitive.ObjectID) (liked bool, err error)
	CountCommentLikes(ctx context.Context, comment primitive.ObjectID) (int64, error)

	// Cascade sweeps, invoked by the deletion coordinator after the primary
	// document is gone.
	DeleteCommentsByArticle(ctx context.Context, article primitive.ObjectID) error
	DeleteArticleLikesByArticle(ctx context.Context, article primitive.ObjectID) error
	DeleteArticleViewsByArticle(ctx context.Context, article primitive.ObjectID) error
	DeleteCommentLikesByComment(ctx context.Context, comment primitive.ObjectID) error
}

type PrayerStore interface {
	// ListPrayers only ever returns public prayers, regardless of caller.
	ListPrayers(ctx context.Context, filter PrayerFilter, page Page) ([]models.Prayer, int64, error)
	InsertPrayer(ctx context.Context, prayer *models.Prayer) error
	FindPrayer(ctx context.Context, id primitive.ObjectID) (*models.Prayer, error)
	SavePrayer(ctx context.Context, prayer *models.Prayer) error
	DeletePrayer(ctx context.Context, id primitive.ObjectID) error

	TogglePrayerSupport(ctx context.Context, prayer, user primitive.ObjectID) (supported bool, err error)
	CountSupports(ctx context.Context, prayer primitive.ObjectID) (int64, error)

	ListResponses(ctx context.Context, prayer primitive.ObjectID, page Page) ([]models.PrayerResponse, int64, error)
	CountResponses(ctx context.Context, prayer primitive.ObjectID) (int64, error)
	InsertResponse(ctx context.Context, response *models.PrayerResponse) error
	FindResponse(ctx context.Context, id primitive.ObjectID) (*models.PrayerResponse, error)
	DeleteResponse(ctx context.Context, id primitive.ObjectID) error
	ToggleResponseLike(ctx context.Context, response, user primitive.ObjectID) (liked bool, err error)
	CountResponseLikes(ctx context.Context, response primitive.ObjectID) (int64, error)

	DeleteResponsesByPrayer(ctx context.Context, prayer primitive.ObjectID) error
	DeleteSupportsByPrayer(ctx context.Context, prayer primitive.ObjectID) error
	DeleteResponseLikesByResponse(ctx context.Context, response primitive.ObjectID) error
}

type MarketplaceStore interface {
	ListListings(ctx context.Context, filter ListingFilter, page Page) ([]models.MarketplaceListing, int64, error)
	InsertListing(ctx context.Context, listing *models.MarketplaceListing) error
	FindListing(ctx context.Context, id primitive.ObjectID) (*models.MarketplaceListing, error)
	SaveListing(ctx context.Context, listing *models.MarketplaceListing) error
	DeleteListing(ctx context.Context, id primitive.ObjectID) error
}

type MessagingStore interface {
	// FindConversationByParticipants matches regardless of participant
	// order (set containment, not positional equality).
	FindConversationByParticipants(ctx context.Context, a, b primitive.ObjectID) (*models.Conversation, error)
	InsertConversation(ctx context.Context, conversation *models.Conversation) error
	FindConversation(ctx context.Context, id primitive.ObjectID) (*models.Conversation, error)
	ListConversations(ctx context.Context, user primitive.ObjectID, page Page) ([]models.Conversation, int64, error)
	// TouchConversation bumps updated_at; it is the sole recency-ordering
	// mechanism for conversation lists.
	TouchConversation(ctx context.Context, id primitive.ObjectID, at time.Time) error

	ListMessages(ctx context.Context, conversation primitive.ObjectID, page Page) ([]models.Message, int64, error)
	InsertMessage(ctx context.Context, message *models.Message) error
	FindMessage(ctx context.Context, id primitive.ObjectID) (*models.Message, error)
	DeleteMessage(ctx context.Context, id primitive.ObjectID) error
}

// Store is the full surface a backend must provide.
type Store interface {
	UserStore
	ArticleStore
	PrayerStore
	MarketplaceStore
	MessagingStore
}
