package controllers

import (
	"context"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jumuiya/community-backend/src/middleware"
	"github.com/jumuiya/community-backend/src/models"
	"github.com/jumuiya/community-backend/src/store"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// listResponse is the wire shape of every paginated listing: count is the
// total match count, independent of the pagination window.
type listResponse struct {
	Results interface{} `json:"results"`
	Count   int64       `json:"count"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
}

// caller returns the authenticated identity and its ObjectID. ok is false
// for anonymous requests and for tokens carrying a malformed id.
func caller(c *fiber.Ctx) (models.AuthUser, primitive.ObjectID, bool) {
	user, ok := c.Locals(middleware.LocalsUserKey).(models.AuthUser)
	if !ok {
		return models.AuthUser{}, primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return models.AuthUser{}, primitive.NilObjectID, false
	}
	return user, id, true
}

func paramID(c *fiber.Ctx, name string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.Params(name))
}

func parsePage(c *fiber.Ctx) store.Page {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", defaultPageLimit)
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return store.Page{Page: page, Limit: limit}
}

// formFile returns the named upload, or nil when the request carries none
// (JSON bodies included).
func formFile(c *fiber.Ctx, field string) *multipart.FileHeader {
	file, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return file
}

// resolveRefs batch-loads the user projections for a set of author/owner ids.
// Ids that no longer resolve yield a bare ref so responses stay well-formed.
func resolveRefs(ctx context.Context, users store.UserStore, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserRef, error) {
	unique := make(map[primitive.ObjectID]struct{}, len(ids))
	batch := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, seen := unique[id]; !seen {
			unique[id] = struct{}{}
			batch = append(batch, id)
		}
	}

	found, err := users.FindUsersByIDs(ctx, batch)
	if err != nil {
		return nil, err
	}

	refs := make(map[primitive.ObjectID]models.UserRef, len(batch))
	for _, id := range batch {
		if u, ok := found[id]; ok {
			refs[id] = u.Ref()
		} else {
			refs[id] = models.UserRef{Id: id}
		}
	}
	return refs, nil
}

func resolveRef(ctx context.Context, users store.UserStore, id primitive.ObjectID) models.UserRef {
	user, err := users.FindUserByID(ctx, id)
	if err != nil {
		return models.UserRef{Id: id}
	}
	return user.Ref()
}
