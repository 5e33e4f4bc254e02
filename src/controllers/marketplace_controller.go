package controllers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jumuiya/community-backend/src/lib"
	"github.com/jumuiya/community-backend/src/models"
	"github.com/jumuiya/community-backend/src/storage"
	"github.com/jumuiya/community-backend/src/store"
)

type MarketplaceController struct {
	store store.MarketplaceStore
	users store.UserStore
	media storage.MediaStore
}

func NewMarketplaceController(s store.MarketplaceStore, users store.UserStore, media storage.MediaStore) *MarketplaceController {
	return &MarketplaceController{store: s, users: users, media: media}
}

type listingEnvelope struct {
	Message string `json:"message"`
	models.ListingDto
}

// parseListingDate accepts RFC 3339 timestamps and plain dates.
func parseListingDate(raw string) (*time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, true
		}
	}
	return nil, false
}

func (mc *MarketplaceController) List(c *fiber.Ctx) error {
	page := parsePage(c)
	filter := store.ListingFilter{
		Type:   c.Query("type"),
		Search: c.Query("search"),
	}

	listings, total, err := mc.store.ListListings(c.Context(), filter, page)
	if err != nil {
		log.Printf("List listings error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to list listings"))
	}

	ownerIDs := make([]primitive.ObjectID, 0, len(listings))
	for _, l := range listings {
		ownerIDs = append(ownerIDs, l.Owner)
	}
	refs, err := resolveRefs(c.Context(), mc.users, ownerIDs)
	if err != nil {
		log.Printf("List listings error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to list listings"))
	}

	results := make([]models.ListingDto, 0, len(listings))
	for _, l := range listings {
		results = append(results, models.ListingDto{MarketplaceListing: l, Owner: refs[l.Owner]})
	}

	return c.JSON(listResponse{Results: results, Count: total, Page: page.Page, Limit: page.Limit})
}

func (mc *MarketplaceController) Create(c *fiber.Ctx) error {
	_, ownerID, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	var req struct {
		Title       string `json:"title" form:"title"`
		Description string `json:"description" form:"description"`
		Price       string `json:"price" form:"price"`
		Currency    string `json:"currency" form:"currency"`
		Type        string `json:"type" form:"type"`
		Contact     string `json:"contact" form:"contact"`
		CountryCode string `json:"countryCode" form:"countryCode"`
		Date        string `json:"date" form:"date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid request body"))
	}
	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Title required"))
	}

	if req.Currency == "" {
		req.Currency = "KSH"
	}
	if req.Type == "" {
		req.Type = string(models.ListingTypeProduct)
	}

	listing := models.MarketplaceListing{
		Owner:       ownerID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Currency:    req.Currency,
		Type:        models.ListingType(req.Type),
		Contact:     req.Contact,
		CountryCode: req.CountryCode,
	}
	if req.Date != "" {
		date, ok := parseListingDate(req.Date)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid date"))
		}
		listing.Date = date
	}

	if file := formFile(c, "image"); file != nil {
		path, err := mc.media.Save(storage.KindMarketplace, file)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse(err.Error()))
		}
		listing.Image = path
	}

	if err := mc.store.InsertListing(c.Context(), &listing); err != nil {
		log.Printf("Create listing error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to create listing"))
	}

	return c.Status(fiber.StatusCreated).JSON(listingEnvelope{
		Message:    "Listing created",
		ListingDto: models.ListingDto{MarketplaceListing: listing, Owner: resolveRef(c.Context(), mc.users, ownerID)},
	})
}

func (mc *MarketplaceController) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid listing ID"))
	}

	listing, err := mc.store.FindListing(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Listing not found"))
	}

	return c.JSON(models.ListingDto{
		MarketplaceListing: *listing,
		Owner:              resolveRef(c.Context(), mc.users, listing.Owner),
	})
}

func (mc *MarketplaceController) Update(c *fiber.Ctx) error {
	user, _, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid listing ID"))
	}

	listing, err := mc.store.FindListing(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Listing not found"))
	}
	if listing.Owner.Hex() != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(lib.ErrorResponse("Not authorized"))
	}

	var req struct {
		Title       *string `json:"title" form:"title"`
		Description *string `json:"description" form:"description"`
		Price       *string `json:"price" form:"price"`
		Currency    *string `json:"currency" form:"currency"`
		Type        *string `json:"type" form:"type"`
		Contact     *string `json:"contact" form:"contact"`
		CountryCode *string `json:"countryCode" form:"countryCode"`
		Date        *string `json:"date" form:"date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid request body"))
	}

	if req.Title != nil && *req.Title != "" {
		listing.Title = *req.Title
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.Price != nil {
		listing.Price = *req.Price
	}
	if req.Currency != nil && *req.Currency != "" {
		listing.Currency = *req.Currency
	}
	if req.Type != nil && *req.Type != "" {
		listing.Type = models.ListingType(*req.Type)
	}
	if req.Contact != nil {
		listing.Contact = *req.Contact
	}
	if req.CountryCode != nil {
		listing.CountryCode = *req.CountryCode
	}
	if req.Date != nil && *req.Date != "" {
		date, ok := parseListingDate(*req.Date)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid date"))
		}
		listing.Date = date
	}

	if file := formFile(c, "image"); file != nil {
		path, err := mc.media.Save(storage.KindMarketplace, file)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse(err.Error()))
		}
		listing.Image = path
	}

	if err := mc.store.SaveListing(c.Context(), listing); err != nil {
		log.Printf("Update listing error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to update listing"))
	}

	return c.JSON(listingEnvelope{
		Message:    "Listing updated",
		ListingDto: models.ListingDto{MarketplaceListing: *listing, Owner: resolveRef(c.Context(), mc.users, listing.Owner)},
	})
}

func (mc *MarketplaceController) Delete(c *fiber.Ctx) error {
	user, _, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid listing ID"))
	}

	listing, err := mc.store.FindListing(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Listing not found"))
	}
	if listing.Owner.Hex() != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(lib.ErrorResponse("Not authorized"))
	}

	if err := mc.store.DeleteListing(c.Context(), id); err != nil {
		log.Printf("Delete listing error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to delete listing"))
	}

	return c.JSON(lib.MessageResponse("Listing deleted"))
}
