package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jumuiya/community-backend/src/lib"
	"github.com/jumuiya/community-backend/src/models"
	"github.com/jumuiya/community-backend/src/store"
)

type PrayerController struct {
	store  store.PrayerStore
	users  store.UserStore
	policy *bluemonday.Policy
}

func NewPrayerController(s store.PrayerStore, users store.UserStore) *PrayerController {
	return &PrayerController{
		store:  s,
		users:  users,
		policy: bluemonday.UGCPolicy(),
	}
}

type prayerEnvelope struct {
	Message string `json:"message"`
	models.PrayerDto
}

type responseEnvelope struct {
	Message string `json:"message"`
	models.PrayerResponseDto
}

// List returns public prayers only, newest first. prayer_type and search
// narrow the result; private prayers never appear here, author included.
func (pc *PrayerController) List(c *fiber.Ctx) error {
	page := parsePage(c)
	filter := store.PrayerFilter{
		Type:   c.Query("prayer_type"),
		Search: c.Query("search"),
	}

	prayers, total, err := pc.store.ListPrayers(c.Context(), filter, page)
	if err != nil {
		log.Printf("List prayers error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to list prayers"))
	}

	authorIDs := make([]primitive.ObjectID, 0, len(prayers))
	for _, p := range prayers {
		authorIDs = append(authorIDs, p.Author)
	}
	refs, err := resolveRefs(c.Context(), pc.users, authorIDs)
	if err != nil {
		log.Printf("List prayers error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to list prayers"))
	}

	results := make([]models.PrayerDto, 0, len(prayers))
	for _, p := range prayers {
		results = append(results, models.PrayerDto{Prayer: p, Author: refs[p.Author]})
	}

	return c.JSON(listResponse{Results: results, Count: total, Page: page.Page, Limit: page.Limit})
}

func (pc *PrayerController) Create(c *fiber.Ctx) error {
	_, authorID, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	var req struct {
		Title       string `json:"title" form:"title"`
		Content     string `json:"content" form:"content"`
		PrayerType  string `json:"prayer_type" form:"prayer_type"`
		IsAnonymous bool   `json:"is_anonymous" form:"is_anonymous"`
		IsPublic    *bool  `json:"is_public" form:"is_public"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid request body"))
	}
	if req.Title == "" || req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Title and content required"))
	}

	if req.PrayerType == "" {
		req.PrayerType = string(models.PrayerTypeRequest)
	}

	prayer := models.Prayer{
		Title:       req.Title,
		Content:     pc.policy.Sanitize(req.Content),
		PrayerType:  models.PrayerType(req.PrayerType),
		IsAnonymous: req.IsAnonymous,
		// Public unless the caller explicitly opts out.
		IsPublic: req.IsPublic == nil || *req.IsPublic,
		Author:   authorID,
	}

	if err := pc.store.InsertPrayer(c.Context(), &prayer); err != nil {
		log.Printf("Create prayer error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to create prayer"))
	}

	return c.Status(fiber.StatusCreated).JSON(prayerEnvelope{
		Message:   "Prayer created",
		PrayerDto: models.PrayerDto{Prayer: prayer, Author: resolveRef(c.Context(), pc.users, authorID)},
	})
}

// Get returns one prayer with its support and response counts computed at
// response time.
func (pc *PrayerController) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid prayer ID"))
	}

	prayer, err := pc.store.FindPrayer(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Prayer not found"))
	}

	supporters, err := pc.store.CountSupports(c.Context(), id)
	if err != nil {
		log.Printf("Get prayer error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to get prayer"))
	}
	responses, err := pc.store.CountResponses(c.Context(), id)
	if err != nil {
		log.Printf("Get prayer error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to get prayer"))
	}

	return c.JSON(struct {
		models.PrayerDto
		SupportersCount int64 `json:"supporters_count"`
		ResponsesCount  int64 `json:"responses_count"`
	}{
		PrayerDto:       models.PrayerDto{Prayer: *prayer, Author: resolveRef(c.Context(), pc.users, prayer.Author)},
		SupportersCount: supporters,
		ResponsesCount:  responses,
	})
}

func (pc *PrayerController) Update(c *fiber.Ctx) error {
	user, _, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid prayer ID"))
	}

	prayer, err := pc.store.FindPrayer(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Prayer not found"))
	}
	if prayer.Author.Hex() != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(lib.ErrorResponse("Not authorized"))
	}

	var req struct {
		Title       *string `json:"title" form:"title"`
		Content     *string `json:"content" form:"content"`
		PrayerType  *string `json:"prayer_type" form:"prayer_type"`
		IsAnonymous *bool   `json:"is_anonymous" form:"is_anonymous"`
		IsPublic    *bool   `json:"is_public" form:"is_public"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid request body"))
	}

	if req.Title != nil && *req.Title != "" {
		prayer.Title = *req.Title
	}
	if req.Content != nil && *req.Content != "" {
		prayer.Content = pc.policy.Sanitize(*req.Content)
	}
	if req.PrayerType != nil && *req.PrayerType != "" {
		prayer.PrayerType = models.PrayerType(*req.PrayerType)
	}
	if req.IsAnonymous != nil {
		prayer.IsAnonymous = *req.IsAnonymous
	}
	if req.IsPublic != nil {
		prayer.IsPublic = *req.IsPublic
	}

	if err := pc.store.SavePrayer(c.Context(), prayer); err != nil {
		log.Printf("Update prayer error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to update prayer"))
	}

	return c.JSON(prayerEnvelope{
		Message:   "Prayer updated",
		PrayerDto: models.PrayerDto{Prayer: *prayer, Author: resolveRef(c.Context(), pc.users, prayer.Author)},
	})
}

// Delete removes the prayer, then sweeps its responses and supports. Like
// rows on the swept responses are not touched.
func (pc *PrayerController) Delete(c *fiber.Ctx) error {
	user, _, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid prayer ID"))
	}

	prayer, err := pc.store.FindPrayer(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Prayer not found"))
	}
	if prayer.Author.Hex() != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(lib.ErrorResponse("Not authorized"))
	}

	if err := pc.store.DeletePrayer(c.Context(), id); err != nil {
		log.Printf("Delete prayer error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to delete prayer"))
	}
	for _, sweep := range []func() error{
		func() error { return pc.store.DeleteResponsesByPrayer(c.Context(), id) },
		func() error { return pc.store.DeleteSupportsByPrayer(c.Context(), id) },
	} {
		if err := sweep(); err != nil {
			log.Printf("Delete prayer cascade error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to delete prayer"))
		}
	}

	return c.JSON(lib.MessageResponse("Prayer deleted"))
}

func (pc *PrayerController) Support(c *fiber.Ctx) error {
	_, userID, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid prayer ID"))
	}
	if _, err := pc.store.FindPrayer(c.Context(), id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Prayer not found"))
	}

	supported, err := pc.store.TogglePrayerSupport(c.Context(), id, userID)
	if err != nil {
		log.Printf("Support prayer error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to support prayer"))
	}

	message := "Support removed"
	if supported {
		message = "Support added"
	}
	return c.JSON(fiber.Map{"message": message, "supported": supported})
}

func (pc *PrayerController) ListResponses(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid prayer ID"))
	}
	page := parsePage(c)

	responses, total, err := pc.store.ListResponses(c.Context(), id, page)
	if err != nil {
		log.Printf("Get prayer responses error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to get responses"))
	}

	authorIDs := make([]primitive.ObjectID, 0, len(responses))
	for _, r := range responses {
		authorIDs = append(authorIDs, r.Author)
	}
	refs, err := resolveRefs(c.Context(), pc.users, authorIDs)
	if err != nil {
		log.Printf("Get prayer responses error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to get responses"))
	}

	results := make([]models.PrayerResponseDto, 0, len(responses))
	for _, r := range responses {
		results = append(results, models.PrayerResponseDto{PrayerResponse: r, Author: refs[r.Author]})
	}

	return c.JSON(listResponse{Results: results, Count: total, Page: page.Page, Limit: page.Limit})
}

func (pc *PrayerController) CreateResponse(c *fiber.Ctx) error {
	_, authorID, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid prayer ID"))
	}

	var req struct {
		Content string `json:"content" form:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid request body"))
	}
	if req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Content required"))
	}

	if _, err := pc.store.FindPrayer(c.Context(), id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Prayer not found"))
	}

	response := models.PrayerResponse{
		Prayer:  id,
		Author:  authorID,
		Content: pc.policy.Sanitize(req.Content),
	}

	if err := pc.store.InsertResponse(c.Context(), &response); err != nil {
		log.Printf("Create prayer response error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to create response"))
	}

	return c.Status(fiber.StatusCreated).JSON(responseEnvelope{
		Message:           "Response created",
		PrayerResponseDto: models.PrayerResponseDto{PrayerResponse: response, Author: resolveRef(c.Context(), pc.users, authorID)},
	})
}

// DeleteResponse removes the response together with its like ledger.
func (pc *PrayerController) DeleteResponse(c *fiber.Ctx) error {
	user, _, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	responseID, err := paramID(c, "responseId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid response ID"))
	}

	response, err := pc.store.FindResponse(c.Context(), responseID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Response not found"))
	}
	if response.Author.Hex() != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(lib.ErrorResponse("Not authorized"))
	}

	if err := pc.store.DeleteResponse(c.Context(), responseID); err != nil {
		log.Printf("Delete prayer response error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to delete response"))
	}
	if err := pc.store.DeleteResponseLikesByResponse(c.Context(), responseID); err != nil {
		log.Printf("Delete prayer response cascade error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to delete response"))
	}

	return c.JSON(lib.MessageResponse("Response deleted"))
}

func (pc *PrayerController) LikeResponse(c *fiber.Ctx) error {
	_, userID, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	responseID, err := paramID(c, "responseId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid response ID"))
	}
	if _, err := pc.store.FindResponse(c.Context(), responseID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Response not found"))
	}

	liked, err := pc.store.ToggleResponseLike(c.Context(), responseID, userID)
	if err != nil {
		log.Printf("Like prayer response error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to like response"))
	}

	message := "Like removed"
	if liked {
		message = "Like added"
	}
	return c.JSON(fiber.Map{"message": message, "liked": liked})
}
