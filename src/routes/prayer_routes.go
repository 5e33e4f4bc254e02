package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jumuiya/community-backend/src/controllers"
	"github.com/jumuiya/community-backend/src/lib"
	"github.com/jumuiya/community-backend/src/middleware"
)

// PrayerRoutes sets up prayer CRUD, supports, and response routes
func PrayerRoutes(app *fiber.App, pc *controllers.PrayerController, cfg lib.Config) {
	prayers := app.Group("/api/prayers")

	prayers.Get("/", pc.List)
	prayers.Post("/", middleware.Protect(cfg), pc.Create)

	prayers.Get("/:id", pc.Get)
	prayers.Patch("/:id", middleware.Protect(cfg), pc.Update)
	prayers.Delete("/:id", middleware.Protect(cfg), pc.Delete)
	prayers.Post("/:id/support", middleware.Protect(cfg), pc.Support)

	prayers.Get("/:id/responses", pc.ListResponses)
	prayers.Post("/:id/responses", middleware.Protect(cfg), pc.CreateResponse)
	prayers.Delete("/:id/responses/:responseId", middleware.Protect(cfg), pc.DeleteResponse)
	prayers.Post("/:id/responses/:responseId/like", middleware.Protect(cfg), pc.LikeResponse)
}
