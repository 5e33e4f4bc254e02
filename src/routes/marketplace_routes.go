package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jumuiya/community-backend/src/controllers"
	"github.com/jumuiya/community-backend/src/lib"
	"github.com/jumuiya/community-backend/src/middleware"
)

// MarketplaceRoutes sets up listing CRUD routes
func MarketplaceRoutes(app *fiber.App, mc *controllers.MarketplaceController, cfg lib.Config) {
	marketplace := app.Group("/api/marketplace")

	marketplace.Get("/", mc.List)
	marketplace.Post("/", middleware.Protect(cfg), mc.Create)
	marketplace.Get("/:id", mc.Get)
	marketplace.Patch("/:id", middleware.Protect(cfg), mc.Update)
	marketplace.Delete("/:id", middleware.Protect(cfg), mc.Delete)
}
