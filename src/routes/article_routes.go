package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jumuiya/community-backend/src/controllers"
	"github.com/jumuiya/community-backend/src/lib"
	"github.com/jumuiya/community-backend/src/middleware"
)

// ArticleRoutes sets up article CRUD, likes, and the comment thread routes
func ArticleRoutes(app *fiber.App, ac *controllers.ArticleController, cfg lib.Config) {
	articles := app.Group("/api/articles")

	articles.Get("/", ac.List)
	articles.Post("/", middleware.Protect(cfg), ac.Create)

	// Identify, not Protect: anonymous reads are fine, but an authenticated
	// read also records the per-user view row.
	articles.Get("/:id", middleware.Identify(cfg), ac.Get)
	articles.Patch("/:id", middleware.Protect(cfg), ac.Update)
	articles.Delete("/:id", middleware.Protect(cfg), ac.Delete)
	articles.Post("/:id/like", middleware.Protect(cfg), ac.Like)

	articles.Get("/:id/comments", ac.ListComments)
	articles.Post("/:id/comments", middleware.Protect(cfg), ac.CreateComment)
	articles.Patch("/:id/comments/:commentId", middleware.Protect(cfg), ac.UpdateComment)
	articles.Delete("/:id/comments/:commentId", middleware.Protect(cfg), ac.DeleteComment)
	articles.Post("/:id/comments/:commentId/like", middleware.Protect(cfg), ac.LikeComment)
}
