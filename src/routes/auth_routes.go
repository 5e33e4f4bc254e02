package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jumuiya/community-backend/src/controllers"
	"github.com/jumuiya/community-backend/src/lib"
	"github.com/jumuiya/community-backend/src/middleware"
)

// AuthRoutes sets up registration, login, token refresh and profile routes
func AuthRoutes(app *fiber.App, ac *controllers.AuthController, cfg lib.Config) {
	auth := app.Group("/api/auth")

	auth.Post("/register", ac.Register)
	auth.Post("/login", ac.Login)
	auth.Post("/refresh", ac.Refresh)
	auth.Post("/logout", middleware.Protect(cfg), ac.Logout)

	auth.Get("/me", middleware.Protect(cfg), ac.Me)
	auth.Patch("/me", middleware.Protect(cfg), ac.UpdateMe)
	auth.Post("/upload-image", middleware.Protect(cfg), ac.UploadImage)

	auth.Get("/:id", ac.GetUser)
}
