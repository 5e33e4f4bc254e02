package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jumuiya/community-backend/src/controllers"
	"github.com/jumuiya/community-backend/src/lib"
	"github.com/jumuiya/community-backend/src/middleware"
)

// MessagingRoutes sets up conversation and message routes; every endpoint
// requires authentication
func MessagingRoutes(app *fiber.App, mc *controllers.MessagingController, cfg lib.Config) {
	messaging := app.Group("/api/messaging", middleware.Protect(cfg))

	messaging.Get("/conversations", mc.GetConversations)
	messaging.Post("/conversations", mc.CreateConversation)

	messaging.Get("/messages", mc.GetMessages)
	messaging.Post("/messages", mc.SendMessage)
	messaging.Delete("/messages/:id", mc.DeleteMessage)
}
