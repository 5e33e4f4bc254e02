package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/jumuiya/community-backend/src/controllers"
	"github.com/jumuiya/community-backend/src/lib"
	"github.com/jumuiya/community-backend/src/routes"
	"github.com/jumuiya/community-backend/src/storage"
	"github.com/jumuiya/community-backend/src/store"
	"github.com/jumuiya/community-backend/src/store/memory"
	"github.com/jumuiya/community-backend/src/store/mongodb"
)

func openStore(cfg lib.Config) (store.Store, error) {
	if cfg.StoreBackend == "memory" {
		log.Println("Using in-memory store")
		return memory.New(), nil
	}

	db, err := lib.ConnectDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := lib.EnsureIndexes(context.Background(), db); err != nil {
		return nil, err
	}
	return mongodb.New(db), nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}
	cfg := lib.LoadConfig()

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Store init failed: %v", err)
	}

	media, err := storage.NewLocalStore(cfg.MediaDir)
	if err != nil {
		log.Fatalf("Media store init failed: %v", err)
	}

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	app.Static("/media", cfg.MediaDir)

	routes.AuthRoutes(app, controllers.NewAuthController(st, media, cfg), cfg)
	routes.ArticleRoutes(app, controllers.NewArticleController(st, st, media), cfg)
	routes.PrayerRoutes(app, controllers.NewPrayerController(st, st), cfg)
	routes.MarketplaceRoutes(app, controllers.NewMarketplaceController(st, st, media), cfg)
	routes.MessagingRoutes(app, controllers.NewMessagingController(st, st, media), cfg)

	log.Println("Server is running on http://localhost:" + cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
