package lib

import "os"

type Config struct {
	Port             string
	MongoURI         string
	MongoDatabase    string
	JWTSecret        string
	JWTRefreshSecret string
	MediaDir         string
	// StoreBackend selects the storage implementation at startup:
	// "mongo" (default) or "memory".
	StoreBackend string
}

func LoadConfig() Config {
	return Config{
		Port:             getEnv("PORT", "5000"),
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:    getEnv("MONGO_DB", "community"),
		JWTSecret:        getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", "your-refresh-secret-key"),
		MediaDir:         getEnv("MEDIA_DIR", "./media"),
		StoreBackend:     getEnv("STORE_BACKEND", "mongo"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
