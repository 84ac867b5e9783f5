package config

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	AuthModeRole = "role"
	AuthModeKey  = "key"

	DriverFile  = "file"
	DriverMongo = "mongo"
)

type Config struct {
	Port          string
	AuthMode      string
	AdminKey      string
	JWTSecret     string
	StorageDriver string
	DataFile      string
	MongoURI      string
	MongoDB       string
}

// Load reads .env when present, then the environment, with defaults
// suitable for a local run.
func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		Port:          getenv("PORT", "3000"),
		AuthMode:      getenv("AUTH_MODE", AuthModeRole),
		AdminKey:      os.Getenv("ADMIN_KEY"),
		JWTSecret:     getenv("JWT_SECRET", "dev-secret-change-me"),
		StorageDriver: getenv("STORAGE_DRIVER", DriverFile),
		DataFile:      getenv("DATA_FILE", "db.json"),
		MongoURI:      getenv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:       getenv("MONGO_DB", "keijiban"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
