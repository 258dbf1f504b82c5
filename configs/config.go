package configs

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath       string
	DemoUsername string
	DemoPassword string
}

// Load reads configuration from a .env file when present, falling back to
// the process environment, then to built-in defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := Config{
		DBPath:       "portal.db",
		DemoUsername: "testuser",
		DemoPassword: "password123",
	}
	if v := os.Getenv("PORTAL_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PORTAL_DEMO_USER"); v != "" {
		cfg.DemoUsername = v
	}
	if v := os.Getenv("PORTAL_DEMO_PASSWORD"); v != "" {
		cfg.DemoPassword = v
	}
	return cfg
}
