package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port        int
	DatabaseURL string
	CORSOrigins []string
}

// Load reads configuration from environment variables with sensible
// defaults. DATABASE_URL is optional: when empty the server runs on the
// in-memory certificate store.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "5000"))
	if err != nil {
		port = 5000
	}

	origins := strings.Split(getEnv("CORS_ORIGINS", "http://localhost:4200,http://localhost:3000"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return &Config{
		Port:        port,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CORSOrigins: origins,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
