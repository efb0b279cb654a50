package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration from the .env file or environment variables for integration tests
// If .env file doesn't exist or database variables are not set, returns a Config with empty database values
// which allows tests to use fallback DSN values
func LoadTestConfig() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist - it's optional)
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{Environment: "test"}
	cfg.Database.ConnectTimeout = 5 * time.Second
	cfg.Database.MaxOpenConns = 1
	cfg.Password.BcryptCost = MinBcryptCost
	cfg.Session.CookieName = "session_token"

	// Session configuration
	cfg.Session.Secret = os.Getenv("TEST_SESSION_SECRET")
	if cfg.Session.Secret == "" {
		cfg.Session.Secret = "test-session-secret"
	}
	sessionExpiry, err := durationEnv("TEST_SESSION_EXPIRY", time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.Session.Expiry = sessionExpiry

	cfg.APIKey = os.Getenv("TEST_API_KEY")

	// Any missing database variable leaves Host empty so DSN() returns "" and tests use their fallback
	dbHost := os.Getenv("TEST_DB_HOST")
	dbUser := os.Getenv("TEST_DB_USER")
	dbName := os.Getenv("TEST_DB_NAME")
	if dbHost == "" || dbUser == "" || dbName == "" {
		return cfg, nil
	}

	dbPort, err := intEnv("TEST_DB_PORT", 3306)
	if err != nil {
		return nil, err
	}

	cfg.Database.Host = dbHost
	cfg.Database.Port = dbPort
	cfg.Database.User = dbUser
	cfg.Database.Password = os.Getenv("TEST_DB_PASSWORD")
	cfg.Database.DBName = dbName

	return cfg, nil
}
