// Package config provides configuration for the application
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// EnvProduction is the APP_ENV value that disables every development fallback
const EnvProduction = "production"

// Config holds all configuration for the application
type Config struct {
	Environment  string
	Database     DatabaseConfig
	Server       ServerConfig
	Logging      LoggingConfig
	CORS         CORSConfig
	Session      SessionConfig
	Password     PasswordConfig
	Guard        GuardConfig
	DevUsersFile string
	WebRoot      string
	APIKey       string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	ConnectTimeout time.Duration
	MaxOpenConns   int
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// SessionConfig holds session token configuration
type SessionConfig struct {
	Secret     string
	Expiry     time.Duration
	CookieName string
}

// PasswordConfig holds password hashing settings
type PasswordConfig struct {
	BcryptCost int
}

// GuardConfig holds the route guard path rules
type GuardConfig struct {
	PublicPaths     []string
	PrescriberPaths []string
	AdminPaths      []string
	SignInPath      string
	DeniedPath      string
}

// Bcrypt cost bounds accepted for BCRYPT_COST
const (
	MinBcryptCost = 10
	MaxBcryptCost = 12
)

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	cfg.Environment = strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV")))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	// Database configuration
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPort, err := intEnv("DB_PORT", 3306)
	if err != nil {
		return nil, err
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	cfg.Database.Password = os.Getenv("DB_PASSWORD")

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	connectTimeout, err := durationEnv("DB_CONNECT_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.Database.ConnectTimeout = connectTimeout

	// The hosting environment only allows a single connection
	maxOpenConns, err := intEnv("DB_MAX_OPEN_CONNS", 1)
	if err != nil {
		return nil, err
	}
	if maxOpenConns < 1 {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS must be at least 1")
	}
	cfg.Database.MaxOpenConns = maxOpenConns

	// Server configuration
	serverPort, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = serverPort

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // default level
	}
	cfg.Logging.Level = logLevel

	// CORS configuration
	cfg.CORS.AllowedOrigins = listEnv("CORS_ALLOWED_ORIGINS", []string{"*"})

	// Session configuration
	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}
	cfg.Session.Secret = sessionSecret

	// Session expiry (default: 30 days)
	sessionExpiry, err := durationEnv("SESSION_EXPIRY", 720*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.Session.Expiry = sessionExpiry

	cfg.Session.CookieName = os.Getenv("SESSION_COOKIE_NAME")
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "session_token"
	}

	bcryptCost, err := intEnv("BCRYPT_COST", MaxBcryptCost)
	if err != nil {
		return nil, err
	}
	if bcryptCost < MinBcryptCost || bcryptCost > MaxBcryptCost {
		return nil, fmt.Errorf("BCRYPT_COST must be between %d and %d", MinBcryptCost, MaxBcryptCost)
	}
	cfg.Password.BcryptCost = bcryptCost

	// Route guard configuration
	cfg.Guard.PublicPaths = listEnv("GUARD_PUBLIC_PATHS", []string{"/", "/auth/signin", "/auth/signup", "/api/search", "/api/autocomplete"})
	cfg.Guard.PrescriberPaths = listEnv("GUARD_PRESCRIBER_PATHS", []string{"/prescriber"})
	cfg.Guard.AdminPaths = listEnv("GUARD_ADMIN_PATHS", []string{"/admin"})
	cfg.Guard.SignInPath = stringEnv("GUARD_SIGNIN_PATH", "/")
	cfg.Guard.DeniedPath = stringEnv("GUARD_DENIED_PATH", "/")

	cfg.DevUsersFile = stringEnv("DEV_USERS_FILE", ".dev-users.json")
	cfg.WebRoot = stringEnv("WEB_ROOT", "web")

	// API Key configuration (optional, protects development routes)
	cfg.APIKey = os.Getenv("API_KEY")

	return cfg, nil
}

// IsProduction reports whether development fallbacks must be disabled
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	if c.Database.Host == "" {
		return ""
	}

	mc := mysql.NewConfig()
	mc.User = c.Database.User
	mc.Passwd = c.Database.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port))
	mc.DBName = c.Database.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Timeout = c.Database.ConnectTimeout
	mc.Params = map[string]string{"charset": "utf8mb4"}

	return mc.FormatDSN()
}

func stringEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

// listEnv parses a comma-separated variable, falling back when nothing usable is set
func listEnv(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}
