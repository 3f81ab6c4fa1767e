// internal/config/config.go
//
// Server configuration from environment variables (a .env file is loaded
// into the environment by main before Load runs).
//
//	PORT              listen port (5175)
//	STORE             "sqlite" or "memory" (sqlite)
//	DB_PATH           SQLite file (./data/bunny.db)
//	JWT_SECRET        HS256 signing key; required when APP_ENV=production
//	JWT_EXPIRES_DAYS  token lifetime in days (14)
//	COOKIE_NAME       auth cookie name (bunny_token)
//	CLIENT_ORIGIN     CORS origin allowed with credentials (http://localhost:5173)
//	APP_ENV           "production" turns on Secure/SameSite=None cookies
//	DAILY_SALT        HMAC key for daily challenge seeds (local_dev_salt)
//	DIFFICULTY_FILE   optional YAML overriding the difficulty tiers
//	LOG_LEVEL         zerolog level (info)
//	REQUEST_TIMEOUT   per-request deadline (10s)

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const devSecret = "dev_secret_change_me"

type StoreKind string

const (
	StoreSQLite StoreKind = "sqlite"
	StoreMemory StoreKind = "memory"
)

type Config struct {
	Port           string
	Store          StoreKind
	DBPath         string
	JWTSecret      string
	JWTExpiry      time.Duration
	CookieName     string
	ClientOrigin   string
	Production     bool
	DailySalt      string
	DifficultyFile string
	LogLevel       string
	RequestTimeout time.Duration
}

// Load reads the environment and validates the result.
func Load() (Config, error) {
	c := Config{
		Port:           getEnv("PORT", "5175"),
		Store:          StoreKind(getEnv("STORE", string(StoreSQLite))),
		DBPath:         getEnv("DB_PATH", "./data/bunny.db"),
		JWTSecret:      getEnv("JWT_SECRET", devSecret),
		CookieName:     getEnv("COOKIE_NAME", "bunny_token"),
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:     os.Getenv("APP_ENV") == "production",
		DailySalt:      getEnv("DAILY_SALT", "local_dev_salt"),
		DifficultyFile: os.Getenv("DIFFICULTY_FILE"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	days, err := strconv.Atoi(getEnv("JWT_EXPIRES_DAYS", "14"))
	if err != nil || days <= 0 {
		return Config{}, fmt.Errorf("config: JWT_EXPIRES_DAYS: want a positive integer, got %q", os.Getenv("JWT_EXPIRES_DAYS"))
	}
	c.JWTExpiry = time.Duration(days) * 24 * time.Hour

	if c.RequestTimeout, err = time.ParseDuration(getEnv("REQUEST_TIMEOUT", "10s")); err != nil {
		return Config{}, fmt.Errorf("config: REQUEST_TIMEOUT: %w", err)
	}

	switch c.Store {
	case StoreSQLite, StoreMemory:
	default:
		return Config{}, fmt.Errorf("config: STORE: unknown store %q", c.Store)
	}
	if c.Production && c.JWTSecret == devSecret {
		return Config{}, errors.New("config: JWT_SECRET must be set in production")
	}
	return c, nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
