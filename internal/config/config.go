package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	// CORSAllowedHosts is the whitelist of origin hosts for the admin frontend.
	CORSAllowedHosts []string

	// Location is the local timezone register timestamps are stored in.
	Location *time.Location

	DB     DatabaseConfig
	Redis  RedisConfig
	OneC   OneCConfig
	Worker WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// OneCConfig contains credentials and limits for the 1C OData endpoint.
type OneCConfig struct {
	URL               string
	Login             string
	Password          string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// WorkerConfig contains scheduling parameters for the sync worker.
type WorkerConfig struct {
	SyncInterval  time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.CORSAllowedHosts = splitHosts(getEnv("CORS_ALLOWED_HOSTS", "localhost:3000,127.0.0.1:3000"))

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// 1C OData
	cfg.OneC = OneCConfig{
		URL:               getEnv("ONEC_ODATA_URL", ""),
		Login:             getEnv("ONEC_ODATA_LOGIN", ""),
		Password:          getEnv("ONEC_ODATA_PASSWORD", ""),
		RequestsPerSecond: getEnvFloat("ONEC_REQUESTS_PER_SECOND", 5),
	}

	var err error
	if cfg.OneC.Timeout, err = parseDurationEnv("ONEC_TIMEOUT", "40s"); err != nil {
		return nil, fmt.Errorf("invalid ONEC_TIMEOUT: %w", err)
	}

	// Timezone for register timestamps
	tz := getEnv("TIME_ZONE", "Europe/Moscow")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid TIME_ZONE %q: %w", tz, err)
	}

	// Worker
	if cfg.Worker.SyncInterval, err = parseDurationEnv("SYNC_INTERVAL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid SYNC_INTERVAL: %w", err)
	}
	cfg.Worker.RetryAttempts = getEnvInt("SYNC_RETRY_ATTEMPTS", 3)
	if cfg.Worker.RetryBackoff, err = parseDurationEnv("SYNC_RETRY_BACKOFF", "1m"); err != nil {
		return nil, fmt.Errorf("invalid SYNC_RETRY_BACKOFF: %w", err)
	}

	// Validate DB parameters
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	// Validate JWT_SECRET
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvFloat returns the value of an environment variable as a float or a default if empty/invalid.
func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

func splitHosts(raw string) []string {
	parts := strings.Split(raw, ",")
	hosts := make([]string, 0, len(parts))
	for _, p := range parts {
		if h := strings.TrimSpace(p); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}
