package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/config"
)

const (
	maxAttempts = 5
	baseDelay   = 500 * time.Millisecond
)

// Connect establishes a PostgreSQL connection with a small retry strategy to
// ride out transient bootstrapping issues (e.g. the DB container still
// starting). The returned *sqlx.DB has pool settings applied and has been
// pinged successfully.
func Connect(cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(cfg.User), url.QueryEscape(cfg.Password),
		cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode,
	)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		db, err := sqlx.Open("postgres", dsn)
		if err != nil {
			lastErr = err
			time.Sleep(backoff(attempt))
			continue
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		lastErr = db.PingContext(ctx)
		cancel()
		if lastErr == nil {
			return db, nil
		}

		_ = db.Close()
		time.Sleep(backoff(attempt))
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxAttempts, lastErr)
}

// backoff returns base * 2^(attempt-1), capped at 5s.
func backoff(attempt int) time.Duration {
	d := baseDelay << (attempt - 1)
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
