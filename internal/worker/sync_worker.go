package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/service"
	"github.com/e-kondr01/mobile-apps-development-project-backend/pkg/onec"
)

// SyncWorker periodically reconciles the local catalog against 1C.
type SyncWorker struct {
	syncService *service.SyncService
	interval    time.Duration
	attempts    int
	backoff     time.Duration
}

// NewSyncWorker constructs a SyncWorker.
func NewSyncWorker(syncService *service.SyncService, interval time.Duration, attempts int, backoff time.Duration) *SyncWorker {
	if attempts < 1 {
		attempts = 1
	}
	return &SyncWorker{
		syncService: syncService,
		interval:    interval,
		attempts:    attempts,
		backoff:     backoff,
	}
}

// Start begins the periodic sync loop and listens for context cancellation.
func (w *SyncWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting sync worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Sync worker stopped")
			return
		}
	}
}

// run executes one full sync pass with bounded retries. A bad-credentials
// error is never retried: the credentials will not fix themselves, and
// hammering 1C with them only locks the account.
func (w *SyncWorker) run(ctx context.Context) {
	start := time.Now()
	log.Info().Msg("Syncing catalog from OneC...")

	for attempt := 1; attempt <= w.attempts; attempt++ {
		err := w.syncService.SyncAll(ctx)
		if err == nil {
			log.Info().Dur("duration", time.Since(start)).Msg("Catalog sync completed")
			return
		}

		if errors.Is(err, onec.ErrBadCredentials) {
			log.Error().Err(err).Msg("OneC rejected credentials, aborting sync until reconfigured")
			return
		}

		log.Error().Err(err).Int("attempt", attempt).Int("maxAttempts", w.attempts).Msg("Sync pass failed")
		if attempt == w.attempts {
			break
		}

		select {
		case <-time.After(w.backoff * time.Duration(attempt)):
		case <-ctx.Done():
			return
		}
	}

	log.Error().Dur("duration", time.Since(start)).Msg("Catalog sync failed after all retries")
}
