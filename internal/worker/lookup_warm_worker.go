package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// LookupRefresher reloads the cached lookup tables.
type LookupRefresher interface {
	RefreshLookups(ctx context.Context) error
}

// LookupWarmWorker periodically reloads grades, subjects and categories into
// the lookup cache so storefront reads never wait on a cold entry.
type LookupWarmWorker struct {
	refresher LookupRefresher
	interval  time.Duration
}

// NewLookupWarmWorker constructs a LookupWarmWorker.
func NewLookupWarmWorker(refresher LookupRefresher, interval time.Duration) *LookupWarmWorker {
	return &LookupWarmWorker{
		refresher: refresher,
		interval:  interval,
	}
}

// Start begins the periodic refresh loop and listens for context cancellation.
func (w *LookupWarmWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting lookup warm worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Lookup warm worker stopped")
			return
		}
	}
}

func (w *LookupWarmWorker) run(ctx context.Context) {
	start := time.Now()
	if err := w.refresher.RefreshLookups(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to refresh lookup cache")
		return
	}

	log.Debug().Dur("duration", time.Since(start)).Msg("Lookup cache refreshed")
}
