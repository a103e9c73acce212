package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"

	appconfig "github.com/GTDGit/cbc_bookstore/internal/config"
)

const (
	connectAttempts = 5
	connectBaseWait = 500 * time.Millisecond
	connectMaxWait  = 5 * time.Second
	pingTimeout     = 5 * time.Second
)

// Connect opens the catalog database and retries while Postgres is still
// starting. The pool is sized from cfg and pinged before it is returned.
// Cancelling ctx stops the retry loop.
func Connect(ctx context.Context, cfg *appconfig.DatabaseConfig) (*sqlx.DB, error) {
	if cfg == nil {
		return nil, errors.New("nil database config")
	}

	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err := open(ctx, cfg)
		if err == nil {
			return db, nil
		}
		lastErr = err

		wait := backoff(attempt, connectBaseWait)
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("database not ready")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", connectAttempts, lastErr)
}

func open(ctx context.Context, cfg *appconfig.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}
	configurePool(db.DB, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func configurePool(db *sql.DB, cfg *appconfig.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}

// backoff doubles base per attempt, capped at connectMaxWait.
func backoff(attempt int, base time.Duration) time.Duration {
	d := base << (attempt - 1)
	if d > connectMaxWait {
		d = connectMaxWait
	}
	return d
}
