// Package postgres provides a Postgres-backed cache store.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"leaderscraper/internal/scraper"
)

// Config controls the Postgres connection pool used for cache rows.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type queryPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store keeps leader lists and biographies as jsonb rows, one table per
// entry kind. Reads fail open: any database or decode error is logged
// and treated as a cache miss.
type Store struct {
	pool   queryPool
	logger *zap.Logger
}

// New creates a Postgres-backed cache store using the provided config.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("cache.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewWithPool(pool, logger)
}

// NewWithPool constructs a store from an existing pool (primarily for testing).
func NewWithPool(pool queryPool, logger *zap.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{pool: pool, logger: logger}, nil
}

// InitSchema creates the cache tables when they do not exist yet.
func (s *Store) InitSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS leaders_cache (
	country    text PRIMARY KEY,
	payload    jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS bios_cache (
	leader_id  text PRIMARY KEY,
	payload    jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
);`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("init cache schema: %w", err)
	}
	return nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Leaders returns the cached leader list for a country, if present.
func (s *Store) Leaders(ctx context.Context, country string) ([]scraper.Leader, bool) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM leaders_cache WHERE country = $1`, country,
	).Scan(&payload)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("leaders cache read failed, treating as miss",
				zap.String("country", country), zap.Error(err))
		}
		return nil, false
	}
	var leaders []scraper.Leader
	if err := json.Unmarshal(payload, &leaders); err != nil {
		s.logger.Warn("corrupt leaders cache row, treating as miss",
			zap.String("country", country), zap.Error(err))
		return nil, false
	}
	return leaders, true
}

// PutLeaders upserts the cached leader list for a country.
func (s *Store) PutLeaders(ctx context.Context, country string, leaders []scraper.Leader) error {
	payload, err := json.Marshal(leaders)
	if err != nil {
		return fmt.Errorf("marshal leaders: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO leaders_cache (country, payload, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (country) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		country, payload)
	if err != nil {
		return fmt.Errorf("upsert leaders cache: %w", err)
	}
	return nil
}

// Biography returns the cached biography for a leader, if present.
func (s *Store) Biography(ctx context.Context, leaderID string) (scraper.Biography, bool) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM bios_cache WHERE leader_id = $1`, leaderID,
	).Scan(&payload)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("bio cache read failed, treating as miss",
				zap.String("leader_id", leaderID), zap.Error(err))
		}
		return scraper.Biography{}, false
	}
	var bio scraper.Biography
	if err := json.Unmarshal(payload, &bio); err != nil {
		s.logger.Warn("corrupt bio cache row, treating as miss",
			zap.String("leader_id", leaderID), zap.Error(err))
		return scraper.Biography{}, false
	}
	return bio, true
}

// PutBiography upserts the cached biography for a leader.
func (s *Store) PutBiography(ctx context.Context, bio scraper.Biography) error {
	if bio.LeaderID == "" {
		return fmt.Errorf("biography leader id is required")
	}
	payload, err := json.Marshal(bio)
	if err != nil {
		return fmt.Errorf("marshal biography: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO bios_cache (leader_id, payload, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (leader_id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		bio.LeaderID, payload)
	if err != nil {
		return fmt.Errorf("upsert bio cache: %w", err)
	}
	return nil
}
