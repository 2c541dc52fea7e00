// Package postgres provides Postgres-backed persistence for job records
// and subscription queries.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/alshabili/first-backend/internal/jobs"
)

// PoolConfig controls the Postgres connection pool.
type PoolConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	Ping(context.Context) error
	Close()
}

// NewPool builds and pings a pgx pool from config.
func NewPool(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
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
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return p, nil
}

// JobStore writes job records into the jobs table.
//
// Assumed schema:
//
//	CREATE TABLE jobs (
//	    id BIGSERIAL PRIMARY KEY,
//	    external_id TEXT NOT NULL UNIQUE,
//	    category TEXT NOT NULL,
//	    title TEXT NOT NULL,
//	    details TEXT NOT NULL,
//	    budget TEXT NOT NULL,
//	    duration TEXT NOT NULL,
//	    owner_name TEXT NOT NULL,
//	    owner_registration_date TEXT NOT NULL,
//	    owner_employment_rate TEXT NOT NULL,
//	    number_of_bids INTEGER NOT NULL DEFAULT 0,
//	    published_at TEXT NOT NULL,
//	    external_url TEXT NOT NULL,
//	    created_at TIMESTAMPTZ DEFAULT NOW()
//	);
type JobStore struct {
	pool   pool
	logger *zap.Logger
}

// NewJobStore constructs a JobStore over an existing pool. The pool
// argument is an interface so pgxmock pools can substitute in tests.
func NewJobStore(p pool, logger *zap.Logger) (*JobStore, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &JobStore{pool: p, logger: logger}, nil
}

// Close releases the underlying pool resources.
func (s *JobStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// PersistJob inserts the record. A record whose external_id already
// exists is a benign no-op: the uniqueness constraint is the backstop
// behind the seen-set, and retried envelopes hit it routinely.
func (s *JobStore) PersistJob(ctx context.Context, record jobs.JobRecord) error {
	if record.ExternalID == "" {
		return fmt.Errorf("record external_id is required")
	}
	tag, err := s.pool.Exec(ctx, `
INSERT INTO jobs (
	external_id,
	category,
	title,
	details,
	budget,
	duration,
	owner_name,
	owner_registration_date,
	owner_employment_rate,
	number_of_bids,
	published_at,
	external_url
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
)
ON CONFLICT (external_id) DO NOTHING`,
		record.ExternalID,
		record.Category,
		record.Title,
		record.Details,
		record.Budget,
		record.Duration,
		record.OwnerName,
		record.OwnerRegistrationDate,
		record.OwnerEmploymentRate,
		record.NumberOfBids,
		record.PublishedAt,
		record.Link,
	)
	if err != nil {
		return fmt.Errorf("insert job %s: %w", record.ExternalID, err)
	}
	if tag.RowsAffected() == 0 {
		s.logger.Debug("job already persisted", zap.String("external_id", record.ExternalID))
	}
	return nil
}
