package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arzfeed/pricegate-api/internal/config"
)

func NewPgxPool(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	pgxConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres connection string: %w", err)
	}

	pgxConfig.MaxConns = int32(cfg.MaxOpenConns)
	pgxConfig.MinConns = int32(cfg.MaxIdleConns)
	pgxConfig.MaxConnLifetime = cfg.ConnMaxLifetime

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, pgxConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres connection pool: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	defer cancelPing()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	logger.Info("Successfully connected to PostgreSQL")
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS plans (
	slug TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	scope TEXT NOT NULL DEFAULT 'all',
	monthly_quota BIGINT NOT NULL CHECK (monthly_quota > 0),
	rpm_limit INTEGER NOT NULL CHECK (rpm_limit > 0),
	price_irr BIGINT NOT NULL DEFAULT 0,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS api_keys (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	key_hash TEXT NOT NULL UNIQUE,
	prefix TEXT NOT NULL UNIQUE,
	last4 TEXT NOT NULL,
	owner_account_id TEXT NOT NULL,
	owner_email TEXT NOT NULL DEFAULT '',
	plan_slug TEXT NOT NULL REFERENCES plans(slug),
	status TEXT NOT NULL DEFAULT 'active',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	revoked_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_api_keys_owner ON api_keys (owner_account_id);

CREATE TABLE IF NOT EXISTS usage_monthly (
	api_key_id UUID NOT NULL REFERENCES api_keys(id),
	month TEXT NOT NULL,
	request_count BIGINT NOT NULL DEFAULT 0,
	monthly_quota BIGINT NOT NULL,
	PRIMARY KEY (api_key_id, month)
);
`

// EnsureSchema creates the tables on first start. Ledger rows are never
// dropped; they are the billing history.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	logger.Info("Database schema ensured")
	return nil
}
