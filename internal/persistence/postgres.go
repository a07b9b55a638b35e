package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/it-helpdesk/internal/config"
)

// PostgresStore persists blobs in a single key/value table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore establishes a connection pool and bootstraps the blob table.
func NewPostgresStore(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, errors.New("POSTGRES_DSN required for the postgres storage driver")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	const bootstrap = `
        CREATE TABLE IF NOT EXISTS kv_blobs (
            key        TEXT PRIMARY KEY,
            blob       JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`
	if _, err := pool.Exec(ctx, bootstrap); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap kv_blobs: %w", err)
	}

	logger.Info("connected to postgres")
	return &PostgresStore{pool: pool}, nil
}

// Load fetches the blob for key.
func (p *PostgresStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	const query = `SELECT blob FROM kv_blobs WHERE key=$1`
	var blob []byte
	err := p.pool.QueryRow(ctx, query, key).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	return blob, true, nil
}

// Save upserts the blob for key.
func (p *PostgresStore) Save(ctx context.Context, key string, blob []byte) error {
	const query = `
        INSERT INTO kv_blobs (key, blob, updated_at) VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET blob = EXCLUDED.blob, updated_at = NOW()`
	if _, err := p.pool.Exec(ctx, query, key, blob); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Close releases pool resources.
func (p *PostgresStore) Close() {
	if p != nil && p.pool != nil {
		p.pool.Close()
	}
}
