// Package postgres implements storage.Backend on top of pgx/pgxpool.
// Unlike a single-statement conditional UPDATE, CheckAndSet here opens
// an explicit transaction and takes a row lock with SELECT ... FOR
// UPDATE before deciding whether to write, so the compare and the set
// are visibly one critical section rather than relying on a database
// to make one UPDATE...WHERE statement atomic on its own.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TarekkMA/freecalls/storage"
)

// Config configures a Postgres-backed Backend.
type Config struct {
	ConnString       string
	MaxConns         int32
	MinConns         int32
	ConnErrorStrings []string
	// Table names the backing key/value table. Defaults to
	// "freecalls_stats" so multiple modules can share a database
	// without colliding on table name.
	Table string
}

func (c Config) tableName() string {
	if c.Table == "" {
		return "freecalls_stats"
	}
	return c.Table
}

// Backend is a storage.Backend backed by a Postgres table, guarded by
// row-level locking for its compare-and-set contract.
type Backend struct {
	pool             *pgxpool.Pool
	table            string
	connErrorStrings []string
}

func init() {
	storage.Register("postgres", func(config any) (storage.Backend, error) {
		cfg, ok := config.(Config)
		if !ok {
			return nil, fmt.Errorf("postgres: Create expects postgres.Config, got %T", config)
		}
		return New(cfg)
	})
}

// New connects a pool to Postgres, pings it, and ensures the backing
// table exists.
func New(config Config) (*Backend, error) {
	if config.MaxConns == 0 {
		config.MaxConns = 10
	}
	if config.MinConns == 0 {
		config.MinConns = 2
	}

	patterns := config.ConnErrorStrings
	if patterns == nil {
		patterns = connErrorStrings
	}

	poolConfig, err := pgxpool.ParseConfig(config.ConnString)
	if err != nil {
		return nil, storage.MaybeConnError("postgres:ParseConfig",
			fmt.Errorf("invalid postgres connection string: %w", err), patterns)
	}
	poolConfig.MaxConns = config.MaxConns
	poolConfig.MinConns = config.MinConns

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, storage.MaybeConnError("postgres:NewPool",
			fmt.Errorf("failed to create postgres pool: %w", err), patterns)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, storage.MaybeConnError("postgres:Ping",
			fmt.Errorf("postgres ping failed: %w", err), patterns)
	}

	table := config.tableName()
	if err := createTable(context.Background(), pool, table); err != nil {
		return nil, fmt.Errorf("postgres: failed to create table %q: %w", table, err)
	}

	return &Backend{pool: pool, table: table, connErrorStrings: patterns}, nil
}

// NewWithClient wraps an already-connected pool, assuming the table
// referenced by config.Table (or the default) already exists.
func NewWithClient(pool *pgxpool.Pool, config Config) *Backend {
	return &Backend{pool: pool, table: config.tableName(), connErrorStrings: connErrorStrings}
}

func createTable(ctx context.Context, pool *pgxpool.Pool, table string) error {
	_, err := pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			stats_key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			expires_at TIMESTAMPTZ
		)
	`, table))
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// GetPool exposes the underlying pool, mainly for test teardown.
func (b *Backend) GetPool() *pgxpool.Pool { return b.pool }

// Get implements storage.Backend. An expired row reads back as absent
// rather than being deleted eagerly; PurgeExpired reclaims space.
func (b *Backend) Get(ctx context.Context, key string) (string, error) {
	var payload string
	var expiresAt *time.Time

	err := b.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT payload, expires_at FROM %s WHERE stats_key = $1`, b.table,
	), key).Scan(&payload, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", b.maybeConnError("postgres:Get", fmt.Errorf("get key %q: %w", key, err))
	}

	if rowExpired(expiresAt) {
		return "", nil
	}
	return payload, nil
}

// Set implements storage.Backend, unconditionally overwriting any
// existing row for key.
func (b *Backend) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	expiresAt := expiryFromTTL(ttl)

	_, err := b.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (stats_key, payload, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (stats_key) DO UPDATE SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at
	`, b.table), key, value, expiresAt)
	if err != nil {
		return b.maybeConnError("postgres:Set", fmt.Errorf("set key %q: %w", key, err))
	}
	return nil
}

// Delete implements storage.Backend.
func (b *Backend) Delete(ctx context.Context, key string) error {
	_, err := b.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE stats_key = $1`, b.table), key)
	if err != nil {
		return b.maybeConnError("postgres:Delete", fmt.Errorf("delete key %q: %w", key, err))
	}
	return nil
}

// Close implements storage.Backend.
func (b *Backend) Close() error {
	if b.pool != nil {
		b.pool.Close()
	}
	return nil
}

// CheckAndSet implements storage.Backend by opening a transaction,
// locking the row (if any) with SELECT ... FOR UPDATE, comparing its
// current value in Go, and only then writing — so the compare and the
// set happen under one lock rather than one conditional UPDATE
// statement trusting the engine to make the comparison atomic for it.
// A set-if-absent (oldValue == "") also wins the race against an
// already-expired row. When no row exists there is nothing to lock, so
// the insert uses ON CONFLICT DO NOTHING and reports false if a
// concurrent writer created the row after the SELECT.
func (b *Backend) CheckAndSet(ctx context.Context, key string, oldValue, newValue string, ttl time.Duration) (bool, error) {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return false, b.maybeConnError("postgres:CheckAndSet:Begin", fmt.Errorf("begin tx for key %q: %w", key, err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var currentPayload string
	var currentExpiry *time.Time
	err = tx.QueryRow(ctx, fmt.Sprintf(
		`SELECT payload, expires_at FROM %s WHERE stats_key = $1 FOR UPDATE`, b.table,
	), key).Scan(&currentPayload, &currentExpiry)

	onConflict := "DO UPDATE SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at"
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if oldValue != "" {
			return false, nil
		}
		onConflict = "DO NOTHING"
	case err != nil:
		return false, b.maybeConnError("postgres:CheckAndSet:Select", fmt.Errorf("lock key %q: %w", key, err))
	default:
		present := !rowExpired(currentExpiry)
		if present && currentPayload != oldValue {
			return false, nil
		}
		if !present && oldValue != "" {
			return false, nil
		}
	}

	expiresAt := expiryFromTTL(ttl)
	cmd, err := tx.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (stats_key, payload, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (stats_key) %s
	`, b.table, onConflict), key, newValue, expiresAt)
	if err != nil {
		return false, b.maybeConnError("postgres:CheckAndSet:Upsert", fmt.Errorf("cas write key %q: %w", key, err))
	}
	if cmd.RowsAffected() == 0 {
		return false, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return false, b.maybeConnError("postgres:CheckAndSet:Commit", fmt.Errorf("commit cas key %q: %w", key, err))
	}
	return true, nil
}

// PurgeExpired deletes up to batchSize expired rows, for operators who
// want to reclaim space instead of letting stale rows sit indefinitely.
func (b *Backend) PurgeExpired(ctx context.Context, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}
	cmd, err := b.pool.Exec(ctx, fmt.Sprintf(`
		WITH stale AS (
			SELECT stats_key FROM %s
			WHERE expires_at IS NOT NULL AND expires_at <= NOW()
			LIMIT $1
		)
		DELETE FROM %s t USING stale WHERE t.stats_key = stale.stats_key
	`, b.table, b.table), batchSize)
	if err != nil {
		return 0, fmt.Errorf("postgres: purge expired: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func (b *Backend) maybeConnError(op string, err error) error {
	return storage.MaybeConnError(op, err, b.connErrorStrings)
}

func rowExpired(expiresAt *time.Time) bool {
	return expiresAt != nil && time.Now().After(*expiresAt)
}

func expiryFromTTL(ttl time.Duration) *time.Time {
	if ttl <= 0 {
		return nil
	}
	t := time.Now().Add(ttl)
	return &t
}
