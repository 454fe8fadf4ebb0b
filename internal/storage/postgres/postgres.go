// Package postgres provides Postgres-backed cache and blacklist stores.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Default table names, kept from the original deployment schema.
const (
	DefaultCacheTable     = "request_caches"
	DefaultBlacklistTable = "blacklist"
)

// Config controls the Postgres connection pool and table names.
type Config struct {
	DSN             string
	CacheTable      string
	BlacklistTable  string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Close()
}

// DB owns the pool shared by the cache and blacklist stores.
type DB struct {
	pool           pool
	cacheTable     string
	blacklistTable string
}

// Open connects to Postgres using cfg.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store.dsn is required")
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
	db, err := NewWithPool(p, cfg.CacheTable, cfg.BlacklistTable)
	if err != nil {
		p.Close()
		return nil, err
	}
	return db, nil
}

// NewWithPool constructs a DB from an existing pool (primarily for testing).
func NewWithPool(p pool, cacheTable, blacklistTable string) (*DB, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if cacheTable == "" {
		cacheTable = DefaultCacheTable
	}
	if blacklistTable == "" {
		blacklistTable = DefaultBlacklistTable
	}
	for _, table := range []string{cacheTable, blacklistTable} {
		if !validTableName.MatchString(table) {
			return nil, fmt.Errorf("invalid table name %q", table)
		}
	}
	if cacheTable == blacklistTable {
		return nil, fmt.Errorf("cache and blacklist tables must differ, both are %q", cacheTable)
	}
	return &DB{pool: p, cacheTable: cacheTable, blacklistTable: blacklistTable}, nil
}

// EnsureSchema creates the cache and blacklist tables when missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	page_location VARCHAR(32) PRIMARY KEY,
	image_location TEXT NOT NULL
)`, db.cacheTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	page_location VARCHAR(32) PRIMARY KEY,
	created_at BIGINT NOT NULL
)`, db.blacklistTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_created_at_idx ON %s (created_at)`,
			db.blacklistTable, db.blacklistTable),
	}
	for _, stmt := range statements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Cache returns the cache store backed by this DB.
func (db *DB) Cache() *CacheStore {
	return &CacheStore{pool: db.pool, table: db.cacheTable}
}

// Blacklist returns the blacklist store backed by this DB.
func (db *DB) Blacklist() *BlacklistStore {
	return &BlacklistStore{pool: db.pool, table: db.blacklistTable}
}

// Close releases the underlying pool resources.
func (db *DB) Close() {
	if db == nil || db.pool == nil {
		return
	}
	db.pool.Close()
}
