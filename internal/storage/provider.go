// Package storage selects the cache and blacklist backends from configuration.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/imgresolver/internal/config"
	"github.com/JakeFAU/imgresolver/internal/resolver"
	"github.com/JakeFAU/imgresolver/internal/storage/memory"
	"github.com/JakeFAU/imgresolver/internal/storage/postgres"
)

// Stores bundles the two stores backing the fetch pipeline.
type Stores struct {
	Cache     resolver.CacheStore
	Blacklist resolver.BlacklistStore
	closer    func()
}

// Close releases backend resources. It is safe to call more than once.
func (s *Stores) Close() {
	if s == nil || s.closer == nil {
		return
	}
	s.closer()
	s.closer = nil
}

// Open builds the stores for cfg.Driver. The postgres driver bootstraps its
// tables when AutoMigrate is set.
func Open(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (*Stores, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Driver {
	case config.DriverMemory, "":
		logger.Info("using in-memory stores")
		return &Stores{
			Cache:     memory.NewCacheStore(),
			Blacklist: memory.NewBlacklistStore(),
		}, nil
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, postgres.Config{
			DSN:            cfg.DSN,
			CacheTable:     cfg.CacheTable,
			BlacklistTable: cfg.BlacklistTable,
			MaxConns:       cfg.MaxConns,
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres stores: %w", err)
		}
		if cfg.AutoMigrate {
			if err := db.EnsureSchema(ctx); err != nil {
				db.Close()
				return nil, err
			}
		}
		logger.Info("using postgres stores",
			zap.String("cache_table", cfg.CacheTable),
			zap.String("blacklist_table", cfg.BlacklistTable))
		return &Stores{
			Cache:     db.Cache(),
			Blacklist: db.Blacklist(),
			closer:    db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
