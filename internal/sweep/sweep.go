// Package sweep periodically expires blacklist entries.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/imgresolver/internal/metrics"
	"github.com/JakeFAU/imgresolver/internal/resolver"
)

// Sweeper deletes blacklist entries older than ttl every interval.
type Sweeper struct {
	store    resolver.BlacklistStore
	clock    resolver.Clock
	ttl      time.Duration
	interval time.Duration
	logger   *zap.Logger
}

// New builds a Sweeper.
func New(store resolver.BlacklistStore, clock resolver.Clock, ttl, interval time.Duration, logger *zap.Logger) (*Sweeper, error) {
	if store == nil {
		return nil, errors.New("blacklist store is required")
	}
	if clock == nil {
		return nil, errors.New("clock is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("ttl must be > 0, got %s", ttl)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be > 0, got %s", interval)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{store: store, clock: clock, ttl: ttl, interval: interval, logger: logger}, nil
}

// Run sweeps on every tick until ctx is done. Sweep errors are logged and the
// loop continues.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("blacklist sweep failed", zap.Error(err))
			}
		}
	}
}

// SweepOnce deletes entries created before now-ttl and returns how many went.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	cutoff := s.clock.Now().Add(-s.ttl)
	deleted, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete blacklist entries before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	metrics.ObserveSweep(deleted)
	if deleted > 0 {
		s.logger.Info("blacklist swept", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
	return deleted, nil
}
