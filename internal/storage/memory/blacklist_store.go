package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// BlacklistStore implements resolver.BlacklistStore. Expiry is driven by the
// sweeper through DeleteOlderThan rather than go-cache's janitor so both
// backends age entries the same way.
type BlacklistStore struct {
	items *gocache.Cache
}

// NewBlacklistStore creates an empty BlacklistStore.
func NewBlacklistStore() *BlacklistStore {
	return &BlacklistStore{items: gocache.New(gocache.NoExpiration, 0)}
}

// Contains reports whether key is blacklisted.
func (s *BlacklistStore) Contains(_ context.Context, key string) (bool, error) {
	_, ok := s.items.Get(key)
	return ok, nil
}

// Insert records key unless it is already present.
func (s *BlacklistStore) Insert(_ context.Context, key string, createdAt time.Time) (bool, error) {
	if err := s.items.Add(key, createdAt.Unix(), gocache.NoExpiration); err != nil {
		return false, nil
	}
	return true, nil
}

// DeleteOlderThan removes entries created before cutoff, judged on a snapshot
// of the current entries.
func (s *BlacklistStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	limit := cutoff.Unix()
	var deleted int64
	for key, item := range s.items.Items() {
		createdAt, ok := item.Object.(int64)
		if !ok || createdAt < limit {
			s.items.Delete(key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *BlacklistStore) count() int {
	return s.items.ItemCount()
}
