// Package memory keeps resolution cache and blacklist entries in process memory
// for development and single-instance deployments.
package memory

import (
	"context"
	"fmt"

	gocache "github.com/patrickmn/go-cache"
)

// CacheStore implements resolver.CacheStore on top of go-cache. Entries never expire.
type CacheStore struct {
	items *gocache.Cache
}

// NewCacheStore creates an empty CacheStore.
func NewCacheStore() *CacheStore {
	return &CacheStore{items: gocache.New(gocache.NoExpiration, 0)}
}

// Lookup returns the image URL cached under key.
func (s *CacheStore) Lookup(_ context.Context, key string) (string, bool, error) {
	v, ok := s.items.Get(key)
	if !ok {
		return "", false, nil
	}
	imageURL, ok := v.(string)
	if !ok {
		return "", false, fmt.Errorf("cache entry %s has unexpected type %T", key, v)
	}
	return imageURL, true, nil
}

// Insert stores imageURL unless key is already cached; the first write wins.
func (s *CacheStore) Insert(_ context.Context, key string, imageURL string) (bool, error) {
	if err := s.items.Add(key, imageURL, gocache.NoExpiration); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *CacheStore) count() int {
	return s.items.ItemCount()
}
