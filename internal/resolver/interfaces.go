package resolver

import (
	"context"
	"time"
)

// CacheStore keeps successful fetch-based resolutions keyed by the hashed page URL.
type CacheStore interface {
	// Lookup returns the cached image URL, if any.
	Lookup(ctx context.Context, key string) (string, bool, error)
	// Insert stores the image URL unless the key already exists. A duplicate key
	// is not an error; inserted is false in that case.
	Insert(ctx context.Context, key string, imageURL string) (inserted bool, err error)
}

// BlacklistStore records page URLs whose upstream recently failed.
type BlacklistStore interface {
	Contains(ctx context.Context, key string) (bool, error)
	// Insert records the key with its creation time unless it already exists.
	Insert(ctx context.Context, key string, createdAt time.Time) (inserted bool, err error)
	// DeleteOlderThan removes every entry created before cutoff and returns the count.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Fetcher performs a single HTTP GET, following redirects. Non-2xx statuses are
// reported through FetchResponse, not as errors.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResponse, error)
}

// Hasher computes the fixed-length store key for a page URL.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces request IDs.
type IDGenerator interface {
	NewID() (string, error)
}
