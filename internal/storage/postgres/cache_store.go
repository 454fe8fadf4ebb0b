package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// CacheStore implements resolver.CacheStore.
type CacheStore struct {
	pool  pool
	table string
}

// Lookup selects the cached image URL for key.
func (s *CacheStore) Lookup(ctx context.Context, key string) (string, bool, error) {
	query := fmt.Sprintf(`SELECT image_location FROM %s WHERE page_location = $1`, s.table)
	var imageURL string
	if err := s.pool.QueryRow(ctx, query, key).Scan(&imageURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select cached result: %w", err)
	}
	return imageURL, true, nil
}

// Insert adds the row unless page_location already exists.
func (s *CacheStore) Insert(ctx context.Context, key string, imageURL string) (bool, error) {
	query := fmt.Sprintf(`INSERT INTO %s (page_location, image_location) VALUES ($1, $2)
ON CONFLICT (page_location) DO NOTHING`, s.table)
	tag, err := s.pool.Exec(ctx, query, key, imageURL)
	if err != nil {
		return false, fmt.Errorf("insert cached result: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
