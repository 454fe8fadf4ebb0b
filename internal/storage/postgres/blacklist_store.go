package postgres

import (
	"context"
	"fmt"
	"time"
)

// BlacklistStore implements resolver.BlacklistStore. created_at is stored as
// Unix seconds.
type BlacklistStore struct {
	pool  pool
	table string
}

// Contains reports whether a row exists for key.
func (s *BlacklistStore) Contains(ctx context.Context, key string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE page_location = $1)`, s.table)
	var exists bool
	if err := s.pool.QueryRow(ctx, query, key).Scan(&exists); err != nil {
		return false, fmt.Errorf("select blacklist entry: %w", err)
	}
	return exists, nil
}

// Insert adds the row unless page_location already exists.
func (s *BlacklistStore) Insert(ctx context.Context, key string, createdAt time.Time) (bool, error) {
	query := fmt.Sprintf(`INSERT INTO %s (page_location, created_at) VALUES ($1, $2)
ON CONFLICT (page_location) DO NOTHING`, s.table)
	tag, err := s.pool.Exec(ctx, query, key, createdAt.Unix())
	if err != nil {
		return false, fmt.Errorf("insert blacklist entry: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteOlderThan deletes rows created before cutoff.
func (s *BlacklistStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE created_at < $1`, s.table)
	tag, err := s.pool.Exec(ctx, query, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("delete expired blacklist entries: %w", err)
	}
	return tag.RowsAffected(), nil
}
