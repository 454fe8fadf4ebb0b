package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBlacklistStoreInsertAndContains(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewBlacklistStore()
	now := time.Unix(1_700_000_000, 0)

	listed, err := store.Contains(ctx, "k")
	require.NoError(t, err)
	require.False(t, listed)

	inserted, err := store.Insert(ctx, "k", now)
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = store.Insert(ctx, "k", now.Add(time.Hour))
	require.NoError(t, err)
	require.False(t, inserted)

	listed, err = store.Contains(ctx, "k")
	require.NoError(t, err)
	require.True(t, listed)
}

func TestBlacklistStoreDeleteOlderThan(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewBlacklistStore()
	base := time.Unix(1_700_000_000, 0)

	_, err := store.Insert(ctx, "old", base)
	require.NoError(t, err)
	_, err = store.Insert(ctx, "edge", base.Add(time.Hour))
	require.NoError(t, err)
	_, err = store.Insert(ctx, "fresh", base.Add(2*time.Hour))
	require.NoError(t, err)

	deleted, err := store.DeleteOlderThan(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	for key, want := range map[string]bool{"old": false, "edge": true, "fresh": true} {
		listed, err := store.Contains(ctx, key)
		require.NoError(t, err)
		require.Equal(t, want, listed, key)
	}
	require.Equal(t, 2, store.count())

	_, err = store.Insert(ctx, "old", base.Add(3*time.Hour))
	require.NoError(t, err)
	listed, err := store.Contains(ctx, "old")
	require.NoError(t, err)
	require.True(t, listed, "swept keys can be blacklisted again")
}
