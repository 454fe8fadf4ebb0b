package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheStoreFirstWriteWins(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewCacheStore()

	_, ok, err := store.Lookup(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	inserted, err := store.Insert(ctx, "k", "http://img/1.jpg")
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = store.Insert(ctx, "k", "http://img/2.jpg")
	require.NoError(t, err, "duplicate insert is not an error")
	require.False(t, inserted)

	got, ok, err := store.Lookup(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "http://img/1.jpg", got)
	require.Equal(t, 1, store.count())
}

func TestCacheStoreConcurrentInsertSameKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewCacheStore()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		winners  int
		failures int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, err := store.Insert(ctx, "same", "http://img/x.jpg")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures++
			}
			if inserted {
				winners++
			}
		}()
	}
	wg.Wait()
	require.Zero(t, failures)
	require.Equal(t, 1, winners)
}
