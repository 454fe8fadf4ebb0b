package md5

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasherHashDeterministic(t *testing.T) {
	t.Parallel()

	h := New()
	got, err := h.Hash([]byte("hello world"))
	require.NoError(t, err)
	require.Equal(t, "5eb63bbbe01eeed093cb22bb8f5acdc3", got)

	again, err := h.Hash([]byte("hello world"))
	require.NoError(t, err)
	require.Equal(t, got, again)
	require.Len(t, got, 32)
}

func TestKeyIsLiteral(t *testing.T) {
	t.Parallel()

	h := New()
	bare, err := h.Hash([]byte("http://twitpic.com/abc"))
	require.NoError(t, err)
	slashed, err := h.Hash([]byte("http://twitpic.com/abc/"))
	require.NoError(t, err)

	// No normalization: a trailing slash yields a different key.
	require.NotEqual(t, bare, slashed)
}
