package strategy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/imgresolver/internal/hash/md5"
	"github.com/JakeFAU/imgresolver/internal/resolver"
	"github.com/JakeFAU/imgresolver/internal/rules"
	"github.com/JakeFAU/imgresolver/internal/storage/memory"
)

type fakeFetcher struct {
	mu        sync.Mutex
	calls     []string
	responses map[string]resolver.FetchResponse
	err       error
	// gate, when set, blocks every fetch until it is closed.
	gate chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{responses: make(map[string]resolver.FetchResponse)}
}

func (f *fakeFetcher) respond(url string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[url] = resolver.FetchResponse{URL: url, StatusCode: status, Body: []byte(body)}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (resolver.FetchResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return resolver.FetchResponse{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return resolver.FetchResponse{}, f.err
	}
	resp, ok := f.responses[url]
	if !ok {
		return resolver.FetchResponse{URL: url, StatusCode: 404}, nil
	}
	return resp, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeClock struct {
	now time.Time
}

func (c fakeClock) Now() time.Time { return c.now }

type brokenCache struct{}

func (brokenCache) Lookup(context.Context, string) (string, bool, error) {
	return "", false, errors.New("cache down")
}

func (brokenCache) Insert(context.Context, string, string) (bool, error) {
	return false, errors.New("cache down")
}

type brokenBlacklist struct{}

func (brokenBlacklist) Contains(context.Context, string) (bool, error) {
	return false, errors.New("blacklist down")
}

func (brokenBlacklist) Insert(context.Context, string, time.Time) (bool, error) {
	return false, errors.New("blacklist down")
}

func (brokenBlacklist) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, errors.New("blacklist down")
}

// stallingCache and stallingBlacklist block every call until ctx ends.
type stallingCache struct{}

func (stallingCache) Lookup(ctx context.Context, _ string) (string, bool, error) {
	<-ctx.Done()
	return "", false, ctx.Err()
}

func (stallingCache) Insert(ctx context.Context, _, _ string) (bool, error) {
	<-ctx.Done()
	return false, ctx.Err()
}

type stallingBlacklist struct{}

func (stallingBlacklist) Contains(ctx context.Context, _ string) (bool, error) {
	<-ctx.Done()
	return false, ctx.Err()
}

func (stallingBlacklist) Insert(ctx context.Context, _ string, _ time.Time) (bool, error) {
	<-ctx.Done()
	return false, ctx.Err()
}

func (stallingBlacklist) DeleteOlderThan(ctx context.Context, _ time.Time) (int64, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

// cancelingBlacklist cancels the caller's context during the lookup, the way
// a request abandoned mid-lookup looks to the pipeline.
type cancelingBlacklist struct {
	resolver.BlacklistStore
	cancel context.CancelFunc
}

func (b cancelingBlacklist) Contains(context.Context, string) (bool, error) {
	b.cancel()
	return false, context.Canceled
}

type harness struct {
	registry  *rules.Registry
	fetcher   *fakeFetcher
	cache     *memory.CacheStore
	blacklist *memory.BlacklistStore
	pipeline  *Pipeline
	kinds     map[rules.Kind]Strategy
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithTimeout(t, time.Second)
}

func newHarnessWithTimeout(t *testing.T, timeout time.Duration) *harness {
	t.Helper()
	registry, err := rules.Compile(rules.Builtin(rules.APIKeys{Flickr: "fkey", Mobypicture: "mkey"}))
	require.NoError(t, err)

	h := &harness{
		registry:  registry,
		fetcher:   newFakeFetcher(),
		cache:     memory.NewCacheStore(),
		blacklist: memory.NewBlacklistStore(),
	}
	h.pipeline, err = NewPipeline(Deps{
		Cache:     h.cache,
		Blacklist: h.blacklist,
		Fetcher:   h.fetcher,
		Hasher:    md5.New(),
		Clock:     fakeClock{now: time.Unix(1_700_000_000, 0)},
		Logger:    zap.NewNop(),
		Timeout:   timeout,
	})
	require.NoError(t, err)
	h.kinds = ForKinds(h.pipeline)
	return h
}

func (h *harness) resolve(t *testing.T, url string) (resolver.Result, error) {
	t.Helper()
	rule, captures, ok := h.registry.FindMatch(url)
	require.True(t, ok, "no rule for %s", url)
	return h.kinds[rule.Kind].Execute(context.Background(), Input{URL: url, Rule: rule, Captures: captures})
}

func pageKey(t *testing.T, url string) string {
	t.Helper()
	key, err := md5.New().Hash([]byte(url))
	require.NoError(t, err)
	return key
}

func blacklisted(t *testing.T, h *harness, url string) bool {
	t.Helper()
	listed, err := h.blacklist.Contains(context.Background(), pageKey(t, url))
	require.NoError(t, err)
	return listed
}

func isCached(t *testing.T, h *harness, url string) bool {
	t.Helper()
	_, ok, err := h.cache.Lookup(context.Background(), pageKey(t, url))
	require.NoError(t, err)
	return ok
}

func requireKind(t *testing.T, err error, want resolver.FailureKind) {
	t.Helper()
	require.Error(t, err)
	got, ok := resolver.KindOf(err)
	require.True(t, ok, "expected a resolver.Failure, got %v", err)
	require.Equal(t, want, got)
}
