package dispatcher

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/imgresolver/internal/resolver"
	"github.com/JakeFAU/imgresolver/internal/rules"
	"github.com/JakeFAU/imgresolver/internal/strategy"
)

type recordingStrategy struct {
	mu     sync.Mutex
	inputs []strategy.Input
	result resolver.Result
	err    error
}

func (s *recordingStrategy) Execute(_ context.Context, in strategy.Input) (resolver.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, in)
	return s.result, s.err
}

func newRegistry(t *testing.T) *rules.Registry {
	t.Helper()
	reg, err := rules.Compile(rules.Builtin(rules.APIKeys{}))
	require.NoError(t, err)
	return reg
}

func TestResolveSubstitution(t *testing.T) {
	t.Parallel()

	d, err := New(newRegistry(t), strategy.ForKinds(nil), zap.NewNop())
	require.NoError(t, err)

	got, err := d.Resolve(context.Background(), "http://twitpic.com/abc123")
	require.NoError(t, err)
	require.Equal(t, resolver.Result{ImageURL: "http://twitpic.com/show/large/abc123.jpg", Service: "TwitPic"}, got)
}

func TestResolveNoMatchingRule(t *testing.T) {
	t.Parallel()

	d, err := New(newRegistry(t), strategy.ForKinds(nil), zap.NewNop())
	require.NoError(t, err)

	_, err = d.Resolve(context.Background(), "http://example.com/nothing")
	kind, ok := resolver.KindOf(err)
	require.True(t, ok)
	require.Equal(t, resolver.NoMatchingRule, kind)
	require.Equal(t, "unsupported URL", resolver.ReasonOf(err))
}

func TestResolveDispatchesByKind(t *testing.T) {
	t.Parallel()

	jsonStrategy := &recordingStrategy{result: resolver.Result{ImageURL: "http://img/a.jpg", Service: "Instagram"}}
	d, err := New(newRegistry(t), map[rules.Kind]strategy.Strategy{rules.ResponseJSON: jsonStrategy}, nil)
	require.NoError(t, err)

	got, err := d.Resolve(context.Background(), "http://instagr.am/p/BXyz12/")
	require.NoError(t, err)
	require.Equal(t, "http://img/a.jpg", got.ImageURL)
	require.Len(t, jsonStrategy.inputs, 1)
	in := jsonStrategy.inputs[0]
	require.Equal(t, "Instagram", in.Rule.Name)
	require.Equal(t, []string{"http://instagr.am/p/BXyz12/"}, in.Captures)
}

func TestResolvePassesFailuresThrough(t *testing.T) {
	t.Parallel()

	failing := &recordingStrategy{err: resolver.NewFailure(resolver.Blacklisted, "u", nil)}
	d, err := New(newRegistry(t), map[rules.Kind]strategy.Strategy{rules.ResponseRegex: failing}, nil)
	require.NoError(t, err)

	_, err = d.Resolve(context.Background(), "http://yfrog.com/h4abcdj")
	kind, ok := resolver.KindOf(err)
	require.True(t, ok)
	require.Equal(t, resolver.Blacklisted, kind)
}

func TestResolveUnregisteredKind(t *testing.T) {
	t.Parallel()

	d, err := New(newRegistry(t), map[rules.Kind]strategy.Strategy{}, nil)
	require.NoError(t, err)

	_, err = d.Resolve(context.Background(), "http://twitpic.com/abc123")
	kind, ok := resolver.KindOf(err)
	require.True(t, ok)
	require.Equal(t, resolver.NoMatchingRule, kind)
}

func TestResolveAsyncDeliversExactlyOneCallback(t *testing.T) {
	t.Parallel()

	d, err := New(newRegistry(t), strategy.ForKinds(nil), zap.NewNop())
	require.NoError(t, err)

	var (
		mu        sync.Mutex
		successes []string
		failures  []string
	)
	onSuccess := func(imageURL, service string) {
		mu.Lock()
		defer mu.Unlock()
		successes = append(successes, service+" "+imageURL)
	}
	onFailure := func(reason string) {
		mu.Lock()
		defer mu.Unlock()
		failures = append(failures, reason)
	}

	d.ResolveAsync(context.Background(), "http://twitpic.com/abc123", onSuccess, onFailure)
	d.ResolveAsync(context.Background(), "http://example.com/nothing", onSuccess, onFailure)
	d.ResolveAsync(context.Background(), "http://img.ly/xyz", onSuccess, onFailure)
	d.Wait()

	require.ElementsMatch(t, []string{
		"TwitPic http://twitpic.com/show/large/abc123.jpg",
		"img.ly http://img.ly/show/large/xyz",
	}, successes)
	require.Equal(t, []string{"unsupported URL"}, failures)
}

func TestResolveAsyncToleratesNilCallbacks(t *testing.T) {
	t.Parallel()

	d, err := New(newRegistry(t), strategy.ForKinds(nil), nil)
	require.NoError(t, err)
	d.ResolveAsync(context.Background(), "http://twitpic.com/abc123", nil, nil)
	d.ResolveAsync(context.Background(), "nope", nil, nil)
	d.Wait()
}

func TestResolveAsyncGenericErrorReason(t *testing.T) {
	t.Parallel()

	failing := &recordingStrategy{err: errors.New("boom")}
	d, err := New(newRegistry(t), map[rules.Kind]strategy.Strategy{rules.SingleReplace: failing}, nil)
	require.NoError(t, err)

	done := make(chan string, 1)
	d.ResolveAsync(context.Background(), "http://twitpic.com/abc123", nil, func(reason string) { done <- reason })
	require.Equal(t, "resolution failed", <-done)
}

func TestNewRequiresRegistry(t *testing.T) {
	t.Parallel()

	_, err := New(nil, nil, nil)
	require.ErrorContains(t, err, "registry")
}

func TestServiceNames(t *testing.T) {
	t.Parallel()

	d, err := New(newRegistry(t), nil, nil)
	require.NoError(t, err)
	names := d.ServiceNames()
	require.NotEmpty(t, names)
	require.Contains(t, names, "TwitPic")
}
