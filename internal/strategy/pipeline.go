package strategy

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/JakeFAU/imgresolver/internal/metrics"
	"github.com/JakeFAU/imgresolver/internal/resolver"
	"github.com/JakeFAU/imgresolver/internal/rules"
)

const defaultFetchTimeout = 5 * time.Second

// Deps are the collaborators shared by every fetching strategy.
type Deps struct {
	Cache     resolver.CacheStore
	Blacklist resolver.BlacklistStore
	Fetcher   resolver.Fetcher
	Hasher    resolver.Hasher
	Clock     resolver.Clock
	Logger    *zap.Logger
	// Timeout bounds each upstream fetch and each store round-trip.
	Timeout time.Duration
}

// Pipeline implements blacklist check, cache check, fetch, extraction and
// outcome recording for the fetching strategies.
type Pipeline struct {
	cache     resolver.CacheStore
	blacklist resolver.BlacklistStore
	fetcher   resolver.Fetcher
	hasher    resolver.Hasher
	clock     resolver.Clock
	logger    *zap.Logger
	timeout   time.Duration

	inflight singleflight.Group
}

// NewPipeline validates deps and builds a Pipeline.
func NewPipeline(deps Deps) (*Pipeline, error) {
	switch {
	case deps.Cache == nil:
		return nil, errors.New("cache store is required")
	case deps.Blacklist == nil:
		return nil, errors.New("blacklist store is required")
	case deps.Fetcher == nil:
		return nil, errors.New("fetcher is required")
	case deps.Hasher == nil:
		return nil, errors.New("hasher is required")
	case deps.Clock == nil:
		return nil, errors.New("clock is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Pipeline{
		cache:     deps.Cache,
		blacklist: deps.Blacklist,
		fetcher:   deps.Fetcher,
		hasher:    deps.Hasher,
		clock:     deps.Clock,
		logger:    logger,
		timeout:   timeout,
	}, nil
}

func (p *Pipeline) run(ctx context.Context, in Input, extract extractFunc) (resolver.Result, error) {
	key, err := p.hasher.Hash([]byte(in.URL))
	if err != nil {
		return resolver.Result{}, fmt.Errorf("hash %s: %w", in.URL, err)
	}
	logger := p.logger.With(zap.String("url", in.URL), zap.String("service", in.Rule.Name))

	if p.isBlacklisted(ctx, logger, key) {
		metrics.ObserveBlacklistHit()
		return resolver.Result{}, resolver.NewFailure(resolver.Blacklisted, in.URL, nil)
	}
	if imageURL, ok := p.cached(ctx, logger, key); ok {
		return resolver.Result{ImageURL: imageURL, Service: in.Rule.Name}, nil
	}

	resource, ok := resourceURL(in)
	if !ok {
		return resolver.Result{}, resolver.NewFailure(resolver.MissingCapture, in.URL, nil)
	}
	if err := ctx.Err(); err != nil {
		return resolver.Result{}, resolver.NewFailure(resolver.TransportError, in.URL, err)
	}

	// Concurrent resolutions of one page share a single fetch. The shared work
	// is detached from the first caller so another caller's wait is not cut short.
	detached := context.WithoutCancel(ctx)
	ch := p.inflight.DoChan(key, func() (any, error) {
		return p.fetchAndRecord(detached, logger, key, in, resource, extract)
	})
	select {
	case <-ctx.Done():
		return resolver.Result{}, resolver.NewFailure(resolver.TransportError, in.URL, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return resolver.Result{}, res.Err
		}
		result, _ := res.Val.(resolver.Result)
		return result, nil
	}
}

func (p *Pipeline) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.timeout)
}

func (p *Pipeline) isBlacklisted(ctx context.Context, logger *zap.Logger, key string) bool {
	ctx, cancel := p.storeContext(ctx)
	defer cancel()
	listed, err := p.blacklist.Contains(ctx, key)
	if err != nil {
		logger.Warn("blacklist lookup failed, treating as not listed", zap.Error(err))
		return false
	}
	return listed
}

func (p *Pipeline) cached(ctx context.Context, logger *zap.Logger, key string) (string, bool) {
	ctx, cancel := p.storeContext(ctx)
	defer cancel()
	imageURL, ok, err := p.cache.Lookup(ctx, key)
	if err != nil {
		logger.Warn("cache lookup failed, treating as miss", zap.Error(err))
		ok = false
	}
	metrics.ObserveCacheLookup(ok)
	return imageURL, ok
}

// resourceURL is the address to GET. Rules without a template fetch the page itself.
func resourceURL(in Input) (string, bool) {
	if in.Rule.Template == "" {
		return in.URL, in.Rule.Kind == rules.ResponseDOM
	}
	if !requireCaptures(in.Captures, 1) {
		return "", false
	}
	return rules.Format(in.Rule.Template, in.Captures...), true
}

func (p *Pipeline) fetchAndRecord(
	ctx context.Context,
	logger *zap.Logger,
	key string,
	in Input,
	resource string,
	extract extractFunc,
) (resolver.Result, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	resp, err := p.fetcher.Fetch(fetchCtx, resource)
	if err != nil {
		metrics.ObserveFetch(resource, "error", time.Since(start))
		return resolver.Result{}, p.fail(ctx, logger, key, resolver.NewFailure(resolver.TransportError, in.URL, err))
	}
	metrics.ObserveFetch(resource, strconv.Itoa(resp.StatusCode), resp.Duration)
	if !resp.Succeeded() {
		return resolver.Result{}, p.fail(ctx, logger, key, resolver.NewFailure(resolver.NonSuccessStatus, in.URL,
			fmt.Errorf("GET %s returned %d", resource, resp.StatusCode)))
	}

	candidate, found, err := extract(in.Rule, resp.Body)
	if err != nil {
		return resolver.Result{}, p.fail(ctx, logger, key, resolver.NewFailure(resolver.ParseError, in.URL, err))
	}
	candidate = strings.TrimSpace(candidate)
	if !found || !resolver.IsAbsoluteHTTPURL(candidate) {
		return resolver.Result{}, p.fail(ctx, logger, key, resolver.NewFailure(resolver.ExtractionMiss, in.URL,
			fmt.Errorf("candidate %q from %s", candidate, resource)))
	}

	storeCtx, storeCancel := p.storeContext(ctx)
	defer storeCancel()
	if _, err := p.cache.Insert(storeCtx, key, candidate); err != nil {
		logger.Warn("cache insert failed", zap.Error(err))
	}
	logger.Debug("resolved via fetch", zap.String("image_url", candidate), zap.Duration("duration", resp.Duration))
	return resolver.Result{ImageURL: candidate, Service: in.Rule.Name}, nil
}

// fail logs the failure and blacklists the key when the kind calls for it.
func (p *Pipeline) fail(ctx context.Context, logger *zap.Logger, key string, failure *resolver.Failure) error {
	logger.Error("resolution failed", zap.String("kind", string(failure.Kind)), zap.Error(failure.Err))
	if !failure.Kind.Blacklists() {
		return failure
	}
	ctx, cancel := p.storeContext(ctx)
	defer cancel()
	inserted, err := p.blacklist.Insert(ctx, key, p.clock.Now())
	if err != nil {
		logger.Warn("blacklist insert failed", zap.Error(err))
		return failure
	}
	if inserted {
		metrics.ObserveBlacklistInsert()
	}
	return failure
}
