// Package dispatcher matches page URLs to rules and fans resolutions out to
// the strategy registered for each rule kind.
package dispatcher

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/JakeFAU/imgresolver/internal/metrics"
	"github.com/JakeFAU/imgresolver/internal/resolver"
	"github.com/JakeFAU/imgresolver/internal/rules"
	"github.com/JakeFAU/imgresolver/internal/strategy"
)

// Dispatcher resolves page URLs against an immutable rule registry.
type Dispatcher struct {
	registry   *rules.Registry
	strategies map[rules.Kind]strategy.Strategy
	logger     *zap.Logger

	wg sync.WaitGroup
}

// New creates a Dispatcher. strategies is copied.
func New(registry *rules.Registry, strategies map[rules.Kind]strategy.Strategy, logger *zap.Logger) (*Dispatcher, error) {
	if registry == nil {
		return nil, errors.New("rule registry is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	copied := make(map[rules.Kind]strategy.Strategy, len(strategies))
	for kind, s := range strategies {
		copied[kind] = s
	}
	return &Dispatcher{
		registry:   registry,
		strategies: copied,
		logger:     logger,
	}, nil
}

// Resolve finds the first matching rule and runs its strategy. Every failure
// is a *resolver.Failure except caller-side context errors from a strategy.
func (d *Dispatcher) Resolve(ctx context.Context, url string) (resolver.Result, error) {
	rule, captures, ok := d.registry.FindMatch(url)
	if !ok {
		metrics.ObserveResolution("", "", string(resolver.NoMatchingRule))
		return resolver.Result{}, resolver.NewFailure(resolver.NoMatchingRule, url, nil)
	}
	s, ok := d.strategies[rule.Kind]
	if !ok {
		d.logger.Error("no strategy registered for rule kind",
			zap.String("service", rule.Name), zap.Stringer("kind", rule.Kind))
		metrics.ObserveResolution(rule.Name, rule.Kind.String(), string(resolver.NoMatchingRule))
		return resolver.Result{}, resolver.NewFailure(resolver.NoMatchingRule, url, nil)
	}

	result, err := s.Execute(ctx, strategy.Input{URL: url, Rule: rule, Captures: captures})
	metrics.ObserveResolution(rule.Name, rule.Kind.String(), outcome(err))
	if err != nil {
		return resolver.Result{}, err
	}
	return result, nil
}

// ResolveAsync runs Resolve on its own goroutine and calls exactly one of
// onSuccess or onFailure when it completes. Either callback may be nil.
func (d *Dispatcher) ResolveAsync(
	ctx context.Context,
	url string,
	onSuccess func(imageURL, service string),
	onFailure func(reason string),
) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		result, err := d.Resolve(ctx, url)
		if err != nil {
			if onFailure != nil {
				onFailure(resolver.ReasonOf(err))
			}
			return
		}
		if onSuccess != nil {
			onSuccess(result.ImageURL, result.Service)
		}
	}()
}

// Wait blocks until every ResolveAsync call has delivered its callback.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// ServiceNames lists supported services, deduplicated and sorted.
func (d *Dispatcher) ServiceNames() []string {
	return d.registry.ServiceNames()
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	if kind, ok := resolver.KindOf(err); ok {
		return string(kind)
	}
	return "error"
}
