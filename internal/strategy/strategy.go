// Package strategy turns a matched rule and its captures into an image URL.
//
// Substitution strategies are pure string work. Fetching strategies share a
// Pipeline that consults the blacklist and cache, performs one GET and
// records the outcome.
package strategy

import (
	"context"

	"github.com/JakeFAU/imgresolver/internal/resolver"
	"github.com/JakeFAU/imgresolver/internal/rules"
)

// Input is everything a strategy needs for one resolution.
type Input struct {
	URL      string
	Rule     *rules.Rule
	Captures []string
}

// Strategy resolves a matched URL. Failures are returned as *resolver.Failure.
type Strategy interface {
	Execute(ctx context.Context, in Input) (resolver.Result, error)
}

// ForKinds returns the strategy for every rule kind, with fetching kinds bound
// to p.
func ForKinds(p *Pipeline) map[rules.Kind]Strategy {
	return map[rules.Kind]Strategy{
		rules.SingleReplace: Substitute{Captures: 1},
		rules.DoubleReplace: Substitute{Captures: 2},
		rules.ResponseRegex: NewRegexCapture(p),
		rules.ResponseJSON:  NewJSONExtract(p),
		rules.ResponseDOM:   NewDOMExtract(p),
	}
}

// requireCaptures reports whether the first n captures are present and non-empty.
func requireCaptures(captures []string, n int) bool {
	if len(captures) < n {
		return false
	}
	for _, c := range captures[:n] {
		if c == "" {
			return false
		}
	}
	return true
}
