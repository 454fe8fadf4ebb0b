package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/JakeFAU/imgresolver/internal/resolver"
	"github.com/JakeFAU/imgresolver/internal/rules"
)

// Substitute splices the first Captures groups into the rule template.
type Substitute struct {
	Captures int
}

// Execute formats the template; it never touches the network or the stores.
func (s Substitute) Execute(_ context.Context, in Input) (resolver.Result, error) {
	n := s.Captures
	if n < 1 {
		n = 1
	}
	if !requireCaptures(in.Captures, n) {
		return resolver.Result{}, resolver.NewFailure(resolver.MissingCapture, in.URL,
			fmt.Errorf("want %d captures, got %q", n, in.Captures))
	}
	candidate := strings.TrimSpace(rules.Format(in.Rule.Template, in.Captures[:n]...))
	if !resolver.IsAbsoluteHTTPURL(candidate) {
		return resolver.Result{}, resolver.NewFailure(resolver.InvalidCandidateURL, in.URL,
			fmt.Errorf("candidate %q", candidate))
	}
	return resolver.Result{ImageURL: candidate, Service: in.Rule.Name}, nil
}
