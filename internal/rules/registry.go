package rules

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// matchTimeout bounds a single pattern evaluation; a timeout counts as no match.
const matchTimeout = 250 * time.Millisecond

// Registry is the ordered, immutable set of compiled rules.
type Registry struct {
	rules []*Rule
	names []string
}

// Compile validates and compiles defs in order. Any malformed rule is a
// configuration bug and fails the whole registry.
func Compile(defs []Definition) (*Registry, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("no rules defined")
	}
	reg := &Registry{rules: make([]*Rule, 0, len(defs))}
	seen := make(map[string]struct{}, len(defs))
	for i, def := range defs {
		rule, err := compileRule(i, def)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, def.Name, err)
		}
		reg.rules = append(reg.rules, rule)
		if _, ok := seen[def.Name]; !ok {
			seen[def.Name] = struct{}{}
			reg.names = append(reg.names, def.Name)
		}
	}
	slices.SortStableFunc(reg.names, func(a, b string) int {
		return strings.Compare(strings.ToUpper(a), strings.ToUpper(b))
	})
	return reg, nil
}

func compileRule(index int, def Definition) (*Rule, error) {
	if strings.TrimSpace(def.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	pattern, err := compilePattern(def.Pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern: %w", err)
	}
	rule := &Rule{
		Name:        def.Name,
		Kind:        def.Kind,
		Template:    def.Template,
		ExtractJSON: def.ExtractJSON,
		ExtractDOM:  def.ExtractDOM,
		pattern:     pattern,
		index:       index,
	}
	groups := len(pattern.GetGroupNumbers()) - 1

	switch def.Kind {
	case SingleReplace, DoubleReplace:
		want := 1
		if def.Kind == DoubleReplace {
			want = 2
		}
		if def.Template == "" {
			return nil, fmt.Errorf("%s requires a template", def.Kind)
		}
		if groups < want {
			return nil, fmt.Errorf("%s requires %d capture groups, pattern has %d", def.Kind, want, groups)
		}
	case ResponseRegex:
		if def.Template == "" || def.ResponsePattern == "" {
			return nil, fmt.Errorf("%s requires a template and a response pattern", def.Kind)
		}
		if groups < 1 {
			return nil, fmt.Errorf("%s requires a capture group", def.Kind)
		}
		response, err := compilePattern(def.ResponsePattern)
		if err != nil {
			return nil, fmt.Errorf("compile response pattern: %w", err)
		}
		if len(response.GetGroupNumbers()) < 2 {
			return nil, fmt.Errorf("response pattern requires a capture group")
		}
		rule.response = response
	case ResponseJSON:
		if def.Template == "" || def.ExtractJSON == nil {
			return nil, fmt.Errorf("%s requires a template and a JSON extractor", def.Kind)
		}
		if groups < 1 {
			return nil, fmt.Errorf("%s requires a capture group", def.Kind)
		}
	case ResponseDOM:
		if def.ExtractDOM == nil {
			return nil, fmt.Errorf("%s requires a DOM extractor", def.Kind)
		}
		if def.Template != "" && groups < 1 {
			return nil, fmt.Errorf("%s with a template requires a capture group", def.Kind)
		}
	default:
		return nil, fmt.Errorf("unknown strategy %s", def.Kind)
	}
	return rule, nil
}

func compilePattern(expr string) (*regexp2.Regexp, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	re, err := regexp2.Compile(expr, regexp2.IgnoreCase)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by caller
	}
	re.MatchTimeout = matchTimeout
	return re, nil
}

// FindMatch returns the first rule, in definition order, whose pattern matches
// url, together with the captured groups.
func (r *Registry) FindMatch(url string) (*Rule, []string, bool) {
	for _, rule := range r.rules {
		if captures, ok := rule.Match(url); ok {
			return rule, captures, true
		}
	}
	return nil, nil, false
}

// ServiceNames returns the distinct rule names sorted case-insensitively.
func (r *Registry) ServiceNames() []string {
	return slices.Clone(r.names)
}

// Rules enumerates the compiled rules in definition order.
func (r *Registry) Rules() []*Rule {
	return slices.Clone(r.rules)
}
