package rules

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/dlclark/regexp2"
)

// Kind selects the retrieval strategy used for a rule.
type Kind int

// Strategy kinds, in the order the rule table was historically numbered.
const (
	SingleReplace Kind = iota
	DoubleReplace
	ResponseRegex
	ResponseJSON
	ResponseDOM
)

func (k Kind) String() string {
	switch k {
	case SingleReplace:
		return "single_replace"
	case DoubleReplace:
		return "double_replace"
	case ResponseRegex:
		return "response_regex"
	case ResponseJSON:
		return "response_json"
	case ResponseDOM:
		return "response_dom"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Fetches reports whether the kind needs a network round-trip (and therefore
// the cache and blacklist).
func (k Kind) Fetches() bool {
	return k == ResponseRegex || k == ResponseJSON || k == ResponseDOM
}

// JSONExtractor pulls the image URL out of a decoded JSON document.
type JSONExtractor func(data any) (string, bool)

// DOMExtractor pulls the image URL out of a parsed HTML document.
type DOMExtractor func(doc *goquery.Document) (string, bool)

// Definition is the uncompiled form of a rule as written in the table.
type Definition struct {
	Name            string
	Pattern         string
	Kind            Kind
	Template        string
	ResponsePattern string
	ExtractJSON     JSONExtractor
	ExtractDOM      DOMExtractor
}

// Rule is a compiled Definition. Rules are shared across goroutines and must
// not be modified after Compile.
type Rule struct {
	Name        string
	Kind        Kind
	Template    string
	ExtractJSON JSONExtractor
	ExtractDOM  DOMExtractor

	pattern  *regexp2.Regexp
	response *regexp2.Regexp
	index    int
}

// Index is the rule's position in the table.
func (r *Rule) Index() int { return r.index }

// Match tests url against the rule pattern and returns groups 1..n.
func (r *Rule) Match(url string) ([]string, bool) {
	m, err := r.pattern.FindStringMatch(url)
	if err != nil || m == nil {
		return nil, false
	}
	groups := m.Groups()
	captures := make([]string, 0, len(groups)-1)
	for _, g := range groups[1:] {
		captures = append(captures, g.String())
	}
	return captures, true
}

// CaptureResponse applies the response pattern to body and returns its first
// group. Rules without a response pattern never capture.
func (r *Rule) CaptureResponse(body string) (string, bool) {
	if r.response == nil {
		return "", false
	}
	m, err := r.response.FindStringMatch(body)
	if err != nil || m == nil {
		return "", false
	}
	g := m.GroupByNumber(1)
	if g == nil || g.String() == "" {
		return "", false
	}
	return g.String(), true
}
