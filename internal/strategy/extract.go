package strategy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/imgresolver/internal/resolver"
	"github.com/JakeFAU/imgresolver/internal/rules"
)

// extractFunc pulls a candidate from a fetched body. err means the body could
// not be parsed; found=false means it parsed but held no candidate.
type extractFunc func(rule *rules.Rule, body []byte) (candidate string, found bool, err error)

// Fetching is a Strategy that runs the shared Pipeline with one extraction step.
type Fetching struct {
	pipeline *Pipeline
	extract  extractFunc
}

// Execute runs the pipeline.
func (f Fetching) Execute(ctx context.Context, in Input) (resolver.Result, error) {
	return f.pipeline.run(ctx, in, f.extract)
}

// NewRegexCapture returns the strategy that applies the rule's response pattern
// to the raw body.
func NewRegexCapture(p *Pipeline) Fetching {
	return Fetching{pipeline: p, extract: captureRegex}
}

// NewJSONExtract returns the strategy that decodes the body as JSON and runs
// the rule's JSON extractor.
func NewJSONExtract(p *Pipeline) Fetching {
	return Fetching{pipeline: p, extract: extractJSON}
}

// NewDOMExtract returns the strategy that parses the body as HTML and runs the
// rule's DOM extractor.
func NewDOMExtract(p *Pipeline) Fetching {
	return Fetching{pipeline: p, extract: extractDOM}
}

func captureRegex(rule *rules.Rule, body []byte) (string, bool, error) {
	candidate, ok := rule.CaptureResponse(string(body))
	return candidate, ok, nil
}

func extractJSON(rule *rules.Rule, body []byte) (string, bool, error) {
	if rule.ExtractJSON == nil {
		return "", false, nil
	}
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return "", false, fmt.Errorf("decode json: %w", err)
	}
	candidate, ok := rule.ExtractJSON(data)
	return candidate, ok, nil
}

func extractDOM(rule *rules.Rule, body []byte) (string, bool, error) {
	if rule.ExtractDOM == nil {
		return "", false, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("parse html: %w", err)
	}
	candidate, ok := rule.ExtractDOM(doc)
	return candidate, ok, nil
}
