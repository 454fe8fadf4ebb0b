package resolver

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a resolution did not produce an image URL.
type FailureKind string

// Failure kinds reported by the dispatcher and strategies.
const (
	NoMatchingRule      FailureKind = "no_matching_rule"
	MissingCapture      FailureKind = "missing_capture"
	InvalidCandidateURL FailureKind = "invalid_candidate_url"
	Blacklisted         FailureKind = "blacklisted"
	TransportError      FailureKind = "transport_error"
	NonSuccessStatus    FailureKind = "non_success_status"
	ParseError          FailureKind = "parse_error"
	ExtractionMiss      FailureKind = "extraction_miss"
)

var reasons = map[FailureKind]string{
	NoMatchingRule:      "unsupported URL",
	MissingCapture:      "URL is missing the image identifier",
	InvalidCandidateURL: "resolved location is not an absolute http(s) URL",
	Blacklisted:         "source failed recently, try again later",
	TransportError:      "failed to load the source page",
	NonSuccessStatus:    "source page returned an error status",
	ParseError:          "failed to parse the source page",
	ExtractionMiss:      "image location not found on the source page",
}

// Reason returns the short, user-facing description for the kind.
func (k FailureKind) Reason() string {
	if r, ok := reasons[k]; ok {
		return r
	}
	return "resolution failed"
}

// Blacklists reports whether a failure of this kind marks the source as unreliable.
func (k FailureKind) Blacklists() bool {
	switch k {
	case TransportError, NonSuccessStatus, ParseError, ExtractionMiss:
		return true
	default:
		return false
	}
}

// Failure is the error returned for every unsuccessful resolution.
type Failure struct {
	Kind FailureKind
	URL  string
	Err  error
}

// NewFailure builds a Failure, optionally carrying the underlying cause.
func NewFailure(kind FailureKind, url string, cause error) *Failure {
	return &Failure{Kind: kind, URL: url, Err: cause}
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.URL, f.Kind.Reason(), f.Err)
	}
	return fmt.Sprintf("%s: %s", f.URL, f.Kind.Reason())
}

// Unwrap exposes the underlying cause.
func (f *Failure) Unwrap() error { return f.Err }

// Reason is the message safe to show to callers; it never includes the cause.
func (f *Failure) Reason() string { return f.Kind.Reason() }

// KindOf extracts the failure kind from err. Errors that are not a Failure
// report ok=false.
func KindOf(err error) (FailureKind, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return "", false
}

// ReasonOf returns the user-facing reason for err.
func ReasonOf(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason()
	}
	return "resolution failed"
}
