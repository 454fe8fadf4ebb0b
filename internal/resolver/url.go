package resolver

import (
	"net/url"
	"strings"
)

// IsAbsoluteHTTPURL is the single gate deciding whether a candidate may be
// returned as an image location: non-empty, absolute, http or https, with a host.
// Surrounding whitespace is rejected; callers trim before the check.
func IsAbsoluteHTTPURL(candidate string) bool {
	if candidate == "" || strings.TrimSpace(candidate) != candidate {
		return false
	}
	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return false
	}
	return u.Host != ""
}
