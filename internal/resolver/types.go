package resolver

import "time"

// Result is a successful resolution of a photo page into its raw image.
type Result struct {
	ImageURL string `json:"image_url"`
	Service  string `json:"service"`
}

// FetchResponse is what a Fetcher hands back for a single GET.
type FetchResponse struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Succeeded reports whether the upstream answered with a 2xx status.
func (r FetchResponse) Succeeded() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
