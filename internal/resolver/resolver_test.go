package resolver

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsAbsoluteHTTPURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"http", "http://twitpic.com/show/large/abc.jpg", true},
		{"https upper scheme", "HTTPS://example.com/a.png", true},
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"padded", "\n  http://img.yfrog.com/a.jpg\n", false},
		{"trailing space", "http://img.yfrog.com/a.jpg ", false},
		{"relative path", "/images/a.jpg", false},
		{"protocol relative", "//cdn.example.com/a.jpg", false},
		{"ftp", "ftp://example.com/a.jpg", false},
		{"javascript", "javascript:alert(1)", false},
		{"no host", "http:///a.jpg", false},
		{"garbage", "http://%zz", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, IsAbsoluteHTTPURL(tt.input))
		})
	}
}

func TestFailureKindBlacklists(t *testing.T) {
	t.Parallel()

	blacklisting := []FailureKind{TransportError, NonSuccessStatus, ParseError, ExtractionMiss}
	for _, k := range blacklisting {
		require.True(t, k.Blacklists(), "kind %s should blacklist", k)
	}
	benign := []FailureKind{NoMatchingRule, MissingCapture, InvalidCandidateURL, Blacklisted}
	for _, k := range benign {
		require.False(t, k.Blacklists(), "kind %s should not blacklist", k)
	}
}

func TestFailureReasonHidesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp 10.0.0.1:80: connection refused")
	err := fmt.Errorf("resolve: %w", NewFailure(TransportError, "http://yfrog.com/abc", cause))

	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, TransportError, kind)
	require.Equal(t, "failed to load the source page", ReasonOf(err))
	require.NotContains(t, ReasonOf(err), "10.0.0.1")
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "connection refused")
}

func TestNoMatchingRuleReason(t *testing.T) {
	t.Parallel()

	require.Equal(t, "unsupported URL", NoMatchingRule.Reason())
	_, ok := KindOf(errors.New("plain"))
	require.False(t, ok)
	require.Equal(t, "resolution failed", ReasonOf(errors.New("plain")))
}

func TestFetchResponseSucceeded(t *testing.T) {
	t.Parallel()

	require.True(t, FetchResponse{StatusCode: http.StatusOK}.Succeeded())
	require.True(t, FetchResponse{StatusCode: http.StatusNoContent}.Succeeded())
	require.False(t, FetchResponse{StatusCode: http.StatusMovedPermanently}.Succeeded())
	require.False(t, FetchResponse{StatusCode: http.StatusInternalServerError}.Succeeded())
}
