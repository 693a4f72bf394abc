package driven

import (
	"context"
	"time"
)

// SearchResult is one ranked web search hit.
type SearchResult struct {
	// URL is the result location.
	URL string

	// Snippet is the result excerpt.
	Snippet string

	// RetrievedAt is when the result was fetched.
	RetrievedAt time.Time
}

// WebSearch queries an external search backend. Query construction
// (platform-specific operators, site: filters) is the caller's concern.
// Implementations classify retryable failures with domain.Transient.
type WebSearch interface {
	// Query runs a search and returns up to maxResults ranked hits.
	// The call must respect ctx cancellation and the given timeout.
	Query(ctx context.Context, text string, maxResults int, timeout time.Duration) ([]SearchResult, error)
}
