// Package google implements the WebSearch capability over the Google
// Programmable Search JSON API. Each query runs under the caller's timeout;
// quota and server errors are classified transient so the orchestrator can
// retry them.
package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
	"github.com/custodia-labs/repovet-cli/internal/core/ports/driven"
)

// maxPerQuery is the API's hard cap on results per call.
const maxPerQuery = 10

// Search implements driven.WebSearch.
type Search struct {
	svc      *customsearch.Service
	engineID string
}

var _ driven.WebSearch = (*Search)(nil)

// NewSearch creates the adapter with an API key and search engine ID.
func NewSearch(ctx context.Context, apiKey, engineID string) (*Search, error) {
	if apiKey == "" || engineID == "" {
		return nil, fmt.Errorf("%w: search API key and engine ID required", domain.ErrInvalidInput)
	}
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create search service: %w", err)
	}
	return &Search{svc: svc, engineID: engineID}, nil
}

// Query runs one search and returns up to maxResults ranked hits.
func (s *Search) Query(ctx context.Context, text string, maxResults int, timeout time.Duration) ([]driven.SearchResult, error) {
	if maxResults <= 0 || maxResults > maxPerQuery {
		maxResults = maxPerQuery
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := s.svc.Cse.List().
		Q(text).
		Cx(s.engineID).
		Num(int64(maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify(err)
	}

	now := time.Now().UTC()
	results := make([]driven.SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, driven.SearchResult{
			URL:         item.Link,
			Snippet:     item.Snippet,
			RetrievedAt: now,
		})
	}
	return results, nil
}

// classify maps API errors onto the core taxonomy: quota exhaustion, 5xx
// and timeouts are transient, everything else permanent.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.Transient(fmt.Errorf("websearch: %w", err))
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.Transient(fmt.Errorf("websearch: %w", err))
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500 {
			return domain.Transient(fmt.Errorf("websearch: %w", err))
		}
	}
	return fmt.Errorf("websearch: %w", err)
}
