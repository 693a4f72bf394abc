package github

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
)

// ErrNoToken indicates no GitHub token is configured. Unauthenticated
// access works for public repositories but at a 60/hour quota.
var ErrNoToken = errors.New("github: no token configured")

// classify maps a go-github call error onto the core error taxonomy:
// 404 becomes domain.ErrNotFound, rate limits and 5xx become transient,
// everything else stays permanent.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return domain.Transient(fmt.Errorf("github: rate limited: %w", err))
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.Transient(fmt.Errorf("github: %w", err))
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.Transient(fmt.Errorf("github: %w", err))
	}

	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch {
		case respErr.Response.StatusCode == http.StatusNotFound:
			return fmt.Errorf("github: %w: %s", domain.ErrNotFound, respErr.Message)
		case respErr.Response.StatusCode >= 500:
			return domain.Transient(fmt.Errorf("github: server error: %w", err))
		}
	}

	return fmt.Errorf("github: %w", err)
}
