package github

import (
	"context"
	"net/http"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/repovet-cli/internal/core/ports/driven"
)

// defaultTimeout is the HTTP request timeout for GitHub API calls.
const defaultTimeout = 30 * time.Second

// Factory creates repository readers sharing one authenticated client and
// rate limiter. It implements driven.ReaderFactory.
type Factory struct {
	client  *gh.Client
	limiter *rateLimiter
}

var _ driven.ReaderFactory = (*Factory)(nil)

// NewFactory creates a reader factory. An empty token uses unauthenticated
// access, which GitHub limits to 60 requests/hour.
func NewFactory(token string) *Factory {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = defaultTimeout

	return &Factory{
		client:  gh.NewClient(httpClient),
		limiter: newRateLimiter(),
	}
}

// Reader returns a RepositoryReader bound to owner/name.
func (f *Factory) Reader(owner, name string) (driven.RepositoryReader, error) {
	return &Reader{
		client:  f.client,
		limiter: f.limiter,
		owner:   owner,
		name:    name,
	}, nil
}
