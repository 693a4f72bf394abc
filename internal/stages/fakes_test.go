package stages

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
	"github.com/custodia-labs/repovet-cli/internal/core/ports/driven"
)

// fakeRepo serves repository content from maps.
type fakeRepo struct {
	files    map[string]string
	commits  []driven.Commit
	metadata *driven.RepoMetadata

	fileErr     error
	listErr     error
	commitsErr  error
	metadataErr error
}

func (r *fakeRepo) GetFile(_ context.Context, path string) (string, error) {
	if r.fileErr != nil {
		return "", r.fileErr
	}
	content, ok := r.files[path]
	if !ok {
		return "", fmt.Errorf("%s: %w", path, domain.ErrNotFound)
	}
	return content, nil
}

func (r *fakeRepo) ListFiles(_ context.Context) ([]string, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	paths := make([]string, 0, len(r.files))
	for p := range r.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

func (r *fakeRepo) ListCommits(_ context.Context, rng driven.CommitRange) ([]driven.Commit, error) {
	if r.commitsErr != nil {
		return nil, r.commitsErr
	}
	out := r.commits
	if rng.Limit > 0 && len(out) > rng.Limit {
		out = out[:rng.Limit]
	}
	return out, nil
}

func (r *fakeRepo) GetMetadata(_ context.Context) (*driven.RepoMetadata, error) {
	if r.metadataErr != nil {
		return nil, r.metadataErr
	}
	return r.metadata, nil
}

// scriptedSearch answers queries by substring match against its script.
type scriptedSearch struct {
	// script maps a query substring to its results.
	script map[string][]driven.SearchResult

	// err, when set, fails queries whose substring is in failing (or all
	// queries when failing is empty).
	err     error
	failing []string
}

func (s *scriptedSearch) Query(_ context.Context, text string, maxResults int, _ time.Duration) ([]driven.SearchResult, error) {
	if s.err != nil {
		if len(s.failing) == 0 {
			return nil, s.err
		}
		for _, sub := range s.failing {
			if strings.Contains(text, sub) {
				return nil, s.err
			}
		}
	}
	for sub, results := range s.script {
		if strings.Contains(text, sub) {
			if len(results) > maxResults {
				results = results[:maxResults]
			}
			return results, nil
		}
	}
	return nil, nil
}

func testEval() *domain.Evaluation {
	return domain.NewEvaluation("eval-1", domain.RepoRef{Owner: "acme", Name: "widget"}, time.Now())
}

func hit(url, snippet string) driven.SearchResult {
	return driven.SearchResult{URL: url, Snippet: snippet, RetrievedAt: time.Now().Add(-time.Minute)}
}

// findByCategory returns the first finding with the category, or nil.
func findByCategory(findings []domain.Finding, category string) *domain.Finding {
	for i := range findings {
		if findings[i].Category == category {
			return &findings[i]
		}
	}
	return nil
}
