package stages

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
	"github.com/custodia-labs/repovet-cli/internal/core/ports/driven"
)

const (
	// maxConcurrentSubQueries bounds parallel adapter calls within a stage.
	maxConcurrentSubQueries = 4

	// subQueryTimeout is the independent timeout for one sub-query.
	subQueryTimeout = 30 * time.Second

	// subQueryResults caps results fetched per sub-query.
	subQueryResults = 5
)

// subQuery is one independent search within a stage.
type subQuery struct {
	// Label names the source being consulted, e.g. "reddit".
	Label string

	// Query is the full search string, including any platform operators.
	Query string
}

// subQueryOutcome is the result of one sub-query.
type subQueryOutcome struct {
	Label   string
	Query   string
	Results []driven.SearchResult
	Err     error
}

// runSearches executes the sub-queries with bounded parallelism, each under
// its own timeout. Outcomes come back in input order so downstream findings
// are deterministic. A timed-out or cancelled sub-query surfaces as an
// outcome error, never as a panic or a dropped slot.
func runSearches(ctx context.Context, search driven.WebSearch, queries []subQuery) []subQueryOutcome {
	outcomes := make([]subQueryOutcome, len(queries))
	sem := make(chan struct{}, maxConcurrentSubQueries)
	done := make(chan int, len(queries))

	for i := range queries {
		go func(i int) {
			defer func() { done <- i }()
			q := queries[i]
			outcomes[i] = subQueryOutcome{Label: q.Label, Query: q.Query}

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				outcomes[i].Err = ctx.Err()
				return
			}

			qctx, cancel := context.WithTimeout(ctx, subQueryTimeout)
			defer cancel()
			results, err := search.Query(qctx, q.Query, subQueryResults, subQueryTimeout)
			if err != nil {
				outcomes[i].Err = err
				return
			}
			outcomes[i].Results = results
		}(i)
	}

	for range queries {
		<-done
	}
	return outcomes
}

// unavailableFinding turns a failed sub-query into a soft informational
// finding so a single dead source never fails its stage.
func unavailableFinding(dim domain.Dimension, o subQueryOutcome, now time.Time) domain.Finding {
	return domain.Finding{
		Category:    domain.CategorySourceUnavailable,
		Severity:    domain.SeverityInformational,
		Dimension:   dim,
		Description: fmt.Sprintf("%s could not be consulted: %v", o.Label, o.Err),
		Citations: []domain.Citation{{
			Source:      domain.SourceWebSearchResult,
			Location:    o.Query,
			RetrievedAt: now,
			Snippet:     o.Err.Error(),
		}},
	}
}

// allFailed reports whether every sub-query errored, and joins the errors.
func allFailed(outcomes []subQueryOutcome) (bool, error) {
	if len(outcomes) == 0 {
		return false, nil
	}
	errs := make([]error, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err == nil {
			return false, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", o.Label, o.Err))
	}
	return true, errors.Join(errs...)
}
