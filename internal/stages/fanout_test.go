package stages

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
	"github.com/custodia-labs/repovet-cli/internal/core/ports/driven"
)

// countingSearch records peak concurrency while serving queries.
type countingSearch struct {
	mu      sync.Mutex
	current int32
	peak    int32

	delay time.Duration
	errFn func(text string) error
}

func (s *countingSearch) Query(_ context.Context, text string, _ int, _ time.Duration) ([]driven.SearchResult, error) {
	cur := atomic.AddInt32(&s.current, 1)
	defer atomic.AddInt32(&s.current, -1)
	s.mu.Lock()
	if cur > s.peak {
		s.peak = cur
	}
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.errFn != nil {
		if err := s.errFn(text); err != nil {
			return nil, err
		}
	}
	return []driven.SearchResult{hit("https://example.com/"+text, "snippet for "+text)}, nil
}

func queriesN(n int) []subQuery {
	out := make([]subQuery, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, subQuery{Label: fmt.Sprintf("source-%d", i), Query: fmt.Sprintf("query-%d", i)})
	}
	return out
}

func TestRunSearches_OutcomesInInputOrder(t *testing.T) {
	search := &countingSearch{delay: time.Millisecond}
	queries := queriesN(8)

	outcomes := runSearches(context.Background(), search, queries)

	require.Len(t, outcomes, len(queries))
	for i, o := range outcomes {
		assert.Equal(t, queries[i].Label, o.Label)
		assert.Equal(t, queries[i].Query, o.Query)
		require.NoError(t, o.Err)
		require.Len(t, o.Results, 1)
	}
}

func TestRunSearches_BoundedConcurrency(t *testing.T) {
	search := &countingSearch{delay: 20 * time.Millisecond}

	runSearches(context.Background(), search, queriesN(12))

	search.mu.Lock()
	peak := search.peak
	search.mu.Unlock()
	assert.LessOrEqual(t, peak, int32(maxConcurrentSubQueries))
}

func TestRunSearches_PartialFailure(t *testing.T) {
	search := &countingSearch{errFn: func(text string) error {
		if text == "query-1" {
			return domain.Transient(errors.New("timeout"))
		}
		return nil
	}}

	outcomes := runSearches(context.Background(), search, queriesN(3))

	require.Len(t, outcomes, 3)
	assert.NoError(t, outcomes[0].Err)
	assert.Error(t, outcomes[1].Err)
	assert.NoError(t, outcomes[2].Err)
}

func TestRunSearches_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	search := &countingSearch{}

	outcomes := runSearches(ctx, search, queriesN(6))

	require.Len(t, outcomes, 6)
	for _, o := range outcomes {
		// Either the semaphore select or the query context reports the
		// cancellation; no slot is dropped.
		if o.Err == nil {
			assert.NotEmpty(t, o.Results)
		}
	}
}

func TestUnavailableFinding(t *testing.T) {
	now := time.Now()
	o := subQueryOutcome{
		Label: "reddit",
		Query: "site:reddit.com widget",
		Err:   errors.New("connection refused"),
	}

	f := unavailableFinding(domain.DimensionUsability, o, now)

	assert.Equal(t, domain.CategorySourceUnavailable, f.Category)
	assert.Equal(t, domain.SeverityInformational, f.Severity)
	assert.Equal(t, domain.DimensionUsability, f.Dimension)
	assert.False(t, f.Negative())
	assert.Contains(t, f.Description, "reddit")
	require.Len(t, f.Citations, 1)
	assert.Equal(t, domain.SourceWebSearchResult, f.Citations[0].Source)
	assert.Equal(t, o.Query, f.Citations[0].Location)
	assert.Equal(t, now, f.Citations[0].RetrievedAt)
}

func TestAllFailed(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name     string
		outcomes []subQueryOutcome
		expected bool
	}{
		{"empty", nil, false},
		{"all errored", []subQueryOutcome{{Label: "a", Err: boom}, {Label: "b", Err: boom}}, true},
		{"one survived", []subQueryOutcome{{Label: "a", Err: boom}, {Label: "b"}}, false},
		{"none errored", []subQueryOutcome{{Label: "a"}, {Label: "b"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failed, err := allFailed(tt.outcomes)
			assert.Equal(t, tt.expected, failed)
			if tt.expected {
				assert.ErrorIs(t, err, boom)
			}
		})
	}
}
