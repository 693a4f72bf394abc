// Package memory provides in-memory adapter implementations used in tests
// and as the default store when no data directory is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
	"github.com/custodia-labs/repovet-cli/internal/core/ports/driven"
)

// Ensure EvaluationStore implements the interface.
var _ driven.EvaluationStore = (*EvaluationStore)(nil)

// EvaluationStore is an in-memory implementation of driven.EvaluationStore.
type EvaluationStore struct {
	mu          sync.RWMutex
	evaluations map[string]domain.Evaluation
	reports     map[string]domain.Report
}

// NewEvaluationStore creates a new in-memory evaluation store.
func NewEvaluationStore() *EvaluationStore {
	return &EvaluationStore{
		evaluations: make(map[string]domain.Evaluation),
		reports:     make(map[string]domain.Report),
	}
}

// SaveEvaluation stores or replaces an evaluation record.
func (s *EvaluationStore) SaveEvaluation(_ context.Context, eval *domain.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evaluations[eval.ID] = *eval
	return nil
}

// SaveReport stores the rendered report for an evaluation.
func (s *EvaluationStore) SaveReport(_ context.Context, report *domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.EvaluationID] = *report
	return nil
}

// GetEvaluation retrieves an evaluation by ID.
func (s *EvaluationStore) GetEvaluation(_ context.Context, id string) (*domain.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	eval, ok := s.evaluations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &eval, nil
}

// GetReport retrieves the report for an evaluation ID.
func (s *EvaluationStore) GetReport(_ context.Context, evaluationID string) (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[evaluationID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &report, nil
}

// ListEvaluations returns stored evaluations, newest first.
func (s *EvaluationStore) ListEvaluations(_ context.Context) ([]domain.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Evaluation, 0, len(s.evaluations))
	for id := range s.evaluations {
		out = append(out, s.evaluations[id])
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
