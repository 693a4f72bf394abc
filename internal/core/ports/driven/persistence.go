package driven

import (
	"context"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
)

// EvaluationStore persists finalized evaluations and their reports.
// Archival and deletion are store concerns; the core only writes and reads.
type EvaluationStore interface {
	// SaveEvaluation stores or replaces an evaluation record.
	SaveEvaluation(ctx context.Context, eval *domain.Evaluation) error

	// SaveReport stores the rendered report for an evaluation.
	SaveReport(ctx context.Context, report *domain.Report) error

	// GetEvaluation retrieves an evaluation by ID.
	// Returns domain.ErrNotFound if absent.
	GetEvaluation(ctx context.Context, id string) (*domain.Evaluation, error)

	// GetReport retrieves the report for an evaluation ID.
	// Returns domain.ErrNotFound if absent.
	GetReport(ctx context.Context, evaluationID string) (*domain.Report, error)

	// ListEvaluations returns stored evaluations, newest first.
	ListEvaluations(ctx context.Context) ([]domain.Evaluation, error)
}
