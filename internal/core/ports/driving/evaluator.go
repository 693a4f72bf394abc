package driving

import (
	"context"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
)

// Evaluator runs the evaluation pipeline for a repository and exposes the
// results.
type Evaluator interface {
	// Evaluate runs the full pipeline for the repository and returns the
	// finalized (or aborted) evaluation together with its report. The
	// report is nil when the evaluation aborted.
	Evaluate(ctx context.Context, repo domain.RepoRef) (*domain.Evaluation, *domain.Report, error)

	// Status returns progress for a running evaluation, or nil if none is
	// active for the repository.
	Status(ctx context.Context, repo domain.RepoRef) (*EvaluationStatus, error)
}

// EvaluationStatus reports pipeline progress for one running evaluation.
type EvaluationStatus struct {
	// EvaluationID identifies the run.
	EvaluationID string

	// Repo is the repository under evaluation.
	Repo domain.RepoRef

	// CurrentStage is the stage currently running, empty between stages.
	CurrentStage domain.StageName

	// StagesDone is the count of stages in a terminal status.
	StagesDone int

	// FindingCount is the number of findings recorded so far.
	FindingCount int
}
