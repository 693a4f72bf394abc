package stages

import (
	"context"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
	"github.com/custodia-labs/repovet-cli/internal/core/ports/driven"
)

// Adapters bundles the capability adapters a stage handler may call.
type Adapters struct {
	// Repo reads the repository under evaluation.
	Repo driven.RepositoryReader

	// Search queries the web search backend. May be nil when search is not
	// configured; handlers needing it must fail with a permanent error.
	Search driven.WebSearch
}

// Handler is one pipeline phase. Run must be side-effect free apart from
// adapter calls: it returns proposed findings and never mutates the
// evaluation it is given.
type Handler interface {
	// Name identifies the phase.
	Name() domain.StageName

	// Requires lists hard prerequisite stages. If any did not complete,
	// the orchestrator skips this stage.
	Requires() []domain.StageName

	// Run executes the phase against a read-only evaluation snapshot.
	// Retryable adapter failures are returned wrapped with
	// domain.Transient; everything else is treated as permanent.
	Run(ctx context.Context, eval *domain.Evaluation, adapters Adapters) ([]domain.Finding, error)
}

// DefaultHandlers returns the seven handlers in pipeline execution order.
func DefaultHandlers() []Handler {
	return []Handler{
		&MetadataStage{},
		&PurposeStage{},
		&AlternativesStage{},
		&CodeReviewStage{},
		&CommunityStage{},
		&RiskStage{},
		&UsabilityStage{},
	}
}
