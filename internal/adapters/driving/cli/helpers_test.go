package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	configfile "github.com/custodia-labs/repovet-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/repovet-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/repovet-cli/internal/core/domain"
	"github.com/custodia-labs/repovet-cli/internal/core/ports/driving"
)

// stubEvaluator is a scriptable driving.Evaluator for command tests.
type stubEvaluator struct {
	eval   *domain.Evaluation
	report *domain.Report
	err    error
}

func (s *stubEvaluator) Evaluate(_ context.Context, _ domain.RepoRef) (*domain.Evaluation, *domain.Report, error) {
	return s.eval, s.report, s.err
}

func (s *stubEvaluator) Status(_ context.Context, _ domain.RepoRef) (*driving.EvaluationStatus, error) {
	return nil, nil
}

// setupTestServices swaps the wired services for test doubles so
// PersistentPreRunE skips real initialisation. Returns a cleanup func.
func setupTestServices(t *testing.T, ev driving.Evaluator) (*memory.EvaluationStore, func()) {
	t.Helper()

	cfg, err := configfile.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	store := memory.NewEvaluationStore()

	origConfig, origStore, origEval := configStore, evalStore, evaluator
	configStore, evalStore, evaluator = cfg, store, ev

	return store, func() {
		configStore, evalStore, evaluator = origConfig, origStore, origEval
	}
}

// reportFixture builds a finalized evaluation plus report pair.
func reportFixture() (*domain.Evaluation, *domain.Report) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	eval := domain.NewEvaluation("eval-42", domain.RepoRef{Owner: "acme", Name: "widget"}, at)
	eval.Status = domain.EvaluationFinalized
	for i := range eval.Stages {
		eval.Stages[i].Status = domain.StageCompleted
	}

	report := &domain.Report{
		EvaluationID: eval.ID,
		Repo:         eval.Repo,
		GeneratedAt:  at,
		Sections: []domain.ReportSection{
			{Title: domain.SectionOverview, Body: "Evaluation of acme/widget."},
		},
		Scorecard: domain.Scorecard{
			Scores: []domain.Score{
				{Dimension: domain.DimensionSecurity, Value: 92, Justification: "no negative findings"},
				{Dimension: domain.DimensionUsability, Value: 95, Justification: "no negative findings"},
			},
			Overall: 93,
			Verdict: domain.VerdictRecommended,
		},
		Recommendations: []string{"No remedial actions identified."},
	}
	return eval, report
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
