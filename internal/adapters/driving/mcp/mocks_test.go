package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
	"github.com/custodia-labs/repovet-cli/internal/core/ports/driving"
)

// mockEvaluator is a mock implementation of driving.Evaluator.
type mockEvaluator struct {
	eval   *domain.Evaluation
	report *domain.Report
	status *driving.EvaluationStatus
	err    error
}

func (m *mockEvaluator) Evaluate(_ context.Context, _ domain.RepoRef) (*domain.Evaluation, *domain.Report, error) {
	return m.eval, m.report, m.err
}

func (m *mockEvaluator) Status(_ context.Context, _ domain.RepoRef) (*driving.EvaluationStatus, error) {
	return m.status, m.err
}

// mockStore is a mock implementation of driven.EvaluationStore.
type mockStore struct {
	eval   *domain.Evaluation
	report *domain.Report
	list   []domain.Evaluation
	err    error
}

func (m *mockStore) SaveEvaluation(_ context.Context, _ *domain.Evaluation) error { return m.err }
func (m *mockStore) SaveReport(_ context.Context, _ *domain.Report) error         { return m.err }

func (m *mockStore) GetEvaluation(_ context.Context, _ string) (*domain.Evaluation, error) {
	return m.eval, m.err
}

func (m *mockStore) GetReport(_ context.Context, _ string) (*domain.Report, error) {
	return m.report, m.err
}

func (m *mockStore) ListEvaluations(_ context.Context) ([]domain.Evaluation, error) {
	return m.list, m.err
}

// finalizedFixture builds a finalized evaluation with a matching report.
func finalizedFixture() (*domain.Evaluation, *domain.Report) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	eval := domain.NewEvaluation("eval-1", domain.RepoRef{Owner: "acme", Name: "widget"}, at)
	eval.Status = domain.EvaluationFinalized
	for i := range eval.Stages {
		eval.Stages[i].Status = domain.StageCompleted
	}
	eval.StageByName(domain.StageMetadata).Findings = []domain.Finding{{
		Category:    domain.CategoryPopularity,
		Severity:    domain.SeverityInformational,
		Dimension:   domain.DimensionReliability,
		Positive:    true,
		Description: "500 stars",
		Citations: []domain.Citation{{
			Source:      domain.SourceRepositoryMetadata,
			Location:    "acme/widget",
			RetrievedAt: at,
		}},
	}}

	report := &domain.Report{
		EvaluationID: eval.ID,
		Repo:         eval.Repo,
		GeneratedAt:  at,
		Sections: []domain.ReportSection{
			{Title: domain.SectionOverview, Body: "Evaluation of acme/widget."},
		},
		Scorecard: domain.Scorecard{
			Scores: []domain.Score{
				{Dimension: domain.DimensionSecurity, Value: 70, Justification: "insufficient evidence"},
				{Dimension: domain.DimensionReliability, Value: 95, Justification: "no negative findings; 1 corroborating finding(s)"},
			},
			Overall: 75,
			Verdict: domain.VerdictAcceptable,
		},
	}
	return eval, report
}
