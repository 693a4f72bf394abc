package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
)

func TestServer_handleEvaluate(t *testing.T) {
	ctx := context.Background()

	t.Run("returns scorecard for finished evaluation", func(t *testing.T) {
		eval, report := finalizedFixture()
		server, err := NewServer(&Ports{
			Evaluator: &mockEvaluator{eval: eval, report: report},
			Store:     &mockStore{},
		})
		require.NoError(t, err)

		_, output, err := server.handleEvaluate(ctx, nil, EvaluateInput{Repository: "acme/widget"})

		require.NoError(t, err)
		assert.Equal(t, "eval-1", output.EvaluationID)
		assert.Equal(t, "acme/widget", output.Repository)
		assert.Equal(t, string(domain.EvaluationFinalized), output.Status)
		assert.Equal(t, 75, output.Overall)
		assert.Equal(t, string(domain.VerdictAcceptable), output.Verdict)
		assert.Equal(t, 1, output.FindingCount)
		require.Len(t, output.Scores, 2)
		assert.Equal(t, string(domain.DimensionSecurity), output.Scores[0].Dimension)
	})

	t.Run("rejects malformed repository reference", func(t *testing.T) {
		server, err := NewServer(&Ports{Evaluator: &mockEvaluator{}, Store: &mockStore{}})
		require.NoError(t, err)

		_, _, err = server.handleEvaluate(ctx, nil, EvaluateInput{Repository: "not a repo"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("aborted evaluation keeps its ID in the output", func(t *testing.T) {
		eval, _ := finalizedFixture()
		eval.Status = domain.EvaluationAborted
		cause := errors.New("metadata stage: repository not found")
		server, err := NewServer(&Ports{
			Evaluator: &mockEvaluator{eval: eval, err: cause},
			Store:     &mockStore{},
		})
		require.NoError(t, err)

		_, output, err := server.handleEvaluate(ctx, nil, EvaluateInput{Repository: "acme/widget"})

		require.Error(t, err)
		assert.Equal(t, "eval-1", output.EvaluationID)
		assert.Equal(t, string(domain.EvaluationAborted), output.Status)
	})

	t.Run("returns error on pipeline failure", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Evaluator: &mockEvaluator{err: errors.New("reader unavailable")},
			Store:     &mockStore{},
		})
		require.NoError(t, err)

		_, _, err = server.handleEvaluate(ctx, nil, EvaluateInput{Repository: "acme/widget"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "reader unavailable")
	})
}

func TestServer_handleGetReport(t *testing.T) {
	ctx := context.Background()

	t.Run("returns rendered report", func(t *testing.T) {
		_, report := finalizedFixture()
		server, err := NewServer(&Ports{
			Evaluator: &mockEvaluator{},
			Store:     &mockStore{report: report},
		})
		require.NoError(t, err)

		_, output, err := server.handleGetReport(ctx, nil, ReportInput{EvaluationID: "eval-1"})

		require.NoError(t, err)
		assert.Equal(t, "eval-1", output.EvaluationID)
		assert.Equal(t, "acme/widget", output.Repository)
		assert.Equal(t, "2025-06-01T12:00:00Z", output.GeneratedAt)
		assert.Equal(t, 75, output.Overall)
		assert.Contains(t, output.Markdown, "# Repository Evaluation: acme/widget")
	})

	t.Run("missing report propagates not found", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Evaluator: &mockEvaluator{},
			Store:     &mockStore{err: domain.ErrNotFound},
		})
		require.NoError(t, err)

		_, _, err = server.handleGetReport(ctx, nil, ReportInput{EvaluationID: "missing"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
