package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
)

func TestEvaluateCmd_Use(t *testing.T) {
	assert.Equal(t, "evaluate <owner/name | url>", evaluateCmd.Use)
}

func TestEvaluateCmd_RequiresExactlyOneArg(t *testing.T) {
	_, cleanup := setupTestServices(t, &stubEvaluator{})
	defer cleanup()

	_, err := execute(t, "evaluate")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestEvaluateCmd_HasMarkdownFlag(t *testing.T) {
	flag := evaluateCmd.Flags().Lookup("markdown")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestEvaluateCmd_RejectsMalformedRef(t *testing.T) {
	_, cleanup := setupTestServices(t, &stubEvaluator{})
	defer cleanup()

	_, err := execute(t, "evaluate", "not-a-repo")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEvaluateCmd_PrintsScorecard(t *testing.T) {
	eval, report := reportFixture()
	_, cleanup := setupTestServices(t, &stubEvaluator{eval: eval, report: report})
	defer cleanup()

	out, err := execute(t, "evaluate", "acme/widget")

	require.NoError(t, err)
	assert.Contains(t, out, "Evaluating acme/widget")
	assert.Contains(t, out, "eval-42 finalized")
	assert.Contains(t, out, "DIMENSION")
	assert.Contains(t, out, "recommended")
	assert.Contains(t, out, "repovet report eval-42")
	assert.NotContains(t, out, "Degraded stages")
}

func TestEvaluateCmd_MarkdownOutput(t *testing.T) {
	eval, report := reportFixture()
	_, cleanup := setupTestServices(t, &stubEvaluator{eval: eval, report: report})
	defer cleanup()

	out, err := execute(t, "evaluate", "--markdown", "acme/widget")
	evaluateOutputMarkdown = false

	require.NoError(t, err)
	assert.Contains(t, out, "# Repository Evaluation: acme/widget")
}

func TestEvaluateCmd_ReportsDegradedStages(t *testing.T) {
	eval, report := reportFixture()
	eval.StageByName(domain.StageCommunity).Status = domain.StageFailed
	_, cleanup := setupTestServices(t, &stubEvaluator{eval: eval, report: report})
	defer cleanup()

	out, err := execute(t, "evaluate", "acme/widget")

	require.NoError(t, err)
	assert.Contains(t, out, "Degraded stages")
	assert.Contains(t, out, "community")
}

func TestEvaluateCmd_AbortedEvaluation(t *testing.T) {
	eval, _ := reportFixture()
	eval.Status = domain.EvaluationAborted
	cause := errors.New("metadata stage: repository not found")
	_, cleanup := setupTestServices(t, &stubEvaluator{eval: eval, err: cause})
	defer cleanup()

	_, err := execute(t, "evaluate", "acme/widget")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "aborted")
	assert.Contains(t, err.Error(), "repository not found")
}
