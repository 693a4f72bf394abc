package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
	"github.com/custodia-labs/repovet-cli/internal/core/services"
)

// EvaluateInput is the input schema for the evaluate_repository tool.
type EvaluateInput struct {
	Repository string `json:"repository" jsonschema:"the repository to evaluate, as owner/name or a GitHub URL"`
}

// ScoreOutput is one dimension's score in tool output.
type ScoreOutput struct {
	Dimension     string `json:"dimension"`
	Value         int    `json:"value"`
	Justification string `json:"justification"`
}

// EvaluateOutput is the output schema for the evaluate_repository tool.
type EvaluateOutput struct {
	EvaluationID string        `json:"evaluation_id"`
	Repository   string        `json:"repository"`
	Status       string        `json:"status"`
	Scores       []ScoreOutput `json:"scores,omitempty"`
	Overall      int           `json:"overall"`
	Verdict      string        `json:"verdict,omitempty"`
	FindingCount int           `json:"finding_count"`
}

// ReportInput is the input schema for the get_report tool.
type ReportInput struct {
	EvaluationID string `json:"evaluation_id" jsonschema:"the evaluation whose report to fetch"`
}

// ReportOutput is the output schema for the get_report tool.
type ReportOutput struct {
	EvaluationID string `json:"evaluation_id"`
	Repository   string `json:"repository"`
	GeneratedAt  string `json:"generated_at"`
	Markdown     string `json:"markdown"`
	Overall      int    `json:"overall"`
	Verdict      string `json:"verdict"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "evaluate_repository",
		Description: "Run the full security evaluation pipeline against a repository",
	}, s.handleEvaluate)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_report",
		Description: "Fetch the rendered report for a finished evaluation",
	}, s.handleGetReport)
}

// handleEvaluate handles the evaluate_repository tool invocation.
func (s *Server) handleEvaluate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EvaluateInput,
) (*mcp.CallToolResult, EvaluateOutput, error) {
	repo, err := domain.ParseRepoRef(input.Repository)
	if err != nil {
		return nil, EvaluateOutput{}, err
	}

	eval, report, err := s.ports.Evaluator.Evaluate(ctx, repo)
	if err != nil {
		if eval != nil && eval.Status == domain.EvaluationAborted {
			return nil, EvaluateOutput{
				EvaluationID: eval.ID,
				Repository:   eval.Repo.String(),
				Status:       string(eval.Status),
			}, err
		}
		return nil, EvaluateOutput{}, err
	}

	out := EvaluateOutput{
		EvaluationID: eval.ID,
		Repository:   eval.Repo.String(),
		Status:       string(eval.Status),
		Overall:      report.Scorecard.Overall,
		Verdict:      string(report.Scorecard.Verdict),
		FindingCount: len(eval.Findings()),
	}
	for _, score := range report.Scorecard.Scores {
		out.Scores = append(out.Scores, ScoreOutput{
			Dimension:     string(score.Dimension),
			Value:         score.Value,
			Justification: score.Justification,
		})
	}
	return nil, out, nil
}

// handleGetReport handles the get_report tool invocation.
func (s *Server) handleGetReport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReportInput,
) (*mcp.CallToolResult, ReportOutput, error) {
	report, err := s.ports.Store.GetReport(ctx, input.EvaluationID)
	if err != nil {
		return nil, ReportOutput{}, err
	}
	return nil, ReportOutput{
		EvaluationID: report.EvaluationID,
		Repository:   report.Repo.String(),
		GeneratedAt:  report.GeneratedAt.UTC().Format(time.RFC3339),
		Markdown:     services.ReportText(report),
		Overall:      report.Scorecard.Overall,
		Verdict:      string(report.Scorecard.Verdict),
	}, nil
}
