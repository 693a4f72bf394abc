package mcp

import (
	"github.com/custodia-labs/repovet-cli/internal/core/ports/driven"
	"github.com/custodia-labs/repovet-cli/internal/core/ports/driving"
)

// Ports aggregates the port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Evaluator runs the evaluation pipeline.
	Evaluator driving.Evaluator

	// Store reads persisted evaluations and reports.
	Store driven.EvaluationStore
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Evaluator == nil {
		return ErrMissingEvaluator
	}
	if p.Store == nil {
		return ErrMissingStore
	}
	return nil
}
