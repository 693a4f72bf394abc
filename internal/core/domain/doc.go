// Package domain contains the core business types for repository evaluation.
// Domain types have no external dependencies and represent the evaluation
// aggregate, its findings and citations, dimension scores, and the rendered
// report. All mutation of an Evaluation flows through the orchestrator's
// evidence store; the types here carry no behaviour beyond validation.
package domain
