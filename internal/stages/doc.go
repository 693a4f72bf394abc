// Package stages contains the seven pipeline stage handlers. Each handler
// is a pure unit over (evaluation snapshot, capability adapters): it reads
// earlier stages' findings, calls the adapters, and proposes new findings.
// Handlers never write to the evidence store; the orchestrator owns all
// writes.
package stages
