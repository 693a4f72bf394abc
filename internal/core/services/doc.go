// Package services contains the evaluation core: the evidence store that
// enforces the data-model invariants, the orchestrator that sequences the
// pipeline stages, the deterministic scoring engine, and the report
// renderer. Services depend only on the domain and the port contracts.
package services
