package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed input, e.g. an unparseable
	// repository reference. Always raised before any stage runs.
	ErrInvalidInput = errors.New("invalid input")

	// ErrFinalized indicates a write was attempted against a finalized
	// evaluation.
	ErrFinalized = errors.New("evaluation is finalized")

	// ErrAborted indicates the evaluation was aborted.
	ErrAborted = errors.New("evaluation aborted")

	// ErrEvaluationInProgress indicates an evaluation is already running
	// for the repository. Distinct repositories run concurrently; one
	// repository has at most one writer.
	ErrEvaluationInProgress = errors.New("evaluation already in progress")

	// ErrStageNotRunning indicates an append targeted a stage that is not
	// in running status.
	ErrStageNotRunning = errors.New("stage is not running")

	// ErrMissingCitation indicates a finding was proposed without any
	// citation. This is an invariant violation, not a tool failure.
	ErrMissingCitation = errors.New("finding has no citation")
)

// TransientError wraps a tool error that is worth retrying, such as a
// network timeout. The orchestrator retries these with backoff up to a cap.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// PermanentError wraps a tool error that will not succeed on retry. It
// degrades its own stage and is surfaced in the report's limitations
// section; it never aborts the pipeline (except for the metadata stage).
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err as non-retryable.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// InvariantError indicates an implementation bug, such as a stage handler
// proposing a finding without a citation. It aborts the evaluation
// regardless of stage and is reported as a diagnostic, never as a risk
// finding.
type InvariantError struct {
	Stage StageName
	Err   error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation in stage %s: %v", e.Stage, e.Err)
}

func (e *InvariantError) Unwrap() error { return e.Err }

// Invariant wraps err as an invariant violation attributed to a stage.
func Invariant(stage StageName, err error) error {
	if err == nil {
		return nil
	}
	return &InvariantError{Stage: stage, Err: err}
}

// IsInvariant reports whether err is an invariant violation.
func IsInvariant(err error) bool {
	var v *InvariantError
	return errors.As(err, &v)
}
