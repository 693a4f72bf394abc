package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
)

// EvidenceStore is the append-only record of one evaluation's stages,
// findings and citations. The orchestrator is its sole writer; stage
// handlers and the scoring engine only read. Every append is validated
// against the data-model invariants and is all-or-nothing: a batch with one
// invalid finding leaves the store untouched.
type EvidenceStore struct {
	eval      *domain.Evaluation
	now       func() time.Time
	finalized bool
	aborted   bool
}

// NewEvidenceStore wraps a freshly created evaluation. The now function is
// injectable for tests; nil means time.Now.
func NewEvidenceStore(eval *domain.Evaluation, now func() time.Time) *EvidenceStore {
	if now == nil {
		now = time.Now
	}
	return &EvidenceStore{eval: eval, now: now}
}

// Evaluation returns the underlying aggregate. Callers outside the
// orchestrator must treat it as read-only.
func (s *EvidenceStore) Evaluation() *domain.Evaluation {
	return s.eval
}

func (s *EvidenceStore) writable() error {
	if s.finalized {
		return domain.ErrFinalized
	}
	if s.aborted {
		return domain.ErrAborted
	}
	return nil
}

// StartStage transitions a pending stage to running and moves the
// evaluation to in_progress on the first start. Re-starting a stage that
// already reached a terminal status is an invariant violation: stage order
// is monotonic and completed stages never rerun.
func (s *EvidenceStore) StartStage(name domain.StageName) error {
	if err := s.writable(); err != nil {
		return err
	}
	stage := s.eval.StageByName(name)
	if stage == nil {
		return domain.Invariant(name, fmt.Errorf("unknown stage"))
	}
	if stage.Status != domain.StagePending {
		return domain.Invariant(name, fmt.Errorf("start from status %s", stage.Status))
	}
	stage.Status = domain.StageRunning
	if s.eval.Status == domain.EvaluationCreated {
		s.eval.Status = domain.EvaluationInProgress
	}
	return nil
}

// AppendFindings appends a batch of findings to a running stage. The whole
// batch is validated before anything is written: a finding without a
// citation, or a citation without a retrieval timestamp, rejects the batch
// as an invariant violation.
func (s *EvidenceStore) AppendFindings(name domain.StageName, findings []domain.Finding) error {
	if err := s.writable(); err != nil {
		return err
	}
	stage := s.eval.StageByName(name)
	if stage == nil {
		return domain.Invariant(name, fmt.Errorf("unknown stage"))
	}
	if stage.Status != domain.StageRunning {
		return domain.Invariant(name, fmt.Errorf("%w (status %s)", domain.ErrStageNotRunning, stage.Status))
	}

	now := s.now()
	for i := range findings {
		f := &findings[i]
		if len(f.Citations) == 0 {
			return domain.Invariant(name, fmt.Errorf("%w: %s", domain.ErrMissingCitation, f.Category))
		}
		for _, c := range f.Citations {
			if c.RetrievedAt.IsZero() {
				return domain.Invariant(name, fmt.Errorf("citation %s has no retrieval timestamp", c.Location))
			}
			if c.RetrievedAt.After(now) {
				return domain.Invariant(name, fmt.Errorf("citation %s retrieved in the future", c.Location))
			}
		}
		if f.Dimension == "" {
			return domain.Invariant(name, fmt.Errorf("finding %s has no dimension", f.Category))
		}
	}

	stage.Findings = append(stage.Findings, findings...)
	return nil
}

// RecordError records an error against a stage. Errors are surfaced in the
// report's limitations section; they are never findings.
func (s *EvidenceStore) RecordError(name domain.StageName, err error) {
	stage := s.eval.StageByName(name)
	if stage == nil || err == nil {
		return
	}
	stage.Errors = append(stage.Errors, domain.StageError{
		Stage:      name,
		Message:    err.Error(),
		OccurredAt: s.now(),
	})
}

// CompleteStage transitions a running stage to completed.
func (s *EvidenceStore) CompleteStage(name domain.StageName) error {
	return s.endStage(name, domain.StageCompleted)
}

// FailStage transitions a running stage to failed.
func (s *EvidenceStore) FailStage(name domain.StageName) error {
	return s.endStage(name, domain.StageFailed)
}

// SkipStage marks a pending stage skipped. Used when a declared hard
// prerequisite did not complete.
func (s *EvidenceStore) SkipStage(name domain.StageName) error {
	if err := s.writable(); err != nil {
		return err
	}
	stage := s.eval.StageByName(name)
	if stage == nil {
		return domain.Invariant(name, fmt.Errorf("unknown stage"))
	}
	if stage.Status != domain.StagePending {
		return domain.Invariant(name, fmt.Errorf("skip from status %s", stage.Status))
	}
	stage.Status = domain.StageSkipped
	return nil
}

func (s *EvidenceStore) endStage(name domain.StageName, status domain.StageStatus) error {
	if err := s.writable(); err != nil {
		return err
	}
	stage := s.eval.StageByName(name)
	if stage == nil {
		return domain.Invariant(name, fmt.Errorf("unknown stage"))
	}
	if stage.Status != domain.StageRunning {
		return domain.Invariant(name, fmt.Errorf("end from status %s", stage.Status))
	}
	stage.Status = status
	return nil
}

// Finalize transitions the evaluation to finalized once every stage has
// reached a terminal status. After finalize the store rejects all writes.
func (s *EvidenceStore) Finalize() error {
	if err := s.writable(); err != nil {
		return err
	}
	for i := range s.eval.Stages {
		if !s.eval.Stages[i].Terminal() {
			return domain.Invariant(s.eval.Stages[i].Name, fmt.Errorf("finalize with stage in status %s", s.eval.Stages[i].Status))
		}
	}
	s.eval.Status = domain.EvaluationFinalized
	s.finalized = true
	return nil
}

// Abort marks the evaluation aborted. The store rejects all writes
// afterwards. Safe to call from any state before finalize.
func (s *EvidenceStore) Abort() {
	if s.finalized || s.aborted {
		return
	}
	s.eval.Status = domain.EvaluationAborted
	s.aborted = true
}

// FindingsByStage returns the findings recorded for a stage.
func (s *EvidenceStore) FindingsByStage(name domain.StageName) []domain.Finding {
	stage := s.eval.StageByName(name)
	if stage == nil {
		return nil
	}
	return stage.Findings
}

// FindingsByCategory returns all findings with the given category, in stage
// order.
func (s *EvidenceStore) FindingsByCategory(category string) []domain.Finding {
	var out []domain.Finding
	for _, f := range s.eval.Findings() {
		if f.Category == category {
			out = append(out, f)
		}
	}
	return out
}

// FindingsBySeverity returns all findings with the given severity, in stage
// order.
func (s *EvidenceStore) FindingsBySeverity(sev domain.Severity) []domain.Finding {
	var out []domain.Finding
	for _, f := range s.eval.Findings() {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}
