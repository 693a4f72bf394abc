package domain

import (
	"fmt"
	"strings"
	"time"
)

// EvaluationStatus is the lifecycle state of an Evaluation.
type EvaluationStatus string

// Evaluation lifecycle states.
const (
	EvaluationCreated    EvaluationStatus = "created"
	EvaluationInProgress EvaluationStatus = "in_progress"
	EvaluationFinalized  EvaluationStatus = "finalized"
	EvaluationAborted    EvaluationStatus = "aborted"
)

// StageStatus is the lifecycle state of a single pipeline stage.
type StageStatus string

// Stage lifecycle states.
const (
	StagePending   StageStatus = "pending"
	StageRunning   StageStatus = "running"
	StageCompleted StageStatus = "completed"
	StageFailed    StageStatus = "failed"
	StageSkipped   StageStatus = "skipped"
)

// StageName identifies one of the seven fixed pipeline phases.
type StageName string

// The seven pipeline phases, in execution order.
const (
	StageMetadata     StageName = "metadata"
	StagePurpose      StageName = "purpose"
	StageAlternatives StageName = "alternatives"
	StageCodeReview   StageName = "code-review"
	StageCommunity    StageName = "community"
	StageRisk         StageName = "risk"
	StageUsability    StageName = "usability"
)

// StageOrder is the fixed, monotonic execution order of the pipeline.
// The orchestrator never reorders or reruns a completed stage.
var StageOrder = []StageName{
	StageMetadata,
	StagePurpose,
	StageAlternatives,
	StageCodeReview,
	StageCommunity,
	StageRisk,
	StageUsability,
}

// RepoRef identifies the repository under evaluation.
type RepoRef struct {
	// Owner is the account or organisation owning the repository.
	Owner string

	// Name is the repository name.
	Name string
}

// String returns the owner/name form.
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepoRef parses "owner/name" or a resolvable GitHub URL into a RepoRef.
// Malformed input returns ErrInvalidInput before any stage runs.
func ParseRepoRef(s string) (RepoRef, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "github.com/")
	s = strings.TrimSuffix(s, ".git")
	s = strings.Trim(s, "/")

	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepoRef{}, fmt.Errorf("%w: repository reference %q (want owner/name)", ErrInvalidInput, s)
	}
	for _, p := range parts {
		if strings.ContainsAny(p, " \t?#") {
			return RepoRef{}, fmt.Errorf("%w: repository reference %q", ErrInvalidInput, s)
		}
	}
	return RepoRef{Owner: parts[0], Name: parts[1]}, nil
}

// StageError records an error that occurred while a stage was executing.
// Stage errors are surfaced in the report's limitations section; they are
// never findings.
type StageError struct {
	// Stage is the stage during which the error occurred.
	Stage StageName

	// Message is the error text.
	Message string

	// OccurredAt is when the error was recorded.
	OccurredAt time.Time
}

// Stage is one ordered phase of the pipeline.
type Stage struct {
	// Name identifies the phase.
	Name StageName

	// Status is the current lifecycle state.
	Status StageStatus

	// Findings are the evidenced observations this stage produced.
	Findings []Finding

	// Errors are the errors recorded against this stage.
	Errors []StageError
}

// Terminal reports whether the stage has reached a terminal status.
func (s *Stage) Terminal() bool {
	switch s.Status {
	case StageCompleted, StageFailed, StageSkipped:
		return true
	default:
		return false
	}
}

// Evaluation is the aggregate record of one repository's assessment run.
// It is append-only until finalized, after which it is immutable.
type Evaluation struct {
	// ID is the unique identifier for this run.
	ID string

	// Repo is the repository under evaluation.
	Repo RepoRef

	// CreatedAt is when the evaluation was created.
	CreatedAt time.Time

	// Stages holds the seven stages in execution order.
	Stages []Stage

	// Status is the current lifecycle state.
	Status EvaluationStatus
}

// NewEvaluation creates an Evaluation in the created state with all seven
// stages pending.
func NewEvaluation(id string, repo RepoRef, now time.Time) *Evaluation {
	stages := make([]Stage, len(StageOrder))
	for i, name := range StageOrder {
		stages[i] = Stage{Name: name, Status: StagePending}
	}
	return &Evaluation{
		ID:        id,
		Repo:      repo,
		CreatedAt: now,
		Stages:    stages,
		Status:    EvaluationCreated,
	}
}

// StageByName returns the stage with the given name, or nil.
func (e *Evaluation) StageByName(name StageName) *Stage {
	for i := range e.Stages {
		if e.Stages[i].Name == name {
			return &e.Stages[i]
		}
	}
	return nil
}

// Findings returns all findings across stages in stage order.
func (e *Evaluation) Findings() []Finding {
	var out []Finding
	for i := range e.Stages {
		out = append(out, e.Stages[i].Findings...)
	}
	return out
}

// FailedStages returns the stages in failed status, in execution order.
func (e *Evaluation) FailedStages() []Stage {
	var out []Stage
	for i := range e.Stages {
		if e.Stages[i].Status == StageFailed {
			out = append(out, e.Stages[i])
		}
	}
	return out
}
