package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/repovet-cli/internal/core/domain"
	"github.com/custodia-labs/repovet-cli/internal/core/ports/driven"
	"github.com/custodia-labs/repovet-cli/internal/core/ports/driving"
	"github.com/custodia-labs/repovet-cli/internal/logger"
	"github.com/custodia-labs/repovet-cli/internal/stages"
)

const (
	// maxRetries is the retry cap for transient stage errors.
	maxRetries = 3

	// defaultBackoffBase is the first retry delay; subsequent retries
	// double it (1s, 2s, 4s).
	defaultBackoffBase = time.Second
)

// Ensure Orchestrator implements the interface.
var _ driving.Evaluator = (*Orchestrator)(nil)

// Orchestrator sequences the pipeline stages for an evaluation. It is the
// sole writer of the evidence store: handlers propose findings, the
// orchestrator appends them. Distinct repositories share no mutable state
// and evaluate concurrently; a second evaluation of the same repository is
// rejected while the first runs.
type Orchestrator struct {
	readers  driven.ReaderFactory
	search   driven.WebSearch
	store    driven.EvaluationStore
	handlers []stages.Handler
	scoring  *ScoringEngine
	renderer *Renderer

	// backoffBase is overridable in tests to avoid sleeping.
	backoffBase time.Duration
	now         func() time.Time
	newID       func() string

	mu     sync.RWMutex
	active map[string]*driving.EvaluationStatus
}

// NewOrchestrator creates the pipeline orchestrator. search may be nil
// (search-dependent stages then degrade); store is required.
func NewOrchestrator(
	readers driven.ReaderFactory,
	search driven.WebSearch,
	store driven.EvaluationStore,
	handlers []stages.Handler,
	scoring *ScoringEngine,
	renderer *Renderer,
) *Orchestrator {
	return &Orchestrator{
		readers:     readers,
		search:      search,
		store:       store,
		handlers:    handlers,
		scoring:     scoring,
		renderer:    renderer,
		backoffBase: defaultBackoffBase,
		now:         time.Now,
		newID:       uuid.NewString,
		active:      make(map[string]*driving.EvaluationStatus),
	}
}

// Evaluate runs the full pipeline for a repository.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *Orchestrator) Evaluate(ctx context.Context, repo domain.RepoRef) (*domain.Evaluation, *domain.Report, error) {
	if repo.Owner == "" || repo.Name == "" {
		return nil, nil, fmt.Errorf("evaluate: %w: empty repository reference", domain.ErrInvalidInput)
	}

	eval := domain.NewEvaluation(o.newID(), repo, o.now())
	if err := o.trackStart(eval); err != nil {
		return nil, nil, err
	}
	defer o.trackEnd(repo)

	reader, err := o.readers.Reader(repo.Owner, repo.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("create repository reader: %w", err)
	}
	adapters := stages.Adapters{Repo: reader, Search: o.search}

	es := NewEvidenceStore(eval, o.now)
	logger.Info("Starting evaluation %s for %s", eval.ID, repo)

	for _, handler := range o.handlers {
		name := handler.Name()

		if unmet := o.unmetPrerequisite(eval, handler); unmet != "" {
			logger.Warn("Skipping stage %s: prerequisite %s did not complete", name, unmet)
			if err := es.SkipStage(name); err != nil {
				return o.abort(ctx, es, err)
			}
			continue
		}

		if err := es.StartStage(name); err != nil {
			return o.abort(ctx, es, err)
		}
		o.trackStage(repo, eval, name)
		logger.Section(string(name))

		findings, runErr := o.runWithRetry(ctx, handler, eval, adapters)
		if runErr != nil {
			if domain.IsInvariant(runErr) {
				return o.abort(ctx, es, runErr)
			}
			es.RecordError(name, runErr)
			if err := es.FailStage(name); err != nil {
				return o.abort(ctx, es, err)
			}
			// Failure to resolve the repository is fatal; everything else
			// degrades and the pipeline continues.
			if name == domain.StageMetadata {
				logger.Warn("Metadata stage failed, aborting: %v", runErr)
				eval2, _, err := o.abort(ctx, es, fmt.Errorf("%w: metadata stage: %v", domain.ErrAborted, runErr))
				return eval2, nil, err
			}
			logger.Warn("Stage %s failed, continuing degraded: %v", name, runErr)
			continue
		}

		if err := es.AppendFindings(name, findings); err != nil {
			return o.abort(ctx, es, err)
		}
		if err := es.CompleteStage(name); err != nil {
			return o.abort(ctx, es, err)
		}
		logger.Info("Stage %s completed with %d finding(s)", name, len(findings))
	}

	if err := es.Finalize(); err != nil {
		return o.abort(ctx, es, err)
	}

	card, err := o.scoring.Score(eval)
	if err != nil {
		return eval, nil, fmt.Errorf("score evaluation: %w", err)
	}
	report, err := o.renderer.Render(eval, card, o.now())
	if err != nil {
		return eval, nil, fmt.Errorf("render report: %w", err)
	}

	if err := o.persist(ctx, eval, report); err != nil {
		return eval, report, err
	}

	logger.Info("Evaluation %s finalized: overall %d (%s)", eval.ID, card.Overall, card.Verdict)
	return eval, report, nil
}

// Status returns progress for a running evaluation of the repository.
func (o *Orchestrator) Status(_ context.Context, repo domain.RepoRef) (*driving.EvaluationStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	status, ok := o.active[repo.String()]
	if !ok {
		return nil, nil
	}
	copied := *status
	return &copied, nil
}

// runWithRetry invokes a handler, retrying transient failures with
// exponential backoff up to the cap. Permanent and invariant errors return
// immediately.
func (o *Orchestrator) runWithRetry(
	ctx context.Context,
	handler stages.Handler,
	eval *domain.Evaluation,
	adapters stages.Adapters,
) ([]domain.Finding, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		findings, err := handler.Run(ctx, eval, adapters)
		if err == nil {
			return findings, nil
		}
		lastErr = err
		if !domain.IsTransient(err) || attempt >= maxRetries {
			return nil, lastErr
		}

		delay := o.backoffBase << attempt
		logger.Debug("Stage %s attempt %d failed (%v), retrying in %s", handler.Name(), attempt+1, err, delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("stage %s: %w", handler.Name(), ctx.Err())
		}
	}
}

func (o *Orchestrator) unmetPrerequisite(eval *domain.Evaluation, handler stages.Handler) domain.StageName {
	for _, req := range handler.Requires() {
		stage := eval.StageByName(req)
		if stage == nil || stage.Status != domain.StageCompleted {
			return req
		}
	}
	return ""
}

// abort marks the evaluation aborted, persists it best-effort, and returns
// the causing error.
func (o *Orchestrator) abort(ctx context.Context, es *EvidenceStore, cause error) (*domain.Evaluation, *domain.Report, error) {
	es.Abort()
	eval := es.Evaluation()
	if o.store != nil {
		if err := o.store.SaveEvaluation(ctx, eval); err != nil {
			logger.Warn("Persisting aborted evaluation %s failed: %v", eval.ID, err)
		}
	}
	return eval, nil, cause
}

func (o *Orchestrator) persist(ctx context.Context, eval *domain.Evaluation, report *domain.Report) error {
	if o.store == nil {
		return nil
	}
	if err := o.store.SaveEvaluation(ctx, eval); err != nil {
		return fmt.Errorf("save evaluation: %w", err)
	}
	if err := o.store.SaveReport(ctx, report); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func (o *Orchestrator) trackStart(eval *domain.Evaluation) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	key := eval.Repo.String()
	if _, running := o.active[key]; running {
		return fmt.Errorf("%w: %s", domain.ErrEvaluationInProgress, key)
	}
	o.active[key] = &driving.EvaluationStatus{EvaluationID: eval.ID, Repo: eval.Repo}
	return nil
}

func (o *Orchestrator) trackStage(repo domain.RepoRef, eval *domain.Evaluation, name domain.StageName) {
	o.mu.Lock()
	defer o.mu.Unlock()
	status, ok := o.active[repo.String()]
	if !ok {
		return
	}
	status.CurrentStage = name
	status.StagesDone = 0
	status.FindingCount = 0
	for i := range eval.Stages {
		if eval.Stages[i].Terminal() {
			status.StagesDone++
		}
		status.FindingCount += len(eval.Stages[i].Findings)
	}
}

func (o *Orchestrator) trackEnd(repo domain.RepoRef) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.active, repo.String())
}
