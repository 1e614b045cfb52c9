// Package runner orchestrates QA test runs through their four phases:
// generation, execution, evaluation and finalization. Every phase persists
// its progress so an interrupted run can be resumed from storage.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/giantswarm/chatbot-qa/internal/executor"
	"github.com/giantswarm/chatbot-qa/internal/generator"
	"github.com/giantswarm/chatbot-qa/internal/judge"
	"github.com/giantswarm/chatbot-qa/internal/qa"
	"github.com/giantswarm/chatbot-qa/internal/store"
)

// Orchestrator owns the run state machine.
type Orchestrator struct {
	runs      store.RunRepo
	questions store.QuestionRepo
	corpus    store.CorpusRepo
	generator *generator.Generator
	executor  *executor.Executor
	judge     *judge.Judge
}

// NewOrchestrator wires the orchestrator with its phase components.
func NewOrchestrator(
	runs store.RunRepo,
	questions store.QuestionRepo,
	corpus store.CorpusRepo,
	gen *generator.Generator,
	exec *executor.Executor,
	jdg *judge.Judge,
) *Orchestrator {
	return &Orchestrator{
		runs:      runs,
		questions: questions,
		corpus:    corpus,
		generator: gen,
		executor:  exec,
		judge:     jdg,
	}
}

// StartRun creates the run record for a tenant with the given configuration.
// The question budget is computed here, at campaign start.
func (o *Orchestrator) StartRun(ctx context.Context, tenantID uuid.UUID, cfg qa.RunConfig) (*qa.TestRun, error) {
	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant id is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run config: %w", err)
	}

	docCount, err := o.corpus.CountProcessedDocuments(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tenant documents: %w", err)
	}
	total := generator.TotalQuestions(cfg, int(docCount))
	if total <= 0 {
		return nil, fmt.Errorf("run config yields zero questions (min %d, %d per document, %d documents)",
			cfg.MinQuestions, cfg.QuestionsPerDocument, docCount)
	}

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run config: %w", err)
	}

	now := time.Now()
	run := &qa.TestRun{
		TenantID:       tenantID,
		Status:         qa.RunStatusPending,
		Config:         cfgJSON,
		TotalQuestions: total,
		StartedAt:      &now,
	}
	if err := o.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create test run: %w", err)
	}

	slog.Info("test run created",
		"run_id", run.ID,
		"tenant_id", tenantID,
		"total_questions", total,
		"documents", docCount,
	)
	return run, nil
}

// Launch runs the complete pipeline in a background goroutine and returns a
// completion channel carrying the terminal error (nil on success). The
// pipeline is detached from the caller's cancellation so a finished request
// cannot kill a run mid-phase.
func (o *Orchestrator) Launch(ctx context.Context, runID uuid.UUID) <-chan error {
	done := make(chan error, 1)
	bg := context.WithoutCancel(ctx)
	go func() {
		defer close(done)
		if err := o.RunComplete(bg, runID); err != nil {
			slog.Error("test run failed", "run_id", runID, "error", err)
			done <- err
		}
	}()
	return done
}

// RunComplete executes the run's phases in order. A second invocation on an
// interrupted run resumes it: generation is skipped when questions already
// exist, the executor only picks pending questions and the judge only picks
// unscored ones. Completed and failed runs are refused.
func (o *Orchestrator) RunComplete(ctx context.Context, runID uuid.UUID) error {
	run, err := o.runs.GetByID(ctx, runID)
	if err != nil {
		return err
	}
	if run.Status.Terminal() {
		return fmt.Errorf("test run %s is already %s", runID, run.Status)
	}

	var cfg qa.RunConfig
	if err := json.Unmarshal(run.Config, &cfg); err != nil {
		return o.fail(ctx, run, "config", fmt.Errorf("failed to decode run config: %w", err))
	}
	if err := cfg.Validate(); err != nil {
		return o.fail(ctx, run, "config", err)
	}

	// Generation is skipped on resume when questions already exist.
	count, err := o.questions.CountByRun(ctx, runID)
	if err != nil {
		return o.fail(ctx, run, "generation", err)
	}
	if count == 0 {
		if err := o.advance(ctx, run, qa.RunStatusGenerating, "generation"); err != nil {
			return err
		}
		n, genCost, err := o.generator.Generate(ctx, run, cfg)
		if err != nil {
			return o.fail(ctx, run, "generation", err)
		}
		run.GenerationCost = genCost
		run.TotalQuestions = n
		if err := o.runs.UpdateFields(ctx, runID, map[string]interface{}{
			"generation_cost": genCost,
			"total_questions": n,
		}); err != nil {
			return o.fail(ctx, run, "generation", err)
		}
	} else {
		slog.Info("resuming run with existing questions", "run_id", runID, "questions", count)
	}

	if err := o.advance(ctx, run, qa.RunStatusRunning, "execution"); err != nil {
		return err
	}
	if err := o.executor.ExecuteRun(ctx, run); err != nil {
		return o.fail(ctx, run, "execution", err)
	}

	if err := o.advance(ctx, run, qa.RunStatusEvaluating, "evaluation"); err != nil {
		return err
	}
	if err := o.judge.EvaluateRun(ctx, run); err != nil {
		return o.fail(ctx, run, "evaluation", err)
	}

	// Finalization alone marks the run completed.
	if err := o.Finalize(ctx, runID); err != nil {
		return o.fail(ctx, run, "finalize", err)
	}
	return nil
}

// statusRank orders run statuses so resumed runs never move backwards.
func statusRank(s qa.RunStatus) int {
	switch s {
	case qa.RunStatusPending:
		return 0
	case qa.RunStatusGenerating:
		return 1
	case qa.RunStatusRunning:
		return 2
	case qa.RunStatusEvaluating:
		return 3
	case qa.RunStatusCompleted:
		return 4
	case qa.RunStatusFailed:
		return 5
	}
	return -1
}

// advance moves the run forward to the given status. It is a no-op when the
// run is already at or past that status, which keeps transitions monotonic
// across resumes.
func (o *Orchestrator) advance(ctx context.Context, run *qa.TestRun, status qa.RunStatus, phase string) error {
	if statusRank(run.Status) >= statusRank(status) {
		return nil
	}
	if err := o.runs.UpdateFields(ctx, run.ID, map[string]interface{}{
		"status":        status,
		"current_phase": phase,
	}); err != nil {
		return fmt.Errorf("failed to advance run %s to %s: %w", run.ID, status, err)
	}
	run.Status = status
	run.CurrentPhase = phase
	slog.Info("run phase started", "run_id", run.ID, "phase", phase)
	return nil
}

// fail records the failing phase on the run and returns the original error.
// Partial results already persisted (answers, scores) are kept.
func (o *Orchestrator) fail(ctx context.Context, run *qa.TestRun, phase string, cause error) error {
	details, _ := json.Marshal(qa.RunError{Phase: phase, Message: cause.Error()})
	if err := o.runs.UpdateFields(ctx, run.ID, map[string]interface{}{
		"status":        qa.RunStatusFailed,
		"current_phase": phase,
		"error_message": cause.Error(),
		"error_details": details,
	}); err != nil {
		slog.Error("failed to record run failure", "run_id", run.ID, "error", err)
	}
	return fmt.Errorf("run %s failed during %s: %w", run.ID, phase, cause)
}
