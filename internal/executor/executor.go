// Package executor drives generated test questions through the agent's
// answer pipeline, one question at a time, capturing answer, citations,
// diagnostics, latency and cost per question.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/giantswarm/chatbot-qa/internal/llm"
	"github.com/giantswarm/chatbot-qa/internal/qa"
	"github.com/giantswarm/chatbot-qa/internal/rag"
	"github.com/giantswarm/chatbot-qa/internal/store"
)

const (
	// checkpointInterval bounds write amplification: progress is persisted
	// every N questions instead of after each one.
	checkpointInterval = 5

	// DefaultQuestionDelay is the pause between questions. The phase is
	// sequential on purpose: it throttles calls against the provider's rate
	// limits.
	DefaultQuestionDelay = 500 * time.Millisecond
)

// Executor runs the execution phase of a test run.
type Executor struct {
	questions store.QuestionRepo
	runs      store.RunRepo
	retriever rag.Retriever
	answerer  rag.AnswerGenerator

	// answerModel is the model name the answer generator uses, needed to
	// price its token usage.
	answerModel string
	delay       time.Duration
}

// New creates an Executor with the default inter-question delay.
func New(questions store.QuestionRepo, runs store.RunRepo, retriever rag.Retriever, answerer rag.AnswerGenerator, answerModel string) *Executor {
	return &Executor{
		questions:   questions,
		runs:        runs,
		retriever:   retriever,
		answerer:    answerer,
		answerModel: answerModel,
		delay:       DefaultQuestionDelay,
	}
}

// SetQuestionDelay overrides the inter-question delay. Tests set it to zero.
func (e *Executor) SetQuestionDelay(d time.Duration) {
	e.delay = d
}

// ExecuteRun processes all pending questions of the run sequentially. A
// failing question is recorded and skipped; only infrastructure failures
// (storage, cancelled context) abort the phase.
func (e *Executor) ExecuteRun(ctx context.Context, run *qa.TestRun) error {
	pending, err := e.questions.ListByRunAndStatus(ctx, run.ID, qa.QuestionStatusPending)
	if err != nil {
		return fmt.Errorf("failed to list pending questions: %w", err)
	}

	completed := run.QuestionsCompleted
	for i, q := range pending {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("execution interrupted after %d questions: %w", i, err)
		}

		if err := e.questions.UpdateFields(ctx, q.ID, map[string]interface{}{
			"status": qa.QuestionStatusExecuting,
		}); err != nil {
			return fmt.Errorf("failed to mark question %s executing: %w", q.ID, err)
		}

		result, execErr := e.executeOne(ctx, q)
		if execErr != nil {
			slog.Error("question execution failed",
				"run_id", run.ID,
				"question_id", q.ID,
				"category", q.Category,
				"error", execErr,
			)
			if err := e.questions.UpdateFields(ctx, q.ID, map[string]interface{}{
				"status":         qa.QuestionStatusFailed,
				"error_message":  execErr.Error(),
				"execution_cost": 0.0,
			}); err != nil {
				return fmt.Errorf("failed to mark question %s failed: %w", q.ID, err)
			}
		} else {
			if err := e.questions.UpdateFields(ctx, q.ID, result); err != nil {
				return fmt.Errorf("failed to persist result for question %s: %w", q.ID, err)
			}
		}

		completed++
		if completed%checkpointInterval == 0 {
			if err := e.runs.UpdateFields(ctx, run.ID, map[string]interface{}{
				"questions_completed": completed,
			}); err != nil {
				return fmt.Errorf("failed to checkpoint run progress: %w", err)
			}
		}

		if e.delay > 0 && i < len(pending)-1 {
			select {
			case <-time.After(e.delay):
			case <-ctx.Done():
				return fmt.Errorf("execution interrupted after %d questions: %w", i+1, ctx.Err())
			}
		}
	}

	if err := e.runs.UpdateFields(ctx, run.ID, map[string]interface{}{
		"questions_completed": completed,
	}); err != nil {
		return fmt.Errorf("failed to checkpoint run progress: %w", err)
	}

	slog.Info("execution phase complete",
		"run_id", run.ID,
		"questions_executed", len(pending),
	)
	return nil
}

// executeOne retrieves context, builds the system prompt, generates the
// answer once (no retry) and packages the update map for the question row.
func (e *Executor) executeOne(ctx context.Context, q *qa.TestQuestion) (map[string]interface{}, error) {
	start := time.Now()

	retrieved, err := e.retriever.RetrieveContext(ctx, q.TenantID, q.Question)
	if err != nil {
		return nil, fmt.Errorf("context retrieval failed: %w", err)
	}

	systemPrompt := rag.BuildSystemPrompt(retrieved.ContextText, q.Language)
	answer, err := e.answerer.GenerateAnswer(ctx, systemPrompt, q.Question)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	cost := retrieved.EmbeddingCost + llm.Cost(e.answerModel, llm.Usage{
		PromptTokens:     answer.InputTokens,
		CompletionTokens: answer.OutputTokens,
	})

	citations, err := json.Marshal(retrieved.Citations)
	if err != nil {
		return nil, fmt.Errorf("failed to encode citations: %w", err)
	}
	trace, err := json.Marshal(retrieved.DiagnosticTrace)
	if err != nil {
		return nil, fmt.Errorf("failed to encode diagnostic trace: %w", err)
	}

	return map[string]interface{}{
		"status":           qa.QuestionStatusCompleted,
		"answer":           answer.Text,
		"citations":        citations,
		"diagnostic_trace": trace,
		"response_time_ms": elapsed.Milliseconds(),
		"execution_cost":   cost,
	}, nil
}
