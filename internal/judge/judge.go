// Package judge scores executed answers with an independent low-temperature
// model call against category-specific rubrics.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/giantswarm/chatbot-qa/internal/llm"
	"github.com/giantswarm/chatbot-qa/internal/qa"
	"github.com/giantswarm/chatbot-qa/internal/store"
)

// NoAnswerReasoning is stored on questions that never captured an answer.
// They are auto-scored 0 without spending judge-model cost.
const NoAnswerReasoning = "no answer was captured during execution; scored 0 without evaluation"

// DefaultJudgeModel is used when no judge model is configured.
const DefaultJudgeModel = "gpt-4o"

// DefaultQuestionDelay throttles judge calls the same way execution is
// throttled.
const DefaultQuestionDelay = 500 * time.Millisecond

// Config holds judge configuration.
type Config struct {
	Model      string
	Strictness string
}

// Judge runs the evaluation phase of a test run.
type Judge struct {
	client    llm.Client
	questions store.QuestionRepo
	config    Config
	delay     time.Duration
}

// New creates a Judge.
func New(client llm.Client, questions store.QuestionRepo, config Config) *Judge {
	if config.Model == "" {
		config.Model = DefaultJudgeModel
	}
	if config.Strictness == "" {
		config.Strictness = qa.StrictnessNormal
	}
	return &Judge{
		client:    client,
		questions: questions,
		config:    config,
		delay:     DefaultQuestionDelay,
	}
}

// SetQuestionDelay overrides the inter-question delay. Tests set it to zero.
func (j *Judge) SetQuestionDelay(d time.Duration) {
	j.delay = d
}

// EvaluateRun scores every executed-but-unscored question of the run,
// sequentially. Judge failures are per-question: the question is completed
// with score 0 and a reasoning naming the failure, and the run proceeds.
func (j *Judge) EvaluateRun(ctx context.Context, run *qa.TestRun) error {
	unscored, err := j.questions.ListUnscored(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("failed to list unscored questions: %w", err)
	}

	for i, q := range unscored {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("evaluation interrupted after %d questions: %w", i, err)
		}

		// Executor failures leave no answer to judge; skip the model call.
		if strings.TrimSpace(q.Answer) == "" {
			if err := j.storeVerdict(ctx, q, &Verdict{
				Score:     0,
				Passed:    false,
				Reasoning: NoAnswerReasoning,
			}, 0); err != nil {
				return err
			}
			continue
		}

		if err := j.questions.UpdateFields(ctx, q.ID, map[string]interface{}{
			"status": qa.QuestionStatusEvaluating,
		}); err != nil {
			return fmt.Errorf("failed to mark question %s evaluating: %w", q.ID, err)
		}

		verdict, cost, evalErr := j.Evaluate(ctx, q)
		if evalErr != nil {
			slog.Error("question evaluation failed",
				"run_id", run.ID,
				"question_id", q.ID,
				"category", q.Category,
				"error", evalErr,
			)
			verdict = &Verdict{
				Score:     0,
				Passed:    false,
				Reasoning: fmt.Sprintf("evaluation failed: %v", evalErr),
				Issues:    []string{"evaluation error"},
			}
		}
		if err := j.storeVerdict(ctx, q, verdict, cost); err != nil {
			return err
		}

		if j.delay > 0 && i < len(unscored)-1 {
			select {
			case <-time.After(j.delay):
			case <-ctx.Done():
				return fmt.Errorf("evaluation interrupted after %d questions: %w", i+1, ctx.Err())
			}
		}
	}

	slog.Info("evaluation phase complete",
		"run_id", run.ID,
		"questions_evaluated", len(unscored),
	)
	return nil
}

// Evaluate scores a single executed question. Malformed model output is
// retried once before being reported as an evaluation error. The returned
// cost covers all attempts.
func (j *Judge) Evaluate(ctx context.Context, q *qa.TestQuestion) (*Verdict, float64, error) {
	system := j.buildRubric(q.Category)
	user := buildSubmission(q)

	var cost float64
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		resp, err := j.client.ChatCompletion(ctx, llm.ChatRequest{
			Model:         j.config.Model,
			SystemMessage: system,
			UserMessage:   user,
			Temperature:   llm.Float64Ptr(0),
			JSONMode:      true,
		})
		if err != nil {
			return nil, cost, fmt.Errorf("judge call failed: %w", err)
		}
		cost += llm.Cost(j.config.Model, resp.Usage)

		verdict, err := parseVerdict(resp.Content)
		if err != nil {
			lastErr = err
			slog.Warn("judge verdict malformed, retrying",
				"question_id", q.ID,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		// The pass flag is derived, never trusted from the model.
		verdict.Score = clampScore(verdict.Score)
		verdict.Passed = verdict.Score >= qa.PassThreshold
		return verdict, cost, nil
	}
	return nil, cost, lastErr
}

func (j *Judge) buildRubric(cat qa.Category) string {
	system := globalRubric
	if block, ok := categoryRubrics[cat]; ok {
		system += "\n\n" + block
	}
	if hint := strictnessHints[j.config.Strictness]; hint != "" {
		system += "\n\n" + hint
	}
	return system
}

// buildSubmission formats the question record for the judge.
func buildSubmission(q *qa.TestQuestion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "QUESTION (%s): %s\n", q.Language, q.Question)
	if q.ExpectedAnswer != "" {
		fmt.Fprintf(&b, "EXPECTED ANSWER: %s\n", q.ExpectedAnswer)
	}
	if q.SourceDocumentID != nil {
		page := 0
		if q.SourcePage != nil {
			page = *q.SourcePage
		}
		fmt.Fprintf(&b, "EXPECTED SOURCE: document %s, page %d\n", q.SourceDocumentID, page)
	}
	fmt.Fprintf(&b, "ACTUAL ANSWER: %s\n", q.Answer)
	if len(q.Citations) > 0 && string(q.Citations) != "null" {
		fmt.Fprintf(&b, "CITATIONS GIVEN: %s\n", string(q.Citations))
	}
	return b.String()
}

// storeVerdict persists the verdict and completes the question.
func (j *Judge) storeVerdict(ctx context.Context, q *qa.TestQuestion, v *Verdict, cost float64) error {
	detail, err := json.Marshal(qa.EvaluationDetail{
		Reasoning:        v.Reasoning,
		Issues:           v.Issues,
		CategorySpecific: v.CategorySpecific,
	})
	if err != nil {
		return fmt.Errorf("failed to encode evaluation detail: %w", err)
	}

	if err := j.questions.UpdateFields(ctx, q.ID, map[string]interface{}{
		"status":            qa.QuestionStatusCompleted,
		"score":             v.Score,
		"passed":            v.Passed,
		"evaluation_detail": detail,
		"evaluation_cost":   cost,
	}); err != nil {
		return fmt.Errorf("failed to persist verdict for question %s: %w", q.ID, err)
	}
	return nil
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
