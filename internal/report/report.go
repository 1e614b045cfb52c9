// Package report renders finalized test runs for humans and machines.
package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/giantswarm/chatbot-qa/internal/qa"
)

// Report is the renderer-independent view of a finalized test run.
type Report struct {
	RunID     uuid.UUID    `json:"run_id"`
	TenantID  uuid.UUID    `json:"tenant_id"`
	Status    qa.RunStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`

	OverallScore     *float64                `json:"overall_score,omitempty"`
	ScoresByCategory map[qa.Category]float64 `json:"scores_by_category,omitempty"`
	Summary          qa.Summary              `json:"summary"`

	TotalQuestions     int `json:"total_questions"`
	QuestionsCompleted int `json:"questions_completed"`
	QuestionsPassed    int `json:"questions_passed"`
	QuestionsFailed    int `json:"questions_failed"`

	GenerationCost float64 `json:"generation_cost"`
	ExecutionCost  float64 `json:"execution_cost"`
	EvaluationCost float64 `json:"evaluation_cost"`
	TotalCost      float64 `json:"total_cost"`

	DurationSeconds float64 `json:"duration_seconds"`
	ErrorMessage    string  `json:"error_message,omitempty"`

	Questions []QuestionResult `json:"questions,omitempty"`
}

// QuestionResult is one question's outcome inside a report.
type QuestionResult struct {
	ID        uuid.UUID         `json:"id"`
	Category  qa.Category       `json:"category"`
	Question  string            `json:"question"`
	Language  string            `json:"language"`
	Answer    string            `json:"answer,omitempty"`
	Score     *float64          `json:"score,omitempty"`
	Passed    *bool             `json:"passed,omitempty"`
	Status    qa.QuestionStatus `json:"status"`
	Reasoning string            `json:"reasoning,omitempty"`
	Issues    []string          `json:"issues,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Build assembles a Report from the run record and its questions.
func Build(run *qa.TestRun, questions []*qa.TestQuestion) (*Report, error) {
	r := &Report{
		RunID:              run.ID,
		TenantID:           run.TenantID,
		Status:             run.Status,
		CreatedAt:          run.CreatedAt,
		OverallScore:       run.OverallScore,
		TotalQuestions:     run.TotalQuestions,
		QuestionsCompleted: run.QuestionsCompleted,
		GenerationCost:     run.GenerationCost,
		ExecutionCost:      run.ExecutionCost,
		EvaluationCost:     run.EvaluationCost,
		TotalCost:          run.TotalCost,
		DurationSeconds:    run.DurationSeconds,
		ErrorMessage:       run.ErrorMessage,
	}

	if len(run.ScoresByCategory) > 0 {
		if err := json.Unmarshal(run.ScoresByCategory, &r.ScoresByCategory); err != nil {
			return nil, fmt.Errorf("failed to decode category scores: %w", err)
		}
	}
	if len(run.Summary) > 0 {
		if err := json.Unmarshal(run.Summary, &r.Summary); err != nil {
			return nil, fmt.Errorf("failed to decode run summary: %w", err)
		}
	}

	for _, q := range questions {
		qr := QuestionResult{
			ID:       q.ID,
			Category: q.Category,
			Question: q.Question,
			Language: q.Language,
			Answer:   q.Answer,
			Score:    q.Score,
			Passed:   q.Passed,
			Status:   q.Status,
			Error:    q.ErrorMessage,
		}
		if len(q.EvaluationDetail) > 0 {
			var detail qa.EvaluationDetail
			if err := json.Unmarshal(q.EvaluationDetail, &detail); err == nil {
				qr.Reasoning = detail.Reasoning
				qr.Issues = detail.Issues
			}
		}
		if q.Passed != nil {
			if *q.Passed {
				r.QuestionsPassed++
			} else {
				r.QuestionsFailed++
			}
		}
		r.Questions = append(r.Questions, qr)
	}
	return r, nil
}

// Renderer turns a Report into an output format.
type Renderer interface {
	Render(r *Report) ([]byte, error)
}

// NewRenderer returns the renderer for a format name.
func NewRenderer(format string) (Renderer, error) {
	switch format {
	case "json":
		return JSONRenderer{}, nil
	case "", "text":
		return TextRenderer{}, nil
	}
	return nil, fmt.Errorf("unsupported report format %q (supported: text, json)", format)
}

// JSONRenderer emits the report as indented JSON.
type JSONRenderer struct{}

func (JSONRenderer) Render(r *Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
