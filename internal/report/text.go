package report

import (
	"fmt"
	"strings"

	"github.com/giantswarm/chatbot-qa/internal/qa"
)

// TextRenderer emits a human-readable report for terminals.
type TextRenderer struct{}

func (TextRenderer) Render(r *Report) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "QA Test Report\n")
	fmt.Fprintf(&b, "==============\n\n")
	fmt.Fprintf(&b, "Run:      %s\n", r.RunID)
	fmt.Fprintf(&b, "Tenant:   %s\n", r.TenantID)
	fmt.Fprintf(&b, "Status:   %s\n", r.Status)
	if r.ErrorMessage != "" {
		fmt.Fprintf(&b, "Error:    %s\n", r.ErrorMessage)
	}
	if r.OverallScore != nil {
		fmt.Fprintf(&b, "Score:    %.1f/100\n", *r.OverallScore)
	}
	fmt.Fprintf(&b, "Questions: %d/%d completed, %d passed, %d failed\n",
		r.QuestionsCompleted, r.TotalQuestions, r.QuestionsPassed, r.QuestionsFailed)
	fmt.Fprintf(&b, "Cost:     $%.4f (generation $%.4f, execution $%.4f, evaluation $%.4f)\n",
		r.TotalCost, r.GenerationCost, r.ExecutionCost, r.EvaluationCost)
	fmt.Fprintf(&b, "Duration: %.0fs\n", r.DurationSeconds)

	if len(r.ScoresByCategory) > 0 {
		fmt.Fprintf(&b, "\nScores by category\n")
		fmt.Fprintf(&b, "------------------\n")
		for _, cat := range qa.AllCategories() {
			score, ok := r.ScoresByCategory[cat]
			if !ok {
				continue
			}
			marker := "PASS"
			if score < qa.PassThreshold {
				marker = "FAIL"
			}
			fmt.Fprintf(&b, "  %-14s %6.1f  %s\n", cat, score, marker)
		}
	}

	writeSection(&b, "Strengths", r.Summary.Strengths)
	writeSection(&b, "Weaknesses", r.Summary.Weaknesses)
	writeSection(&b, "Recommendations", r.Summary.Recommendations)
	writeSection(&b, "Common problems", r.Summary.CommonProblems)

	var failing []QuestionResult
	for _, q := range r.Questions {
		if q.Status == qa.QuestionStatusFailed || (q.Passed != nil && !*q.Passed) {
			failing = append(failing, q)
		}
	}
	if len(failing) > 0 {
		fmt.Fprintf(&b, "\nFailing questions\n")
		fmt.Fprintf(&b, "-----------------\n")
		for _, q := range failing {
			score := "-"
			if q.Score != nil {
				score = fmt.Sprintf("%.0f", *q.Score)
			}
			fmt.Fprintf(&b, "  [%s] %s (score %s)\n", q.Category, q.Question, score)
			if q.Reasoning != "" {
				fmt.Fprintf(&b, "      %s\n", q.Reasoning)
			}
			if q.Error != "" {
				fmt.Fprintf(&b, "      error: %s\n", q.Error)
			}
		}
	}

	return []byte(b.String()), nil
}

func writeSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", title)
	fmt.Fprintf(b, "%s\n", strings.Repeat("-", len(title)))
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}
