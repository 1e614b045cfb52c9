package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/giantswarm/chatbot-qa/internal/qa"
)

// commonProblemThreshold is how often a judge issue must recur across a run's
// questions before it is reported as a common problem.
const commonProblemThreshold = 3

// recommendations maps a weak category to its remediation advice. A category
// earns its entry when its average score falls under the pass threshold.
var recommendations = map[qa.Category]string{
	qa.CategoryRetrieval:     "Review chunking and embedding settings so relevant passages rank higher during retrieval.",
	qa.CategoryAccuracy:      "Check that key facts are not split across chunk boundaries; answers are losing detail.",
	qa.CategoryCitation:      "Tighten the answer prompt so every answer names its source document and page.",
	qa.CategoryHallucination: "Strengthen grounding instructions so the agent admits missing information instead of inventing it.",
	qa.CategoryOutOfScope:    "Add firmer scope guardrails; off-topic questions should be declined with a polite redirect.",
	qa.CategoryNoAnswer:      "Route personal and account-specific questions to a human contact channel.",
	qa.CategoryConsistency:   "Deduplicate conflicting document versions in the corpus; the agent contradicts itself.",
	qa.CategoryMultilingual:  "Improve non-default-language coverage, either via translated sources or better prompt language handling.",
}

// Finalize aggregates a run's question results into the run record and marks
// it completed. Failed questions carry no score and are excluded from every
// average; a run whose questions all failed finalizes with an overall of 0.
func (o *Orchestrator) Finalize(ctx context.Context, runID uuid.UUID) error {
	run, err := o.runs.GetByID(ctx, runID)
	if err != nil {
		return err
	}
	questions, err := o.questions.ListByRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to load questions for run %s: %w", runID, err)
	}

	overall, byCategory := ComputeScores(questions)
	summary := BuildSummary(byCategory, questions)

	var execCost, evalCost float64
	for _, q := range questions {
		execCost += q.ExecutionCost
		evalCost += q.EvaluationCost
	}
	// Failed questions were still processed, so the progress counter covers
	// every persisted question rather than only the completed ones.
	processed := len(questions)
	totalCost := run.GenerationCost + execCost + evalCost

	scoresJSON, err := json.Marshal(byCategory)
	if err != nil {
		return fmt.Errorf("failed to encode category scores: %w", err)
	}
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode run summary: %w", err)
	}

	now := time.Now()
	var duration float64
	if run.StartedAt != nil {
		duration = now.Sub(*run.StartedAt).Seconds()
	}

	if err := o.runs.UpdateFields(ctx, runID, map[string]interface{}{
		"status":              qa.RunStatusCompleted,
		"current_phase":       "completed",
		"overall_score":       overall,
		"scores_by_category":  scoresJSON,
		"summary":             summaryJSON,
		"execution_cost":      execCost,
		"evaluation_cost":     evalCost,
		"total_cost":          totalCost,
		"questions_completed": processed,
		"completed_at":        now,
		"duration_seconds":    duration,
	}); err != nil {
		return fmt.Errorf("failed to finalize run %s: %w", runID, err)
	}

	slog.Info("test run completed",
		"run_id", runID,
		"overall_score", overall,
		"questions_completed", processed,
		"total_cost", totalCost,
		"duration_seconds", duration,
	)
	return nil
}

// ComputeScores returns the overall score and the per-category averages over
// all scored questions. Unscored questions do not drag any average down; a
// category with no scored questions reports 0.
func ComputeScores(questions []*qa.TestQuestion) (float64, map[qa.Category]float64) {
	type agg struct {
		sum   float64
		count int
	}
	perCat := make(map[qa.Category]*agg)
	var total agg

	for _, q := range questions {
		if _, ok := perCat[q.Category]; !ok {
			perCat[q.Category] = &agg{}
		}
		if q.Score == nil {
			continue
		}
		perCat[q.Category].sum += *q.Score
		perCat[q.Category].count++
		total.sum += *q.Score
		total.count++
	}

	byCategory := make(map[qa.Category]float64, len(perCat))
	for cat, a := range perCat {
		if a.count == 0 {
			byCategory[cat] = 0
			continue
		}
		byCategory[cat] = a.sum / float64(a.count)
	}

	var overall float64
	if total.count > 0 {
		overall = total.sum / float64(total.count)
	}
	return overall, byCategory
}

// BuildSummary derives the qualitative roll-up from category averages and the
// judges' recurring issue strings. Categories without any scored question are
// skipped entirely.
func BuildSummary(byCategory map[qa.Category]float64, questions []*qa.TestQuestion) qa.Summary {
	scoredCount := make(map[qa.Category]int)
	issueCount := make(map[string]int)
	for _, q := range questions {
		if q.Score != nil {
			scoredCount[q.Category]++
		}
		if len(q.EvaluationDetail) == 0 {
			continue
		}
		var detail qa.EvaluationDetail
		if err := json.Unmarshal(q.EvaluationDetail, &detail); err != nil {
			continue
		}
		for _, issue := range detail.Issues {
			issueCount[issue]++
		}
	}

	var summary qa.Summary
	for _, cat := range qa.AllCategories() {
		avg, ok := byCategory[cat]
		if !ok || scoredCount[cat] == 0 {
			continue
		}
		switch {
		case avg >= 85:
			summary.Strengths = append(summary.Strengths,
				fmt.Sprintf("Strong %s performance (%.0f/100).", cat, avg))
		case avg > 0 && avg < 50:
			summary.Weaknesses = append(summary.Weaknesses,
				fmt.Sprintf("Weak %s performance (%.0f/100).", cat, avg))
		}
		if avg < qa.PassThreshold {
			if rec, ok := recommendations[cat]; ok {
				summary.Recommendations = append(summary.Recommendations, rec)
			}
		}
	}

	type recurring struct {
		issue string
		count int
	}
	var common []recurring
	for issue, n := range issueCount {
		if n >= commonProblemThreshold {
			common = append(common, recurring{issue, n})
		}
	}
	sort.Slice(common, func(i, j int) bool {
		if common[i].count != common[j].count {
			return common[i].count > common[j].count
		}
		return common[i].issue < common[j].issue
	})
	for _, c := range common {
		summary.CommonProblems = append(summary.CommonProblems,
			fmt.Sprintf("%s (%d occurrences)", c.issue, c.count))
	}
	return summary
}
