package runner

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/chatbot-qa/internal/qa"
)

func scored(cat qa.Category, score float64, issues ...string) *qa.TestQuestion {
	detail, _ := json.Marshal(qa.EvaluationDetail{Reasoning: "r", Issues: issues})
	passed := score >= qa.PassThreshold
	return &qa.TestQuestion{
		Category:         cat,
		Score:            &score,
		Passed:           &passed,
		Status:           qa.QuestionStatusCompleted,
		EvaluationDetail: detail,
	}
}

func unscored(cat qa.Category) *qa.TestQuestion {
	return &qa.TestQuestion{Category: cat, Status: qa.QuestionStatusFailed}
}

func TestComputeScoresAverages(t *testing.T) {
	questions := []*qa.TestQuestion{
		scored(qa.CategoryRetrieval, 80),
		scored(qa.CategoryRetrieval, 100),
		scored(qa.CategoryAccuracy, 40),
		unscored(qa.CategoryAccuracy),
	}

	overall, byCategory := ComputeScores(questions)

	assert.InDelta(t, (80.0+100.0+40.0)/3.0, overall, 1e-9)
	assert.InDelta(t, 90.0, byCategory[qa.CategoryRetrieval], 1e-9)
	assert.InDelta(t, 40.0, byCategory[qa.CategoryAccuracy], 1e-9,
		"unscored questions do not drag the category average down")
}

func TestComputeScoresAllQuestionsFailed(t *testing.T) {
	questions := []*qa.TestQuestion{
		unscored(qa.CategoryRetrieval),
		unscored(qa.CategoryCitation),
	}

	overall, byCategory := ComputeScores(questions)
	assert.Zero(t, overall)
	assert.Zero(t, byCategory[qa.CategoryRetrieval])
	assert.Zero(t, byCategory[qa.CategoryCitation])
}

func TestComputeScoresEmptyRun(t *testing.T) {
	overall, byCategory := ComputeScores(nil)
	assert.Zero(t, overall)
	assert.Empty(t, byCategory)
}

func TestBuildSummaryStrengthsAndWeaknesses(t *testing.T) {
	questions := []*qa.TestQuestion{
		scored(qa.CategoryRetrieval, 90),
		scored(qa.CategoryRetrieval, 90),
		scored(qa.CategoryHallucination, 30),
		scored(qa.CategoryCitation, 65),
	}
	_, byCategory := ComputeScores(questions)

	summary := BuildSummary(byCategory, questions)

	require.Len(t, summary.Strengths, 1)
	assert.Contains(t, summary.Strengths[0], "retrieval")

	require.Len(t, summary.Weaknesses, 1)
	assert.Contains(t, summary.Weaknesses[0], "hallucination")

	// Both the weak and the merely-failing category get a recommendation.
	assert.Len(t, summary.Recommendations, 2)
}

func TestBuildSummarySkipsCategoriesWithoutScores(t *testing.T) {
	questions := []*qa.TestQuestion{
		unscored(qa.CategoryMultilingual),
		scored(qa.CategoryRetrieval, 95),
	}
	_, byCategory := ComputeScores(questions)

	summary := BuildSummary(byCategory, questions)

	assert.Len(t, summary.Strengths, 1)
	assert.Empty(t, summary.Weaknesses,
		"a category with zero scored questions is not a weakness")
	assert.Empty(t, summary.Recommendations)
}

func TestFinalizeCountsFailedQuestionsAsProcessed(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)

	run := &qa.TestRun{TenantID: p.tenantID, Status: qa.RunStatusEvaluating, TotalQuestions: 2}
	require.NoError(t, p.store.Runs.Create(ctx, run))

	score := 90.0
	passed := true
	questions := []*qa.TestQuestion{
		{
			RunID:    run.ID,
			TenantID: p.tenantID,
			Category: qa.CategoryRetrieval,
			Question: "How many vacation days do employees get?",
			Language: "en",
			Answer:   "25 days per year.",
			Score:    &score,
			Passed:   &passed,
			Status:   qa.QuestionStatusCompleted,
		},
		{
			RunID:        run.ID,
			TenantID:     p.tenantID,
			Category:     qa.CategoryRetrieval,
			Question:     "Which document covers the travel policy?",
			Language:     "en",
			Status:       qa.QuestionStatusFailed,
			ErrorMessage: "retrieval backend unavailable",
		},
	}
	require.NoError(t, p.store.Questions.CreateBatch(ctx, questions))

	require.NoError(t, p.orchestrator.Finalize(ctx, run.ID))

	final, err := p.store.Runs.GetByID(ctx, run.ID)
	require.NoError(t, err)

	// The failed question was still processed, so the progress counter must
	// not regress below the number of persisted questions.
	assert.Equal(t, 2, final.QuestionsCompleted)
	require.NotNil(t, final.OverallScore)
	assert.Equal(t, 90.0, *final.OverallScore, "the mean covers only the scored questions")
}

func TestBuildSummaryCommonProblems(t *testing.T) {
	questions := []*qa.TestQuestion{
		scored(qa.CategoryCitation, 40, "missing citation"),
		scored(qa.CategoryCitation, 45, "missing citation"),
		scored(qa.CategoryAccuracy, 50, "missing citation", "incomplete answer"),
		scored(qa.CategoryAccuracy, 55, "incomplete answer"),
	}
	_, byCategory := ComputeScores(questions)

	summary := BuildSummary(byCategory, questions)

	require.Len(t, summary.CommonProblems, 1, "an issue must recur at least three times")
	assert.Contains(t, summary.CommonProblems[0], "missing citation")
	assert.Contains(t, summary.CommonProblems[0], "3 occurrences")
}
