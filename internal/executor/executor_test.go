package executor

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/chatbot-qa/internal/qa"
	"github.com/giantswarm/chatbot-qa/internal/rag"
	"github.com/giantswarm/chatbot-qa/internal/store"
	"github.com/giantswarm/chatbot-qa/internal/testutil"
)

func seedRunWithQuestions(t *testing.T, s *store.Store, n int) (*qa.TestRun, []*qa.TestQuestion) {
	t.Helper()
	ctx := context.Background()

	run := &qa.TestRun{
		TenantID:       uuid.New(),
		Status:         qa.RunStatusRunning,
		TotalQuestions: n,
	}
	require.NoError(t, s.Runs.Create(ctx, run))

	questions := make([]*qa.TestQuestion, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, &qa.TestQuestion{
			RunID:         run.ID,
			TenantID:      run.TenantID,
			Category:      qa.CategoryRetrieval,
			Question:      fmt.Sprintf("question %d", i),
			Language:      "en",
			AutoGenerated: true,
			Status:        qa.QuestionStatusPending,
		})
	}
	require.NoError(t, s.Questions.CreateBatch(ctx, questions))
	return run, questions
}

func newTestExecutor(s *store.Store, retriever rag.Retriever, answerer rag.AnswerGenerator) *Executor {
	e := New(s.Questions, s.Runs, retriever, answerer, "gpt-4o-mini")
	e.SetQuestionDelay(0)
	return e
}

func TestExecuteRunCompletesAllQuestions(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	run, _ := seedRunWithQuestions(t, s, 3)

	retriever := &testutil.MockRetriever{
		Context: rag.RetrievedContext{
			ContextText:   "Employees accrue 25 vacation days per calendar year.",
			Citations:     []qa.Citation{{DocumentName: "handbook.pdf", Page: 12}},
			EmbeddingCost: 0.0001,
		},
	}
	answerer := &testutil.MockAnswerGenerator{DefaultAnswer: "25 days per year (handbook.pdf, page 12)."}

	require.NoError(t, newTestExecutor(s, retriever, answerer).ExecuteRun(ctx, run))

	questions, err := s.Questions.ListByRun(ctx, run.ID)
	require.NoError(t, err)
	for _, q := range questions {
		assert.Equal(t, qa.QuestionStatusCompleted, q.Status)
		assert.Equal(t, "25 days per year (handbook.pdf, page 12).", q.Answer)
		assert.Contains(t, string(q.Citations), "handbook.pdf")
		assert.Greater(t, q.ExecutionCost, 0.0001, "cost covers embedding plus answer tokens")
		assert.Nil(t, q.Score, "execution never scores")
	}

	updated, err := s.Runs.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.QuestionsCompleted)
	assert.Equal(t, 3, retriever.Calls)
	assert.Equal(t, 3, answerer.Calls)
}

func TestExecuteRunIsolatesQuestionFailures(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	run, questions := seedRunWithQuestions(t, s, 3)

	retriever := &testutil.MockRetriever{
		Context: rag.RetrievedContext{ContextText: "context"},
		FailFor: map[string]string{questions[1].Question: "retrieval backend unavailable"},
	}
	answerer := &testutil.MockAnswerGenerator{DefaultAnswer: "an answer"}

	require.NoError(t, newTestExecutor(s, retriever, answerer).ExecuteRun(ctx, run))

	rows, err := s.Questions.ListByRun(ctx, run.ID)
	require.NoError(t, err)

	var failed, completed int
	for _, q := range rows {
		switch q.Status {
		case qa.QuestionStatusFailed:
			failed++
			assert.Contains(t, q.ErrorMessage, "retrieval backend unavailable")
			assert.Zero(t, q.ExecutionCost)
			assert.Empty(t, q.Answer)
		case qa.QuestionStatusCompleted:
			completed++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 2, completed, "one failing question must not stop the others")
}

func TestExecuteRunCheckpointsProgress(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	run, _ := seedRunWithQuestions(t, s, 7)

	retriever := &testutil.MockRetriever{Context: rag.RetrievedContext{ContextText: "context"}}
	answerer := &testutil.MockAnswerGenerator{DefaultAnswer: "an answer"}

	require.NoError(t, newTestExecutor(s, retriever, answerer).ExecuteRun(ctx, run))

	updated, err := s.Runs.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.QuestionsCompleted, "final checkpoint covers the partial batch")
}

func TestExecuteRunOnlyPicksPendingQuestions(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	run, questions := seedRunWithQuestions(t, s, 2)

	// Simulate a resumed run: one question already executed.
	require.NoError(t, s.Questions.UpdateFields(ctx, questions[0].ID, map[string]interface{}{
		"status": qa.QuestionStatusCompleted,
		"answer": "already answered",
	}))

	retriever := &testutil.MockRetriever{Context: rag.RetrievedContext{ContextText: "context"}}
	answerer := &testutil.MockAnswerGenerator{DefaultAnswer: "fresh answer"}

	require.NoError(t, newTestExecutor(s, retriever, answerer).ExecuteRun(ctx, run))

	assert.Equal(t, 1, retriever.Calls, "completed questions are not re-executed")

	first, err := s.Questions.ListByRun(ctx, run.ID)
	require.NoError(t, err)
	answers := map[string]bool{}
	for _, q := range first {
		answers[q.Answer] = true
	}
	assert.True(t, answers["already answered"])
	assert.True(t, answers["fresh answer"])
}

func TestExecuteRunStopsOnCancelledContext(t *testing.T) {
	s := testutil.NewTestStore(t)
	run, _ := seedRunWithQuestions(t, s, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	retriever := &testutil.MockRetriever{Context: rag.RetrievedContext{ContextText: "context"}}
	answerer := &testutil.MockAnswerGenerator{DefaultAnswer: "an answer"}

	err := newTestExecutor(s, retriever, answerer).ExecuteRun(ctx, run)
	require.Error(t, err)
	assert.Zero(t, answerer.Calls)
}
