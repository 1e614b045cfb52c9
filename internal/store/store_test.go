package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/chatbot-qa/internal/qa"
	"github.com/giantswarm/chatbot-qa/internal/store"
	"github.com/giantswarm/chatbot-qa/internal/testutil"
)

func createRun(t *testing.T, s *store.Store, tenantID uuid.UUID) *qa.TestRun {
	t.Helper()
	run := &qa.TestRun{
		TenantID:       tenantID,
		Status:         qa.RunStatusPending,
		TotalQuestions: 4,
	}
	require.NoError(t, s.Runs.Create(context.Background(), run))
	return run
}

func TestRunRepoRoundtrip(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	tenantID := uuid.New()

	run := createRun(t, s, tenantID)
	assert.NotEqual(t, uuid.Nil, run.ID, "create assigns an id")

	got, err := s.Runs.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, tenantID, got.TenantID)
	assert.Equal(t, qa.RunStatusPending, got.Status)
}

func TestRunRepoGetByIDNotFound(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	_, err := s.Runs.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRunRepoUpdateFieldsPatchesOnlyGivenColumns(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	run := createRun(t, s, uuid.New())

	require.NoError(t, s.Runs.UpdateFields(ctx, run.ID, map[string]interface{}{
		"status":        qa.RunStatusRunning,
		"current_phase": "execution",
	}))

	got, err := s.Runs.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, qa.RunStatusRunning, got.Status)
	assert.Equal(t, "execution", got.CurrentPhase)
	assert.Equal(t, 4, got.TotalQuestions, "untouched columns keep their value")
}

func TestRunRepoListByTenant(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	tenantID := uuid.New()

	for i := 0; i < 3; i++ {
		createRun(t, s, tenantID)
	}
	createRun(t, s, uuid.New()) // other tenant

	runs, err := s.Runs.ListByTenant(ctx, tenantID, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2, "limit applies")
	for _, r := range runs {
		assert.Equal(t, tenantID, r.TenantID)
	}
}

func TestRunRepoDeleteCascadesToQuestions(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	run := createRun(t, s, uuid.New())

	require.NoError(t, s.Questions.CreateBatch(ctx, []*qa.TestQuestion{
		{RunID: run.ID, TenantID: run.TenantID, Category: qa.CategoryRetrieval, Question: "q1", Language: "en", Status: qa.QuestionStatusPending},
		{RunID: run.ID, TenantID: run.TenantID, Category: qa.CategoryAccuracy, Question: "q2", Language: "en", Status: qa.QuestionStatusPending},
	}))

	require.NoError(t, s.Runs.Delete(ctx, run.ID))

	_, err := s.Runs.GetByID(ctx, run.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	count, err := s.Questions.CountByRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestQuestionRepoListUnscored(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	run := createRun(t, s, uuid.New())

	score := 80.0
	rows := []*qa.TestQuestion{
		{RunID: run.ID, TenantID: run.TenantID, Category: qa.CategoryRetrieval, Question: "executed", Language: "en", Answer: "a", Status: qa.QuestionStatusCompleted},
		{RunID: run.ID, TenantID: run.TenantID, Category: qa.CategoryRetrieval, Question: "interrupted mid-evaluation", Language: "en", Answer: "a", Status: qa.QuestionStatusEvaluating},
		{RunID: run.ID, TenantID: run.TenantID, Category: qa.CategoryRetrieval, Question: "already scored", Language: "en", Answer: "a", Score: &score, Status: qa.QuestionStatusCompleted},
		{RunID: run.ID, TenantID: run.TenantID, Category: qa.CategoryRetrieval, Question: "failed execution", Language: "en", Status: qa.QuestionStatusFailed},
		{RunID: run.ID, TenantID: run.TenantID, Category: qa.CategoryRetrieval, Question: "not yet executed", Language: "en", Status: qa.QuestionStatusPending},
	}
	require.NoError(t, s.Questions.CreateBatch(ctx, rows))

	unscored, err := s.Questions.ListUnscored(ctx, run.ID)
	require.NoError(t, err)

	questions := make([]string, 0, len(unscored))
	for _, q := range unscored {
		questions = append(questions, q.Question)
	}
	assert.ElementsMatch(t, []string{"executed", "interrupted mid-evaluation"}, questions)
}

func TestQuestionRepoListByRunAndStatus(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	run := createRun(t, s, uuid.New())

	require.NoError(t, s.Questions.CreateBatch(ctx, []*qa.TestQuestion{
		{RunID: run.ID, TenantID: run.TenantID, Category: qa.CategoryRetrieval, Question: "p", Language: "en", Status: qa.QuestionStatusPending},
		{RunID: run.ID, TenantID: run.TenantID, Category: qa.CategoryRetrieval, Question: "c", Language: "en", Status: qa.QuestionStatusCompleted},
	}))

	pending, err := s.Questions.ListByRunAndStatus(ctx, run.ID, qa.QuestionStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "p", pending[0].Question)
}

func TestTemplateRepoListActiveFiltersByCategory(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	tenantID := uuid.New()

	citation := &qa.TestTemplate{TenantID: tenantID, Category: qa.CategoryCitation, Question: "cite?", Language: "en", Active: true}
	retrieval := &qa.TestTemplate{TenantID: tenantID, Category: qa.CategoryRetrieval, Question: "find?", Language: "en", Active: true}
	require.NoError(t, s.Templates.Create(ctx, citation))
	require.NoError(t, s.Templates.Create(ctx, retrieval))
	require.NoError(t, s.Templates.Deactivate(ctx, retrieval.ID))

	got, err := s.Templates.ListActive(ctx, tenantID, qa.CategoryCitation, qa.CategoryRetrieval)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, citation.ID, got[0].ID)

	none, err := s.Templates.ListActive(ctx, tenantID, qa.CategoryOutOfScope)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCorpusRepoCountsOnlyProcessedDocuments(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	tenantID := uuid.New()
	testutil.SeedCorpus(t, s, tenantID, 2, 1)

	pending := qa.Document{ID: uuid.New(), TenantID: tenantID, Name: "uploading.pdf", Status: "pending"}
	require.NoError(t, s.DB().Create(&pending).Error)

	count, err := s.Corpus.CountProcessedDocuments(ctx, tenantID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestCorpusRepoSampleChunksScopedToTenant(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	tenantID := uuid.New()
	testutil.SeedCorpus(t, s, tenantID, 1, 3)
	testutil.SeedCorpus(t, s, uuid.New(), 1, 3)

	chunks, err := s.Corpus.SampleChunks(ctx, tenantID, 2)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	for _, c := range chunks {
		assert.Equal(t, tenantID, c.TenantID)
		assert.NotEmpty(t, c.Content)
	}
}
