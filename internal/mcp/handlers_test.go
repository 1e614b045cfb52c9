package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/chatbot-qa/internal/executor"
	"github.com/giantswarm/chatbot-qa/internal/generator"
	"github.com/giantswarm/chatbot-qa/internal/judge"
	"github.com/giantswarm/chatbot-qa/internal/qa"
	"github.com/giantswarm/chatbot-qa/internal/rag"
	"github.com/giantswarm/chatbot-qa/internal/runner"
	"github.com/giantswarm/chatbot-qa/internal/server"
	"github.com/giantswarm/chatbot-qa/internal/testutil"
)

func newServerContext(t *testing.T) (*server.ServerContext, uuid.UUID) {
	t.Helper()
	s := testutil.NewTestStore(t)
	tenantID := uuid.New()
	testutil.SeedCorpus(t, s, tenantID, 1, 2)

	genClient := &testutil.MockLLMClient{
		DefaultResponse: `{"question": "How many vacation days do employees get?", "expected_answer": "25 days."}`,
	}
	judgeClient := &testutil.MockLLMClient{
		DefaultResponse: `{"score": 90, "passed": true, "reasoning": "accurate"}`,
	}
	retriever := &testutil.MockRetriever{Context: rag.RetrievedContext{ContextText: "context"}}
	answerer := &testutil.MockAnswerGenerator{DefaultAnswer: "25 days per year."}

	gen := generator.New(s.Corpus, s.Templates, s.Questions, genClient, "gpt-4o-mini")
	exec := executor.New(s.Questions, s.Runs, retriever, answerer, "gpt-4o-mini")
	exec.SetQuestionDelay(0)
	jdg := judge.New(judgeClient, s.Questions, judge.Config{})
	jdg.SetQuestionDelay(0)

	return &server.ServerContext{
		Store:        s,
		Orchestrator: runner.NewOrchestrator(s.Runs, s.Questions, s.Corpus, gen, exec, jdg),
	}, tenantID
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args
	return request
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	content, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return content.Text
}

func TestHandleStartTestRun(t *testing.T) {
	sc, tenantID := newServerContext(t)

	result, err := handleStartTestRun(context.Background(), callRequest(map[string]interface{}{
		"tenant_id":              tenantID.String(),
		"min_questions":          float64(4),
		"questions_per_document": float64(0),
		"categories":             "retrieval,no_answer",
	}), sc)
	require.NoError(t, err)

	var resp struct {
		RunID          uuid.UUID `json:"run_id"`
		Status         string    `json:"status"`
		TotalQuestions int       `json:"total_questions"`
	}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &resp))
	assert.NotEqual(t, uuid.Nil, resp.RunID)
	assert.Equal(t, 4, resp.TotalQuestions)

	run, err := sc.Store.Runs.GetByID(context.Background(), resp.RunID)
	require.NoError(t, err)
	assert.NotNil(t, run.StartedAt)
}

func TestHandleStartTestRunMissingTenant(t *testing.T) {
	sc, _ := newServerContext(t)

	result, err := handleStartTestRun(context.Background(), callRequest(map[string]interface{}{}), sc)
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), "tenant_id is required")
}

func TestHandleStartTestRunInvalidCategory(t *testing.T) {
	sc, tenantID := newServerContext(t)

	result, err := handleStartTestRun(context.Background(), callRequest(map[string]interface{}{
		"tenant_id":  tenantID.String(),
		"categories": "sarcasm",
	}), sc)
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), "failed to start test run")
}

func TestHandleGetTestRun(t *testing.T) {
	sc, tenantID := newServerContext(t)

	run, err := sc.Orchestrator.StartRun(context.Background(), tenantID, qa.DefaultRunConfig())
	require.NoError(t, err)

	result, err := handleGetTestRun(context.Background(), callRequest(map[string]interface{}{
		"run_id": run.ID.String(),
	}), sc)
	require.NoError(t, err)

	text := textContent(t, result)
	assert.Contains(t, text, run.ID.String())
	assert.Contains(t, text, string(qa.RunStatusPending))
}

func TestHandleGetTestRunNotFound(t *testing.T) {
	sc, _ := newServerContext(t)

	result, err := handleGetTestRun(context.Background(), callRequest(map[string]interface{}{
		"run_id": uuid.New().String(),
	}), sc)
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), "not found")
}

func TestHandleListTestRuns(t *testing.T) {
	sc, tenantID := newServerContext(t)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := sc.Orchestrator.StartRun(ctx, tenantID, qa.DefaultRunConfig())
		require.NoError(t, err)
	}

	result, err := handleListTestRuns(ctx, callRequest(map[string]interface{}{
		"tenant_id": tenantID.String(),
		"limit":     float64(2),
	}), sc)
	require.NoError(t, err)

	var infos []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &infos))
	assert.Len(t, infos, 2)
	assert.Contains(t, infos[0], "run_id")
	assert.Contains(t, infos[0], "status")
}

func TestHandleGetTestReportAfterCompletedRun(t *testing.T) {
	sc, tenantID := newServerContext(t)
	ctx := context.Background()

	cfg := qa.RunConfig{
		MinQuestions: 4,
		Categories:   []qa.Category{qa.CategoryRetrieval, qa.CategoryNoAnswer},
	}
	run, err := sc.Orchestrator.StartRun(ctx, tenantID, cfg)
	require.NoError(t, err)
	require.NoError(t, sc.Orchestrator.RunComplete(ctx, run.ID))

	result, err := handleGetTestReport(ctx, callRequest(map[string]interface{}{
		"run_id": run.ID.String(),
		"format": "text",
	}), sc)
	require.NoError(t, err)

	text := textContent(t, result)
	assert.Contains(t, text, "QA Test Report")
	assert.Contains(t, text, "90.0/100")
}

func TestHandleUpsertAndDeactivateTemplate(t *testing.T) {
	sc, tenantID := newServerContext(t)
	ctx := context.Background()

	result, err := handleUpsertTemplate(ctx, callRequest(map[string]interface{}{
		"tenant_id":       tenantID.String(),
		"category":        "citation",
		"question":        "Which document defines the travel policy?",
		"expected_answer": "The travel handbook, page 4.",
	}), sc)
	require.NoError(t, err)

	var tpl qa.TestTemplate
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &tpl))
	assert.True(t, tpl.Active)
	assert.Equal(t, qa.CategoryCitation, tpl.Category)

	// Update in place.
	result, err = handleUpsertTemplate(ctx, callRequest(map[string]interface{}{
		"tenant_id":   tenantID.String(),
		"template_id": tpl.ID.String(),
		"category":    "citation",
		"question":    "Which document and page define the travel policy?",
	}), sc)
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), "Which document and page")

	// List shows it.
	result, err = handleListTemplates(ctx, callRequest(map[string]interface{}{
		"tenant_id": tenantID.String(),
	}), sc)
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), tpl.ID.String())

	// Deactivate removes it from future listings.
	result, err = handleDeactivateTemplate(ctx, callRequest(map[string]interface{}{
		"template_id": tpl.ID.String(),
	}), sc)
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), "deactivated")

	result, err = handleListTemplates(ctx, callRequest(map[string]interface{}{
		"tenant_id": tenantID.String(),
	}), sc)
	require.NoError(t, err)
	assert.NotContains(t, textContent(t, result), tpl.ID.String())
}

func TestHandleUpsertTemplateRejectsUnknownCategory(t *testing.T) {
	sc, tenantID := newServerContext(t)

	result, err := handleUpsertTemplate(context.Background(), callRequest(map[string]interface{}{
		"tenant_id": tenantID.String(),
		"category":  "sarcasm",
		"question":  "q",
	}), sc)
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), "unknown category")
}

func TestHandleResumeTestRunRefusesCompleted(t *testing.T) {
	sc, tenantID := newServerContext(t)
	ctx := context.Background()

	cfg := qa.RunConfig{
		MinQuestions: 4,
		Categories:   []qa.Category{qa.CategoryRetrieval, qa.CategoryNoAnswer},
	}
	run, err := sc.Orchestrator.StartRun(ctx, tenantID, cfg)
	require.NoError(t, err)
	require.NoError(t, sc.Orchestrator.RunComplete(ctx, run.ID))

	result, err := handleResumeTestRun(ctx, callRequest(map[string]interface{}{
		"run_id": run.ID.String(),
	}), sc)
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), "cannot be resumed")
}
