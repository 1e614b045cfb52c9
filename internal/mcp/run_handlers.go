package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/chatbot-qa/internal/qa"
	"github.com/giantswarm/chatbot-qa/internal/report"
	"github.com/giantswarm/chatbot-qa/internal/server"
	"github.com/giantswarm/chatbot-qa/internal/store"
)

func parseUUIDArg(args map[string]interface{}, key string) (uuid.UUID, error) {
	raw, ok := args[key].(string)
	if !ok || raw == "" {
		return uuid.Nil, fmt.Errorf("%s is required", key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %v", key, err)
	}
	return id, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func handleStartTestRun(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	tenantID, err := parseUUIDArg(args, "tenant_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cfg := qa.DefaultRunConfig()
	if v, ok := args["min_questions"].(float64); ok {
		cfg.MinQuestions = int(v)
	}
	if v, ok := args["questions_per_document"].(float64); ok {
		cfg.QuestionsPerDocument = int(v)
	}
	if v, ok := args["categories"].(string); ok && v != "" {
		cfg.Categories = nil
		for _, c := range splitList(v) {
			cfg.Categories = append(cfg.Categories, qa.Category(c))
		}
	}
	if v, ok := args["languages"].(string); ok && v != "" {
		cfg.Languages = splitList(v)
	}
	if v, ok := args["strictness"].(string); ok && v != "" {
		cfg.Strictness = v
	}

	run, err := sc.Orchestrator.StartRun(ctx, tenantID, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to start test run: %v", err)), nil
	}
	sc.Orchestrator.Launch(ctx, run.ID)

	data, err := json.MarshalIndent(map[string]interface{}{
		"run_id":          run.ID,
		"status":          run.Status,
		"total_questions": run.TotalQuestions,
	}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handleGetTestRun(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	runID, err := parseUUIDArg(request.GetArguments(), "run_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	run, err := sc.Store.Runs.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("test run %s not found", runID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to load test run: %v", err)), nil
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal test run: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handleListTestRuns(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	tenantID, err := parseUUIDArg(args, "tenant_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	limit := sc.RunsLimit()
	if v, ok := args["limit"].(float64); ok && int(v) > 0 {
		limit = int(v)
	}

	runs, err := sc.Store.Runs.ListByTenant(ctx, tenantID, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list test runs: %v", err)), nil
	}

	type runInfo struct {
		RunID          uuid.UUID    `json:"run_id"`
		Status         qa.RunStatus `json:"status"`
		OverallScore   *float64     `json:"overall_score,omitempty"`
		TotalQuestions int          `json:"total_questions"`
		Completed      int          `json:"questions_completed"`
		TotalCost      float64      `json:"total_cost"`
		CreatedAt      string       `json:"created_at"`
	}
	infos := make([]runInfo, 0, len(runs))
	for _, r := range runs {
		infos = append(infos, runInfo{
			RunID:          r.ID,
			Status:         r.Status,
			OverallScore:   r.OverallScore,
			TotalQuestions: r.TotalQuestions,
			Completed:      r.QuestionsCompleted,
			TotalCost:      r.TotalCost,
			CreatedAt:      r.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal test runs: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handleGetTestReport(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	runID, err := parseUUIDArg(args, "run_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	format := "json"
	if v, ok := args["format"].(string); ok && v != "" {
		format = v
	}
	renderer, err := report.NewRenderer(format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	run, err := sc.Store.Runs.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("test run %s not found", runID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to load test run: %v", err)), nil
	}
	questions, err := sc.Store.Questions.ListByRun(ctx, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load questions: %v", err)), nil
	}

	rep, err := report.Build(run, questions)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build report: %v", err)), nil
	}
	out, err := renderer.Render(rep)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to render report: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func handleResumeTestRun(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	runID, err := parseUUIDArg(request.GetArguments(), "run_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	run, err := sc.Store.Runs.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("test run %s not found", runID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to load test run: %v", err)), nil
	}
	if run.Status.Terminal() {
		return mcp.NewToolResultError(fmt.Sprintf("test run %s is already %s and cannot be resumed", runID, run.Status)), nil
	}

	sc.Orchestrator.Launch(ctx, runID)

	data, err := json.MarshalIndent(map[string]interface{}{
		"run_id": runID,
		"status": run.Status,
		"note":   "run resumed in background",
	}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
