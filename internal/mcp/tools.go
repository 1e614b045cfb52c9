// Package mcp exposes the QA engine as MCP tools for AI assistants and
// admin tooling.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/chatbot-qa/internal/server"
)

// RegisterTools registers all MCP tools with the server.
func RegisterTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := registerRunTools(s, sc); err != nil {
		return err
	}
	if err := registerTemplateTools(s, sc); err != nil {
		return err
	}
	return nil
}

func registerRunTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	startTool := mcp.NewTool("start_test_run",
		mcp.WithDescription("Start a QA test run for a tenant's chatbot. The run executes in the background; poll get_test_run for progress."),
		mcp.WithString("tenant_id",
			mcp.Required(),
			mcp.Description("Tenant UUID whose document corpus and chatbot are tested"),
		),
		mcp.WithNumber("min_questions",
			mcp.Description("Question floor independent of corpus size (default: 20)"),
		),
		mcp.WithNumber("questions_per_document",
			mcp.Description("Extra questions per processed document (default: 2)"),
		),
		mcp.WithString("categories",
			mcp.Description("Comma-separated category subset (default: all eight categories)"),
		),
		mcp.WithString("languages",
			mcp.Description("Comma-separated target languages, default language first (default: en)"),
		),
		mcp.WithString("strictness",
			mcp.Description("Judge temperament: lenient, normal or strict (default: normal)"),
		),
	)
	s.AddTool(startTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleStartTestRun(ctx, request, sc)
	})

	getTool := mcp.NewTool("get_test_run",
		mcp.WithDescription("Get the status and progress of a QA test run"),
		mcp.WithString("run_id",
			mcp.Required(),
			mcp.Description("Test run UUID"),
		),
	)
	s.AddTool(getTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetTestRun(ctx, request, sc)
	})

	listTool := mcp.NewTool("list_test_runs",
		mcp.WithDescription("List recent QA test runs for a tenant"),
		mcp.WithString("tenant_id",
			mcp.Required(),
			mcp.Description("Tenant UUID"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of runs to return (default: 20)"),
		),
	)
	s.AddTool(listTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListTestRuns(ctx, request, sc)
	})

	reportTool := mcp.NewTool("get_test_report",
		mcp.WithDescription("Get the full report of a finalized QA test run, including per-question verdicts"),
		mcp.WithString("run_id",
			mcp.Required(),
			mcp.Description("Test run UUID"),
		),
		mcp.WithString("format",
			mcp.Description("Report format: text or json (default: json)"),
		),
	)
	s.AddTool(reportTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetTestReport(ctx, request, sc)
	})

	resumeTool := mcp.NewTool("resume_test_run",
		mcp.WithDescription("Resume an interrupted QA test run from its last persisted state"),
		mcp.WithString("run_id",
			mcp.Required(),
			mcp.Description("Test run UUID"),
		),
	)
	s.AddTool(resumeTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleResumeTestRun(ctx, request, sc)
	})

	return nil
}

func registerTemplateTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listTool := mcp.NewTool("list_templates",
		mcp.WithDescription("List a tenant's active test question templates"),
		mcp.WithString("tenant_id",
			mcp.Required(),
			mcp.Description("Tenant UUID"),
		),
	)
	s.AddTool(listTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListTemplates(ctx, request, sc)
	})

	upsertTool := mcp.NewTool("upsert_template",
		mcp.WithDescription("Create or update a manually authored test question template"),
		mcp.WithString("tenant_id",
			mcp.Required(),
			mcp.Description("Tenant UUID"),
		),
		mcp.WithString("template_id",
			mcp.Description("Template UUID to update (omit to create)"),
		),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Test category the template probes"),
		),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Question text"),
		),
		mcp.WithString("expected_answer",
			mcp.Description("Expected answer the judge compares against"),
		),
		mcp.WithString("language",
			mcp.Description("Question language (default: en)"),
		),
	)
	s.AddTool(upsertTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleUpsertTemplate(ctx, request, sc)
	})

	deactivateTool := mcp.NewTool("deactivate_template",
		mcp.WithDescription("Deactivate a template so future runs no longer include it"),
		mcp.WithString("template_id",
			mcp.Required(),
			mcp.Description("Template UUID"),
		),
	)
	s.AddTool(deactivateTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleDeactivateTemplate(ctx, request, sc)
	})

	return nil
}
