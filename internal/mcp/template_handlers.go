package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/chatbot-qa/internal/qa"
	"github.com/giantswarm/chatbot-qa/internal/server"
	"github.com/giantswarm/chatbot-qa/internal/store"
)

func handleListTemplates(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	tenantID, err := parseUUIDArg(request.GetArguments(), "tenant_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	templates, err := sc.Store.Templates.ListActive(ctx, tenantID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list templates: %v", err)), nil
	}

	data, err := json.MarshalIndent(templates, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal templates: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handleUpsertTemplate(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	tenantID, err := parseUUIDArg(args, "tenant_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	category, _ := args["category"].(string)
	if !qa.Category(category).Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("unknown category %q", category)), nil
	}
	question, _ := args["question"].(string)
	if question == "" {
		return mcp.NewToolResultError("question is required"), nil
	}
	expectedAnswer, _ := args["expected_answer"].(string)
	language, _ := args["language"].(string)
	if language == "" {
		language = "en"
	}

	if rawID, ok := args["template_id"].(string); ok && rawID != "" {
		templateID, err := uuid.Parse(rawID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid template_id: %v", err)), nil
		}
		existing, err := sc.Store.Templates.GetByID(ctx, templateID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return mcp.NewToolResultError(fmt.Sprintf("template %s not found", templateID)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("failed to load template: %v", err)), nil
		}
		if existing.TenantID != tenantID {
			return mcp.NewToolResultError(fmt.Sprintf("template %s belongs to another tenant", templateID)), nil
		}
		if err := sc.Store.Templates.UpdateFields(ctx, templateID, map[string]interface{}{
			"category":        category,
			"question":        question,
			"expected_answer": expectedAnswer,
			"language":        language,
		}); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to update template: %v", err)), nil
		}
		return templateResult(ctx, sc, templateID)
	}

	tpl := &qa.TestTemplate{
		TenantID:       tenantID,
		Category:       qa.Category(category),
		Question:       question,
		ExpectedAnswer: expectedAnswer,
		Language:       language,
		Active:         true,
	}
	if err := sc.Store.Templates.Create(ctx, tpl); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create template: %v", err)), nil
	}
	return templateResult(ctx, sc, tpl.ID)
}

func handleDeactivateTemplate(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	templateID, err := parseUUIDArg(request.GetArguments(), "template_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := sc.Store.Templates.GetByID(ctx, templateID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("template %s not found", templateID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to load template: %v", err)), nil
	}
	if err := sc.Store.Templates.Deactivate(ctx, templateID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to deactivate template: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("template %s deactivated", templateID)), nil
}

func templateResult(ctx context.Context, sc *server.ServerContext, id uuid.UUID) (*mcp.CallToolResult, error) {
	tpl, err := sc.Store.Templates.GetByID(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load template: %v", err)), nil
	}
	data, err := json.MarshalIndent(tpl, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal template: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
