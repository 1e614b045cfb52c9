// Package rag defines the contracts of the agent's answer pipeline as
// consumed by the QA engine. Retrieval and answer generation are external
// collaborators; this package holds their interfaces, a default LLM-backed
// answer generator and the system-prompt builder.
package rag

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/giantswarm/chatbot-qa/internal/llm"
	"github.com/giantswarm/chatbot-qa/internal/qa"
)

// RetrievedContext is the result of a retrieval call for one question.
type RetrievedContext struct {
	ContextText     string         `json:"context_text"`
	Citations       []qa.Citation  `json:"citations,omitempty"`
	EmbeddingTokens int            `json:"embedding_tokens"`
	EmbeddingCost   float64        `json:"embedding_cost"`
	DiagnosticTrace map[string]any `json:"diagnostic_trace,omitempty"`
}

// Retriever turns a question into ranked context passages. Implementations
// must be idempotent and side-effect-free.
type Retriever interface {
	RetrieveContext(ctx context.Context, tenantID uuid.UUID, question string) (*RetrievedContext, error)
}

// Answer is the result of a single answer-generation call.
type Answer struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// AnswerGenerator produces the agent's answer for a question given the fully
// built system prompt. Single-shot, non-streaming.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, systemPrompt, question string) (*Answer, error)
}

// BuildSystemPrompt embeds the retrieved context and the target language into
// the agent's answering prompt.
func BuildSystemPrompt(contextText, language string) string {
	return fmt.Sprintf(`You are a helpful assistant answering questions strictly based on the provided document excerpts.

Rules:
- Answer only from the context below. If the context does not contain the answer, say so honestly.
- Cite the source document and page for factual claims when available.
- Answer in language: %s.

Context:
%s`, language, contextText)
}

// LLMAnswerGenerator is the default AnswerGenerator backed by an
// OpenAI-compatible chat model.
type LLMAnswerGenerator struct {
	client llm.Client
	model  string
}

// NewLLMAnswerGenerator creates an AnswerGenerator using the given client and
// model name.
func NewLLMAnswerGenerator(client llm.Client, model string) *LLMAnswerGenerator {
	return &LLMAnswerGenerator{client: client, model: model}
}

// GenerateAnswer sends one chat completion and maps usage counts onto the
// Answer.
func (g *LLMAnswerGenerator) GenerateAnswer(ctx context.Context, systemPrompt, question string) (*Answer, error) {
	resp, err := g.client.ChatCompletion(ctx, llm.ChatRequest{
		Model:         g.model,
		SystemMessage: systemPrompt,
		UserMessage:   question,
	})
	if err != nil {
		return nil, fmt.Errorf("answer generation failed: %w", err)
	}
	return &Answer{
		Text:         resp.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

// Model returns the answer model name, used for cost accounting.
func (g *LLMAnswerGenerator) Model() string { return g.model }
