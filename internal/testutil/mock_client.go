// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/giantswarm/chatbot-qa/internal/llm"
	"github.com/giantswarm/chatbot-qa/internal/rag"
)

// MockLLMClient is a configurable mock for llm.Client used across test packages.
type MockLLMClient struct {
	mu sync.Mutex

	// Responses maps user messages to canned responses.
	Responses map[string]string

	// Queue is drained one response per call before falling back to
	// Responses and DefaultResponse. Useful for retry sequences.
	Queue []string

	// DefaultResponse is returned when no matching key is found in Responses.
	DefaultResponse string

	// Err, when set, is returned by every call.
	Err error

	// Usage is attached to every successful response.
	Usage llm.Usage

	// Calls tracks the number of ChatCompletion invocations.
	Calls int

	// Requests stores every ChatRequest for inspection.
	Requests []llm.ChatRequest
}

func (m *MockLLMClient) ChatCompletion(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	m.Requests = append(m.Requests, req)

	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Queue) > 0 {
		content := m.Queue[0]
		m.Queue = m.Queue[1:]
		return &llm.ChatResponse{Content: content, Usage: m.Usage}, nil
	}
	if resp, ok := m.Responses[req.UserMessage]; ok {
		return &llm.ChatResponse{Content: resp, Usage: m.Usage}, nil
	}
	if m.DefaultResponse != "" {
		return &llm.ChatResponse{Content: m.DefaultResponse, Usage: m.Usage}, nil
	}
	return &llm.ChatResponse{Content: "mock response", Usage: m.Usage}, nil
}

// LastRequest returns the most recent ChatRequest, or a zero value when the
// mock was never called.
func (m *MockLLMClient) LastRequest() llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return llm.ChatRequest{}
	}
	return m.Requests[len(m.Requests)-1]
}

// MockRetriever is a configurable mock for rag.Retriever.
type MockRetriever struct {
	// Context is returned for every question unless FailFor matches.
	Context rag.RetrievedContext

	// FailFor maps question text to an error message; matching questions
	// fail retrieval.
	FailFor map[string]string

	// Calls tracks the number of RetrieveContext invocations.
	Calls int
}

func (m *MockRetriever) RetrieveContext(_ context.Context, tenantID uuid.UUID, question string) (*rag.RetrievedContext, error) {
	m.Calls++
	if msg, ok := m.FailFor[question]; ok {
		return nil, fmt.Errorf("%s", msg)
	}
	rc := m.Context
	return &rc, nil
}

// MockAnswerGenerator is a configurable mock for rag.AnswerGenerator.
type MockAnswerGenerator struct {
	// Answers maps question text to canned answer text.
	Answers map[string]string

	// DefaultAnswer is used when no matching key is found in Answers.
	// An empty default produces an empty answer, which the judge
	// auto-scores without a model call.
	DefaultAnswer string

	// Err, when set, is returned by every call.
	Err error

	// Calls tracks the number of GenerateAnswer invocations.
	Calls int
}

func (m *MockAnswerGenerator) GenerateAnswer(_ context.Context, systemPrompt, question string) (*rag.Answer, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if text, ok := m.Answers[question]; ok {
		return &rag.Answer{Text: text, InputTokens: 100, OutputTokens: 50}, nil
	}
	return &rag.Answer{Text: m.DefaultAnswer, InputTokens: 100, OutputTokens: 50}, nil
}

func (m *MockAnswerGenerator) Model() string { return "gpt-4o-mini" }
