package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOpenAIClientDefaults(t *testing.T) {
	client := NewOpenAIClient()
	assert.Empty(t, client.model)
	assert.Nil(t, client.temperature)
}

func TestNewOpenAIClientWithModel(t *testing.T) {
	client := NewOpenAIClient(WithModel("gpt-4o"))
	assert.Equal(t, "gpt-4o", client.model)
}

func TestNewOpenAIClientWithTemperature(t *testing.T) {
	client := NewOpenAIClient(WithTemperature(0.7))
	assert.NotNil(t, client.temperature)
	assert.Equal(t, 0.7, *client.temperature)
}

func TestNewOpenAIClientWithAllOptions(t *testing.T) {
	client := NewOpenAIClient(
		WithBaseURL("https://api.example.com/v1"),
		WithAPIKey("sk-test"),
		WithModel("gpt-4o"),
		WithTemperature(0.5),
	)
	assert.Equal(t, "gpt-4o", client.model)
	assert.NotNil(t, client.temperature)
	assert.Equal(t, 0.5, *client.temperature)
}

func TestApplyDefaultsUsesClientModel(t *testing.T) {
	client := NewOpenAIClient(WithModel("gpt-4o"))

	req := client.applyDefaults(ChatRequest{
		SystemMessage: "test",
		UserMessage:   "hello",
	})
	assert.Equal(t, "gpt-4o", req.Model)
}

func TestApplyDefaultsRequestModelTakesPrecedence(t *testing.T) {
	client := NewOpenAIClient(WithModel("gpt-4o"))

	req := client.applyDefaults(ChatRequest{
		Model:         "gpt-4o-mini",
		SystemMessage: "test",
		UserMessage:   "hello",
	})
	assert.Equal(t, "gpt-4o-mini", req.Model)
}

func TestApplyDefaultsUsesClientTemperature(t *testing.T) {
	client := NewOpenAIClient(WithTemperature(0.8))

	req := client.applyDefaults(ChatRequest{
		Model:       "test",
		UserMessage: "hello",
	})
	assert.NotNil(t, req.Temperature)
	assert.Equal(t, 0.8, *req.Temperature)
}

func TestApplyDefaultsRequestTemperatureTakesPrecedence(t *testing.T) {
	client := NewOpenAIClient(WithTemperature(0.8))

	req := client.applyDefaults(ChatRequest{
		Model:       "test",
		UserMessage: "hello",
		Temperature: Float64Ptr(0.5),
	})
	assert.Equal(t, 0.5, *req.Temperature)
}

func TestCostUsesModelRates(t *testing.T) {
	usage := Usage{PromptTokens: 1_000_000, CompletionTokens: 1_000_000}

	// gpt-4o-mini is the longer prefix and must win over gpt-4o.
	assert.InDelta(t, 0.75, Cost("gpt-4o-mini", usage), 1e-9)
	assert.InDelta(t, 12.50, Cost("gpt-4o", usage), 1e-9)
}

func TestCostUnknownModelFallsBack(t *testing.T) {
	usage := Usage{PromptTokens: 2_000_000}
	assert.InDelta(t, 5.00, Cost("some-private-model", usage), 1e-9)
}

func TestUsageTotal(t *testing.T) {
	assert.Equal(t, 30, Usage{PromptTokens: 10, CompletionTokens: 20}.Total())
}
