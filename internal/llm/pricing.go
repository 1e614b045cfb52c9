package llm

import "strings"

// tokenRate holds per-million-token USD prices for a model family.
type tokenRate struct {
	input  float64
	output float64
}

// modelRates maps model name prefixes to their token rates. Longest matching
// prefix wins. Prices are USD per 1M tokens.
var modelRates = map[string]tokenRate{
	"gpt-4o":      {input: 2.50, output: 10.00},
	"gpt-4o-mini": {input: 0.15, output: 0.60},
	"gpt-4.1":     {input: 2.00, output: 8.00},
	"gpt-5":       {input: 1.25, output: 10.00},
}

// defaultRate is applied when the model is unknown, so cost accounting never
// silently reports zero for a real provider call.
var defaultRate = tokenRate{input: 2.50, output: 10.00}

// Cost computes the USD cost of a completion from its usage counts at the
// model's token rates.
func Cost(model string, usage Usage) float64 {
	rate := rateFor(model)
	return float64(usage.PromptTokens)/1e6*rate.input +
		float64(usage.CompletionTokens)/1e6*rate.output
}

func rateFor(model string) tokenRate {
	best := ""
	for prefix := range modelRates {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return defaultRate
	}
	return modelRates[best]
}
