package judge

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrMalformedVerdict is returned when the judge model's output does not
// satisfy the verdict schema, even after the bounded retry.
var ErrMalformedVerdict = errors.New("judge returned malformed verdict")

// verdictSchema is the contract the judge model must satisfy. Anything else
// is an evaluation error for that question only.
const verdictSchema = `{
	"type": "object",
	"required": ["score", "passed", "reasoning"],
	"properties": {
		"score": {"type": "number", "minimum": 0, "maximum": 100},
		"passed": {"type": "boolean"},
		"reasoning": {"type": "string", "minLength": 1},
		"issues": {"type": "array", "items": {"type": "string"}},
		"category_specific": {"type": "object"}
	}
}`

var compiledVerdictSchema = jsonschema.MustCompileString("verdict.schema.json", verdictSchema)

// Verdict is the validated judge result for one question.
type Verdict struct {
	Score            float64        `json:"score"`
	Passed           bool           `json:"passed"`
	Reasoning        string         `json:"reasoning"`
	Issues           []string       `json:"issues,omitempty"`
	CategorySpecific map[string]any `json:"category_specific,omitempty"`
}

// parseVerdict validates raw model output against the verdict schema and
// decodes it. The caller retries once on failure before giving up.
func parseVerdict(raw string) (*Verdict, error) {
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedVerdict, err)
	}
	if err := compiledVerdictSchema.Validate(decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedVerdict, err)
	}

	var v Verdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedVerdict, err)
	}
	return &v, nil
}
