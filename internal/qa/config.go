package qa

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Strictness values accepted in RunConfig. Strictness is forwarded to the
// judge as a grading temperament hint; the pass threshold and score bands are
// fixed regardless.
const (
	StrictnessLenient = "lenient"
	StrictnessNormal  = "normal"
	StrictnessStrict  = "strict"
)

// RunConfig is the per-run QA configuration, persisted on the TestRun record.
type RunConfig struct {
	// MinQuestions is the question floor independent of corpus size.
	MinQuestions int `yaml:"min_questions" json:"min_questions"`

	// QuestionsPerDocument adds extra questions per processed document.
	QuestionsPerDocument int `yaml:"questions_per_document" json:"questions_per_document"`

	// Categories restricts the run to a subset of the eight categories.
	// Empty means all categories.
	Categories []Category `yaml:"categories,omitempty" json:"categories,omitempty"`

	// Languages are the target languages, default language first.
	// Empty means ["en"].
	Languages []string `yaml:"languages,omitempty" json:"languages,omitempty"`

	// Strictness is a rubric tuning hint: lenient, normal or strict.
	Strictness string `yaml:"strictness,omitempty" json:"strictness,omitempty"`
}

// DefaultRunConfig returns the configuration used when a run is started
// without an explicit config.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		MinQuestions:         20,
		QuestionsPerDocument: 2,
		Languages:            []string{"en"},
		Strictness:           StrictnessNormal,
	}
}

// LoadRunConfig reads a RunConfig from a YAML file and validates it.
func LoadRunConfig(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("failed to read run config: %w", err)
	}

	cfg := DefaultRunConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("failed to parse run config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

// Validate checks the configuration and normalizes empty fields to defaults.
func (c *RunConfig) Validate() error {
	if c.MinQuestions < 0 {
		return fmt.Errorf("min_questions must not be negative, got %d", c.MinQuestions)
	}
	if c.QuestionsPerDocument < 0 {
		return fmt.Errorf("questions_per_document must not be negative, got %d", c.QuestionsPerDocument)
	}
	if len(c.Categories) == 0 {
		c.Categories = AllCategories()
	}
	for _, cat := range c.Categories {
		if !cat.Valid() {
			return fmt.Errorf("unknown category %q", cat)
		}
	}
	if len(c.Languages) == 0 {
		c.Languages = []string{"en"}
	}
	switch c.Strictness {
	case "":
		c.Strictness = StrictnessNormal
	case StrictnessLenient, StrictnessNormal, StrictnessStrict:
	default:
		return fmt.Errorf("unknown strictness %q (supported: lenient, normal, strict)", c.Strictness)
	}
	return nil
}

// DefaultLanguage returns the first configured language.
func (c RunConfig) DefaultLanguage() string {
	if len(c.Languages) == 0 {
		return "en"
	}
	return c.Languages[0]
}

// ExtraLanguages returns the configured languages beyond the default one.
func (c RunConfig) ExtraLanguages() []string {
	if len(c.Languages) <= 1 {
		return nil
	}
	return c.Languages[1:]
}
