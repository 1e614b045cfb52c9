package qa

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRunConfig(t *testing.T) {
	cfg := DefaultRunConfig()

	assert.Equal(t, 20, cfg.MinQuestions)
	assert.Equal(t, 2, cfg.QuestionsPerDocument)
	assert.Equal(t, []string{"en"}, cfg.Languages)
	assert.Equal(t, StrictnessNormal, cfg.Strictness)
}

func TestRunConfigValidateNormalizesDefaults(t *testing.T) {
	cfg := RunConfig{MinQuestions: 10, QuestionsPerDocument: 1}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, AllCategories(), cfg.Categories)
	assert.Equal(t, []string{"en"}, cfg.Languages)
	assert.Equal(t, StrictnessNormal, cfg.Strictness)
}

func TestRunConfigValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		cfg  RunConfig
	}{
		{"negative min questions", RunConfig{MinQuestions: -1}},
		{"negative per document", RunConfig{QuestionsPerDocument: -2}},
		{"unknown category", RunConfig{Categories: []Category{"sarcasm"}}},
		{"unknown strictness", RunConfig{Strictness: "brutal"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}
}

func TestLoadRunConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa.yaml")
	content := `
min_questions: 30
questions_per_document: 3
categories:
  - retrieval
  - hallucination
languages:
  - de
  - en
strictness: strict
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadRunConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.MinQuestions)
	assert.Equal(t, 3, cfg.QuestionsPerDocument)
	assert.Equal(t, []Category{CategoryRetrieval, CategoryHallucination}, cfg.Categories)
	assert.Equal(t, "de", cfg.DefaultLanguage())
	assert.Equal(t, []string{"en"}, cfg.ExtraLanguages())
	assert.Equal(t, StrictnessStrict, cfg.Strictness)
}

func TestLoadRunConfigMissingFile(t *testing.T) {
	_, err := LoadRunConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestCategoryHelpers(t *testing.T) {
	assert.True(t, CategoryRetrieval.ContentGrounded())
	assert.True(t, CategoryConsistency.ContentGrounded())
	assert.False(t, CategoryOutOfScope.ContentGrounded())
	assert.False(t, CategoryMultilingual.ContentGrounded())

	assert.True(t, CategoryNoAnswer.Valid())
	assert.False(t, Category("sarcasm").Valid())

	total := 0
	for _, c := range AllCategories() {
		total += DefaultDistribution[c]
	}
	assert.Equal(t, 100, total, "default shares must cover the full budget")
}

func TestRunStatusTerminal(t *testing.T) {
	assert.True(t, RunStatusCompleted.Terminal())
	assert.True(t, RunStatusFailed.Terminal())
	assert.False(t, RunStatusPending.Terminal())
	assert.False(t, RunStatusEvaluating.Terminal())
}
