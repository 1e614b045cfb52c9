package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/chatbot-qa/internal/qa"
)

func TestLoadBankKnownLanguages(t *testing.T) {
	for _, lang := range []string{"en", "de", "fr"} {
		t.Run(lang, func(t *testing.T) {
			bank, err := loadBank(lang)
			require.NoError(t, err)
			assert.Equal(t, lang, bank.Language)
			assert.NotEmpty(t, bank.questionsFor(qa.CategoryOutOfScope))
			assert.NotEmpty(t, bank.questionsFor(qa.CategoryNoAnswer))
		})
	}
}

func TestLoadBankFallsBackToEnglish(t *testing.T) {
	bank, err := loadBank("sv")
	require.NoError(t, err)
	assert.Equal(t, "en", bank.Language)
}

func TestBankQuestionsForUnknownCategory(t *testing.T) {
	bank, err := loadBank("en")
	require.NoError(t, err)
	assert.Empty(t, bank.questionsFor(qa.CategoryRetrieval))
}
