package generator

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/giantswarm/chatbot-qa/internal/qa"
)

//go:embed all:banks
var embeddedBanks embed.FS

// questionBank holds the fixed, topic-independent questions for one language.
// Out-of-scope and no-answer tests must not depend on tenant content, so they
// are authored once per language instead of generated.
type questionBank struct {
	Language   string   `yaml:"language"`
	OutOfScope []string `yaml:"out_of_scope"`
	NoAnswer   []string `yaml:"no_answer"`
}

// loadBank returns the question bank for the given language, falling back to
// English when the language has no authored bank.
func loadBank(language string) (*questionBank, error) {
	lang := strings.ToLower(strings.TrimSpace(language))
	if lang == "" {
		lang = "en"
	}

	data, err := fs.ReadFile(embeddedBanks, "banks/"+lang+".yaml")
	if err != nil {
		if lang == "en" {
			return nil, fmt.Errorf("failed to read embedded question bank: %w", err)
		}
		return loadBank("en")
	}

	var bank questionBank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("failed to parse question bank %q: %w", lang, err)
	}
	return &bank, nil
}

// questionsFor returns the bank questions for a category.
func (b *questionBank) questionsFor(category qa.Category) []string {
	switch category {
	case qa.CategoryOutOfScope:
		return b.OutOfScope
	case qa.CategoryNoAnswer:
		return b.NoAnswer
	}
	return nil
}
