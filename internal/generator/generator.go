// Package generator synthesizes a run's battery of test questions across the
// enabled categories: content-grounded questions from sampled corpus
// passages, fixed bank questions for topic-independent categories, manually
// authored templates, and multilingual variants of generated questions.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/giantswarm/chatbot-qa/internal/llm"
	"github.com/giantswarm/chatbot-qa/internal/qa"
	"github.com/giantswarm/chatbot-qa/internal/store"
)

// synthesisTemperature keeps generated questions diverse without drifting off
// the seed passage.
const synthesisTemperature = 0.7

// Generator produces and persists the question set for a run.
type Generator struct {
	corpus    store.CorpusRepo
	templates store.TemplateRepo
	questions store.QuestionRepo
	client    llm.Client
	model     string
}

// New creates a Generator. The model is used for question synthesis and
// translation.
func New(corpus store.CorpusRepo, templates store.TemplateRepo, questions store.QuestionRepo, client llm.Client, model string) *Generator {
	return &Generator{
		corpus:    corpus,
		templates: templates,
		questions: questions,
		client:    client,
		model:     model,
	}
}

// Generate builds the full question set for the run and persists it in one
// batch insert. It returns the number of questions created and the generation
// cost. Any failure here is fatal to the run.
func (g *Generator) Generate(ctx context.Context, run *qa.TestRun, cfg qa.RunConfig) (int, float64, error) {
	quotas := Quotas(run.TotalQuestions, cfg.Categories)
	defaultLang := cfg.DefaultLanguage()

	var rows []*qa.TestQuestion
	var cost float64

	// Manually authored templates fill their category quota first.
	tpls, err := g.templates.ListActive(ctx, run.TenantID, cfg.Categories...)
	if err != nil {
		return 0, cost, fmt.Errorf("failed to load templates: %w", err)
	}
	for _, tpl := range tpls {
		if quotas[tpl.Category] <= 0 {
			continue
		}
		quotas[tpl.Category]--
		tplID := tpl.ID
		rows = append(rows, &qa.TestQuestion{
			RunID:          run.ID,
			TenantID:       run.TenantID,
			Category:       tpl.Category,
			Question:       tpl.Question,
			Language:       tpl.Language,
			ExpectedAnswer: tpl.ExpectedAnswer,
			AutoGenerated:  false,
			TemplateID:     &tplID,
			Status:         qa.QuestionStatusPending,
		})
	}

	// Topic-independent categories draw from the fixed language bank.
	bank, err := loadBank(defaultLang)
	if err != nil {
		return 0, cost, err
	}
	for _, cat := range []qa.Category{qa.CategoryOutOfScope, qa.CategoryNoAnswer} {
		n := quotas[cat]
		if n <= 0 {
			continue
		}
		pool := bank.questionsFor(cat)
		if len(pool) == 0 {
			return 0, cost, fmt.Errorf("question bank %q has no %s questions", bank.Language, cat)
		}
		for i := 0; i < n; i++ {
			rows = append(rows, &qa.TestQuestion{
				RunID:         run.ID,
				TenantID:      run.TenantID,
				Category:      cat,
				Question:      pool[i%len(pool)],
				Language:      defaultLang,
				AutoGenerated: true,
				Status:        qa.QuestionStatusPending,
			})
		}
		quotas[cat] = 0
	}

	// Content-grounded categories are synthesized from sampled passages.
	contentRows, synthCost, err := g.generateContent(ctx, run, quotas, defaultLang)
	if err != nil {
		return 0, cost, err
	}
	cost += synthCost
	rows = append(rows, contentRows...)

	// Multilingual variants reuse generated questions.
	mlRows, mlCost, err := g.generateMultilingual(ctx, run, quotas[qa.CategoryMultilingual], cfg, rows)
	if err != nil {
		return 0, cost, err
	}
	cost += mlCost
	rows = append(rows, mlRows...)

	if err := g.questions.CreateBatch(ctx, rows); err != nil {
		return 0, cost, fmt.Errorf("failed to persist generated questions: %w", err)
	}

	slog.Info("question generation complete",
		"run_id", run.ID,
		"questions", len(rows),
		"generation_cost", cost,
	)
	return len(rows), cost, nil
}

// generateContent synthesizes questions for the content-grounded categories
// from randomly sampled corpus chunks.
func (g *Generator) generateContent(ctx context.Context, run *qa.TestRun, quotas map[qa.Category]int, language string) ([]*qa.TestQuestion, float64, error) {
	need := 0
	for _, cat := range qa.AllCategories() {
		if cat.ContentGrounded() {
			need += quotas[cat]
		}
	}
	if need == 0 {
		return nil, 0, nil
	}

	chunks, err := g.corpus.SampleChunks(ctx, run.TenantID, need)
	if err != nil {
		return nil, 0, fmt.Errorf("corpus sampling failed: %w", err)
	}
	if len(chunks) == 0 {
		return nil, 0, fmt.Errorf("tenant %s has no indexed passages to generate questions from", run.TenantID)
	}

	var rows []*qa.TestQuestion
	var cost float64
	idx := 0
	for _, cat := range qa.AllCategories() {
		if !cat.ContentGrounded() {
			continue
		}
		for i := 0; i < quotas[cat]; i++ {
			chunk := chunks[idx%len(chunks)]
			idx++

			syn, c, err := g.synthesize(ctx, cat, chunk.Content, language)
			if err != nil {
				return nil, cost, fmt.Errorf("question synthesis failed for category %s: %w", cat, err)
			}
			cost += c

			docID := chunk.DocumentID
			page := chunk.Page
			rows = append(rows, &qa.TestQuestion{
				RunID:            run.ID,
				TenantID:         run.TenantID,
				Category:         cat,
				Question:         syn.Question,
				Language:         language,
				ExpectedAnswer:   syn.ExpectedAnswer,
				SourceDocumentID: &docID,
				SourcePage:       &page,
				AutoGenerated:    true,
				Status:           qa.QuestionStatusPending,
			})
		}
	}
	return rows, cost, nil
}

// generateMultilingual produces the multilingual quota by translating already
// generated questions into each configured non-default language. When the run
// has a single language, the variants are paraphrases in that language.
func (g *Generator) generateMultilingual(ctx context.Context, run *qa.TestRun, quota int, cfg qa.RunConfig, seeds []*qa.TestQuestion) ([]*qa.TestQuestion, float64, error) {
	if quota <= 0 {
		return nil, 0, nil
	}
	if len(seeds) == 0 {
		return nil, 0, fmt.Errorf("multilingual questions need at least one other enabled category as seed material")
	}

	targets := cfg.ExtraLanguages()
	if len(targets) == 0 {
		targets = []string{cfg.DefaultLanguage()}
	}

	var rows []*qa.TestQuestion
	var cost float64
	for i := 0; i < quota; i++ {
		seed := seeds[i%len(seeds)]
		target := targets[i%len(targets)]

		syn, c, err := g.translate(ctx, seed, target)
		if err != nil {
			return nil, cost, fmt.Errorf("question translation to %q failed: %w", target, err)
		}
		cost += c

		rows = append(rows, &qa.TestQuestion{
			RunID:            run.ID,
			TenantID:         run.TenantID,
			Category:         qa.CategoryMultilingual,
			Question:         syn.Question,
			Language:         target,
			ExpectedAnswer:   syn.ExpectedAnswer,
			SourceDocumentID: seed.SourceDocumentID,
			SourcePage:       seed.SourcePage,
			AutoGenerated:    true,
			Status:           qa.QuestionStatusPending,
		})
	}
	return rows, cost, nil
}

// synthesized is the JSON object the generation model must return.
type synthesized struct {
	Question       string `json:"question"`
	ExpectedAnswer string `json:"expected_answer"`
}

func (g *Generator) synthesize(ctx context.Context, cat qa.Category, passage, language string) (*synthesized, float64, error) {
	system := synthesisSystemPrompt
	if instr, ok := categoryInstructions[cat]; ok {
		system += "\n\n" + instr
	}
	system += fmt.Sprintf("\n\nWrite the question and expected answer in language: %s.", language)

	resp, err := g.client.ChatCompletion(ctx, llm.ChatRequest{
		Model:         g.model,
		SystemMessage: system,
		UserMessage:   passage,
		Temperature:   llm.Float64Ptr(synthesisTemperature),
		JSONMode:      true,
	})
	if err != nil {
		return nil, 0, err
	}
	cost := llm.Cost(g.model, resp.Usage)

	syn, err := parseSynthesized(resp.Content)
	if err != nil {
		return nil, cost, err
	}
	return syn, cost, nil
}

func (g *Generator) translate(ctx context.Context, seed *qa.TestQuestion, target string) (*synthesized, float64, error) {
	user := fmt.Sprintf("Target language: %s\n\nQuestion: %s\nExpected answer: %s",
		target, seed.Question, seed.ExpectedAnswer)

	resp, err := g.client.ChatCompletion(ctx, llm.ChatRequest{
		Model:         g.model,
		SystemMessage: translationSystemPrompt,
		UserMessage:   user,
		Temperature:   llm.Float64Ptr(0),
		JSONMode:      true,
	})
	if err != nil {
		return nil, 0, err
	}
	cost := llm.Cost(g.model, resp.Usage)

	syn, err := parseSynthesized(resp.Content)
	if err != nil {
		return nil, cost, err
	}
	return syn, cost, nil
}

func parseSynthesized(content string) (*synthesized, error) {
	var syn synthesized
	if err := json.Unmarshal([]byte(content), &syn); err != nil {
		return nil, fmt.Errorf("generation model returned malformed JSON: %w", err)
	}
	syn.Question = strings.TrimSpace(syn.Question)
	syn.ExpectedAnswer = strings.TrimSpace(syn.ExpectedAnswer)
	if syn.Question == "" {
		return nil, fmt.Errorf("generation model returned an empty question")
	}
	return &syn, nil
}
