package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/giantswarm/chatbot-qa/internal/executor"
	"github.com/giantswarm/chatbot-qa/internal/generator"
	"github.com/giantswarm/chatbot-qa/internal/judge"
	"github.com/giantswarm/chatbot-qa/internal/llm"
	"github.com/giantswarm/chatbot-qa/internal/rag"
	"github.com/giantswarm/chatbot-qa/internal/runner"
	"github.com/giantswarm/chatbot-qa/internal/store"
)

// pipelineFlags are the model and endpoint knobs shared by the run and serve
// commands.
type pipelineFlags struct {
	endpoint        string
	apiKey          string
	generationModel string
	answerModel     string
	judgeModel      string
	strictness      string
	ragURL          string
	ragAPIKey       string
}

func registerPipelineFlags(cmd *cobra.Command, f *pipelineFlags) {
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "", "OpenAI-compatible API endpoint URL")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "API key (or set OPENAI_API_KEY)")
	cmd.Flags().StringVar(&f.generationModel, "generation-model", "gpt-4o-mini", "Model used to synthesize test questions")
	cmd.Flags().StringVar(&f.answerModel, "answer-model", "gpt-4o-mini", "Model the chatbot answers with")
	cmd.Flags().StringVar(&f.judgeModel, "judge-model", judge.DefaultJudgeModel, "Model used as the independent judge")
	cmd.Flags().StringVar(&f.strictness, "strictness", "", "Judge temperament: lenient, normal or strict")
	cmd.Flags().StringVar(&f.ragURL, "rag-url", "", "Retrieval service base URL (or set RAG_API_URL)")
	cmd.Flags().StringVar(&f.ragAPIKey, "rag-api-key", "", "Retrieval service API key (or set RAG_API_KEY)")
}

// newLLMClientFromFlags creates an LLM client from common CLI flags, falling
// back to the OPENAI_API_KEY environment variable when no explicit key is
// provided.
func newLLMClientFromFlags(endpoint, apiKey string) llm.Client {
	var opts []llm.Option
	if endpoint != "" {
		opts = append(opts, llm.WithBaseURL(endpoint))
	}
	if apiKey != "" {
		opts = append(opts, llm.WithAPIKey(apiKey))
	} else if envKey := os.Getenv("OPENAI_API_KEY"); envKey != "" {
		opts = append(opts, llm.WithAPIKey(envKey))
	}
	return llm.NewOpenAIClient(opts...)
}

// openStore connects to Postgres when a DSN is configured (flag or
// DATABASE_URL), otherwise to the local sqlite file.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dsn, _ := cmd.Flags().GetString("database-url")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn != "" {
		return store.OpenPostgres(dsn)
	}
	path, _ := cmd.Flags().GetString("sqlite-path")
	return store.OpenSQLite(path)
}

// buildOrchestrator wires the full pipeline from flags: store repositories,
// retrieval client, answer generator, question generator and judge.
func buildOrchestrator(s *store.Store, f pipelineFlags) *runner.Orchestrator {
	client := newLLMClientFromFlags(f.endpoint, f.apiKey)

	ragURL := f.ragURL
	if ragURL == "" {
		ragURL = os.Getenv("RAG_API_URL")
	}
	ragKey := f.ragAPIKey
	if ragKey == "" {
		ragKey = os.Getenv("RAG_API_KEY")
	}
	retriever := rag.NewHTTPRetriever(ragURL, ragKey)
	answerer := rag.NewLLMAnswerGenerator(client, f.answerModel)

	gen := generator.New(s.Corpus, s.Templates, s.Questions, client, f.generationModel)
	exec := executor.New(s.Questions, s.Runs, retriever, answerer, f.answerModel)
	jdg := judge.New(client, s.Questions, judge.Config{
		Model:      f.judgeModel,
		Strictness: f.strictness,
	})

	return runner.NewOrchestrator(s.Runs, s.Questions, s.Corpus, gen, exec, jdg)
}
