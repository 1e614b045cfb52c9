package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/giantswarm/chatbot-qa/internal/qa"
	"github.com/giantswarm/chatbot-qa/internal/report"
)

func newRunCmd() *cobra.Command {
	var (
		flags      pipelineFlags
		tenant     string
		configPath string
		resume     string
		format     string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a QA test campaign against a tenant's chatbot",
		Long: `Start a QA test run for a tenant and wait for it to finish.

The run generates a question battery from the tenant's document corpus,
executes every question through the retrieval and answer pipeline, scores the
answers with a judge model and prints the final report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			orch := buildOrchestrator(s, flags)

			var runID uuid.UUID
			if resume != "" {
				runID, err = uuid.Parse(resume)
				if err != nil {
					return fmt.Errorf("invalid --resume run id: %w", err)
				}
				fmt.Printf("Resuming test run %s...\n", runID)
			} else {
				tenantID, err := uuid.Parse(tenant)
				if err != nil {
					return fmt.Errorf("invalid --tenant id: %w", err)
				}

				cfg := qa.DefaultRunConfig()
				if configPath != "" {
					cfg, err = qa.LoadRunConfig(configPath)
					if err != nil {
						return err
					}
				}
				if flags.strictness != "" {
					cfg.Strictness = flags.strictness
				}

				run, err := orch.StartRun(ctx, tenantID, cfg)
				if err != nil {
					return err
				}
				runID = run.ID

				fmt.Printf("Test run:  %s\n", run.ID)
				fmt.Printf("Tenant:    %s\n", tenantID)
				fmt.Printf("Questions: %d\n\n", run.TotalQuestions)
			}

			if err := orch.RunComplete(ctx, runID); err != nil {
				return err
			}

			run, err := s.Runs.GetByID(ctx, runID)
			if err != nil {
				return err
			}
			questions, err := s.Questions.ListByRun(ctx, runID)
			if err != nil {
				return err
			}
			rep, err := report.Build(run, questions)
			if err != nil {
				return err
			}
			renderer, err := report.NewRenderer(format)
			if err != nil {
				return err
			}
			out, err := renderer.Render(rep)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant UUID to test (required unless --resume)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML run configuration")
	cmd.Flags().StringVar(&resume, "resume", "", "Resume an interrupted run by its UUID")
	cmd.Flags().StringVar(&format, "format", "text", "Report format: text or json")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Overall timeout for the run (e.g. 30m, 1h). 0 means no timeout")
	registerPipelineFlags(cmd, &flags)

	return cmd
}
