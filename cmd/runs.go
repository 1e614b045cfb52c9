package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/giantswarm/chatbot-qa/internal/report"
)

func newRunsCmd() *cobra.Command {
	var (
		tenant   string
		limit    int
		reportID string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List past test runs or print a run's report",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := openStore(cmd)
			if err != nil {
				return err
			}

			if reportID != "" {
				runID, err := uuid.Parse(reportID)
				if err != nil {
					return fmt.Errorf("invalid --report run id: %w", err)
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
			}

			tenantID, err := uuid.Parse(tenant)
			if err != nil {
				return fmt.Errorf("invalid --tenant id: %w", err)
			}
			runs, err := s.Runs.ListByTenant(ctx, tenantID, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No test runs found.")
				return nil
			}

			fmt.Printf("Test runs for tenant %s:\n\n", tenantID)
			for _, r := range runs {
				score := "-"
				if r.OverallScore != nil {
					score = fmt.Sprintf("%.1f", *r.OverallScore)
				}
				fmt.Printf("  %s  %-10s  score %-5s  %d/%d questions  $%.4f  %s\n",
					r.ID, r.Status, score, r.QuestionsCompleted, r.TotalQuestions,
					r.TotalCost, r.CreatedAt.Format("2006-01-02 15:04"))
				if r.ErrorMessage != "" {
					fmt.Printf("      error: %s\n", r.ErrorMessage)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant UUID to list runs for")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	cmd.Flags().StringVar(&reportID, "report", "", "Print the full report for a run UUID instead of listing")
	cmd.Flags().StringVar(&format, "format", "text", "Report format: text or json")

	return cmd
}
