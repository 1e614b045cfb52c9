package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/giantswarm/chatbot-qa/internal/qa"
)

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage manually authored test question templates",
	}
	cmd.AddCommand(newTemplatesListCmd())
	cmd.AddCommand(newTemplatesAddCmd())
	cmd.AddCommand(newTemplatesDeactivateCmd())
	return cmd
}

func newTemplatesListCmd() *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a tenant's active templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := uuid.Parse(tenant)
			if err != nil {
				return fmt.Errorf("invalid --tenant id: %w", err)
			}
			s, err := openStore(cmd)
			if err != nil {
				return err
			}

			templates, err := s.Templates.ListActive(cmd.Context(), tenantID)
			if err != nil {
				return err
			}
			if len(templates) == 0 {
				fmt.Println("No active templates found.")
				return nil
			}

			fmt.Printf("Active templates for tenant %s:\n\n", tenantID)
			for _, tpl := range templates {
				fmt.Printf("  %s  [%s, %s]\n", tpl.ID, tpl.Category, tpl.Language)
				fmt.Printf("    Q: %s\n", tpl.Question)
				if tpl.ExpectedAnswer != "" {
					fmt.Printf("    A: %s\n", tpl.ExpectedAnswer)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant UUID")
	return cmd
}

func newTemplatesAddCmd() *cobra.Command {
	var (
		tenant         string
		category       string
		question       string
		expectedAnswer string
		language       string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a template to a tenant's question pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := uuid.Parse(tenant)
			if err != nil {
				return fmt.Errorf("invalid --tenant id: %w", err)
			}
			if !qa.Category(category).Valid() {
				return fmt.Errorf("unknown category %q", category)
			}
			if question == "" {
				return fmt.Errorf("--question is required")
			}

			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			tpl := &qa.TestTemplate{
				TenantID:       tenantID,
				Category:       qa.Category(category),
				Question:       question,
				ExpectedAnswer: expectedAnswer,
				Language:       language,
				Active:         true,
			}
			if err := s.Templates.Create(cmd.Context(), tpl); err != nil {
				return err
			}
			fmt.Printf("Template created: %s\n", tpl.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant UUID")
	cmd.Flags().StringVar(&category, "category", "", "Test category the template probes")
	cmd.Flags().StringVar(&question, "question", "", "Question text")
	cmd.Flags().StringVar(&expectedAnswer, "expected-answer", "", "Expected answer for the judge")
	cmd.Flags().StringVar(&language, "language", "en", "Question language")
	return cmd
}

func newTemplatesDeactivateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deactivate <template-id>",
		Short: "Deactivate a template so future runs skip it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			templateID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid template id: %w", err)
			}
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			if _, err := s.Templates.GetByID(cmd.Context(), templateID); err != nil {
				return err
			}
			if err := s.Templates.Deactivate(cmd.Context(), templateID); err != nil {
				return err
			}
			fmt.Printf("Template deactivated: %s\n", templateID)
			return nil
		},
	}
	return cmd
}
