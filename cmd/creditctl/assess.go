package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/assessment"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/company"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/narrative"
	"github.com/spf13/cobra"
)

func newAssessCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "assess NAME",
		Short: "Run a credit assessment for a stored company",
		Long: `Looks the company up by its exact name, asks the configured model for
a qualitative report and then for a structured credit proposal, and
prints both. Nothing is persisted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, closeStore, err := a.openStore(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			gen, err := a.newGenerator(ctx, a.cfg)
			if err != nil {
				return fmt.Errorf("create AI provider: %w", err)
			}

			svc := assessment.NewService(gen, company.NewFetcher(st), a.cfg.AI.InferenceTimeout)
			result, err := svc.Assess(ctx, args[0])
			if err != nil {
				var se *assessment.StageError
				if errors.As(err, &se) {
					fmt.Fprintf(cmd.OutOrStdout(), "stage: %s\n", se.Stage)
				}
				return err
			}

			if asJSON {
				return writeAssessmentJSON(cmd.OutOrStdout(), result)
			}
			writeAssessment(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the assessment as JSON")
	return cmd
}

func writeAssessment(w io.Writer, a *assessment.Assessment) {
	fmt.Fprintf(w, "%s (%s)\n\n", a.Company.Name, a.Provider)
	fmt.Fprintln(w, narrative.Clean(a.Narrative))
	fmt.Fprintln(w)

	p := a.Proposal
	fmt.Fprintf(w, "Valor sugerido:  R$ %d\n", p.SuggestedAmount)
	fmt.Fprintf(w, "Taxa de juros:   %.2f%% a.m.\n", p.MonthlyInterestRate)
	fmt.Fprintf(w, "Prazo:           %d meses\n", p.TermMonths)
	fmt.Fprintf(w, "Justificativa:   %s\n", p.Justification)
}

func writeAssessmentJSON(w io.Writer, a *assessment.Assessment) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(map[string]any{
		"company":   a.Company.Name,
		"provider":  a.Provider,
		"stage":     a.Stage,
		"narrative": a.Narrative,
		"summary":   narrative.Summarize(a.Narrative),
		"proposal":  a.Proposal,
	})
}
