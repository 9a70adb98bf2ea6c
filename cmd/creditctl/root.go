package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "creditctl",
		Short: "Operate the credit analysis service",
		Long: `creditctl loads company files into the credit database, runs
credit assessments from the terminal, issues API keys and applies
database migrations. Configuration is read from the environment and
an optional .env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.init()
		},
	}

	root.AddCommand(
		newIngestCmd(a),
		newAssessCmd(a),
		newKeysCmd(a),
		newMigrateCmd(a),
	)
	return root
}
