package main

import (
	"fmt"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/apikey"
	"github.com/spf13/cobra"
)

func newKeysCmd(a *app) *cobra.Command {
	keys := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys",
	}
	keys.AddCommand(newKeysCreateCmd(a))
	return keys
}

func newKeysCreateCmd(a *app) *cobra.Command {
	var scopes []string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create an API key",
		Long: `Creates an API key with the given scopes (read, write, admin) and prints
the raw key. The raw key is shown only once; store it somewhere safe.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, closeStore, err := a.openStore(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			raw, key, err := apikey.Generate(args[0], scopes)
			if err != nil {
				return err
			}
			if err := st.CreateAPIKey(ctx, key); err != nil {
				return fmt.Errorf("create api key %q: %w", key.Name, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "name:   %s\n", key.Name)
			fmt.Fprintf(out, "scopes: %v\n", key.Scopes)
			fmt.Fprintf(out, "key:    %s\n", raw)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&scopes, "scopes", nil, "comma-separated scopes (default read)")
	return cmd
}
