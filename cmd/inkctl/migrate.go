package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"inkwell/internal/platform/config"
	"inkwell/internal/platform/postgres"
)

func newMigrateCmd() *cobra.Command {
	var databaseURL string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the inkwell schema to Postgres",
		Long: `Migrate applies the embedded schema. Every statement is idempotent, so
running it against an up-to-date database is a no-op.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if databaseURL == "" {
				databaseURL = config.FromEnv().DatabaseURL
			}
			if databaseURL == "" {
				return errors.New("no database configured: set DATABASE_URL or --database-url")
			}
			ctx := cmd.Context()
			db, err := postgres.Open(ctx, databaseURL)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := postgres.Migrate(ctx, db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres URL (default $DATABASE_URL)")
	return cmd
}
