package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nafia007/afd-submissions-sub001/internal/adapters/repository/postgres"
	"github.com/nafia007/afd-submissions-sub001/internal/config"
	"github.com/nafia007/afd-submissions-sub001/internal/database"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var dsn string

	root := &cobra.Command{
		Use:          "migrations",
		Short:        "Applies the embedded postgres migrations",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dsn, "dsn", "", "postgres connection URL (defaults to POSTGRES_* settings)")

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Runs every up migration in order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.ApplyMigrations(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations executed successfully.")
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "run <name>",
		Short: "Runs a single migration file, e.g. create_votes.down",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			name, err := postgres.ApplyMigration(cmd.Context(), db, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migration file %s executed successfully.\n", name)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Lists the embedded migration files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := postgres.MigrationNames()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	})

	return root
}

func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		dsn = cfg.Postgres.DSN()
	}
	return database.ConnectPostgres(ctx, dsn, logrus.StandardLogger())
}
