package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/josenava/meal-calendar/internal/app"
	"github.com/josenava/meal-calendar/internal/repo"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		applied, err := app.RunMigrations(cmd.Context(), cfg.Storage)
		if err != nil {
			return err
		}
		logger.Info("migrations applied", zap.String("driver", cfg.Storage.Driver), zap.Int64s("versions", applied))
		fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", len(applied))
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List migrations and whether they are applied",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, dialect, err := app.OpenMigrationDB(cmd.Context(), cfg.Storage)
		if err != nil {
			return err
		}
		defer db.Close()

		statuses, err := repo.MigrationStatus(cmd.Context(), db, dialect)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT\tFILE")
		for _, s := range statuses {
			applied := "-"
			if !s.AppliedAt.IsZero() {
				applied = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Source.Version, s.State, applied, s.Source.Path)
		}
		return w.Flush()
	},
}
