package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yigit/facilityhub/internal/app/migrations"
	"github.com/yigit/facilityhub/internal/bootstrap"
)

var migrateDryRun bool

func init() {
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "list pending migrations without applying them")
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Apply the SQL migrations compiled into the binary that are not yet
recorded in schema_migrations.

Examples:
  # Show what would run
  facilityctl migrate --dry-run

  # Apply everything pending
  facilityctl migrate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if !migrateDryRun {
				return bootstrap.RunMigrations(ctx, e.db, e.log)
			}

			pending, err := migrations.NewMigrator(e.db.Pool).Pending(ctx)
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				printf(cmd, "No pending migrations\n")
				return nil
			}
			for _, name := range pending {
				printf(cmd, "pending  %s\n", name)
			}
			return nil
		})
	},
}
