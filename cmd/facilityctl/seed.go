package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yigit/facilityhub/internal/app/repositories"
	"github.com/yigit/facilityhub/internal/bootstrap"
)

var seedAdminPassword string

func init() {
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", "", "password for the default admin (overrides seed.admin_password)")
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create default organization, facility, quarters types and admin",
	Long: `Create the default records named in the seed section of the config.
Existing records are left untouched, so the command is safe to re-run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if seedAdminPassword != "" {
				e.cfg.Seed.AdminPassword = seedAdminPassword
			}
			if err := bootstrap.SeedDefaultData(ctx, e.cfg, repositories.NewRepositories(e.db), e.log); err != nil {
				return err
			}
			printf(cmd, "Default data is in place\n")
			return nil
		})
	},
}
