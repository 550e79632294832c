package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yigit/facilityhub/internal/app/repositories"
	"github.com/yigit/facilityhub/internal/app/services"
)

var (
	orgName        string
	orgSlug        string
	orgParent      int64
	orgDescription string
)

func init() {
	orgCreateCmd.Flags().StringVar(&orgName, "name", "", "organization name (required)")
	orgCreateCmd.Flags().StringVar(&orgSlug, "slug", "", "explicit slug (generated from the name when empty)")
	orgCreateCmd.Flags().Int64Var(&orgParent, "parent", 0, "parent organization id")
	orgCreateCmd.Flags().StringVar(&orgDescription, "description", "", "organization description")
	_ = orgCreateCmd.MarkFlagRequired("name")

	orgCmd.AddCommand(orgCreateCmd)
	rootCmd.AddCommand(orgCmd)
}

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Manage organizations",
}

var orgCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an organization",
	Long: `Create an organization, optionally below a parent.

Examples:
  # A new root organization
  facilityctl org create --name "Northfield Academy"

  # A member organization of tree 1
  facilityctl org create --name "East Campus Trust" --parent 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			input := services.CreateOrganizationInput{
				Name:        orgName,
				Slug:        orgSlug,
				Description: orgDescription,
			}
			if orgParent > 0 {
				input.ParentID = &orgParent
			}

			svc := services.NewOrganizationService(repositories.NewOrganizationRepository(e.db))
			org, err := svc.Create(ctx, nil, input)
			if err != nil {
				return err
			}
			printf(cmd, "Created organization %d (%s)\n", org.ID, org.Slug)
			return nil
		})
	},
}
