package main

import (
	"context"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/yigit/facilityhub/internal/app/repositories"
	"github.com/yigit/facilityhub/internal/config"
	"github.com/yigit/facilityhub/internal/jobs"
)

var purgeRetention time.Duration

func init() {
	purgeCmd.Flags().DurationVar(&purgeRetention, "retention", 0, "keep rows deleted more recently than this (defaults to jobs.purge_retention)")
	rootCmd.AddCommand(purgeCmd)
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Permanently remove rows soft-deleted before the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			retention := purgeRetention
			if retention <= 0 {
				retention = config.Duration(e.cfg.Jobs.PurgeRetention, 30*24*time.Hour)
			}

			// No settings cache is shared with the CLI, so nothing to invalidate.
			job := jobs.NewPurgeJob(repositories.NewPurgeRepository(e.db), retention, nil, nil)
			counts, err := job.Purge(ctx)
			if err != nil {
				return err
			}

			tables := make([]string, 0, len(counts))
			for table := range counts {
				tables = append(tables, table)
			}
			sort.Strings(tables)
			for _, table := range tables {
				printf(cmd, "%-18s %d\n", table, counts[table])
			}
			return nil
		})
	},
}
