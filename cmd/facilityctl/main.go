// Package main implements facilityctl, the operations CLI for the FacilityHub database.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yigit/facilityhub/internal/bootstrap"
	"github.com/yigit/facilityhub/internal/config"
	"github.com/yigit/facilityhub/internal/db"
)

var (
	configPath string
	timeout    time.Duration
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "facilityctl",
	Short: "Operations CLI for FacilityHub",
	Long: `facilityctl runs maintenance tasks against the FacilityHub database:
applying migrations, seeding default data, purging soft-deleted rows and
creating organizations.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", bootstrap.DefaultConfigPath, "path to the YAML config file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall command timeout")
}

// env is what every subcommand needs: config, logger and an open database.
type env struct {
	cfg *config.Config
	log zerolog.Logger
	db  *db.PostgresDB
}

// withEnv loads config, connects to the database and runs fn with a bounded context.
func withEnv(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return err
	}

	database, err := bootstrap.ConnectDatabase(cfg, lgr)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	return fn(lgr.WithContext(ctx), &env{cfg: cfg, log: lgr, db: database})
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
