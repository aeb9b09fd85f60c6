// Package cmd defines and implements the CLI commands for the jobsift
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/config"
	"github.com/jobsift/jobsift/internal/logging"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobsift",
		Short: "A job-posting scraper with duplicate-aware persistence.",
		Long: `jobsift collects job postings from supported listing sites by driving a
headless browser, normalizes them into a canonical schema with a computed
quality score, and persists them to Postgres with duplicate suppression.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is env-only)")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newStatsCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger shared by all subcommands.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}
