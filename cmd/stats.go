package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobsift/jobsift/internal/store"
)

// newStatsCmd creates the 'stats' subcommand, a read-only report over the
// persisted jobs.
func newStatsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Prints aggregate statistics over the persisted jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatsCommand(limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "rows per breakdown table")
	return cmd
}

func runStatsCommand(limit int) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	total, err := st.TotalJobs(ctx)
	if err != nil {
		return fmt.Errorf("total jobs: %w", err)
	}
	recent, err := st.JobsScrapedSince(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		return fmt.Errorf("jobs scraped since: %w", err)
	}
	companies, err := st.DistinctCompanies(ctx)
	if err != nil {
		return fmt.Errorf("distinct companies: %w", err)
	}
	locations, err := st.DistinctLocations(ctx)
	if err != nil {
		return fmt.Errorf("distinct locations: %w", err)
	}

	fmt.Println("Job store statistics")
	fmt.Printf("  total jobs:         %d\n", total)
	fmt.Printf("  scraped last 24h:   %d\n", recent)
	fmt.Printf("  distinct companies: %d\n", companies)
	fmt.Printf("  distinct locations: %d\n", locations)

	if err := printGroup(ctx, "Top companies", limit, st.TopCompanies); err != nil {
		return err
	}
	if err := printGroup(ctx, "Top locations", limit, st.LocationDistribution); err != nil {
		return err
	}
	if err := printGroup(ctx, "Job types", limit, st.JobTypeBreakdown); err != nil {
		return err
	}
	if err := printGroup(ctx, "Experience levels", limit, st.ExperienceLevelBreakdown); err != nil {
		return err
	}

	jobs, err := st.RecentJobs(ctx, limit)
	if err != nil {
		return fmt.Errorf("recent jobs: %w", err)
	}
	fmt.Println("\nMost recently scraped")
	for _, job := range jobs {
		fmt.Printf("  %-40s %-25s %s (%s)\n",
			job.Title, job.Company, job.Location, job.ScrapedAt.Format(time.RFC3339))
	}
	return nil
}

type groupQuery func(ctx context.Context, limit int) ([]store.GroupCount, error)

func printGroup(ctx context.Context, title string, limit int, query groupQuery) error {
	groups, err := query(ctx, limit)
	if err != nil {
		return fmt.Errorf("%s: %w", title, err)
	}
	fmt.Printf("\n%s\n", title)
	for _, g := range groups {
		fmt.Printf("  %-40s %d\n", g.Key, g.Count)
	}
	return nil
}
