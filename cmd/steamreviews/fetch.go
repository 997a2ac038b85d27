package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"steamreviews/pkg/config"
	"steamreviews/pkg/logger"
	"steamreviews/pkg/scraper"
	"steamreviews/pkg/steam"
)

var (
	// Fetch command flags
	targetCount  int
	maxPages     int
	fetchDelay   time.Duration
	rateLimit    int
	fetchLang    string
	resumeFetch  bool
	forceRestart bool
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <appid>",
	Short: "Download reviews for a Steam app",
	Long: `Download reviews for a Steam app, one page at a time, until the
target count is reached or the store reports no further pages.

Progress is checkpointed to disk at a configurable interval. If the run
is interrupted or hits a network error, re-running with --resume picks
up from the last checkpoint instead of starting over.`,
	Example: `  # Download every review for Dota 2
  steamreviews fetch 570

  # Stop after 5000 reviews, Simplified Chinese only
  steamreviews fetch 570 --target 5000 --language schinese

  # Resume an interrupted run
  steamreviews fetch 570 --resume

  # Discard the checkpoint and start over
  steamreviews fetch 570 --force-restart`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().IntVarP(&targetCount, "target", "t", 0, "stop after collecting this many reviews (0 = all)")
	fetchCmd.Flags().IntVar(&maxPages, "max-pages", 0, "hard ceiling on pages fetched in one run (0 = unbounded)")
	fetchCmd.Flags().DurationVar(&fetchDelay, "delay", -1, "pause between page requests")
	fetchCmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "requests per minute")
	fetchCmd.Flags().StringVar(&fetchLang, "language", "", "review language filter (default: all)")
	fetchCmd.Flags().BoolVar(&resumeFetch, "resume", false, "resume from the last checkpoint")
	fetchCmd.Flags().BoolVar(&forceRestart, "force-restart", false, "discard any existing checkpoint and start fresh")
}

func runFetch(cmd *cobra.Command, args []string) error {
	appid, err := strconv.Atoi(args[0])
	if err != nil || appid <= 0 {
		return fmt.Errorf("invalid appid %q: expected a positive integer", args[0])
	}

	flags := globalFlags()
	if maxPages > 0 {
		flags["max-pages"] = maxPages
	}
	if fetchDelay >= 0 {
		flags["delay"] = fetchDelay
	}
	if rateLimit > 0 {
		flags["rate-limit"] = rateLimit
	}
	if fetchLang != "" {
		flags["language"] = fetchLang
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.WithField("version", version).Info("steamreviews starting")

	client := steam.NewClient(cfg.Steam.RequestTimeout, logger.GetLogger())
	client.SetBaseURLs(cfg.Steam.ReviewsBaseURL, cfg.Steam.StoreBaseURL)
	if cfg.Steam.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Steam.UserAgent)
	}

	// The summary is informational only; the run discovers the real total
	// from the first page.
	if summary, err := client.FetchReviewSummary(appid); err == nil {
		fmt.Printf("App %d has %d reviews (%d positive, %d negative)\n",
			appid, summary.Total, summary.Positive, summary.Negative)
	}

	s, err := scraper.New(cfg, client)
	if err != nil {
		return fmt.Errorf("failed to initialize scraper: %w", err)
	}

	// Ctrl-C cancels the run; the loop checkpoints before exiting.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		for msg := range s.Progress() {
			fmt.Println(msg)
		}
	}()

	result, err := s.Run(ctx, appid, scraper.RunOptions{
		TargetCount:  targetCount,
		Resume:       resumeFetch,
		ForceRestart: forceRestart,
		MaxPages:     cfg.Fetch.MaxPages,
	})
	stop()
	if err != nil {
		logger.WithError(err).WithField("appid", appid).Error("Fetch failed")
		return err
	}

	// Give the progress printer a moment to flush buffered lines.
	time.Sleep(10 * time.Millisecond)

	switch result.State {
	case scraper.StateCompleted:
		fmt.Printf("Collected %d reviews across %d pages: %s\n",
			result.Count(), result.PagesFetched, result.DatasetFile)
	case scraper.StateCancelled:
		fmt.Printf("Cancelled at %d reviews; re-run with --resume to continue\n", result.Count())
	case scraper.StateFailedRecoverable:
		fmt.Fprintf(os.Stderr, "Stopped at %d reviews: %v\n", result.Count(), result.Err)
		fmt.Fprintln(os.Stderr, "Progress was checkpointed; re-run with --resume to continue")
		os.Exit(1)
	}
	return nil
}
