package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"steamreviews/pkg/analysis"
	"steamreviews/pkg/config"
	"steamreviews/pkg/dataset"
	"steamreviews/pkg/logger"
	"steamreviews/pkg/steam"
)

var (
	// Analyze command flags
	runReport   bool
	runNGrams   bool
	runTFIDF    bool
	runTimeline bool
	runExtremes bool
	runTopics   bool
	runAll      bool

	analyzeLang   string
	sentiment     string
	ngramSize     int
	topN          int
	minFrequency  int
	rollingWindow int
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <dataset.json>",
	Short: "Generate reports and insights from a collected dataset",
	Long: `Generate reports and insights from a dataset collected with the
fetch command.

Each analysis writes its own output file. The per-language report is a
CSV under the reports directory; everything else is JSON under the
insights directory. With no selection flags, only the language report
is generated.`,
	Example: `  # Per-language summary report
  steamreviews analyze data/raw/570_2026-08-29_10-00-00_0_85000_reviews.json

  # Bigrams for negative Simplified Chinese reviews
  steamreviews analyze 570_reviews.json --ngrams --size 2 --language schinese --sentiment negative

  # Everything at once
  steamreviews analyze 570_reviews.json --all`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&runReport, "report", false, "per-language summary report (CSV)")
	analyzeCmd.Flags().BoolVar(&runNGrams, "ngrams", false, "ranked n-gram frequencies")
	analyzeCmd.Flags().BoolVar(&runTFIDF, "tfidf", false, "terms distinguishing positive from negative reviews")
	analyzeCmd.Flags().BoolVar(&runTimeline, "timeline", false, "daily review volume and sentiment over time")
	analyzeCmd.Flags().BoolVar(&runExtremes, "extremes", false, "longest-playtime reviews per language")
	analyzeCmd.Flags().BoolVar(&runTopics, "topics", false, "co-occurrence topic clusters")
	analyzeCmd.Flags().BoolVar(&runAll, "all", false, "run every analysis")

	analyzeCmd.Flags().StringVarP(&analyzeLang, "language", "l", "all", "restrict to one review language")
	analyzeCmd.Flags().StringVarP(&sentiment, "sentiment", "s", "all", "restrict to positive or negative reviews")
	analyzeCmd.Flags().IntVar(&ngramSize, "size", 1, "n-gram size (1-3)")
	analyzeCmd.Flags().IntVar(&topN, "top", 0, "number of entries to keep per ranking")
	analyzeCmd.Flags().IntVar(&minFrequency, "min-frequency", 0, "drop n-grams seen fewer times than this")
	analyzeCmd.Flags().IntVar(&rollingWindow, "window", 0, "timeline rolling window in days (0 = auto)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, globalFlags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ds, err := dataset.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	logger.GetLogger().InfoWithFields("Dataset loaded", map[string]interface{}{
		"appid":   ds.Metadata.AppID,
		"reviews": len(ds.Reviews),
		"file":    args[0],
	})

	client := steam.NewClient(cfg.Steam.RequestTimeout, logger.GetLogger())
	client.SetBaseURLs(cfg.Steam.ReviewsBaseURL, cfg.Steam.StoreBaseURL)

	// Game names come from the store API with a disk cache; resolution
	// failures fall back to an appid-derived placeholder inside Name.
	var nameFn analysis.NameFunc
	if resolver, err := steam.NewNameResolver(client, cfg.Storage.AppDetailsDir(), logger.GetLogger()); err == nil {
		nameFn = resolver.Name
	}

	analyzer, err := analysis.NewAnalyzer(cfg, nameFn)
	if err != nil {
		return fmt.Errorf("failed to initialize analyzer: %w", err)
	}

	if runAll {
		runReport, runNGrams, runTFIDF = true, true, true
		runTimeline, runExtremes, runTopics = true, true, true
	}
	if !runNGrams && !runTFIDF && !runTimeline && !runExtremes && !runTopics {
		runReport = true
	}

	var outputs []string

	if runReport {
		report := analyzer.LanguageReport(ds)
		path, err := analyzer.WriteLanguageReportCSV(ds, report)
		if err != nil {
			return fmt.Errorf("language report failed: %w", err)
		}
		outputs = append(outputs, path)
	}

	if runNGrams {
		result, err := analyzer.NGrams(ds, analysis.NGramParams{
			Language:     analyzeLang,
			Sentiment:    sentiment,
			Size:         ngramSize,
			MinFrequency: minFrequency,
			TopN:         topN,
		})
		if err != nil {
			return fmt.Errorf("n-gram analysis failed: %w", err)
		}
		if result == nil {
			fmt.Printf("No reviews match language=%s sentiment=%s; skipping n-grams\n", analyzeLang, sentiment)
		} else {
			outputs = append(outputs, result.SavedTo)
		}
	}

	if runTFIDF {
		result, err := analyzer.TFIDF(ds, analysis.TFIDFParams{
			Language:   analyzeLang,
			TopN:       topN,
			MinDocFreq: minFrequency,
		})
		if err != nil {
			return fmt.Errorf("tf-idf analysis failed: %w", err)
		}
		if result == nil {
			fmt.Println("Not enough reviews of each sentiment for tf-idf; skipping")
		} else {
			outputs = append(outputs, result.SavedTo)
		}
	}

	if runTimeline {
		result, err := analyzer.Timeline(ds, analysis.TimelineParams{
			Language:      analyzeLang,
			RollingWindow: rollingWindow,
		})
		if err != nil {
			return fmt.Errorf("timeline analysis failed: %w", err)
		}
		if result == nil {
			fmt.Println("No dated reviews; skipping timeline")
		} else {
			outputs = append(outputs, result.SavedTo)
		}
	}

	if runExtremes {
		result, err := analyzer.PlaytimeExtremes(ds)
		if err != nil {
			return fmt.Errorf("playtime extremes failed: %w", err)
		}
		if result == nil {
			fmt.Println("Dataset has no reviews; skipping playtime extremes")
		} else {
			outputs = append(outputs, result.SavedTo)
		}
	}

	if runTopics {
		result, err := analyzer.Topics(ds, analysis.TopicParams{
			Language:   analyzeLang,
			Sentiment:  sentiment,
			MinDocFreq: minFrequency,
		})
		if err != nil {
			return fmt.Errorf("topic analysis failed: %w", err)
		}
		if result == nil {
			fmt.Println("Not enough distinct terms for topics; skipping")
		} else {
			outputs = append(outputs, result.SavedTo)
		}
	}

	fmt.Printf("Wrote %d output file(s):\n  %s\n", len(outputs), strings.Join(outputs, "\n  "))
	return nil
}
