package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"steamreviews/pkg/analysis"
	"steamreviews/pkg/config"
	"steamreviews/pkg/dataset"
	"steamreviews/pkg/scraper"
	"steamreviews/pkg/steam"
)

const testAppID = 570

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.DataDir = t.TempDir()
	cfg.Fetch.Delay = 0
	cfg.Fetch.RequestsPerMinute = 100000
	return cfg
}

func newClient(t *testing.T, mock *MockSteamServer) *steam.Client {
	t.Helper()
	client := steam.NewClient(5*time.Second, nil)
	client.SetBaseURLs(mock.ReviewsBase(), mock.StoreBase())
	return client
}

// sampleReviews builds a page of reviews with enough variety (languages,
// timestamps, playtime, text) for the analyzers to chew on.
func sampleReviews(n int, prefix, language string, votedUp bool, text string) []steam.Review {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Unix()
	reviews := make([]steam.Review, n)
	for i := range reviews {
		reviews[i] = steam.Review{
			RecommendationID: fmt.Sprintf("%s-%d", prefix, i),
			Language:         language,
			Review:           text,
			VotedUp:          votedUp,
			VotesUp:          i % 7,
			TimestampCreated: base + int64(i)*86400/4,
			Author: steam.Author{
				SteamID:          fmt.Sprintf("765611%05d", i),
				NumGamesOwned:    10 + i%50,
				PlaytimeForever:  600 + i*13,
				PlaytimeAtReview: 300 + i*7,
			},
		}
	}
	return reviews
}

func TestFetchToCompletionAndAnalyze(t *testing.T) {
	mock := NewMockSteamServer("Dota 2")
	defer mock.Close()

	mock.AddPage(steam.CursorSentinel,
		sampleReviews(100, "p1", "english", true, "wonderful game with a great combat system and deep strategy"), "c2")
	mock.AddPage("c2",
		sampleReviews(100, "p2", "schinese", true, "非常好玩的游戏，英雄设计很有意思"), "c3")
	mock.AddPage("c3",
		sampleReviews(50, "p3", "english", false, "matchmaking is broken and the community is toxic"), "c4")

	cfg := testConfig(t)
	client := newClient(t, mock)

	s, err := scraper.New(cfg, client)
	if err != nil {
		t.Fatalf("Failed to create scraper: %v", err)
	}

	rs, err := s.Run(context.Background(), testAppID, scraper.RunOptions{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rs.State != scraper.StateCompleted {
		t.Fatalf("Expected Completed, got %s", rs.State)
	}
	if rs.Count() != 250 {
		t.Errorf("Expected 250 reviews, got %d", rs.Count())
	}
	if rs.PagesFetched != 3 {
		t.Errorf("Expected 3 pages, got %d", rs.PagesFetched)
	}

	datasetPath := filepath.Join(cfg.Storage.RawDir(), rs.DatasetFile)
	ds, err := dataset.Load(datasetPath)
	if err != nil {
		t.Fatalf("Failed to load dataset artifact: %v", err)
	}
	if len(ds.Reviews) != 250 {
		t.Fatalf("Dataset has %d reviews, want 250", len(ds.Reviews))
	}

	// No recovery state may survive a completed run.
	checkpoints, _ := filepath.Glob(filepath.Join(cfg.Storage.CheckpointDir(), "*.checkpoint.json"))
	if len(checkpoints) != 0 {
		t.Errorf("Expected no checkpoint files after completion, found %v", checkpoints)
	}

	resolver, err := steam.NewNameResolver(client, cfg.Storage.AppDetailsDir(), nil)
	if err != nil {
		t.Fatalf("Failed to create name resolver: %v", err)
	}
	if name := resolver.Name(testAppID); name != "Dota 2" {
		t.Errorf("Expected game name Dota 2, got %s", name)
	}

	analyzer, err := analysis.NewAnalyzer(cfg, resolver.Name)
	if err != nil {
		t.Fatalf("Failed to create analyzer: %v", err)
	}

	report := analyzer.LanguageReport(ds)
	if len(report.Rows) < 3 {
		t.Errorf("Expected combined row plus two languages, got %d rows", len(report.Rows))
	}
	csvPath, err := analyzer.WriteLanguageReportCSV(ds, report)
	if err != nil {
		t.Fatalf("Failed to write language report: %v", err)
	}
	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("Failed to read report CSV: %v", err)
	}
	if !strings.HasPrefix(string(data), "\xef\xbb\xbf") {
		t.Error("Report CSV should start with a UTF-8 BOM")
	}

	ngrams, err := analyzer.NGrams(ds, analysis.NGramParams{Language: "english", Size: 2})
	if err != nil {
		t.Fatalf("N-gram analysis failed: %v", err)
	}
	if ngrams == nil || len(ngrams.TopNGrams) == 0 {
		t.Fatal("Expected bigram results for english reviews")
	}
	if _, err := os.Stat(ngrams.SavedTo); err != nil {
		t.Errorf("N-gram artifact missing: %v", err)
	}

	timeline, err := analyzer.Timeline(ds, analysis.TimelineParams{})
	if err != nil {
		t.Fatalf("Timeline analysis failed: %v", err)
	}
	if timeline == nil || len(timeline.Timeline) == 0 {
		t.Fatal("Expected timeline points")
	}

	extremes, err := analyzer.PlaytimeExtremes(ds)
	if err != nil {
		t.Fatalf("Playtime extremes failed: %v", err)
	}
	if extremes == nil || len(extremes.Languages) == 0 {
		t.Fatal("Expected per-language playtime extremes")
	}
}

func TestInterruptedRunResumesWithoutRefetching(t *testing.T) {
	mock := NewMockSteamServer("Dota 2")
	defer mock.Close()

	mock.AddPage(steam.CursorSentinel,
		sampleReviews(100, "p1", "english", true, "good game"), "c2")
	mock.AddPage("c2",
		sampleReviews(100, "p2", "english", true, "good game"), "c3")
	mock.AddPage("c3",
		sampleReviews(50, "p3", "english", false, "bad patch"), "c4")
	mock.FailTimes("c2", 1)

	cfg := testConfig(t)
	client := newClient(t, mock)

	s, err := scraper.New(cfg, client)
	if err != nil {
		t.Fatalf("Failed to create scraper: %v", err)
	}

	rs, err := s.Run(context.Background(), testAppID, scraper.RunOptions{})
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	if rs.State != scraper.StateFailedRecoverable {
		t.Fatalf("Expected Failed-Recoverable after injected 500, got %s", rs.State)
	}
	if rs.Count() != 100 {
		t.Errorf("Expected 100 reviews checkpointed, got %d", rs.Count())
	}

	requestsBeforeResume := mock.Requests()

	s2, err := scraper.New(cfg, client)
	if err != nil {
		t.Fatalf("Failed to create second scraper: %v", err)
	}
	rs2, err := s2.Run(context.Background(), testAppID, scraper.RunOptions{Resume: true})
	if err != nil {
		t.Fatalf("Resumed run failed: %v", err)
	}
	if rs2.State != scraper.StateCompleted {
		t.Fatalf("Expected Completed after resume, got %s", rs2.State)
	}
	if !rs2.Resumed {
		t.Error("Expected run to be marked as resumed")
	}
	if rs2.Count() != 250 {
		t.Errorf("Expected 250 reviews after resume, got %d", rs2.Count())
	}

	// The resumed run starts at the checkpointed cursor; the first page is
	// never requested again. The total is only reported on the sentinel
	// page, so the run ends on cursor stagnation: two data pages plus one
	// empty page.
	if got := mock.Requests() - requestsBeforeResume; got != 3 {
		t.Errorf("Expected 3 requests during resume, got %d", got)
	}

	ds, err := dataset.Load(filepath.Join(cfg.Storage.RawDir(), rs2.DatasetFile))
	if err != nil {
		t.Fatalf("Failed to load dataset: %v", err)
	}
	if len(ds.Reviews) != 250 {
		t.Fatalf("Dataset has %d reviews, want 250", len(ds.Reviews))
	}
	if ds.Reviews[0].RecommendationID != "p1-0" || ds.Reviews[100].RecommendationID != "p2-0" {
		t.Error("Resumed dataset ordering differs from an uninterrupted run")
	}

	checkpoints, _ := filepath.Glob(filepath.Join(cfg.Storage.CheckpointDir(), "*.checkpoint.json"))
	if len(checkpoints) != 0 {
		t.Errorf("Expected checkpoint cleanup after completion, found %v", checkpoints)
	}
}
