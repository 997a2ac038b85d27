package analysis

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steamreviews/pkg/config"
	"steamreviews/pkg/dataset"
	"steamreviews/pkg/steam"
)

func testAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.DataDir = t.TempDir()
	a, err := NewAnalyzer(cfg, func(appid int) string { return "Test Game" })
	require.NoError(t, err)
	return a
}

func review(lang string, votedUp bool, gamesOwned, atReview, forever int) steam.Review {
	return steam.Review{
		Language: lang,
		VotedUp:  votedUp,
		Author: steam.Author{
			NumGamesOwned:    gamesOwned,
			PlaytimeAtReview: atReview,
			PlaytimeForever:  forever,
		},
	}
}

func TestCategorizeScore(t *testing.T) {
	tests := []struct {
		rate     float64
		expected string
	}{
		{100, "Overwhelmingly Positive"},
		{95, "Overwhelmingly Positive"},
		{94.9, "Very Positive"},
		{80, "Very Positive"},
		{70, "Mostly Positive"},
		{69.9, "Mixed"},
		{40, "Mixed"},
		{20, "Mostly Negative"},
		{19.9, "Very Negative"},
		{0, "Very Negative"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, CategorizeScore(tt.rate), "rate %.1f", tt.rate)
	}
}

func TestComputeMetrics(t *testing.T) {
	reviews := []steam.Review{
		review("english", true, 100, 60, 120),
		review("english", true, 200, 120, 240),
		review("english", false, 50, 30, 600),
	}

	m := ComputeMetrics("english", reviews)
	assert.Equal(t, 3, m.Total)
	assert.Equal(t, 2, m.Positive)
	assert.InDelta(t, 66.67, m.PositiveRate, 0.01)
	assert.Equal(t, "Mixed", m.Category)
	assert.InDelta(t, 150.0, m.AvgGamesOwnedPos, 0.001)
	assert.InDelta(t, 50.0, m.AvgGamesOwnedNeg, 0.001)
	// Minutes to hours.
	assert.InDelta(t, 1.5, m.AvgPlaytimeAtReviewPos, 0.001)
	assert.InDelta(t, 3.0, m.AvgPlaytimeForeverPos, 0.001)
	assert.InDelta(t, 10.0, m.AvgPlaytimeForeverNeg, 0.001)
}

func TestComputeMetricsEmpty(t *testing.T) {
	m := ComputeMetrics("english", nil)
	assert.Equal(t, 0, m.Total)
	assert.Equal(t, "No Reviews", m.Category)
}

func TestLanguageReportRows(t *testing.T) {
	a := testAnalyzer(t)
	ds := &dataset.Dataset{
		Metadata: dataset.Metadata{AppID: 570, TotalReviewsCollected: 4},
		Reviews: []steam.Review{
			review("english", true, 10, 60, 60),
			review("english", false, 10, 60, 60),
			review("schinese", true, 10, 60, 60),
			review("", true, 10, 60, 60),
		},
	}

	report := a.LanguageReport(ds)
	require.Len(t, report.Rows, 4)
	assert.Equal(t, combinedLabel, report.Rows[0].Language)
	assert.Equal(t, 4, report.Rows[0].Total)
	// Languages follow sorted, with empty mapped to unknown_language.
	assert.Equal(t, "english", report.Rows[1].Language)
	assert.Equal(t, "schinese", report.Rows[2].Language)
	assert.Equal(t, "unknown_language", report.Rows[3].Language)
}

func TestWriteLanguageReportCSV(t *testing.T) {
	a := testAnalyzer(t)
	ds := &dataset.Dataset{
		Metadata: dataset.Metadata{AppID: 570, TotalReviewsCollected: 2},
		Reviews: []steam.Review{
			review("english", true, 10, 60, 60),
			review("schinese", false, 10, 60, 60),
		},
	}

	report := a.LanguageReport(ds)
	path, err := a.WriteLanguageReportCSV(ds, report)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// UTF-8 BOM for spreadsheet compatibility.
	assert.True(t, strings.HasPrefix(string(data), "\xef\xbb\xbf"))
	assert.Contains(t, string(data), "All Languages Combined")
	assert.Contains(t, string(data), "全部语言")
	assert.Contains(t, string(data), "简体中文")

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 4) // header + combined + 2 languages
}
