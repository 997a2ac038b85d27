package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"steamreviews/pkg/config"
	"steamreviews/pkg/dataset"
	"steamreviews/pkg/logger"
	"steamreviews/pkg/steam"
)

var filenameSanitizer = regexp.MustCompile(`[^\w\-.]`)

// NameFunc resolves an appid to a display name for filenames and report
// headers.
type NameFunc func(appid int) string

// Analyzer runs the post-hoc analyses over a dataset and writes their
// outputs under the configured processed-data directories.
type Analyzer struct {
	tokenizer   *Tokenizer
	insightsDir string
	reportsDir  string
	gameName    NameFunc
	params      config.AnalysisConfig
	logger      logger.Logger
}

// NewAnalyzer creates an analyzer writing under the configured directories.
// gameName may be nil, in which case the "AppID_{appid}" fallback is used.
func NewAnalyzer(cfg *config.Config, gameName NameFunc) (*Analyzer, error) {
	log := logger.GetLogger()
	if gameName == nil {
		gameName = func(appid int) string { return fmt.Sprintf("AppID_%d", appid) }
	}
	for _, dir := range []string{cfg.Storage.InsightsDir(), cfg.Storage.ReportsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create analysis output directory: %w", err)
		}
	}
	return &Analyzer{
		tokenizer:   NewTokenizer(),
		insightsDir: cfg.Storage.InsightsDir(),
		reportsDir:  cfg.Storage.ReportsDir(),
		gameName:    gameName,
		params:      cfg.Analysis,
		logger:      log,
	}, nil
}

// Tokenizer exposes the analyzer's tokenizer so callers can add
// game-specific stopwords before running analyses.
func (a *Analyzer) Tokenizer() *Tokenizer {
	return a.tokenizer
}

// Languages returns the sorted set of languages present in a dataset.
func Languages(ds *dataset.Dataset) []string {
	seen := make(map[string]struct{})
	for i := range ds.Reviews {
		if lang := ds.Reviews[i].Language; lang != "" {
			seen[lang] = struct{}{}
		}
	}
	langs := make([]string, 0, len(seen))
	for lang := range seen {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// filterReviews selects reviews matching a language and sentiment filter.
// language "all" matches every language; sentiment is "positive",
// "negative", or "both".
func filterReviews(reviews []steam.Review, language, sentiment string) []steam.Review {
	filtered := make([]steam.Review, 0, len(reviews))
	for i := range reviews {
		r := &reviews[i]
		if language != "all" && r.Language != language {
			continue
		}
		switch sentiment {
		case "positive":
			if !r.VotedUp {
				continue
			}
		case "negative":
			if r.VotedUp {
				continue
			}
		}
		filtered = append(filtered, *r)
	}
	return filtered
}

// sanitizeFilename replaces characters unsafe in filenames.
func sanitizeFilename(name string) string {
	return filenameSanitizer.ReplaceAllString(name, "_")
}

// saveInsight writes an analysis result as indented JSON under the insights
// directory and returns the full path.
func (a *Analyzer) saveInsight(result interface{}, filename string) (string, error) {
	path := filepath.Join(a.insightsDir, sanitizeFilename(filename))
	data, err := json.MarshalIndent(result, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to encode analysis result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write analysis result: %w", err)
	}
	a.logger.InfoWithFields("Analysis result saved", map[string]interface{}{
		"path": path,
	})
	return path, nil
}

