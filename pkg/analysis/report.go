package analysis

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"steamreviews/pkg/dataset"
	"steamreviews/pkg/steam"
)

// combinedLabel is the pseudo-language for the all-languages summary row.
const combinedLabel = "All Languages Combined"

var languageNamesCN = map[string]string{
	combinedLabel: "全部语言", "english": "英语", "schinese": "简体中文",
	"tchinese": "繁体中文", "japanese": "日语", "koreana": "韩语", "russian": "俄语",
	"german": "德语", "french": "法语", "spanish": "西班牙语", "latam": "拉丁美洲西班牙语",
	"portuguese": "葡萄牙语", "brazilian": "巴西葡萄牙语", "polish": "波兰语",
	"turkish": "土耳其语", "thai": "泰语", "italian": "意大利语", "dutch": "荷兰语",
	"danish": "丹麦语", "swedish": "瑞典语", "finnish": "芬兰语", "norwegian": "挪威语",
	"hungarian": "匈牙利语", "czech": "捷克语", "romanian": "罗马尼亚语",
	"bulgarian": "保加利亚语", "greek": "希腊语", "vietnamese": "越南语",
	"ukrainian": "乌克兰语", "arabic": "阿拉伯语", "unknown_language": "未知语言",
}

var categoryNamesCN = map[string]string{
	"Overwhelmingly Positive": "好评如潮", "Very Positive": "特别好评",
	"Mostly Positive": "多半好评", "Mixed": "褒贬不一", "Mostly Negative": "多半差评",
	"Very Negative": "特别差评", "Overwhelmingly Negative": "差评如潮",
	"No Reviews": "暂无评测",
}

// CategorizeScore maps a positive-review percentage to the storefront's
// review category bands.
func CategorizeScore(positiveRate float64) string {
	switch {
	case positiveRate >= 95.0:
		return "Overwhelmingly Positive"
	case positiveRate >= 80.0:
		return "Very Positive"
	case positiveRate >= 70.0:
		return "Mostly Positive"
	case positiveRate >= 40.0:
		return "Mixed"
	case positiveRate >= 20.0:
		return "Mostly Negative"
	default:
		return "Very Negative"
	}
}

// LanguageMetrics aggregates sentiment and reviewer statistics for one
// language group. Playtime averages are in hours.
type LanguageMetrics struct {
	Language               string
	Total                  int
	Positive               int
	PositiveRate           float64
	Category               string
	AvgGamesOwnedPos       float64
	AvgGamesOwnedNeg       float64
	AvgPlaytimeAtReviewPos float64
	AvgPlaytimeAtReviewNeg float64
	AvgPlaytimeForeverPos  float64
	AvgPlaytimeForeverNeg  float64
}

// LanguageReport is the full per-language sentiment breakdown, with the
// combined row first.
type LanguageReport struct {
	AppID int
	Rows  []LanguageMetrics
}

// ComputeMetrics aggregates one group of reviews.
func ComputeMetrics(label string, reviews []steam.Review) LanguageMetrics {
	m := LanguageMetrics{Language: label, Total: len(reviews), Category: "No Reviews"}
	if m.Total == 0 {
		return m
	}

	var posGames, negGames, posAtReview, negAtReview, posForever, negForever float64
	negCount := 0
	for i := range reviews {
		r := &reviews[i]
		if r.VotedUp {
			m.Positive++
			posGames += float64(r.Author.NumGamesOwned)
			posAtReview += float64(r.Author.PlaytimeAtReview)
			posForever += float64(r.Author.PlaytimeForever)
		} else {
			negCount++
			negGames += float64(r.Author.NumGamesOwned)
			negAtReview += float64(r.Author.PlaytimeAtReview)
			negForever += float64(r.Author.PlaytimeForever)
		}
	}

	m.PositiveRate = float64(m.Positive) / float64(m.Total) * 100
	m.Category = CategorizeScore(m.PositiveRate)

	if m.Positive > 0 {
		n := float64(m.Positive)
		m.AvgGamesOwnedPos = posGames / n
		m.AvgPlaytimeAtReviewPos = posAtReview / n / 60
		m.AvgPlaytimeForeverPos = posForever / n / 60
	}
	if negCount > 0 {
		n := float64(negCount)
		m.AvgGamesOwnedNeg = negGames / n
		m.AvgPlaytimeAtReviewNeg = negAtReview / n / 60
		m.AvgPlaytimeForeverNeg = negForever / n / 60
	}
	return m
}

// LanguageReport builds the per-language sentiment breakdown for a dataset.
func (a *Analyzer) LanguageReport(ds *dataset.Dataset) *LanguageReport {
	report := &LanguageReport{AppID: ds.Metadata.AppID}
	if len(ds.Reviews) == 0 {
		return report
	}

	byLanguage := make(map[string][]steam.Review)
	for i := range ds.Reviews {
		lang := ds.Reviews[i].Language
		if lang == "" {
			lang = "unknown_language"
		}
		byLanguage[lang] = append(byLanguage[lang], ds.Reviews[i])
	}

	report.Rows = append(report.Rows, ComputeMetrics(combinedLabel, ds.Reviews))

	langs := make([]string, 0, len(byLanguage))
	for lang := range byLanguage {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	for _, lang := range langs {
		report.Rows = append(report.Rows, ComputeMetrics(lang, byLanguage[lang]))
	}
	return report
}

// WriteLanguageReportCSV writes the report as a UTF-8 CSV with a BOM so
// spreadsheet tools render the Chinese columns correctly. It returns the
// written path.
func (a *Analyzer) WriteLanguageReportCSV(ds *dataset.Dataset, report *LanguageReport) (string, error) {
	title := a.gameName(report.AppID)
	sanitizedTitle := ""
	if title != "" && !strings.HasPrefix(title, "AppID_") {
		sanitizedTitle = sanitizeFilename(title)
	}

	countStr := "all"
	if ds.Metadata.TargetCount > 0 {
		countStr = fmt.Sprintf("%dmax", ds.Metadata.TotalReviewsCollected)
	}
	filename := fmt.Sprintf("%d_%s_%s_%s_report.csv",
		report.AppID, sanitizedTitle, time.Now().UTC().Format("2006-01-02"), countStr)
	path := filepath.Join(a.reportsDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return "", fmt.Errorf("failed to write BOM: %w", err)
	}

	w := csv.NewWriter(file)
	header := []string{
		"Language", "Language_CN", "Total Reviews", "Positive Reviews",
		"Positive Rate", "Category", "Category_CN",
		"Avg Games (Pos)", "Avg Games (Neg)",
		"Avg Playtime@Review (Pos, hrs)", "Avg Playtime@Review (Neg, hrs)",
		"Avg Playtime Total (Pos, hrs)", "Avg Playtime Total (Neg, hrs)",
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write report header: %w", err)
	}

	for _, row := range report.Rows {
		langCN, ok := languageNamesCN[row.Language]
		if !ok {
			langCN = row.Language
		}
		record := []string{
			row.Language,
			langCN,
			fmt.Sprintf("%d", row.Total),
			fmt.Sprintf("%d", row.Positive),
			fmt.Sprintf("%.2f%%", row.PositiveRate),
			row.Category,
			categoryNamesCN[row.Category],
			fmt.Sprintf("%.1f", row.AvgGamesOwnedPos),
			fmt.Sprintf("%.1f", row.AvgGamesOwnedNeg),
			fmt.Sprintf("%.1f", row.AvgPlaytimeAtReviewPos),
			fmt.Sprintf("%.1f", row.AvgPlaytimeAtReviewNeg),
			fmt.Sprintf("%.1f", row.AvgPlaytimeForeverPos),
			fmt.Sprintf("%.1f", row.AvgPlaytimeForeverNeg),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write report row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush report: %w", err)
	}

	a.logger.InfoWithFields("Language report written", map[string]interface{}{
		"path": path,
		"rows": len(report.Rows),
	})
	return path, nil
}
