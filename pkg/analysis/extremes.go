package analysis

import (
	"fmt"
	"sort"
	"time"

	"steamreviews/pkg/dataset"
	"steamreviews/pkg/steam"
)

// LanguageExtremes holds the longest-playtime reviews of one language,
// split by sentiment. Pointer fields are nil when the group is empty.
type LanguageExtremes struct {
	LongestAtReviewPositive *steam.Review `json:"longest_playtime_at_review_positive,omitempty"`
	LongestAtReviewNegative *steam.Review `json:"longest_playtime_at_review_negative,omitempty"`
	LongestForeverPositive  *steam.Review `json:"longest_total_playtime_positive,omitempty"`
	LongestForeverNegative  *steam.Review `json:"longest_total_playtime_negative,omitempty"`
	PositiveCount           int           `json:"positive_count"`
	NegativeCount           int           `json:"negative_count"`
	TotalCount              int           `json:"total_count"`
}

// ExtremesResult is the output of a playtime-extremes analysis.
type ExtremesResult struct {
	Metadata           dataset.Metadata             `json:"metadata"`
	AnalysisDate       string                       `json:"analysis_date"`
	TotalReviews       int                          `json:"total_reviews_analyzed"`
	Languages          []string                     `json:"languages_analyzed"`
	ExtremesByLanguage map[string]*LanguageExtremes `json:"extremes_by_language"`
	SavedTo            string                       `json:"saved_to,omitempty"`
}

// PlaytimeExtremes finds, per language and sentiment, the reviews written
// with the most playtime at review time and the most total playtime.
// Returns nil for an empty dataset.
func (a *Analyzer) PlaytimeExtremes(ds *dataset.Dataset) (*ExtremesResult, error) {
	if len(ds.Reviews) == 0 {
		return nil, nil
	}

	byLanguage := make(map[string]*LanguageExtremes)
	for i := range ds.Reviews {
		r := &ds.Reviews[i]
		lang := r.Language
		if lang == "" {
			lang = "unknown"
		}
		ext := byLanguage[lang]
		if ext == nil {
			ext = &LanguageExtremes{}
			byLanguage[lang] = ext
		}

		ext.TotalCount++
		if r.VotedUp {
			ext.PositiveCount++
			ext.LongestAtReviewPositive = maxByAtReview(ext.LongestAtReviewPositive, r)
			ext.LongestForeverPositive = maxByForever(ext.LongestForeverPositive, r)
		} else {
			ext.NegativeCount++
			ext.LongestAtReviewNegative = maxByAtReview(ext.LongestAtReviewNegative, r)
			ext.LongestForeverNegative = maxByForever(ext.LongestForeverNegative, r)
		}
	}

	langs := make([]string, 0, len(byLanguage))
	for lang := range byLanguage {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	result := &ExtremesResult{
		Metadata:           ds.Metadata,
		AnalysisDate:       time.Now().UTC().Format(time.RFC3339),
		TotalReviews:       len(ds.Reviews),
		Languages:          langs,
		ExtremesByLanguage: byLanguage,
	}

	filename := fmt.Sprintf("%d_extreme_reviews_by_language_%s.json",
		ds.Metadata.AppID, time.Now().UTC().Format("2006-01-02"))
	path, err := a.saveInsight(result, filename)
	if err != nil {
		return nil, err
	}
	result.SavedTo = path
	return result, nil
}

func maxByAtReview(current, candidate *steam.Review) *steam.Review {
	if current == nil || candidate.Author.PlaytimeAtReview > current.Author.PlaytimeAtReview {
		return candidate
	}
	return current
}

func maxByForever(current, candidate *steam.Review) *steam.Review {
	if current == nil || candidate.Author.PlaytimeForever > current.Author.PlaytimeForever {
		return candidate
	}
	return current
}
