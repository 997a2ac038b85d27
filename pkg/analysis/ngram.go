package analysis

import (
	"fmt"
	"time"

	"steamreviews/pkg/dataset"
)

// NGramParams configure an n-gram frequency analysis.
type NGramParams struct {
	// Language is the Steam language code to analyze.
	Language string
	// Sentiment is "positive", "negative", or "both".
	Sentiment string
	// Size is the n-gram length: 1, 2, or 3.
	Size int
	// MinFrequency drops n-grams seen fewer times.
	MinFrequency int
	// TopN bounds the result list.
	TopN int
}

func (p *NGramParams) applyDefaults(a *Analyzer) {
	if p.Language == "" {
		p.Language = "english"
	}
	if p.Sentiment == "" {
		p.Sentiment = "both"
	}
	if p.Size <= 0 {
		p.Size = 2
	}
	if p.MinFrequency <= 0 {
		p.MinFrequency = a.params.MinFrequency
	}
	if p.TopN <= 0 {
		p.TopN = a.params.TopN
	}
}

// RankedNGram is one ranked n-gram with its share of all n-gram instances.
type RankedNGram struct {
	NGram      string  `json:"ngram"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// NGramResult is the output of an n-gram frequency analysis.
type NGramResult struct {
	Metadata        dataset.Metadata `json:"metadata"`
	GameName        string           `json:"game_name"`
	Params          NGramParams      `json:"analysis_params"`
	AnalysisDate    string           `json:"analysis_date"`
	TotalReviews    int              `json:"total_reviews"`
	FilteredReviews int              `json:"filtered_reviews"`
	TotalNGrams     int              `json:"total_ngrams"`
	UniqueNGrams    int              `json:"unique_ngrams"`
	TopNGrams       []RankedNGram    `json:"top_ngrams"`
	SavedTo         string           `json:"saved_to,omitempty"`
}

// NGrams ranks the most frequent n-grams for one language and sentiment
// slice of the dataset. Returns nil when no review matches the filter or no
// n-grams survive it.
func (a *Analyzer) NGrams(ds *dataset.Dataset, params NGramParams) (*NGramResult, error) {
	params.applyDefaults(a)

	filtered := filterReviews(ds.Reviews, params.Language, params.Sentiment)
	if len(filtered) == 0 {
		return nil, nil
	}

	var allGrams [][]string
	for i := range filtered {
		text := filtered[i].Review
		if text == "" {
			continue
		}
		tokens := a.tokenizer.Tokenize(text, params.Language)
		allGrams = append(allGrams, GenerateNGrams(tokens, params.Size)...)
	}
	if len(allGrams) == 0 {
		return nil, nil
	}

	counted := CountNGrams(allGrams, params.MinFrequency)

	top := make([]RankedNGram, 0, params.TopN)
	for _, gram := range counted {
		if len(top) >= params.TopN {
			break
		}
		top = append(top, RankedNGram{
			NGram:      FormatNGram(gram.Tokens),
			Count:      gram.Count,
			Percentage: float64(gram.Count) / float64(len(allGrams)) * 100,
		})
	}

	gameName := a.gameName(ds.Metadata.AppID)
	result := &NGramResult{
		Metadata:        ds.Metadata,
		GameName:        gameName,
		Params:          params,
		AnalysisDate:    time.Now().UTC().Format(time.RFC3339),
		TotalReviews:    len(ds.Reviews),
		FilteredReviews: len(filtered),
		TotalNGrams:     len(allGrams),
		UniqueNGrams:    len(counted),
		TopNGrams:       top,
	}

	sentimentStr := params.Sentiment
	if sentimentStr == "both" {
		sentimentStr = "all"
	}
	filename := fmt.Sprintf("%d_%s_%s_%s_%s_%s.json",
		ds.Metadata.AppID, sanitizeFilename(gameName), params.Language,
		sentimentStr, ngramTypeName(params.Size), time.Now().UTC().Format("2006-01-02"))

	path, err := a.saveInsight(result, filename)
	if err != nil {
		return nil, err
	}
	result.SavedTo = path
	return result, nil
}

func ngramTypeName(n int) string {
	switch n {
	case 1:
		return "unigrams"
	case 2:
		return "bigrams"
	case 3:
		return "trigrams"
	default:
		return fmt.Sprintf("%dgrams", n)
	}
}
