package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"steamreviews/pkg/dataset"
)

// minSentimentDocs is the smallest group size for which a TF-IDF comparison
// says anything meaningful.
const minSentimentDocs = 5

// TFIDFParams configure a distinctive-terms analysis.
type TFIDFParams struct {
	// Language is the Steam language code to analyze.
	Language string
	// TopN bounds the number of terms reported per sentiment.
	TopN int
	// MaxFeatures caps the vocabulary, keeping the most frequent terms.
	MaxFeatures int
	// MinDocFreq drops terms appearing in fewer documents.
	MinDocFreq int
}

func (p *TFIDFParams) applyDefaults(a *Analyzer) {
	if p.Language == "" {
		p.Language = "english"
	}
	if p.TopN <= 0 {
		p.TopN = 50
	}
	if p.MaxFeatures <= 0 {
		p.MaxFeatures = a.params.MaxFeatures
	}
	if p.MinDocFreq <= 0 {
		p.MinDocFreq = a.params.MinDocFreq
	}
}

// DistinctiveTerm is a term more characteristic of one sentiment group than
// the other.
type DistinctiveTerm struct {
	Rank  int     `json:"rank"`
	Term  string  `json:"term"`
	Score float64 `json:"score"`
}

// TFIDFResult is the output of a distinctive-terms analysis.
type TFIDFResult struct {
	Metadata            dataset.Metadata  `json:"metadata"`
	GameName            string            `json:"game_name"`
	Params              TFIDFParams       `json:"analysis_params"`
	AnalysisDate        string            `json:"analysis_date"`
	TotalReviews        int               `json:"total_reviews"`
	PositiveReviewCount int               `json:"positive_reviews_count"`
	NegativeReviewCount int               `json:"negative_reviews_count"`
	PositiveTerms       []DistinctiveTerm `json:"positive_distinctive_terms"`
	NegativeTerms       []DistinctiveTerm `json:"negative_distinctive_terms"`
	SavedTo             string            `json:"saved_to,omitempty"`
}

// TFIDF finds the terms distinctive of positive versus negative reviews in
// one language. Each review is its own document; a term's distinctiveness
// is the difference between its mean L2-normalized TF-IDF weight in the two
// sentiment groups. Returns nil when either group has too few reviews.
func (a *Analyzer) TFIDF(ds *dataset.Dataset, params TFIDFParams) (*TFIDFResult, error) {
	params.applyDefaults(a)

	var posDocs, negDocs [][]string
	for i := range ds.Reviews {
		r := &ds.Reviews[i]
		if r.Language != params.Language || r.Review == "" {
			continue
		}
		tokens := a.tokenizer.Tokenize(r.Review, params.Language)
		if len(tokens) == 0 {
			continue
		}
		// Unigram and bigram features, matching the n-gram analyses.
		features := append([]string{}, tokens...)
		for _, gram := range GenerateNGrams(tokens, 2) {
			features = append(features, FormatNGram(gram))
		}
		if r.VotedUp {
			posDocs = append(posDocs, features)
		} else {
			negDocs = append(negDocs, features)
		}
	}

	if len(posDocs) < minSentimentDocs || len(negDocs) < minSentimentDocs {
		return nil, nil
	}

	corpus := append(append([][]string{}, posDocs...), negDocs...)
	vocab, idf := buildVocabulary(corpus, params.MinDocFreq, params.MaxFeatures)
	if len(vocab) == 0 {
		return nil, nil
	}

	posMean := meanTFIDF(posDocs, vocab, idf)
	negMean := meanTFIDF(negDocs, vocab, idf)

	posDistinctive := make(map[string]float64, len(vocab))
	negDistinctive := make(map[string]float64, len(vocab))
	for term := range vocab {
		diff := posMean[term] - negMean[term]
		if diff > 0 {
			posDistinctive[term] = diff
		} else if diff < 0 {
			negDistinctive[term] = -diff
		}
	}

	gameName := a.gameName(ds.Metadata.AppID)
	result := &TFIDFResult{
		Metadata:            ds.Metadata,
		GameName:            gameName,
		Params:              params,
		AnalysisDate:        time.Now().UTC().Format(time.RFC3339),
		TotalReviews:        len(ds.Reviews),
		PositiveReviewCount: len(posDocs),
		NegativeReviewCount: len(negDocs),
		PositiveTerms:       topTerms(posDistinctive, params.TopN),
		NegativeTerms:       topTerms(negDistinctive, params.TopN),
	}

	filename := fmt.Sprintf("%d_%s_%s_tfidf_%s.json",
		ds.Metadata.AppID, sanitizeFilename(gameName), params.Language,
		time.Now().UTC().Format("2006-01-02"))
	path, err := a.saveInsight(result, filename)
	if err != nil {
		return nil, err
	}
	result.SavedTo = path
	return result, nil
}

// buildVocabulary selects terms by document frequency and collection
// frequency, and computes smoothed IDF weights:
// idf(t) = ln((1+N)/(1+df(t))) + 1.
func buildVocabulary(corpus [][]string, minDocFreq, maxFeatures int) (map[string]struct{}, map[string]float64) {
	docFreq := make(map[string]int)
	collFreq := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]struct{}, len(doc))
		for _, term := range doc {
			collFreq[term]++
			seen[term] = struct{}{}
		}
		for term := range seen {
			docFreq[term]++
		}
	}

	type candidate struct {
		term string
		freq int
	}
	candidates := make([]candidate, 0, len(docFreq))
	for term, df := range docFreq {
		if df < minDocFreq {
			continue
		}
		candidates = append(candidates, candidate{term: term, freq: collFreq[term]})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].freq != candidates[j].freq {
			return candidates[i].freq > candidates[j].freq
		}
		return candidates[i].term < candidates[j].term
	})
	if len(candidates) > maxFeatures {
		candidates = candidates[:maxFeatures]
	}

	n := float64(len(corpus))
	vocab := make(map[string]struct{}, len(candidates))
	idf := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		vocab[c.term] = struct{}{}
		idf[c.term] = math.Log((1+n)/(1+float64(docFreq[c.term]))) + 1
	}
	return vocab, idf
}

// meanTFIDF averages the L2-normalized TF-IDF vectors of one document
// group.
func meanTFIDF(docs [][]string, vocab map[string]struct{}, idf map[string]float64) map[string]float64 {
	mean := make(map[string]float64, len(vocab))
	for _, doc := range docs {
		counts := make(map[string]int, len(doc))
		for _, term := range doc {
			if _, ok := vocab[term]; ok {
				counts[term]++
			}
		}

		var norm float64
		weights := make(map[string]float64, len(counts))
		for term, count := range counts {
			w := float64(count) * idf[term]
			weights[term] = w
			norm += w * w
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		for term, w := range weights {
			mean[term] += w / norm
		}
	}

	n := float64(len(docs))
	for term := range mean {
		mean[term] /= n
	}
	return mean
}

func topTerms(scores map[string]float64, topN int) []DistinctiveTerm {
	terms := make([]DistinctiveTerm, 0, len(scores))
	for term, score := range scores {
		terms = append(terms, DistinctiveTerm{Term: term, Score: score})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Score != terms[j].Score {
			return terms[i].Score > terms[j].Score
		}
		return terms[i].Term < terms[j].Term
	})
	if len(terms) > topN {
		terms = terms[:topN]
	}
	for i := range terms {
		terms[i].Rank = i + 1
		terms[i].Score = math.Round(terms[i].Score*10000) / 10000
	}
	return terms
}
