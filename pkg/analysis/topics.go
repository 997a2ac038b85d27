package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"steamreviews/pkg/dataset"
)

// TopicParams configure a co-occurrence topic clustering.
type TopicParams struct {
	// Language is the Steam language code to analyze.
	Language string
	// Sentiment is "positive", "negative", or "both".
	Sentiment string
	// MaxTopics bounds the number of clusters.
	MaxTopics int
	// TermsPerTopic bounds each cluster's term list.
	TermsPerTopic int
	// MinDocFreq drops terms appearing in fewer documents.
	MinDocFreq int
}

func (p *TopicParams) applyDefaults(a *Analyzer) {
	if p.Language == "" {
		p.Language = "english"
	}
	if p.Sentiment == "" {
		p.Sentiment = "both"
	}
	if p.MaxTopics <= 0 {
		p.MaxTopics = 10
	}
	if p.TermsPerTopic <= 0 {
		p.TermsPerTopic = 8
	}
	if p.MinDocFreq <= 0 {
		p.MinDocFreq = a.params.MinDocFreq
	}
}

// TopicTerm is one term of a cluster with its association strength to the
// cluster's seed term.
type TopicTerm struct {
	Term     string  `json:"term"`
	NPMI     float64 `json:"npmi"`
	DocCount int     `json:"doc_count"`
}

// Topic is one cluster of terms that tend to appear in the same reviews.
type Topic struct {
	Label    string      `json:"label"`
	DocCount int         `json:"doc_count"`
	Terms    []TopicTerm `json:"terms"`
}

// TopicsResult is the output of a topic clustering analysis.
type TopicsResult struct {
	Metadata        dataset.Metadata `json:"metadata"`
	GameName        string           `json:"game_name"`
	Params          TopicParams      `json:"analysis_params"`
	AnalysisDate    string           `json:"analysis_date"`
	FilteredReviews int              `json:"filtered_reviews"`
	Topics          []Topic          `json:"topics"`
	SavedTo         string           `json:"saved_to,omitempty"`
}

// npmiThreshold is the minimum normalized PMI for a term to join a cluster.
const npmiThreshold = 0.2

// Topics clusters review vocabulary by document co-occurrence. Each cluster
// grows greedily from a high-frequency seed term, attaching the terms whose
// normalized pointwise mutual information with the seed exceeds a fixed
// threshold; attached terms are not reused as later seeds. Returns nil when
// no review matches the filter.
func (a *Analyzer) Topics(ds *dataset.Dataset, params TopicParams) (*TopicsResult, error) {
	params.applyDefaults(a)

	filtered := filterReviews(ds.Reviews, params.Language, params.Sentiment)
	if len(filtered) == 0 {
		return nil, nil
	}

	// Document-level term sets.
	var docs []map[string]struct{}
	for i := range filtered {
		if filtered[i].Review == "" {
			continue
		}
		tokens := a.tokenizer.Tokenize(filtered[i].Review, params.Language)
		if len(tokens) == 0 {
			continue
		}
		set := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			set[tok] = struct{}{}
		}
		docs = append(docs, set)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	docFreq := make(map[string]int)
	for _, doc := range docs {
		for term := range doc {
			docFreq[term]++
		}
	}

	// Seed candidates: frequent terms, most frequent first.
	type seedCandidate struct {
		term string
		df   int
	}
	var seeds []seedCandidate
	for term, df := range docFreq {
		if df >= params.MinDocFreq {
			seeds = append(seeds, seedCandidate{term: term, df: df})
		}
	}
	sort.Slice(seeds, func(i, j int) bool {
		if seeds[i].df != seeds[j].df {
			return seeds[i].df > seeds[j].df
		}
		return seeds[i].term < seeds[j].term
	})

	n := len(docs)
	used := make(map[string]struct{})
	var topics []Topic

	for _, seed := range seeds {
		if len(topics) >= params.MaxTopics {
			break
		}
		if _, taken := used[seed.term]; taken {
			continue
		}
		used[seed.term] = struct{}{}

		coCounts := make(map[string]int)
		for _, doc := range docs {
			if _, ok := doc[seed.term]; !ok {
				continue
			}
			for term := range doc {
				if term != seed.term {
					coCounts[term]++
				}
			}
		}

		var terms []TopicTerm
		for term, nAB := range coCounts {
			if _, taken := used[term]; taken {
				continue
			}
			if docFreq[term] < params.MinDocFreq {
				continue
			}
			score := npmi(nAB, seed.df, docFreq[term], n)
			if score < npmiThreshold {
				continue
			}
			terms = append(terms, TopicTerm{Term: term, NPMI: score, DocCount: docFreq[term]})
		}
		if len(terms) == 0 {
			continue
		}

		sort.Slice(terms, func(i, j int) bool {
			if terms[i].NPMI != terms[j].NPMI {
				return terms[i].NPMI > terms[j].NPMI
			}
			return terms[i].Term < terms[j].Term
		})
		if len(terms) > params.TermsPerTopic {
			terms = terms[:params.TermsPerTopic]
		}
		for _, t := range terms {
			used[t.Term] = struct{}{}
		}

		topics = append(topics, Topic{
			Label:    seed.term,
			DocCount: seed.df,
			Terms:    terms,
		})
	}

	gameName := a.gameName(ds.Metadata.AppID)
	result := &TopicsResult{
		Metadata:        ds.Metadata,
		GameName:        gameName,
		Params:          params,
		AnalysisDate:    time.Now().UTC().Format(time.RFC3339),
		FilteredReviews: len(filtered),
		Topics:          topics,
	}

	filename := fmt.Sprintf("%d_%s_%s_topics_%s.json",
		ds.Metadata.AppID, sanitizeFilename(gameName), params.Language,
		time.Now().UTC().Format("2006-01-02"))
	path, err := a.saveInsight(result, filename)
	if err != nil {
		return nil, err
	}
	result.SavedTo = path
	return result, nil
}

// npmi computes smoothed normalized pointwise mutual information between
// two terms from document counts, in [-1, 1].
func npmi(nAB, nA, nB, n int) float64 {
	if n == 0 || nAB == 0 {
		return 0
	}
	const epsilon = 1.0
	pmi := math.Log((float64(nAB) + epsilon) * float64(n) / ((float64(nA) + epsilon) * (float64(nB) + epsilon)))
	logPAB := math.Log((float64(nAB) + epsilon) / float64(n))
	if logPAB == 0 {
		return 0
	}
	score := pmi / -logPAB
	return math.Round(score*10000) / 10000
}
