// Package analysis computes post-hoc analytics over collected review
// datasets.
//
// Every analyzer is a read-only consumer of a dataset artifact written by
// the fetch pipeline. Available analyses: per-language sentiment report
// (CSV), n-gram frequency, TF-IDF distinctive terms, co-occurrence topic
// clusters, review timeline, and playtime extremes. English text is
// word-tokenized; Chinese text is segmented into character bigrams over
// contiguous Han runs.
package analysis
