package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steamreviews/pkg/steam"
)

func sampleDataset(appid, count int, start time.Time) *Dataset {
	reviews := make([]steam.Review, count)
	for i := range reviews {
		reviews[i] = steam.Review{
			RecommendationID: string(rune('a' + i%26)),
			Language:         "english",
			VotedUp:          i%2 == 0,
		}
	}
	return &Dataset{
		Metadata: Metadata{
			AppID:                 appid,
			TotalReviewsCollected: count,
			PagesFetched:          (count + 99) / 100,
			DateCollected:         start.UTC().Format("2006-01-02 15:04:05"),
			TargetCount:           500,
			StartTime:             start,
		},
		Reviews: reviews,
	}
}

func TestFilename(t *testing.T) {
	start := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	name := Filename(570, start, 5000, 1200)
	assert.Equal(t, "570_2026-08-29_10-30-00_5000_1200_reviews.json", name)
}

func TestWriteAndLoad(t *testing.T) {
	w, err := NewWriter(t.TempDir(), nil)
	require.NoError(t, err)

	start := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	ds := sampleDataset(570, 3, start)

	name, err := w.Write(ds, "")
	require.NoError(t, err)

	loaded, err := w.LoadFrom(name)
	require.NoError(t, err)
	assert.Equal(t, 570, loaded.Metadata.AppID)
	assert.Len(t, loaded.Reviews, 3)
	assert.Equal(t, ds.Metadata.TotalReviewsCollected, loaded.Metadata.TotalReviewsCollected)
}

func TestWriteSupersedesPreviousSnapshot(t *testing.T) {
	w, err := NewWriter(t.TempDir(), nil)
	require.NoError(t, err)

	start := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)

	first, err := w.Write(sampleDataset(570, 2, start), "")
	require.NoError(t, err)

	ds := sampleDataset(570, 4, start)
	second, err := w.Write(ds, first)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// Only the newest snapshot survives.
	_, err = os.Stat(filepath.Join(w.Dir(), first))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(w.Dir(), second))
	assert.NoError(t, err)
}

func TestWriteSameCountKeepsFile(t *testing.T) {
	w, err := NewWriter(t.TempDir(), nil)
	require.NoError(t, err)

	start := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	ds := sampleDataset(570, 2, start)

	first, err := w.Write(ds, "")
	require.NoError(t, err)
	second, err := w.Write(ds, first)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = os.Stat(filepath.Join(w.Dir(), second))
	assert.NoError(t, err)
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
