package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"steamreviews/pkg/logger"
	"steamreviews/pkg/steam"
)

// Metadata describes one collected dataset.
type Metadata struct {
	AppID                 int       `json:"appid"`
	TotalReviewsCollected int       `json:"total_reviews_collected"`
	PagesFetched          int       `json:"pages_fetched"`
	DateCollected         string    `json:"date_collected"`
	TargetCount           int       `json:"target_count"`
	StartTime             time.Time `json:"start_time"`
}

// Dataset is the persisted artifact of a fetch run: run metadata plus the
// full accumulated review list.
type Dataset struct {
	Metadata Metadata       `json:"metadata"`
	Reviews  []steam.Review `json:"reviews"`
}

// Writer persists datasets under a single directory. Every write replaces
// the whole file; the previous snapshot of the same run is removed so at
// most one live copy per run exists.
type Writer struct {
	dir    string
	logger logger.Logger
}

// NewWriter creates a dataset writer rooted at dir, creating it if needed.
func NewWriter(dir string, log logger.Logger) (*Writer, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create dataset directory: %w", err)
	}
	return &Writer{dir: dir, logger: log}, nil
}

// Dir returns the directory the writer writes into.
func (w *Writer) Dir() string {
	return w.dir
}

// Filename derives the artifact filename for a run snapshot. The count is
// part of the name, so each checkpoint at a new count produces a new name
// and the previous file is superseded.
func Filename(appid int, startTime time.Time, targetCount, count int) string {
	stamp := startTime.UTC().Format("2006-01-02_15-04-05")
	return fmt.Sprintf("%d_%s_%d_%d_reviews.json", appid, stamp, targetCount, count)
}

// Write persists the dataset snapshot and removes previousFile (an earlier
// snapshot of the same run) if it differs. It returns the written filename,
// relative to the writer's directory.
func (w *Writer) Write(ds *Dataset, previousFile string) (string, error) {
	name := Filename(ds.Metadata.AppID, ds.Metadata.StartTime, ds.Metadata.TargetCount, ds.Metadata.TotalReviewsCollected)
	path := filepath.Join(w.dir, name)

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary dataset file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(ds); err != nil {
		file.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to encode dataset: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to sync dataset file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to close dataset file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to replace dataset file: %w", err)
	}

	if previousFile != "" && previousFile != name {
		if err := os.Remove(filepath.Join(w.dir, previousFile)); err != nil && !os.IsNotExist(err) {
			w.logger.WarnWithFields("Failed to remove superseded dataset file", map[string]interface{}{
				"file":  previousFile,
				"error": err.Error(),
			})
		}
	}

	w.logger.DebugWithFields("Dataset written", map[string]interface{}{
		"file":    name,
		"reviews": ds.Metadata.TotalReviewsCollected,
		"pages":   ds.Metadata.PagesFetched,
	})

	return name, nil
}

// Load reads a dataset artifact from path.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}

	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse dataset file: %w", err)
	}
	return &ds, nil
}

// LoadFrom reads a dataset by filename relative to the writer's directory.
func (w *Writer) LoadFrom(name string) (*Dataset, error) {
	return Load(filepath.Join(w.dir, name))
}
