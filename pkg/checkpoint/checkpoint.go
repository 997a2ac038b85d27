package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"steamreviews/pkg/logger"
)

// Checkpoint represents the recovery state of a fetch run.
type Checkpoint struct {
	AppID            int       `json:"appid"`
	Cursor           string    `json:"cursor"`
	DatasetFile      string    `json:"dataset_file"`
	TargetCount      int       `json:"target_count"`
	AccumulatedCount int       `json:"accumulated_count"`
	StartTime        time.Time `json:"start_time"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Version          int       `json:"version"`
}

// Store handles checkpoint persistence for all appids under one directory.
type Store struct {
	dir    string
	logger logger.Logger
}

// NewStore creates a checkpoint store rooted at dir, creating it if needed.
func NewStore(dir string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	return &Store{dir: dir, logger: log}, nil
}

// Dir returns the directory the store writes into.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the checkpoint atomically under the next sequence number for
// its appid, then garbage collects older sequences. The caller must have
// already written the dataset artifact the checkpoint references.
func (s *Store) Save(cp *Checkpoint) error {
	now := time.Now()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	cp.Version = 1

	seq, err := s.nextSequence(cp.AppID)
	if err != nil {
		return err
	}
	path := s.path(cp.AppID, seq)

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cp); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync checkpoint file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}

	s.gc(cp.AppID, seq)

	s.logger.DebugWithFields("Checkpoint saved", map[string]interface{}{
		"appid":             cp.AppID,
		"sequence":          seq,
		"cursor":            cp.Cursor,
		"accumulated_count": cp.AccumulatedCount,
	})

	return nil
}

// Load returns the most recent checkpoint for appid, or (nil, nil) when no
// usable checkpoint exists. A corrupt or unreadable checkpoint file is
// treated as not-found so the caller falls back to a fresh run.
func (s *Store) Load(appid int) (*Checkpoint, error) {
	seqs, err := s.sequences(appid)
	if err != nil {
		return nil, err
	}
	if len(seqs) == 0 {
		return nil, nil
	}

	// Walk from newest to oldest in case the newest write was interrupted.
	for i := len(seqs) - 1; i >= 0; i-- {
		path := s.path(appid, seqs[i])
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read checkpoint file: %w", err)
		}

		var cp Checkpoint
		if err := json.Unmarshal(data, &cp); err != nil {
			s.logger.WarnWithFields("Ignoring corrupt checkpoint file", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			continue
		}

		s.logger.InfoWithFields("Checkpoint loaded", map[string]interface{}{
			"appid":             cp.AppID,
			"sequence":          seqs[i],
			"cursor":            cp.Cursor,
			"accumulated_count": cp.AccumulatedCount,
			"updated_at":        cp.UpdatedAt,
		})
		return &cp, nil
	}

	return nil, nil
}

// Delete removes all checkpoint files for appid. The dataset artifact the
// checkpoints referenced is left untouched.
func (s *Store) Delete(appid int) error {
	seqs, err := s.sequences(appid)
	if err != nil {
		return err
	}
	for _, seq := range seqs {
		if err := os.Remove(s.path(appid, seq)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete checkpoint: %w", err)
		}
	}
	if len(seqs) > 0 {
		s.logger.InfoWithFields("Checkpoint deleted", map[string]interface{}{
			"appid": appid,
		})
	}
	return nil
}

// Exists reports whether any checkpoint file exists for appid.
func (s *Store) Exists(appid int) bool {
	seqs, err := s.sequences(appid)
	return err == nil && len(seqs) > 0
}

func (s *Store) path(appid int, seq uint64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d_%06d.checkpoint.json", appid, seq))
}

// sequences returns the sequence numbers present for appid, ascending.
func (s *Store) sequences(appid int) ([]uint64, error) {
	pattern := filepath.Join(s.dir, fmt.Sprintf("%d_*.checkpoint.json", appid))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoint files: %w", err)
	}

	prefix := fmt.Sprintf("%d_", appid)
	seqs := make([]uint64, 0, len(matches))
	for _, match := range matches {
		name := filepath.Base(match)
		rest := strings.TrimPrefix(strings.TrimSuffix(name, ".checkpoint.json"), prefix)
		seq, err := strconv.ParseUint(rest, 10, 64)
		if err != nil {
			continue
		}
		seqs = append(seqs, seq)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	return seqs, nil
}

func (s *Store) nextSequence(appid int) (uint64, error) {
	seqs, err := s.sequences(appid)
	if err != nil {
		return 0, err
	}
	if len(seqs) == 0 {
		return 1, nil
	}
	return seqs[len(seqs)-1] + 1, nil
}

// gc removes checkpoint files for appid older than keep.
func (s *Store) gc(appid int, keep uint64) {
	seqs, err := s.sequences(appid)
	if err != nil {
		return
	}
	for _, seq := range seqs {
		if seq >= keep {
			continue
		}
		if err := os.Remove(s.path(appid, seq)); err != nil && !os.IsNotExist(err) {
			s.logger.WarnWithFields("Failed to remove stale checkpoint", map[string]interface{}{
				"appid":    appid,
				"sequence": seq,
				"error":    err.Error(),
			})
		}
	}
}
