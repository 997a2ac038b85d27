package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestStoreSaveAndLoad(t *testing.T) {
	store := newTestStore(t)

	cp := &Checkpoint{
		AppID:            570,
		Cursor:           "AoJ4nsjMvvICduxxkwI=",
		DatasetFile:      "570_2026-08-29_10-00-00_5000_1200_reviews.json",
		TargetCount:      5000,
		AccumulatedCount: 1200,
		StartTime:        time.Now().Add(-time.Minute),
	}
	if err := store.Save(cp); err != nil {
		t.Fatalf("Failed to save checkpoint: %v", err)
	}

	loaded, err := store.Load(570)
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected checkpoint, got nil")
	}
	if loaded.Cursor != cp.Cursor {
		t.Errorf("Expected cursor %s, got %s", cp.Cursor, loaded.Cursor)
	}
	if loaded.AccumulatedCount != 1200 {
		t.Errorf("Expected accumulated count 1200, got %d", loaded.AccumulatedCount)
	}
	if loaded.DatasetFile != cp.DatasetFile {
		t.Errorf("Expected dataset file %s, got %s", cp.DatasetFile, loaded.DatasetFile)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.Load(999)
	if err != nil {
		t.Fatalf("Unexpected error loading missing checkpoint: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil checkpoint when none exists")
	}
	if store.Exists(999) {
		t.Error("Expected Exists to report false when no checkpoint exists")
	}
}

func TestStoreNewerSequenceWins(t *testing.T) {
	store := newTestStore(t)

	first := &Checkpoint{AppID: 570, Cursor: "cursor1", AccumulatedCount: 100}
	if err := store.Save(first); err != nil {
		t.Fatalf("Failed to save first checkpoint: %v", err)
	}
	second := &Checkpoint{AppID: 570, Cursor: "cursor2", AccumulatedCount: 200}
	if err := store.Save(second); err != nil {
		t.Fatalf("Failed to save second checkpoint: %v", err)
	}

	loaded, err := store.Load(570)
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}
	if loaded.Cursor != "cursor2" {
		t.Errorf("Expected newest cursor, got %s", loaded.Cursor)
	}
	if loaded.AccumulatedCount != 200 {
		t.Errorf("Expected accumulated count 200, got %d", loaded.AccumulatedCount)
	}
}

func TestStoreGarbageCollectsOldSequences(t *testing.T) {
	store := newTestStore(t)

	for i := 1; i <= 3; i++ {
		cp := &Checkpoint{AppID: 570, Cursor: "cursor", AccumulatedCount: i * 100}
		if err := store.Save(cp); err != nil {
			t.Fatalf("Failed to save checkpoint %d: %v", i, err)
		}
	}

	matches, err := filepath.Glob(filepath.Join(store.Dir(), "570_*.checkpoint.json"))
	if err != nil {
		t.Fatalf("Failed to list checkpoint files: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("Expected one live checkpoint file after GC, got %d", len(matches))
	}
}

func TestStoreCorruptCheckpointFallsBack(t *testing.T) {
	store := newTestStore(t)

	cp := &Checkpoint{AppID: 570, Cursor: "good", AccumulatedCount: 100}
	if err := store.Save(cp); err != nil {
		t.Fatalf("Failed to save checkpoint: %v", err)
	}

	// Corrupt the newest file by hand; Load falls back to older sequences
	// and finally to nil rather than returning an error.
	path := store.path(570, 2)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt checkpoint: %v", err)
	}

	loaded, err := store.Load(570)
	if err != nil {
		t.Fatalf("Unexpected error loading checkpoint: %v", err)
	}
	if loaded == nil || loaded.Cursor != "good" {
		t.Errorf("Expected fallback to older valid checkpoint, got %+v", loaded)
	}

	// Corrupt the only remaining valid file too.
	if err := os.WriteFile(store.path(570, 1), []byte("garbage"), 0644); err != nil {
		t.Fatalf("Failed to corrupt checkpoint: %v", err)
	}
	loaded, err = store.Load(570)
	if err != nil {
		t.Fatalf("Unexpected error loading corrupt checkpoint: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil for fully corrupt checkpoint state")
	}
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)

	cp := &Checkpoint{AppID: 570, Cursor: "cursor", AccumulatedCount: 100}
	if err := store.Save(cp); err != nil {
		t.Fatalf("Failed to save checkpoint: %v", err)
	}
	if !store.Exists(570) {
		t.Fatal("Expected checkpoint to exist before delete")
	}

	if err := store.Delete(570); err != nil {
		t.Fatalf("Failed to delete checkpoint: %v", err)
	}
	if store.Exists(570) {
		t.Error("Expected checkpoint to be gone after delete")
	}

	// Deleting again is a no-op.
	if err := store.Delete(570); err != nil {
		t.Errorf("Expected idempotent delete, got %v", err)
	}
}
