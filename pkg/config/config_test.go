package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Fetch.PageSize != 100 {
		t.Errorf("Expected default page size to be 100, got %d", config.Fetch.PageSize)
	}
	if config.Fetch.CheckpointInterval != 50 {
		t.Errorf("Expected default checkpoint interval to be 50, got %d", config.Fetch.CheckpointInterval)
	}
	if config.Fetch.RequestsPerMinute != 60 {
		t.Errorf("Expected default requests per minute to be 60, got %d", config.Fetch.RequestsPerMinute)
	}
	if config.Storage.DataDir != "data" {
		t.Errorf("Expected default data directory to be data, got %s", config.Storage.DataDir)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Default configuration should validate, got %v", err)
	}
}

func TestStorageDirsDerivedFromDataDir(t *testing.T) {
	s := StorageConfig{DataDir: "/srv/steam"}

	if got := s.CheckpointDir(); got != filepath.Join("/srv/steam", "cache") {
		t.Errorf("Unexpected checkpoint dir %s", got)
	}
	if got := s.RawDir(); got != filepath.Join("/srv/steam", "raw") {
		t.Errorf("Unexpected raw dir %s", got)
	}
	if got := s.ReportsDir(); got != filepath.Join("/srv/steam", "processed", "reports") {
		t.Errorf("Unexpected reports dir %s", got)
	}
	if got := s.InsightsDir(); got != filepath.Join("/srv/steam", "processed", "insights") {
		t.Errorf("Unexpected insights dir %s", got)
	}
	if got := s.AppDetailsDir(); got != filepath.Join("/srv/steam", "cache", "app_details") {
		t.Errorf("Unexpected app details dir %s", got)
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("STEAMREVIEWS_REQUESTS_PER_MINUTE", "30")
	os.Setenv("STEAMREVIEWS_DELAY", "2s")
	os.Setenv("STEAMREVIEWS_MAX_PAGES", "500")
	os.Setenv("STEAMREVIEWS_DATA_DIR", "/tmp/steamdata")
	os.Setenv("STEAMREVIEWS_LANGUAGE", "schinese")
	os.Setenv("STEAMREVIEWS_LOG_LEVEL", "debug")

	defer func() {
		os.Unsetenv("STEAMREVIEWS_REQUESTS_PER_MINUTE")
		os.Unsetenv("STEAMREVIEWS_DELAY")
		os.Unsetenv("STEAMREVIEWS_MAX_PAGES")
		os.Unsetenv("STEAMREVIEWS_DATA_DIR")
		os.Unsetenv("STEAMREVIEWS_LANGUAGE")
		os.Unsetenv("STEAMREVIEWS_LOG_LEVEL")
	}()

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.Fetch.RequestsPerMinute != 30 {
		t.Errorf("Expected requests per minute to be 30, got %d", config.Fetch.RequestsPerMinute)
	}
	if config.Fetch.Delay != 2*time.Second {
		t.Errorf("Expected delay to be 2s, got %v", config.Fetch.Delay)
	}
	if config.Fetch.MaxPages != 500 {
		t.Errorf("Expected max pages to be 500, got %d", config.Fetch.MaxPages)
	}
	if config.Storage.DataDir != "/tmp/steamdata" {
		t.Errorf("Expected data dir to be /tmp/steamdata, got %s", config.Storage.DataDir)
	}
	if config.Fetch.Language != "schinese" {
		t.Errorf("Expected language to be schinese, got %s", config.Fetch.Language)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
}

func TestLoadFromEnvIgnoresInvalidValues(t *testing.T) {
	os.Setenv("STEAMREVIEWS_REQUESTS_PER_MINUTE", "not-a-number")
	os.Setenv("STEAMREVIEWS_DELAY", "bogus")
	defer func() {
		os.Unsetenv("STEAMREVIEWS_REQUESTS_PER_MINUTE")
		os.Unsetenv("STEAMREVIEWS_DELAY")
	}()

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.Fetch.RequestsPerMinute != 60 {
		t.Errorf("Invalid env value should keep default 60, got %d", config.Fetch.RequestsPerMinute)
	}
	if config.Fetch.Delay != time.Second {
		t.Errorf("Invalid env value should keep default 1s, got %v", config.Fetch.Delay)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steamreviews.yaml")
	content := `
fetch:
  page_size: 50
  checkpoint_interval: 10
  language: english
storage:
  data_dir: /var/lib/steamreviews
logging:
  level: warn
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config := DefaultConfig()
	if err := config.LoadFromFile(path); err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}

	if config.Fetch.PageSize != 50 {
		t.Errorf("Expected page size 50, got %d", config.Fetch.PageSize)
	}
	if config.Fetch.CheckpointInterval != 10 {
		t.Errorf("Expected checkpoint interval 10, got %d", config.Fetch.CheckpointInterval)
	}
	if config.Storage.DataDir != "/var/lib/steamreviews" {
		t.Errorf("Expected data dir /var/lib/steamreviews, got %s", config.Storage.DataDir)
	}
	if config.Logging.Level != "warn" {
		t.Errorf("Expected log level warn, got %s", config.Logging.Level)
	}
	// Fields absent from the file keep their defaults.
	if config.Fetch.RequestsPerMinute != 60 {
		t.Errorf("Expected requests per minute to stay 60, got %d", config.Fetch.RequestsPerMinute)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	config := DefaultConfig()
	err := config.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}, wantErr: false},
		{name: "page size too large", mutate: func(c *Config) { c.Fetch.PageSize = 200 }, wantErr: true},
		{name: "zero page size", mutate: func(c *Config) { c.Fetch.PageSize = 0 }, wantErr: true},
		{name: "zero checkpoint interval", mutate: func(c *Config) { c.Fetch.CheckpointInterval = 0 }, wantErr: true},
		{name: "negative delay", mutate: func(c *Config) { c.Fetch.Delay = -time.Second }, wantErr: true},
		{name: "negative max pages", mutate: func(c *Config) { c.Fetch.MaxPages = -1 }, wantErr: true},
		{name: "empty data dir", mutate: func(c *Config) { c.Storage.DataDir = "" }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, wantErr: true},
		{name: "zero analysis top n", mutate: func(c *Config) { c.Analysis.TopN = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no validation error, got %v", err)
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "steamreviews.yaml")

	config := DefaultConfig()
	config.Fetch.Language = "japanese"
	config.Fetch.MaxPages = 42
	if err := config.Save(path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	reloaded := DefaultConfig()
	if err := reloaded.LoadFromFile(path); err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}
	if reloaded.Fetch.Language != "japanese" {
		t.Errorf("Expected language japanese after reload, got %s", reloaded.Fetch.Language)
	}
	if reloaded.Fetch.MaxPages != 42 {
		t.Errorf("Expected max pages 42 after reload, got %d", reloaded.Fetch.MaxPages)
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()
	config.MergeCommandLineFlags(map[string]interface{}{
		"data-dir":   "/tmp/override",
		"max-pages":  10,
		"delay":      500 * time.Millisecond,
		"rate-limit": 120,
		"language":   "english",
		"log-level":  "error",
	})

	if config.Storage.DataDir != "/tmp/override" {
		t.Errorf("Expected data dir /tmp/override, got %s", config.Storage.DataDir)
	}
	if config.Fetch.MaxPages != 10 {
		t.Errorf("Expected max pages 10, got %d", config.Fetch.MaxPages)
	}
	if config.Fetch.Delay != 500*time.Millisecond {
		t.Errorf("Expected delay 500ms, got %v", config.Fetch.Delay)
	}
	if config.Fetch.RequestsPerMinute != 120 {
		t.Errorf("Expected rate limit 120, got %d", config.Fetch.RequestsPerMinute)
	}
	if config.Fetch.Language != "english" {
		t.Errorf("Expected language english, got %s", config.Fetch.Language)
	}
	if config.Logging.Level != "error" {
		t.Errorf("Expected log level error, got %s", config.Logging.Level)
	}
}
