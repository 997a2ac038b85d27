package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the review collector.
type Config struct {
	// Steam API endpoints and HTTP behavior
	Steam SteamConfig `yaml:"steam" json:"steam"`

	// Fetch loop settings (pagination, checkpointing, pacing)
	Fetch FetchConfig `yaml:"fetch" json:"fetch"`

	// Storage layout for datasets, checkpoints and reports
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Analysis defaults
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SteamConfig holds Steam-specific configuration.
type SteamConfig struct {
	ReviewsBaseURL string        `yaml:"reviews_base_url" json:"reviews_base_url"`
	StoreBaseURL   string        `yaml:"store_base_url" json:"store_base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
}

// FetchConfig holds pagination-loop configuration. Filter parameters are
// passed through to the API unmodified.
type FetchConfig struct {
	PageSize           int           `yaml:"page_size" json:"page_size"`
	CheckpointInterval int           `yaml:"checkpoint_interval" json:"checkpoint_interval"`
	Delay              time.Duration `yaml:"delay" json:"delay"`
	MaxPages           int           `yaml:"max_pages" json:"max_pages"`
	RequestsPerMinute  int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	Filter             string        `yaml:"filter" json:"filter"`
	Language           string        `yaml:"language" json:"language"`
	ReviewType         string        `yaml:"review_type" json:"review_type"`
	PurchaseType       string        `yaml:"purchase_type" json:"purchase_type"`
}

// StorageConfig holds the on-disk layout. All paths are derived from DataDir.
type StorageConfig struct {
	DataDir string `yaml:"data_dir" json:"data_dir"`
}

// CheckpointDir is where resumable checkpoints live.
func (s StorageConfig) CheckpointDir() string {
	return filepath.Join(s.DataDir, "cache")
}

// RawDir is where dataset artifacts live.
func (s StorageConfig) RawDir() string {
	return filepath.Join(s.DataDir, "raw")
}

// ReportsDir is where CSV reports live.
func (s StorageConfig) ReportsDir() string {
	return filepath.Join(s.DataDir, "processed", "reports")
}

// InsightsDir is where analyzer JSON outputs live.
func (s StorageConfig) InsightsDir() string {
	return filepath.Join(s.DataDir, "processed", "insights")
}

// AppDetailsDir is where cached game details live.
func (s StorageConfig) AppDetailsDir() string {
	return filepath.Join(s.DataDir, "cache", "app_details")
}

// AnalysisConfig holds analyzer defaults.
type AnalysisConfig struct {
	TopN         int `yaml:"top_n" json:"top_n"`
	MinFrequency int `yaml:"min_frequency" json:"min_frequency"`
	MaxFeatures  int `yaml:"max_features" json:"max_features"`
	MinDocFreq   int `yaml:"min_doc_freq" json:"min_doc_freq"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Steam: SteamConfig{
			ReviewsBaseURL: "https://store.steampowered.com/appreviews/",
			StoreBaseURL:   "https://store.steampowered.com/api/appdetails/",
			RequestTimeout: 10 * time.Second,
			UserAgent:      "steamreviews/1.0",
		},
		Fetch: FetchConfig{
			PageSize:           100,
			CheckpointInterval: 50,
			Delay:              time.Second,
			MaxPages:           0, // unbounded
			RequestsPerMinute:  60,
			Filter:             "recent",
			Language:           "all",
			ReviewType:         "all",
			PurchaseType:       "all",
		},
		Storage: StorageConfig{
			DataDir: "data",
		},
		Analysis: AnalysisConfig{
			TopN:         100,
			MinFrequency: 2,
			MaxFeatures:  5000,
			MinDocFreq:   2,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables.
func (c *Config) LoadFromEnv() error {
	if timeout := os.Getenv("STEAMREVIEWS_REQUEST_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			c.Steam.RequestTimeout = d
		}
	}
	if delay := os.Getenv("STEAMREVIEWS_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil && d >= 0 {
			c.Fetch.Delay = d
		}
	}
	if rpm := os.Getenv("STEAMREVIEWS_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.Fetch.RequestsPerMinute = val
		}
	}
	if pages := os.Getenv("STEAMREVIEWS_MAX_PAGES"); pages != "" {
		var val int
		fmt.Sscanf(pages, "%d", &val)
		if val > 0 {
			c.Fetch.MaxPages = val
		}
	}
	if dataDir := os.Getenv("STEAMREVIEWS_DATA_DIR"); dataDir != "" {
		c.Storage.DataDir = dataDir
	}
	if lang := os.Getenv("STEAMREVIEWS_LANGUAGE"); lang != "" {
		c.Fetch.Language = lang
	}
	if logLevel := os.Getenv("STEAMREVIEWS_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // no config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for a config file in standard locations.
func (c *Config) findConfigFile() string {
	locations := []string{
		".steamreviews.yaml",
		".steamreviews.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "steamreviews", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "steamreviews", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".steamreviews.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Steam.ReviewsBaseURL == "" {
		errs = append(errs, errors.New("reviews base URL is required"))
	}
	if c.Steam.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Fetch.PageSize <= 0 || c.Fetch.PageSize > 100 {
		errs = append(errs, errors.New("page size must be between 1 and 100"))
	}
	if c.Fetch.CheckpointInterval <= 0 {
		errs = append(errs, errors.New("checkpoint interval must be positive"))
	}
	if c.Fetch.Delay < 0 {
		errs = append(errs, errors.New("delay cannot be negative"))
	}
	if c.Fetch.MaxPages < 0 {
		errs = append(errs, errors.New("max pages cannot be negative"))
	}
	if c.Fetch.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}

	if c.Storage.DataDir == "" {
		errs = append(errs, errors.New("data directory is required"))
	}

	if c.Analysis.TopN <= 0 {
		errs = append(errs, errors.New("analysis top_n must be positive"))
	}
	if c.Analysis.MinFrequency < 1 {
		errs = append(errs, errors.New("analysis min_frequency must be at least 1"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if dataDir, ok := flags["data-dir"].(string); ok && dataDir != "" {
		c.Storage.DataDir = dataDir
	}
	if maxPages, ok := flags["max-pages"].(int); ok && maxPages > 0 {
		c.Fetch.MaxPages = maxPages
	}
	if delay, ok := flags["delay"].(time.Duration); ok && delay >= 0 {
		c.Fetch.Delay = delay
	}
	if rpm, ok := flags["rate-limit"].(int); ok && rpm > 0 {
		c.Fetch.RequestsPerMinute = rpm
	}
	if lang, ok := flags["language"].(string); ok && lang != "" {
		c.Fetch.Language = lang
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: command line flags > environment variables > .env file >
// config file > defaults.
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".steamreviews.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
