package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	dataDir    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "steamreviews",
	Short: "Fetch and analyze Steam game reviews",
	Long: `steamreviews is a command-line tool for collecting the full review
history of a Steam game and turning it into reports.

Features:
  - Cursor-based pagination over the public appreviews endpoint
  - Crash-safe checkpoints so interrupted runs resume where they stopped
  - Rate limiting to stay within Steam's request budget
  - Per-language summary reports as CSV
  - N-gram, TF-IDF, topic, timeline and playtime analyses as JSON`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./steamreviews.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "root directory for datasets, checkpoints and reports")

	rootCmd.SetVersionTemplate(`steamreviews {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// globalFlags collects the persistent flags that feed config.Load.
func globalFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if dataDir != "" {
		flags["data-dir"] = dataDir
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}
	return flags
}
