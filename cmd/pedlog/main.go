package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pedlog/pedlog-go/internal/config"
	"github.com/pedlog/pedlog-go/internal/logging"
)

var (
	// Version information (set by ldflags)
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	verbose    bool
	logLevel   string
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pedlog",
	Short: "Entropia Universe chat log tracker",
	Long: `pedlog parses and monitors Entropia Universe chat logs.

It classifies combat, loot, skill and global events, tracks per-session
cost and return in PED, and computes per-shot weapon economics. Events
are output as JSON Lines for easy processing with other tools.

This is an unofficial tool and is not affiliated with MindArk PE AB.`,
	SilenceUsage: true, // Don't show usage on error
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.ParseLevel(logLevel)
		if verbose {
			level = slog.LevelDebug
		}
		// Event output owns stdout; logs go to stderr.
		logging.Init(true, level)
	},
}

func init() {
	// Global flags (inherited by all subcommands)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default: per-user pedlog.toml)")

	// Add subcommands
	rootCmd.AddCommand(tailCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(weaponsCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pedlog %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

// loadFileConfig reads the TOML config named by --config, falling back
// to the per-user default path. A missing file yields defaults.
func loadFileConfig() (config.FileConfig, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}
