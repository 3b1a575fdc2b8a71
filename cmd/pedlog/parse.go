package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pedlog/pedlog-go/internal/logfinder"
	"github.com/pedlog/pedlog-go/pkg/pedlog"
)

var (
	// parse flags
	parseLogPath      string
	parseIncludeKinds []string
	parseExcludeKinds []string
	parseSince        string
	parseUntil        string
	parseFormat       string
	parsePlayer       string
	parseStopOnError  bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [files...]",
	Short: "Parse chat log files (batch mode)",
	Long: `Parse chat log files and output events.

Unlike 'tail', this command processes historical files without real-time
following. Positional arguments are read in the exact order given; with
no arguments, the configured or auto-detected chat log is used.

Examples:
  # Parse the auto-detected chat log
  pedlog parse

  # Parse specific files in order
  pedlog parse chat-2024-04.log chat-2024-05.log

  # Filter by time range (useful for multi-day queries)
  pedlog parse --since "2024-01-15T12:00:00Z" --until "2024-01-16T00:00:00Z"

  # Filter by event kind
  pedlog parse --include-kinds loot,global

  # Human-readable output
  pedlog parse --format pretty

  # Pipe to jq for filtering
  pedlog parse | jq 'select(.kind == "global")'`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseLogPath, "log", "l", "",
		"Chat log file (auto-detected if not specified)")
	parseCmd.Flags().StringSliceVar(&parseIncludeKinds, "include-kinds", nil,
		"Event kinds to include (comma-separated: combat,loot,skill,global)")
	parseCmd.Flags().StringSliceVar(&parseExcludeKinds, "exclude-kinds", nil,
		"Event kinds to exclude (comma-separated)")
	parseCmd.Flags().StringVar(&parseSince, "since", "",
		"Only events at/after timestamp (RFC3339 format, e.g., 2024-01-15T12:00:00Z)")
	parseCmd.Flags().StringVar(&parseUntil, "until", "",
		"Only events before timestamp (RFC3339 format)")
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	parseCmd.Flags().StringVar(&parsePlayer, "player", "",
		"Local avatar name for loot attribution (overrides config)")
	parseCmd.Flags().BoolVar(&parseStopOnError, "stop-on-error", false,
		"Stop on first error instead of skipping")

	registerEventKindCompletion(parseCmd, "include-kinds")
	registerEventKindCompletion(parseCmd, "exclude-kinds")
	registerFormatCompletion(parseCmd, "format")
}

func runParse(cmd *cobra.Command, args []string) error {
	if !ValidFormats[parseFormat] {
		return fmt.Errorf("invalid format %q: must be one of: jsonl, pretty", parseFormat)
	}

	includes, err := NormalizeEventKinds(parseIncludeKinds)
	if err != nil {
		return err
	}
	excludes, err := NormalizeEventKinds(parseExcludeKinds)
	if err != nil {
		return err
	}
	if err := RejectOverlap(includes, excludes); err != nil {
		return err
	}

	sinceTime, untilTime, err := parseTimeRange(parseSince, parseUntil)
	if err != nil {
		return err
	}

	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}

	player := parsePlayer
	if player == "" {
		player = fileCfg.PlayerName()
	}

	// Resolve the file list: positional args win, then --log, then the
	// configured or auto-detected chat log.
	paths := args
	if len(paths) == 0 {
		logPath := parseLogPath
		if logPath == "" {
			logPath = fileCfg.LogPath()
		}
		logPath, err = logfinder.FindChatLog(logPath)
		if err != nil {
			return err
		}
		paths = []string{logPath}
	}

	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opts []pedlog.ParseOption
	if player != "" {
		opts = append(opts, pedlog.WithParseLocalPlayer(player))
	}
	if len(includes) > 0 {
		opts = append(opts, pedlog.WithParseIncludeKinds(includes...))
	}
	if len(excludes) > 0 {
		opts = append(opts, pedlog.WithParseExcludeKinds(excludes...))
	}
	if !sinceTime.IsZero() || !untilTime.IsZero() {
		opts = append(opts, pedlog.WithParseTimeRange(sinceTime, untilTime))
	}
	if parseStopOnError {
		opts = append(opts, pedlog.WithParseStopOnError(true))
	}

	for ev, err := range pedlog.ParseFiles(ctx, paths, opts...) {
		if err != nil {
			// Ctrl+C: exit silently
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("parse error: %w", err)
		}

		if err := OutputEvent(parseFormat, ev, os.Stdout); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}

	return nil
}

// parseTimeRange parses since and until strings into time.Time values.
func parseTimeRange(since, until string) (time.Time, time.Time, error) {
	var sinceTime, untilTime time.Time
	var err error

	if since != "" {
		sinceTime, err = time.Parse(time.RFC3339, since)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --since format: %w (expected RFC3339, e.g., 2024-01-15T12:00:00Z)", err)
		}
	}

	if until != "" {
		untilTime, err = time.Parse(time.RFC3339, until)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --until format: %w (expected RFC3339, e.g., 2024-01-15T12:00:00Z)", err)
		}
	}

	// Validate that since is before until
	if !sinceTime.IsZero() && !untilTime.IsZero() && sinceTime.After(untilTime) {
		return time.Time{}, time.Time{}, fmt.Errorf("--since must be before --until")
	}

	return sinceTime, untilTime, nil
}
