package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pedlog/pedlog-go/internal/config"
	"github.com/pedlog/pedlog-go/internal/gamedata"
	"github.com/pedlog/pedlog-go/internal/store"
	"github.com/pedlog/pedlog-go/pkg/pedlog"
	"github.com/pedlog/pedlog-go/pkg/pedlog/loadout"
	"github.com/pedlog/pedlog-go/pkg/pedlog/session"
)

var (
	// tail flags
	tailLogPath      string
	tailFormat       string
	tailIncludeKinds []string
	tailExcludeKinds []string
	tailFromStart    bool
	tailPlayer       string
	tailActivity     string
	tailDBPath       string
	tailCostPerShot  float64
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Monitor the chat log and output events",
	Long: `Monitor the Entropia Universe chat log in real-time and output parsed
events.

Events are output as JSON Lines by default (one JSON object per line),
which makes it easy to process with tools like jq.

With --session, pedlog also tracks a hunting/crafting/mining session:
cost per shot, total return, kills and globals. The running summary is
printed when the command exits.

Examples:
  # Monitor with default settings (auto-detect chat log)
  pedlog tail

  # Specify the chat log
  pedlog tail --log "C:\Users\me\Documents\Entropia Universe\chat.log"

  # Output only loot and global events
  pedlog tail --include-kinds loot,global

  # Human-readable output
  pedlog tail --format pretty

  # Track a hunting session, persisting to sqlite
  pedlog tail --session hunting --player "Jane Doe Hunter" --db ~/pedlog.db

  # Pipe to jq for filtering
  pedlog tail | jq 'select(.kind == "loot")'`,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().StringVarP(&tailLogPath, "log", "l", "",
		"Chat log file (auto-detected if not specified)")
	tailCmd.Flags().StringVarP(&tailFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	tailCmd.Flags().StringSliceVar(&tailIncludeKinds, "include-kinds", nil,
		"Event kinds to include (comma-separated: combat,loot,skill,global)")
	tailCmd.Flags().StringSliceVar(&tailExcludeKinds, "exclude-kinds", nil,
		"Event kinds to exclude (comma-separated)")
	tailCmd.Flags().BoolVar(&tailFromStart, "from-start", false,
		"Read the chat log from the beginning before tailing")
	tailCmd.Flags().StringVar(&tailPlayer, "player", "",
		"Local avatar name (overrides config)")
	tailCmd.Flags().StringVar(&tailActivity, "session", "",
		"Track a session: hunting, crafting, mining")
	tailCmd.Flags().StringVar(&tailDBPath, "db", "",
		"SQLite database for events and summaries (overrides config)")
	tailCmd.Flags().Float64Var(&tailCostPerShot, "cost-per-shot", -1,
		"Cost per shot in PED (default: derived from the configured loadout)")

	registerEventKindCompletion(tailCmd, "include-kinds")
	registerEventKindCompletion(tailCmd, "exclude-kinds")
	registerActivityCompletion(tailCmd, "session")
	registerFormatCompletion(tailCmd, "format")
}

func runTail(cmd *cobra.Command, args []string) error {
	if !ValidFormats[tailFormat] {
		return fmt.Errorf("invalid format %q: must be one of: jsonl, pretty", tailFormat)
	}

	includes, err := NormalizeEventKinds(tailIncludeKinds)
	if err != nil {
		return err
	}
	excludes, err := NormalizeEventKinds(tailExcludeKinds)
	if err != nil {
		return err
	}
	if err := RejectOverlap(includes, excludes); err != nil {
		return err
	}

	activity, err := parseActivity(tailActivity)
	if err != nil {
		return err
	}

	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}

	player := tailPlayer
	if player == "" {
		player = fileCfg.PlayerName()
	}

	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watchOpts := []pedlog.WatchOption{
		pedlog.WithPollInterval(fileCfg.PollInterval()),
		pedlog.WithKillWindow(fileCfg.KillGap(), fileCfg.KillStale()),
	}

	logPath := tailLogPath
	if logPath == "" {
		logPath = fileCfg.LogPath()
	}
	if logPath != "" {
		watchOpts = append(watchOpts, pedlog.WithLogPath(logPath))
	}
	if tailFromStart {
		watchOpts = append(watchOpts, pedlog.WithFromStart())
	}
	if player != "" {
		watchOpts = append(watchOpts, pedlog.WithLocalPlayer(player))
	}

	// Setup logger based on verbose flag
	if verbose {
		watchOpts = append(watchOpts, pedlog.WithLogger(slog.Default()))
	}

	// Use library-level filtering (more efficient than CLI-side filtering)
	if len(includes) > 0 {
		watchOpts = append(watchOpts, pedlog.WithIncludeKinds(includes...))
	}
	if len(excludes) > 0 {
		watchOpts = append(watchOpts, pedlog.WithExcludeKinds(excludes...))
	}

	// Optional sqlite persistence
	dbPath := tailDBPath
	if dbPath == "" {
		dbPath = fileCfg.DBPath()
	}
	var db *store.Store
	if dbPath != "" {
		db, err = store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		catalog := gamedata.Default()
		if err := db.SeedCatalog(ctx, catalog.Weapons(), catalog.Attachments()); err != nil {
			return fmt.Errorf("seeding catalog: %w", err)
		}
		watchOpts = append(watchOpts, pedlog.WithEventSink(db))
	}

	tracking := activity != ""
	if tracking {
		cost := tailCostPerShot
		if cost < 0 {
			cost, err = configuredCostPerShot(ctx, fileCfg, db)
			if err != nil {
				return err
			}
		}
		watchOpts = append(watchOpts, pedlog.WithSession(activity, cost))
		if len(fileCfg.Markup) > 0 {
			watchOpts = append(watchOpts, pedlog.WithMarkup(fileCfg.Markup))
		}
		if db != nil {
			watchOpts = append(watchOpts,
				pedlog.WithSummarySink(db),
				pedlog.WithSummaryInterval(fileCfg.SummaryInterval()))
		}
	}

	watcher, err := pedlog.NewWatcher(watchOpts...)
	if err != nil {
		return err
	}
	defer watcher.Close()

	events, errs := watcher.Watch(ctx)

	// Output loop
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return finishTail(watcher, tracking)
			}
			if err := OutputEvent(tailFormat, ev, os.Stdout); err != nil {
				return fmt.Errorf("output error: %w", err)
			}

		case err, ok := <-errs:
			if !ok {
				return finishTail(watcher, tracking)
			}
			// Always output errors to stderr
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)

		case <-ctx.Done():
			return finishTail(watcher, tracking)
		}
	}
}

// finishTail closes the watcher and prints the session summary when
// tracking was on.
func finishTail(watcher *pedlog.Watcher, tracking bool) error {
	watcher.Close()
	if !tracking {
		return nil
	}
	stats, ok := watcher.SessionStats()
	if !ok {
		return nil
	}
	printSummary(os.Stderr, stats)
	return nil
}

// printSummary renders a session report.
func printSummary(w *os.File, stats session.Stats) {
	fmt.Fprintf(w, "\nsession %s (%s)\n", stats.SessionID, stats.Activity)
	if !stats.StartTime.IsZero() {
		end := stats.EndTime
		if end.IsZero() {
			end = time.Now()
		}
		fmt.Fprintf(w, "  duration:     %s\n", end.Sub(stats.StartTime).Round(time.Second))
	}
	fmt.Fprintf(w, "  shots taken:  %d\n", stats.ShotsTaken)
	fmt.Fprintf(w, "  items looted: %d\n", stats.ItemsLooted)
	fmt.Fprintf(w, "  kills:        %d\n", stats.Kills)
	fmt.Fprintf(w, "  globals:      %d (HOFs: %d)\n", stats.Globals, stats.HOFs)
	fmt.Fprintf(w, "  cost:         %.4f PED\n", stats.CostTotal)
	fmt.Fprintf(w, "  return:       %.4f PED\n", stats.ReturnTotal)
	if stats.TotalMarkup != stats.ReturnTotal {
		fmt.Fprintf(w, "  with markup:  %.4f PED\n", stats.TotalMarkup)
	}
	fmt.Fprintf(w, "  return rate:  %.2f%%\n", stats.ROI())
}

// ValidActivityNames returns the accepted activity values in the order
// parseActivity accepts them.
func ValidActivityNames() []string {
	return []string{"hunting", "crafting", "mining"}
}

// parseActivity validates the --session flag.
func parseActivity(v string) (session.Activity, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return "", nil
	case "hunting":
		return session.ActivityHunting, nil
	case "crafting":
		return session.ActivityCrafting, nil
	case "mining":
		return session.ActivityMining, nil
	default:
		return "", fmt.Errorf("unknown activity %q (valid: hunting, crafting, mining)", v)
	}
}

// configuredCostPerShot resolves the config loadout against the weapon
// catalog. The sqlite catalog wins when a database is open, so user
// customizations apply.
func configuredCostPerShot(ctx context.Context, fileCfg config.FileConfig, db *store.Store) (float64, error) {
	if fileCfg.Loadout.Weapon == "" {
		return 0, fmt.Errorf("no loadout configured: set [loadout] weapon in the config or pass --cost-per-shot")
	}

	var repo loadout.Repository = gamedata.Default()
	if db != nil {
		repo = db
	}
	stats, err := loadout.Resolve(ctx, repo, fileCfg.Loadout)
	if err != nil {
		return 0, fmt.Errorf("resolving loadout: %w", err)
	}
	return stats.CostPerShot, nil
}
