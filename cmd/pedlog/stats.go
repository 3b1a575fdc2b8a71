package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pedlog/pedlog-go/internal/logfinder"
	"github.com/pedlog/pedlog-go/pkg/pedlog"
	"github.com/pedlog/pedlog-go/pkg/pedlog/session"
)

var (
	// stats flags
	statsLogPath     string
	statsPlayer      string
	statsActivity    string
	statsCostPerShot float64
	statsSince       string
	statsUntil       string
	statsJSON        bool
)

var statsCmd = &cobra.Command{
	Use:   "stats [files...]",
	Short: "Replay chat logs into a session report",
	Long: `Replay chat log files through the session tracker and print the
resulting economics report: shots, cost, return, kills, globals and
return rate.

Examples:
  # Report over the auto-detected chat log
  pedlog stats --player "Jane Doe Hunter"

  # Report over specific files with an explicit cost per shot
  pedlog stats --cost-per-shot 0.0306 chat-2024-05.log

  # Restrict to a time window
  pedlog stats --since "2024-05-01T00:00:00Z" --until "2024-05-02T00:00:00Z"

  # Machine-readable output
  pedlog stats --json | jq .return_total`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVarP(&statsLogPath, "log", "l", "",
		"Chat log file (auto-detected if not specified)")
	statsCmd.Flags().StringVar(&statsPlayer, "player", "",
		"Local avatar name (overrides config)")
	statsCmd.Flags().StringVar(&statsActivity, "activity", "hunting",
		"Session activity: hunting, crafting, mining")
	statsCmd.Flags().Float64Var(&statsCostPerShot, "cost-per-shot", -1,
		"Cost per shot in PED (default: derived from the configured loadout)")
	statsCmd.Flags().StringVar(&statsSince, "since", "",
		"Only events at/after timestamp (RFC3339 format)")
	statsCmd.Flags().StringVar(&statsUntil, "until", "",
		"Only events before timestamp (RFC3339 format)")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false,
		"Output the report as JSON")

	registerActivityCompletion(statsCmd, "activity")
}

func runStats(cmd *cobra.Command, args []string) error {
	activity, err := parseActivity(statsActivity)
	if err != nil {
		return err
	}
	if activity == "" {
		return fmt.Errorf("--activity is required")
	}

	sinceTime, untilTime, err := parseTimeRange(statsSince, statsUntil)
	if err != nil {
		return err
	}

	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}

	player := statsPlayer
	if player == "" {
		player = fileCfg.PlayerName()
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cost := statsCostPerShot
	if cost < 0 {
		// A missing loadout is fine for a replay: cost stays zero and
		// the report shows pure return.
		if fileCfg.Loadout.Weapon != "" {
			cost, err = configuredCostPerShot(ctx, fileCfg, nil)
			if err != nil {
				return err
			}
		} else {
			cost = 0
		}
	}

	paths := args
	if len(paths) == 0 {
		logPath := statsLogPath
		if logPath == "" {
			logPath = fileCfg.LogPath()
		}
		logPath, err = logfinder.FindChatLog(logPath)
		if err != nil {
			return err
		}
		paths = []string{logPath}
	}

	opts := []pedlog.ParseOption{}
	if player != "" {
		opts = append(opts, pedlog.WithParseLocalPlayer(player))
	}
	if !sinceTime.IsZero() || !untilTime.IsZero() {
		opts = append(opts, pedlog.WithParseTimeRange(sinceTime, untilTime))
	}

	kills := session.NewKillTracker(fileCfg.KillGap(), fileCfg.KillStale())
	acc := session.NewAccumulator(player, kills)
	acc.SetMarkupTable(fileCfg.Markup)

	var started bool
	for ev, err := range pedlog.ParseFiles(ctx, paths, opts...) {
		if err != nil {
			return fmt.Errorf("parse error: %w", err)
		}
		if !started {
			acc.Start("", activity, ev.Time())
			started = true
		}
		acc.OnEvent(ev, cost)
	}

	if !started {
		fmt.Fprintln(os.Stderr, "no events found")
		return nil
	}

	stats := acc.Snapshot()
	if statsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(statsReport(stats))
	}
	printSummary(os.Stdout, stats)
	return nil
}

// statsReport augments the raw session stats with the derived return
// rate for JSON output.
func statsReport(stats session.Stats) map[string]any {
	return map[string]any{
		"session_id":   stats.SessionID,
		"activity":     stats.Activity,
		"start_time":   stats.StartTime,
		"shots_taken":  stats.ShotsTaken,
		"items_looted": stats.ItemsLooted,
		"kills":        stats.Kills,
		"globals":      stats.Globals,
		"hofs":         stats.HOFs,
		"cost_total":   stats.CostTotal,
		"return_total": stats.ReturnTotal,
		"total_markup": stats.TotalMarkup,
		"return_pct":   stats.ROI(),
	}
}
