package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pedlog/pedlog-go/internal/store"
)

var sessionsDBPath string

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored session summaries",
	Long: `List the session summaries stored in the sqlite database, most
recent first.

Examples:
  pedlog sessions --db ~/pedlog.db`,
	RunE: runSessions,
}

func init() {
	sessionsCmd.Flags().StringVar(&sessionsDBPath, "db", "",
		"SQLite database with stored sessions (overrides config)")
}

func runSessions(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}

	dbPath := sessionsDBPath
	if dbPath == "" {
		dbPath = fileCfg.DBPath()
	}
	if dbPath == "" {
		return fmt.Errorf("no database configured: pass --db or set [database] path in the config")
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	summaries, err := db.ListSummaries(context.Background())
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Fprintln(os.Stderr, "no sessions stored")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tACTIVITY\tSTARTED\tDURATION\tCOST\tRETURN\tRETURN%\tKILLS\tGLOBALS")
	for _, st := range summaries {
		duration := "-"
		if !st.EndTime.IsZero() {
			duration = st.EndTime.Sub(st.StartTime).Round(time.Second).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%.2f\t%.1f\t%d\t%d\n",
			st.SessionID,
			st.Activity,
			st.StartTime.Format("2006-01-02 15:04"),
			duration,
			st.CostTotal,
			st.ReturnTotal,
			st.ROI(),
			st.Kills,
			st.Globals,
		)
	}
	return tw.Flush()
}
