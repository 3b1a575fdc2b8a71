package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pedlog/pedlog-go/pkg/pedlog/session"
)

func TestStatsReport(t *testing.T) {
	stats := session.Stats{
		SessionID:   "abc-123",
		Activity:    session.ActivityHunting,
		StartTime:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		ShotsTaken:  100,
		ItemsLooted: 40,
		Kills:       10,
		Globals:     1,
		HOFs:        0,
		CostTotal:   3.06,
		ReturnTotal: 2.75,
	}

	report := statsReport(stats)

	if report["session_id"] != "abc-123" {
		t.Errorf("session_id = %v, want abc-123", report["session_id"])
	}
	if report["shots_taken"] != 100 {
		t.Errorf("shots_taken = %v, want 100", report["shots_taken"])
	}
	pct, ok := report["return_pct"].(float64)
	if !ok {
		t.Fatalf("return_pct is %T, want float64", report["return_pct"])
	}
	want := 100 * 2.75 / 3.06
	if diff := pct - want; diff > 0.001 || diff < -0.001 {
		t.Errorf("return_pct = %v, want %v", pct, want)
	}
}

func TestRunStatsJSON(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	logFile := filepath.Join(t.TempDir(), "chat.log")
	body := "2024-05-01 12:00:00 [System] [] You received Animal Muscle Oil x (3) Value: 0.09 PED\n" +
		"2024-05-01 12:00:05 [Globals] [] Jane Doe Hunter killed a creature (Atrox Young) with a value of 52 PED!\n"
	if err := os.WriteFile(logFile, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	origActivity, origCost, origJSON := statsActivity, statsCostPerShot, statsJSON
	defer func() {
		statsActivity, statsCostPerShot, statsJSON = origActivity, origCost, origJSON
	}()
	statsActivity = "hunting"
	statsCostPerShot = 0.05
	statsJSON = true

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	runErr := runStats(statsCmd, []string{logFile})
	w.Close()
	os.Stdout = old

	if runErr != nil {
		t.Fatalf("runStats() error = %v", runErr)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatal(err)
	}

	var report map[string]any
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if got := report["activity"]; got != "hunting" {
		t.Errorf("activity = %v, want hunting", got)
	}
	if got := report["items_looted"]; got != float64(1) {
		t.Errorf("items_looted = %v, want 1", got)
	}
	if got := report["globals"]; got != float64(1) {
		t.Errorf("globals = %v, want 1", got)
	}
	if got := report["return_total"]; got != 0.09 {
		t.Errorf("return_total = %v, want 0.09", got)
	}
}

func TestRunStatsInvalidActivity(t *testing.T) {
	origActivity := statsActivity
	defer func() { statsActivity = origActivity }()
	statsActivity = "fishing"

	if err := runStats(statsCmd, nil); err == nil {
		t.Fatal("expected error for invalid activity, got nil")
	}
}
