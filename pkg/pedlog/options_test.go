package pedlog

import (
	"testing"
	"time"

	"github.com/pedlog/pedlog-go/pkg/pedlog/session"
)

func TestWatchOptionDefaults(t *testing.T) {
	cfg := applyWatchOptions(nil)

	if cfg.pollInterval != DefaultPollInterval {
		t.Errorf("pollInterval = %v, want %v", cfg.pollInterval, DefaultPollInterval)
	}
	if cfg.summaryInterval != DefaultSummaryInterval {
		t.Errorf("summaryInterval = %v, want %v", cfg.summaryInterval, DefaultSummaryInterval)
	}
	if cfg.fromStart {
		t.Error("fromStart should default to false")
	}
	if cfg.track {
		t.Error("track should default to false")
	}
	if cfg.filter != nil {
		t.Error("filter should default to nil")
	}
}

func TestWatchOptionsApply(t *testing.T) {
	cfg := applyWatchOptions([]WatchOption{
		WithLogPath("/tmp/chat.log"),
		WithPollInterval(time.Second),
		WithFromStart(),
		WithLocalPlayer("Jane Doe Hunter"),
		WithSession(session.ActivityHunting, 0.0306),
		WithSessionID("abc-123"),
		WithKillWindow(700*time.Millisecond, 12*time.Second),
		WithSummaryInterval(2 * time.Second),
	})

	if cfg.logPath != "/tmp/chat.log" {
		t.Errorf("logPath = %q", cfg.logPath)
	}
	if cfg.pollInterval != time.Second {
		t.Errorf("pollInterval = %v", cfg.pollInterval)
	}
	if !cfg.fromStart {
		t.Error("fromStart not applied")
	}
	if cfg.localPlayer != "Jane Doe Hunter" {
		t.Errorf("localPlayer = %q", cfg.localPlayer)
	}
	if !cfg.track || cfg.activity != session.ActivityHunting {
		t.Errorf("session tracking = (%v, %v)", cfg.track, cfg.activity)
	}
	if cfg.costPerShot != 0.0306 {
		t.Errorf("costPerShot = %v", cfg.costPerShot)
	}
	if cfg.sessionID != "abc-123" {
		t.Errorf("sessionID = %q", cfg.sessionID)
	}
	if cfg.killGap != 700*time.Millisecond || cfg.killStale != 12*time.Second {
		t.Errorf("kill window = (%v, %v)", cfg.killGap, cfg.killStale)
	}
	if cfg.summaryInterval != 2*time.Second {
		t.Errorf("summaryInterval = %v", cfg.summaryInterval)
	}
}

func TestWatchOptionNilSafe(t *testing.T) {
	cfg := applyWatchOptions([]WatchOption{nil, WithFromStart(), nil})
	if !cfg.fromStart {
		t.Error("nil options should be skipped, not break the chain")
	}
}

func TestWithIncludeKindsLastCallWins(t *testing.T) {
	cfg := applyWatchOptions([]WatchOption{
		WithIncludeKinds(KindCombat),
		WithIncludeKinds(KindLoot),
	})

	if cfg.filter.Allows(KindCombat) {
		t.Error("first include call should be replaced by the second")
	}
	if !cfg.filter.Allows(KindLoot) {
		t.Error("last include call should take effect")
	}
}

func TestWithFilterExcludePrecedence(t *testing.T) {
	cfg := applyWatchOptions([]WatchOption{
		WithFilter([]Kind{KindLoot, KindGlobal}, []Kind{KindGlobal}),
	})

	if !cfg.filter.Allows(KindLoot) {
		t.Error("included kind should pass")
	}
	if cfg.filter.Allows(KindGlobal) {
		t.Error("excluded kind should be rejected despite include")
	}
}

func TestParseOptionDefaults(t *testing.T) {
	cfg := applyParseOptions(nil)

	if cfg.localPlayer != "" {
		t.Errorf("localPlayer = %q, want empty", cfg.localPlayer)
	}
	if cfg.stopOnError {
		t.Error("stopOnError should default to false")
	}
	if !cfg.since.IsZero() || !cfg.until.IsZero() {
		t.Error("time range should default to zero")
	}
}

func TestParseOptionsApply(t *testing.T) {
	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

	cfg := applyParseOptions([]ParseOption{
		WithParseLocalPlayer("Jane Doe Hunter"),
		WithParseTimeRange(since, until),
		WithParseStopOnError(true),
		WithParseIncludeKinds(KindLoot),
	})

	if cfg.localPlayer != "Jane Doe Hunter" {
		t.Errorf("localPlayer = %q", cfg.localPlayer)
	}
	if !cfg.since.Equal(since) || !cfg.until.Equal(until) {
		t.Errorf("time range = (%v, %v)", cfg.since, cfg.until)
	}
	if !cfg.stopOnError {
		t.Error("stopOnError not applied")
	}
	if cfg.filter.Allows(KindCombat) {
		t.Error("include filter not applied")
	}
}
