package pedlog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pedlog/pedlog-go/pkg/pedlog"
	"github.com/pedlog/pedlog-go/pkg/pedlog/event"
	"github.com/pedlog/pedlog-go/pkg/pedlog/session"
)

// recordingSink collects submitted events for inspection.
type recordingSink struct {
	mu      sync.Mutex
	records []pedlog.EventRecord
}

func (s *recordingSink) SubmitEvent(rec pedlog.EventRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

func (s *recordingSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func TestNewWatcherMissingChatLog(t *testing.T) {
	t.Setenv("PEDLOG_CHATLOG", "")
	t.Setenv("HOME", t.TempDir())
	t.Setenv("USERPROFILE", "")

	_, err := pedlog.NewWatcher()
	if err == nil {
		t.Fatal("NewWatcher() expected error without a chat log")
	}
	if !errors.Is(err, pedlog.ErrChatLogNotFound) {
		t.Errorf("NewWatcher() error = %v, want %v", err, pedlog.ErrChatLogNotFound)
	}
}

func TestNewWatcherNegativePollInterval(t *testing.T) {
	_, err := pedlog.NewWatcher(
		pedlog.WithLogPath(filepath.Join(t.TempDir(), "chat.log")),
		pedlog.WithPollInterval(-time.Second),
	)
	if err == nil {
		t.Error("NewWatcher() expected error for negative poll interval")
	}
}

func TestWatcherReceivesEvents(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "chat.log")

	f, err := os.Create(logFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	watcher, err := pedlog.NewWatcher(
		pedlog.WithLogPath(logFile),
		pedlog.WithPollInterval(20*time.Millisecond),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer watcher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, errs := watcher.Watch(ctx)

	// Give watcher time to record the end-of-file position
	time.Sleep(100 * time.Millisecond)

	f.WriteString("2024-05-01 12:00:00 [System] [] You inflicted 31.5 points of damage\n")
	f.Sync()

	select {
	case ev := <-events:
		combat, ok := ev.(event.Combat)
		if !ok {
			t.Fatalf("got %T, want event.Combat", ev)
		}
		if combat.Damage != 31.5 {
			t.Errorf("Damage = %v, want 31.5", combat.Damage)
		}
	case err := <-errs:
		t.Fatalf("unexpected error: %v", err)
	case <-ctx.Done():
		t.Fatal("timeout waiting for event")
	}
}

func TestWatcherKindFilter(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "chat.log")

	f, err := os.Create(logFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	watcher, err := pedlog.NewWatcher(
		pedlog.WithLogPath(logFile),
		pedlog.WithPollInterval(20*time.Millisecond),
		pedlog.WithIncludeKinds(pedlog.KindLoot),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer watcher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, errs := watcher.Watch(ctx)

	time.Sleep(100 * time.Millisecond)

	f.WriteString("2024-05-01 12:00:00 [System] [] You inflicted 31.5 points of damage\n")
	f.WriteString("2024-05-01 12:00:01 [System] [] You received Shrapnel x (100) Value: 0.01 PED\n")
	f.Sync()

	select {
	case ev := <-events:
		// The combat event must have been filtered out.
		if ev.Kind() != pedlog.KindLoot {
			t.Errorf("Kind() = %v, want %v", ev.Kind(), pedlog.KindLoot)
		}
	case err := <-errs:
		t.Fatalf("unexpected error: %v", err)
	case <-ctx.Done():
		t.Fatal("timeout waiting for event")
	}
}

func TestWatcherSessionAccounting(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "chat.log")

	f, err := os.Create(logFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	sink := &recordingSink{}
	const costPerShot = 0.1

	watcher, err := pedlog.NewWatcher(
		pedlog.WithLogPath(logFile),
		pedlog.WithPollInterval(20*time.Millisecond),
		pedlog.WithLocalPlayer("Jane Doe Hunter"),
		pedlog.WithSession(session.ActivityHunting, costPerShot),
		pedlog.WithEventSink(sink),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer watcher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, errs := watcher.Watch(ctx)

	time.Sleep(100 * time.Millisecond)

	// Two loot drops within the kill gap plus one overheard global:
	// one kill, two looted items, the global counted but not the cost.
	f.WriteString("2024-05-01 12:00:00 [System] [] You received Animal Muscle Oil x (3) Value: 1.25 PED\n")
	f.WriteString("2024-05-01 12:00:00 [System] [] You received Shrapnel x (1000) Value: 0.10 PED\n")
	f.WriteString("2024-05-01 12:00:05 [Globals] [] John Doe Hunter killed a creature (Atrox Young) with a value of 55 PED!\n")
	f.Sync()

	got := 0
	for got < 3 {
		select {
		case <-events:
			got++
		case err := <-errs:
			t.Fatalf("unexpected error: %v", err)
		case <-ctx.Done():
			t.Fatalf("timeout after %d events", got)
		}
	}

	stats, ok := watcher.SessionStats()
	if !ok {
		t.Fatal("SessionStats() should be available with tracking enabled")
	}
	if stats.SessionID == "" {
		t.Error("SessionID should be assigned")
	}
	if stats.ItemsLooted != 2 {
		t.Errorf("ItemsLooted = %d, want 2", stats.ItemsLooted)
	}
	if stats.Kills != 1 {
		t.Errorf("Kills = %d, want 1", stats.Kills)
	}
	if stats.ReturnTotal != 1.35 {
		t.Errorf("ReturnTotal = %v, want 1.35", stats.ReturnTotal)
	}
	if stats.Globals != 1 {
		t.Errorf("Globals = %d, want 1", stats.Globals)
	}
	if stats.CostTotal != 0 {
		t.Errorf("CostTotal = %v, want 0 (no shots fired)", stats.CostTotal)
	}

	if sink.len() != 3 {
		t.Errorf("sink received %d records, want 3", sink.len())
	}
}

// recordingCapture collects globals attributed to the local player.
type recordingCapture struct {
	mu      sync.Mutex
	globals []event.Global
}

func (c *recordingCapture) CaptureGlobal(ev event.Global) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.globals = append(c.globals, ev)
}

func (c *recordingCapture) snapshot() []event.Global {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]event.Global(nil), c.globals...)
}

func TestWatcherEvidenceCapture(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "chat.log")

	f, err := os.Create(logFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	capture := &recordingCapture{}

	watcher, err := pedlog.NewWatcher(
		pedlog.WithLogPath(logFile),
		pedlog.WithPollInterval(20*time.Millisecond),
		pedlog.WithLocalPlayer("Jane Doe Hunter"),
		pedlog.WithSession(session.ActivityHunting, 0),
		pedlog.WithEvidenceCapture(capture),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer watcher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, errs := watcher.Watch(ctx)

	time.Sleep(100 * time.Millisecond)

	// Only the local player's global triggers a capture.
	f.WriteString("2024-05-01 12:00:00 [Globals] [] Jane Doe Hunter killed a creature (Atrox Young) with a value of 120 PED!\n")
	f.WriteString("2024-05-01 12:00:01 [Globals] [] John Doe Hunter killed a creature (Atrox Young) with a value of 55 PED!\n")
	f.Sync()

	got := 0
	for got < 2 {
		select {
		case <-events:
			got++
		case err := <-errs:
			t.Fatalf("unexpected error: %v", err)
		case <-ctx.Done():
			t.Fatalf("timeout after %d events", got)
		}
	}

	captured := capture.snapshot()
	if len(captured) != 1 {
		t.Fatalf("captured %d globals, want 1 (local player only)", len(captured))
	}
	if captured[0].Player != "Jane Doe Hunter" {
		t.Errorf("captured player = %q, want %q", captured[0].Player, "Jane Doe Hunter")
	}
	if captured[0].Value != 120 {
		t.Errorf("captured value = %v, want 120", captured[0].Value)
	}
}

func TestWatcherMarkup(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "chat.log")

	f, err := os.Create(logFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	watcher, err := pedlog.NewWatcher(
		pedlog.WithLogPath(logFile),
		pedlog.WithPollInterval(20*time.Millisecond),
		pedlog.WithSession(session.ActivityHunting, 0),
		pedlog.WithMarkup(map[string]float64{"Animal Muscle Oil": 1.4}),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer watcher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, errs := watcher.Watch(ctx)

	time.Sleep(100 * time.Millisecond)

	f.WriteString("2024-05-01 12:00:00 [System] [] You received Animal Muscle Oil x (3) Value: 1.00 PED\n")
	f.WriteString("2024-05-01 12:00:00 [System] [] You received Shrapnel x (1000) Value: 0.10 PED\n")
	f.Sync()

	got := 0
	for got < 2 {
		select {
		case <-events:
			got++
		case err := <-errs:
			t.Fatalf("unexpected error: %v", err)
		case <-ctx.Done():
			t.Fatalf("timeout after %d events", got)
		}
	}

	stats, ok := watcher.SessionStats()
	if !ok {
		t.Fatal("SessionStats() should be available with tracking enabled")
	}
	if stats.ReturnTotal != 1.10 {
		t.Errorf("ReturnTotal = %v, want 1.10", stats.ReturnTotal)
	}
	// 1.00*1.4 + 0.10 at TT for the unconfigured item.
	if want := 1.50; stats.TotalMarkup < want-1e-9 || stats.TotalMarkup > want+1e-9 {
		t.Errorf("TotalMarkup = %v, want %v", stats.TotalMarkup, want)
	}
}

func TestWatcherContextCancel(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "chat.log")
	if err := os.WriteFile(logFile, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	watcher, err := pedlog.NewWatcher(pedlog.WithLogPath(logFile))
	if err != nil {
		t.Fatal(err)
	}
	defer watcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	events, _ := watcher.Watch(ctx)

	cancel()

	select {
	case _, ok := <-events:
		if ok {
			t.Error("expected events channel to be closed")
		}
	case <-time.After(2 * time.Second):
		t.Error("timeout waiting for events channel to close")
	}
}

func TestWatcherClose(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "chat.log")
	if err := os.WriteFile(logFile, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	watcher, err := pedlog.NewWatcher(pedlog.WithLogPath(logFile))
	if err != nil {
		t.Fatal(err)
	}

	// Close() should be safe to call multiple times
	if err := watcher.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := watcher.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestWatcherCloseStopsGoroutine(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "chat.log")
	if err := os.WriteFile(logFile, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	watcher, err := pedlog.NewWatcher(pedlog.WithLogPath(logFile))
	if err != nil {
		t.Fatal(err)
	}

	events, _ := watcher.Watch(context.Background())

	time.Sleep(50 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		watcher.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close() timed out")
	}

	select {
	case _, ok := <-events:
		if ok {
			t.Error("expected events channel to be closed")
		}
	case <-time.After(time.Second):
		t.Error("timeout waiting for events channel to close")
	}
}

func TestWatcherWatchAfterClose(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "chat.log")
	if err := os.WriteFile(logFile, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	watcher, err := pedlog.NewWatcher(pedlog.WithLogPath(logFile))
	if err != nil {
		t.Fatal(err)
	}
	watcher.Close()

	events, errs := watcher.Watch(context.Background())

	// Both channels come back closed.
	if _, ok := <-events; ok {
		t.Error("expected closed events channel")
	}
	if _, ok := <-errs; ok {
		t.Error("expected closed errs channel")
	}
}

func TestWatcherFromStart(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "chat.log")
	seed := "2024-05-01 12:00:00 [System] [] You inflicted 31.5 points of damage\n"
	if err := os.WriteFile(logFile, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	watcher, err := pedlog.NewWatcher(
		pedlog.WithLogPath(logFile),
		pedlog.WithPollInterval(20*time.Millisecond),
		pedlog.WithFromStart(),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer watcher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, errs := watcher.Watch(ctx)

	select {
	case ev := <-events:
		if ev.Kind() != pedlog.KindCombat {
			t.Errorf("Kind() = %v, want %v", ev.Kind(), pedlog.KindCombat)
		}
	case err := <-errs:
		t.Fatalf("unexpected error: %v", err)
	case <-ctx.Done():
		t.Fatal("timeout waiting for replayed event")
	}
}
