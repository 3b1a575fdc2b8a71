package pedlog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pedlog/pedlog-go/internal/classifier"
	"github.com/pedlog/pedlog-go/internal/logfinder"
	"github.com/pedlog/pedlog-go/internal/tailer"
	"github.com/pedlog/pedlog-go/pkg/pedlog/session"
)

// Watcher monitors an Entropia Universe chat log, classifies new lines
// into events and optionally accumulates them into a session.
//
// All log reading and classification happens on a single goroutine, so
// events are delivered in strict file order.
type Watcher struct {
	cfg     *watchConfig
	logPath string
	acc     *session.Accumulator

	mu       sync.Mutex
	closed   bool
	cancel   context.CancelFunc // cancel func to stop the goroutine
	doneCh   chan struct{}      // signals when goroutine has exited
	watching bool               // true if Watch() has been called
}

// NewWatcher creates a watcher.
// Resolves the chat log path and validates options.
// Does NOT start goroutines (cheap to call).
func NewWatcher(opts ...WatchOption) (*Watcher, error) {
	cfg := applyWatchOptions(opts)

	if cfg.pollInterval < 0 {
		return nil, fmt.Errorf("poll interval must be non-negative, got %v", cfg.pollInterval)
	}

	logPath, err := logfinder.FindChatLog(cfg.logPath)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		cfg:     cfg,
		logPath: logPath,
	}
	if cfg.track {
		kills := session.NewKillTracker(cfg.killGap, cfg.killStale)
		w.acc = session.NewAccumulator(cfg.localPlayer, kills)
		w.acc.SetMarkupTable(cfg.markup)
		if cfg.evidence != nil {
			w.acc.SetEvidenceCapture(cfg.evidence)
		}
	}
	return w, nil
}

// SessionID returns the active session identifier, or empty when
// session tracking is disabled or not yet started.
func (w *Watcher) SessionID() string {
	if w.acc == nil {
		return ""
	}
	return w.acc.Snapshot().SessionID
}

// SessionStats returns a snapshot of the tracked session.
// The second return is false when session tracking is disabled.
func (w *Watcher) SessionStats() (session.Stats, bool) {
	if w.acc == nil {
		return session.Stats{}, false
	}
	return w.acc.Snapshot(), true
}

// Watch starts watching and returns channels.
// Starts internal goroutines here.
// When ctx is cancelled, channels are closed automatically.
// Both channels close on ctx.Done() or fatal error.
// Watch can only be called once per Watcher instance.
func (w *Watcher) Watch(ctx context.Context) (<-chan Event, <-chan error) {
	w.mu.Lock()
	if w.closed || w.watching {
		w.mu.Unlock()
		// Return closed channels if already closed or watching
		eventCh := make(chan Event)
		errCh := make(chan error)
		close(eventCh)
		close(errCh)
		return eventCh, errCh
	}
	w.watching = true

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	eventCh := make(chan Event)
	errCh := make(chan error)

	go w.run(ctx, eventCh, errCh)

	return eventCh, errCh
}

// Close stops the watcher and releases resources.
// Safe to call multiple times.
// Blocks until the goroutine has exited.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true

	if w.cancel != nil {
		w.cancel()
	}
	doneCh := w.doneCh
	w.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	return nil
}

func (w *Watcher) run(ctx context.Context, eventCh chan<- Event, errCh chan<- error) {
	defer close(w.doneCh) // Signal that goroutine has exited
	defer close(eventCh)
	defer close(errCh)

	t := tailer.Open(w.logPath, w.cfg.fromStart)
	cl := classifier.New(w.cfg.localPlayer)

	if w.acc != nil {
		id := w.acc.Start(w.cfg.sessionID, w.cfg.activity, time.Now())
		w.logDebug("session started", "session_id", id, "activity", w.cfg.activity)
		defer w.stopSession()
	}

	// A filesystem notification wakes the poll loop early; the ticker
	// is the fallback for platforms and filesystems that miss events.
	wakeCh := w.watchWrites(ctx)

	pollInterval := w.cfg.pollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var summaryCh <-chan time.Time
	if w.acc != nil && w.cfg.summarySink != nil {
		summaryTicker := time.NewTicker(w.cfg.summaryInterval)
		defer summaryTicker.Stop()
		summaryCh = summaryTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx, t, cl, eventCh, errCh)
		case <-wakeCh:
			w.poll(ctx, t, cl, eventCh, errCh)
		case <-summaryCh:
			w.pushSummary(errCh)
		}
	}
}

// poll drains all complete new lines from the tailer and applies them
// in file order.
func (w *Watcher) poll(ctx context.Context, t *tailer.Tailer, cl *classifier.Classifier, eventCh chan<- Event, errCh chan<- error) {
	lines, err := t.Poll()
	if err != nil {
		sendError(errCh, fmt.Errorf("reading chat log: %w", err))
		return
	}
	for _, line := range lines {
		if ctx.Err() != nil {
			return
		}
		w.processLine(ctx, line, cl, eventCh, errCh)
	}
}

func (w *Watcher) processLine(ctx context.Context, line string, cl *classifier.Classifier, eventCh chan<- Event, errCh chan<- error) {
	ev, err := cl.Classify(line)
	if err != nil {
		sendError(errCh, &ParseError{Line: line, Err: err})
		return
	}
	if ev == nil {
		return // Not a recognized event
	}

	// Session accounting sees every event, before any output filter.
	if w.acc != nil {
		w.acc.OnEvent(ev, w.cfg.costPerShot)
	}

	if w.cfg.eventSink != nil {
		w.cfg.eventSink.SubmitEvent(EventRecord{
			SessionID: w.SessionID(),
			Timestamp: ev.Time(),
			Kind:      ev.Kind(),
			Raw:       ev.Raw(),
			Event:     ev,
		})
	}

	if w.cfg.filter != nil && !w.cfg.filter.Allows(ev.Kind()) {
		return
	}

	select {
	case eventCh <- ev:
	case <-ctx.Done():
	}
}

// watchWrites subscribes to filesystem notifications for the log's
// directory. Returns nil when fsnotify is unavailable, in which case
// the ticker alone drives polling.
func (w *Watcher) watchWrites(ctx context.Context) <-chan struct{} {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.logDebug("fsnotify unavailable, using poll only", "error", err)
		return nil
	}
	if err := fsw.Add(filepath.Dir(w.logPath)); err != nil {
		w.logDebug("fsnotify watch failed, using poll only", "error", err)
		fsw.Close()
		return nil
	}

	wakeCh := make(chan struct{}, 1)
	go func() {
		defer fsw.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if !strings.EqualFold(filepath.Clean(ev.Name), filepath.Clean(w.logPath)) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				select {
				case wakeCh <- struct{}{}:
				default:
				}
			case <-fsw.Errors:
				// Notification errors are harmless, the ticker still polls.
			}
		}
	}()
	return wakeCh
}

func (w *Watcher) pushSummary(errCh chan<- error) {
	stats := w.acc.Snapshot()
	if stats.SessionID == "" {
		return
	}
	if err := w.cfg.summarySink.UpsertSummary(stats); err != nil {
		sendError(errCh, fmt.Errorf("upserting session summary: %w", err))
	}
}

func (w *Watcher) stopSession() {
	stats, ok := w.acc.Stop(time.Now())
	if !ok {
		return
	}
	w.logDebug("session stopped", "session_id", stats.SessionID, "return_total", stats.ReturnTotal)
	if w.cfg.summarySink != nil {
		if err := w.cfg.summarySink.UpsertSummary(stats); err != nil {
			w.logDebug("final summary upsert failed", "error", err)
		}
	}
}

func (w *Watcher) logDebug(msg string, args ...any) {
	if w.cfg.logger != nil {
		w.cfg.logger.Debug(msg, args...)
	}
}

// sendError sends an error non-blocking.
func sendError(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
		// Drop error if channel is full
	}
}

// Watch is a convenience function that creates a watcher and starts watching.
// Returns error immediately for initialization failures.
func Watch(ctx context.Context, opts ...WatchOption) (<-chan Event, <-chan error, error) {
	w, err := NewWatcher(opts...)
	if err != nil {
		return nil, nil, err
	}
	events, errs := w.Watch(ctx)
	return events, errs, nil
}
