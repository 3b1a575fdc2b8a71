package pedlog

import (
	"bufio"
	"context"
	"errors"
	"iter"
	"os"

	"github.com/pedlog/pedlog-go/internal/classifier"
)

// ParseLine parses a single chat log line into an Event.
//
// Return values:
//   - (Event, nil): Successfully parsed event
//   - (nil, nil): Line doesn't match any known event pattern (not an error)
//   - (nil, error): Line partially matches but is malformed
//
// Example:
//
//	line := "2024-05-01 12:00:00 [System] [] You inflicted 31.5 points of damage"
//	ev, err := pedlog.ParseLine(line)
//	if err != nil {
//	    log.Printf("parse error: %v", err)
//	} else if ev != nil {
//	    fmt.Printf("event: %s\n", ev.Kind())
//	}
//	// ev == nil && err == nil means line is not a recognized event
func ParseLine(line string, opts ...ParseOption) (Event, error) {
	cfg := applyParseOptions(opts)
	return classifier.New(cfg.localPlayer).Classify(line)
}

// ParseFile parses a chat log file and returns an iterator over events.
// The file is opened lazily on first iteration, so the returned iterator
// is cheap to create but must be consumed to release resources.
//
// The iterator yields (Event, error) pairs. When an error occurs:
//   - File open errors: yields (nil, error) once and stops
//   - Parse errors: skips the line by default, or stops if WithParseStopOnError is set
//   - Context cancellation: yields (nil, ctx.Err()) and stops
//
// Example:
//
//	for ev, err := range pedlog.ParseFile(ctx, "chat.log") {
//	    if err != nil {
//	        log.Printf("error: %v", err)
//	        break
//	    }
//	    fmt.Printf("event: %+v\n", ev)
//	}
func ParseFile(ctx context.Context, path string, opts ...ParseOption) iter.Seq2[Event, error] {
	if path == "" {
		return func(yield func(Event, error) bool) {
			yield(nil, errors.New("pedlog: path required"))
		}
	}

	cfg := applyParseOptions(opts)

	return func(yield func(Event, error) bool) {
		file, err := os.Open(path)
		if err != nil {
			yield(nil, err)
			return
		}
		defer file.Close()

		cl := classifier.New(cfg.localPlayer)

		scanner := bufio.NewScanner(file)
		// Increase buffer size for long lines
		buf := make([]byte, 0, 64*1024)
		scanner.Buffer(buf, 512*1024)

		for scanner.Scan() {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			line := scanner.Text()
			ev, err := cl.Classify(line)
			if err != nil {
				if cfg.stopOnError {
					yield(nil, &ParseError{Line: line, Err: err})
					return
				}
				// Skip malformed lines by default
				continue
			}
			if ev == nil {
				continue // Not a recognized event
			}

			if cfg.filter != nil && !cfg.filter.Allows(ev.Kind()) {
				continue
			}

			if !cfg.since.IsZero() && ev.Time().Before(cfg.since) {
				continue
			}
			if !cfg.until.IsZero() && !ev.Time().Before(cfg.until) {
				return // Past the time window, stop iteration
			}

			if !yield(ev, nil) {
				return // Consumer requested stop (break)
			}
		}

		if err := scanner.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// ParseFileAll is a convenience function that parses a log file and collects
// all events into a slice. Stops on first error and returns events collected so far.
//
// For large files, consider using ParseFile directly to avoid loading all events
// into memory at once.
func ParseFileAll(ctx context.Context, path string, opts ...ParseOption) ([]Event, error) {
	seq := ParseFile(ctx, path, opts...)
	events := make([]Event, 0, 256)

	for ev, err := range seq {
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// ParseFiles parses several chat log files in the exact order given,
// yielding their events as one sequence. Each file runs to completion
// before the next begins.
//
// File open errors skip to the next file by default, or stop the
// sequence when WithParseStopOnError is set.
func ParseFiles(ctx context.Context, paths []string, opts ...ParseOption) iter.Seq2[Event, error] {
	cfg := applyParseOptions(opts)

	return func(yield func(Event, error) bool) {
		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			for ev, err := range ParseFile(ctx, path, opts...) {
				if err != nil {
					if cfg.stopOnError {
						yield(nil, err)
						return
					}
					// Skip to next file on error
					break
				}
				if !yield(ev, nil) {
					return // Consumer requested stop
				}
			}
		}
	}
}
