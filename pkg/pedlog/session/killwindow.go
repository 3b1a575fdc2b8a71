package session

import "time"

// Kill grouping defaults. A creature's loot arrives as a burst of lines
// within a fraction of a second; loot separated by more than the gap
// belongs to a different kill.
const (
	// DefaultKillGap is the grouping threshold between loot lines of
	// the same kill. Tuned against real hunting logs.
	DefaultKillGap = 600 * time.Millisecond

	// DefaultKillStale is the horizon after which remembered loot
	// timestamps are purged.
	DefaultKillStale = 10 * time.Second
)

// KillTracker decides whether a loot event starts a new kill by keeping
// a short window of recent loot timestamps. It is not safe for
// concurrent use; the Accumulator is its single writer.
type KillTracker struct {
	gap   time.Duration
	stale time.Duration
	times []time.Time
}

// NewKillTracker creates a tracker with the given grouping gap and
// staleness horizon. Non-positive values select the defaults.
func NewKillTracker(gap, stale time.Duration) *KillTracker {
	if gap <= 0 {
		gap = DefaultKillGap
	}
	if stale <= 0 {
		stale = DefaultKillStale
	}
	return &KillTracker{gap: gap, stale: stale}
}

// ObserveLoot records a loot timestamp and reports whether it starts a
// new kill: true exactly when no previously observed loot lies within
// the grouping gap of ts.
func (k *KillTracker) ObserveLoot(ts time.Time) bool {
	k.purge(ts)

	newKill := true
	for _, prev := range k.times {
		if absDuration(ts.Sub(prev)) <= k.gap {
			newKill = false
			break
		}
	}
	k.times = append(k.times, ts)
	return newKill
}

// Reset forgets all observed loot timestamps.
func (k *KillTracker) Reset() {
	k.times = nil
}

// purge drops timestamps older than the staleness horizon relative to now.
func (k *KillTracker) purge(now time.Time) {
	kept := k.times[:0]
	for _, t := range k.times {
		if now.Sub(t) <= k.stale {
			kept = append(kept, t)
		}
	}
	k.times = kept
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
