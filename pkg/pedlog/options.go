package pedlog

import (
	"log/slog"
	"time"

	"github.com/pedlog/pedlog-go/pkg/pedlog/session"
)

// DefaultPollInterval is how often the watcher polls the chat log for
// new lines when no option overrides it.
const DefaultPollInterval = 500 * time.Millisecond

// DefaultSummaryInterval is how often the watcher pushes a session
// summary to the summary sink.
const DefaultSummaryInterval = 5 * time.Second

// WatchOption configures Watch behavior using the functional options pattern.
type WatchOption func(*watchConfig)

// watchConfig holds internal configuration for the watcher.
type watchConfig struct {
	logPath      string
	pollInterval time.Duration
	fromStart    bool
	localPlayer  string

	track       bool
	activity    session.Activity
	sessionID   string
	costPerShot float64
	killGap     time.Duration
	killStale   time.Duration
	markup      map[string]float64
	evidence    session.EvidenceCapture

	eventSink       EventSink
	summarySink     SummarySink
	summaryInterval time.Duration

	logger *slog.Logger
	filter *compiledFilter
}

// defaultWatchConfig returns a watchConfig with sensible defaults.
func defaultWatchConfig() *watchConfig {
	return &watchConfig{
		pollInterval:    DefaultPollInterval,
		summaryInterval: DefaultSummaryInterval,
	}
}

// applyWatchOptions applies functional options to a watchConfig.
func applyWatchOptions(opts []WatchOption) *watchConfig {
	cfg := defaultWatchConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithLogPath sets the chat log file to watch.
// If not set, auto-detects from default install locations.
// Can also be set via the PEDLOG_CHATLOG environment variable.
func WithLogPath(path string) WatchOption {
	return func(c *watchConfig) {
		c.logPath = path
	}
}

// WithPollInterval sets how often to check the chat log for new lines.
// Default: 500 milliseconds.
func WithPollInterval(interval time.Duration) WatchOption {
	return func(c *watchConfig) {
		c.pollInterval = interval
	}
}

// WithFromStart reads the chat log from the beginning instead of only
// new lines. Default: false (tail -f behavior).
func WithFromStart() WatchOption {
	return func(c *watchConfig) {
		c.fromStart = true
	}
}

// WithLocalPlayer sets the local avatar name, used to attribute loot
// lines and globals to the player.
func WithLocalPlayer(name string) WatchOption {
	return func(c *watchConfig) {
		c.localPlayer = name
	}
}

// WithSession enables session tracking for the given activity.
// costPerShot is the PED charged per consumed shot (see loadout.Compute).
func WithSession(activity session.Activity, costPerShot float64) WatchOption {
	return func(c *watchConfig) {
		c.track = true
		c.activity = activity
		c.costPerShot = costPerShot
	}
}

// WithSessionID sets the session identifier. If empty, a fresh UUID is
// assigned when tracking starts.
func WithSessionID(id string) WatchOption {
	return func(c *watchConfig) {
		c.sessionID = id
	}
}

// WithMarkup sets per-item markup multipliers (item name to multiplier,
// case-insensitive) used to value looted items above TT. Items absent
// from the table count at 100%. Only used when session tracking is
// enabled.
func WithMarkup(table map[string]float64) WatchOption {
	return func(c *watchConfig) {
		c.markup = table
	}
}

// WithEvidenceCapture attaches the collaborator notified when a global
// or HOF broadcast is attributed to the local player. Only used when
// session tracking is enabled.
func WithEvidenceCapture(ec session.EvidenceCapture) WatchOption {
	return func(c *watchConfig) {
		c.evidence = ec
	}
}

// WithKillWindow tunes kill detection: loot events closer together than
// gap count as one kill, and loot timestamps older than stale are
// forgotten. Non-positive values keep the defaults.
func WithKillWindow(gap, stale time.Duration) WatchOption {
	return func(c *watchConfig) {
		c.killGap = gap
		c.killStale = stale
	}
}

// WithEventSink sets the sink that receives every classified event.
func WithEventSink(sink EventSink) WatchOption {
	return func(c *watchConfig) {
		c.eventSink = sink
	}
}

// WithSummarySink sets the sink that receives periodic session
// summaries. Only used when session tracking is enabled.
func WithSummarySink(sink SummarySink) WatchOption {
	return func(c *watchConfig) {
		c.summarySink = sink
	}
}

// WithSummaryInterval sets how often summaries are pushed to the
// summary sink. Default: 5 seconds.
func WithSummaryInterval(interval time.Duration) WatchOption {
	return func(c *watchConfig) {
		c.summaryInterval = interval
	}
}

// WithLogger sets the slog logger for debug output.
// If nil (default), logging is disabled.
func WithLogger(logger *slog.Logger) WatchOption {
	return func(c *watchConfig) {
		c.logger = logger
	}
}

// WithIncludeKinds filters events to only include the specified kinds.
// If called multiple times, only the last call takes effect.
func WithIncludeKinds(kinds ...Kind) WatchOption {
	return func(c *watchConfig) {
		if c.filter == nil {
			c.filter = &compiledFilter{}
		}
		c.filter.include = make(map[Kind]struct{}, len(kinds))
		for _, k := range kinds {
			c.filter.include[k] = struct{}{}
		}
	}
}

// WithExcludeKinds filters out events of the specified kinds.
// Exclude takes precedence over include.
// If called multiple times, only the last call takes effect.
func WithExcludeKinds(kinds ...Kind) WatchOption {
	return func(c *watchConfig) {
		if c.filter == nil {
			c.filter = &compiledFilter{}
		}
		c.filter.exclude = make(map[Kind]struct{}, len(kinds))
		for _, k := range kinds {
			c.filter.exclude[k] = struct{}{}
		}
	}
}

// WithFilter sets both include and exclude kind filters.
// Exclude takes precedence over include.
func WithFilter(include, exclude []Kind) WatchOption {
	return func(c *watchConfig) {
		c.filter = newCompiledFilter(include, exclude)
	}
}

// ParseOption configures ParseLine/ParseFile behavior.
type ParseOption func(*parseConfig)

// parseConfig holds internal configuration for parsing.
type parseConfig struct {
	localPlayer string
	filter      *compiledFilter
	since       time.Time
	until       time.Time
	stopOnError bool
}

// defaultParseConfig returns a parseConfig with sensible defaults.
func defaultParseConfig() *parseConfig {
	return &parseConfig{}
}

// applyParseOptions applies functional options to a parseConfig.
func applyParseOptions(opts []ParseOption) *parseConfig {
	cfg := defaultParseConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithParseLocalPlayer sets the local avatar name used to attribute
// loot lines to the player. Without it, loot attribution falls back to
// system-channel heuristics.
func WithParseLocalPlayer(name string) ParseOption {
	return func(c *parseConfig) {
		c.localPlayer = name
	}
}

// WithParseIncludeKinds filters events to only include the specified kinds.
func WithParseIncludeKinds(kinds ...Kind) ParseOption {
	return func(c *parseConfig) {
		if c.filter == nil {
			c.filter = &compiledFilter{}
		}
		c.filter.include = make(map[Kind]struct{}, len(kinds))
		for _, k := range kinds {
			c.filter.include[k] = struct{}{}
		}
	}
}

// WithParseExcludeKinds filters out events of the specified kinds.
func WithParseExcludeKinds(kinds ...Kind) ParseOption {
	return func(c *parseConfig) {
		if c.filter == nil {
			c.filter = &compiledFilter{}
		}
		c.filter.exclude = make(map[Kind]struct{}, len(kinds))
		for _, k := range kinds {
			c.filter.exclude[k] = struct{}{}
		}
	}
}

// WithParseFilter sets both include and exclude kind filters for parsing.
func WithParseFilter(include, exclude []Kind) ParseOption {
	return func(c *parseConfig) {
		c.filter = newCompiledFilter(include, exclude)
	}
}

// WithParseTimeRange filters events to only include those within the time range.
// since is inclusive, until is exclusive.
// Zero values are ignored (no filtering for that boundary).
func WithParseTimeRange(since, until time.Time) ParseOption {
	return func(c *parseConfig) {
		c.since = since
		c.until = until
	}
}

// WithParseSince filters events to only include those at or after the given time.
func WithParseSince(since time.Time) ParseOption {
	return func(c *parseConfig) {
		c.since = since
	}
}

// WithParseUntil filters events to only include those before the given time.
func WithParseUntil(until time.Time) ParseOption {
	return func(c *parseConfig) {
		c.until = until
	}
}

// WithParseStopOnError stops parsing on the first error instead of skipping.
// Default: false (skip malformed lines and continue).
func WithParseStopOnError(stop bool) ParseOption {
	return func(c *parseConfig) {
		c.stopOnError = stop
	}
}
