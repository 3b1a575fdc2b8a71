// Package config provides TOML configuration for the tracker.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/pedlog/pedlog-go/pkg/pedlog/loadout"
)

// Defaults applied when the config file leaves a setting unset.
const (
	DefaultPollInterval    = 500 * time.Millisecond
	DefaultKillGap         = 600 * time.Millisecond
	DefaultKillStale       = 10 * time.Second
	DefaultSummaryInterval = 5 * time.Second
)

// FileConfig is the TOML configuration file shape. Pointer fields
// distinguish "unset" from zero values.
type FileConfig struct {
	Player  PlayerConfig    `toml:"player"`
	Log     LogConfig       `toml:"log"`
	Session SessionConfig   `toml:"session"`
	Loadout loadout.Loadout `toml:"loadout"`
	DB      DBConfig        `toml:"database"`

	// Markup maps item names to markup multipliers, e.g. 1.05 for an
	// item that sells at 105% of TT.
	Markup map[string]float64 `toml:"markup"`
}

// PlayerConfig identifies the local avatar.
type PlayerConfig struct {
	Name *string `toml:"name"`
}

// LogConfig controls chat log monitoring.
type LogConfig struct {
	Path           *string `toml:"path"`
	PollIntervalMS *int    `toml:"poll_interval_ms"`
}

// SessionConfig tunes kill grouping.
type SessionConfig struct {
	KillGapMS      *int `toml:"kill_gap_ms"`
	KillStaleSecs  *int `toml:"kill_stale_seconds"`
	SummarySeconds *int `toml:"summary_interval_seconds"`
}

// DBConfig locates the sqlite database; empty disables persistence.
type DBConfig struct {
	Path *string `toml:"path"`
}

// Load reads a TOML config from path. A missing file is not an error:
// the zero FileConfig is returned and defaults apply.
func Load(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "pedlog.toml"
	}
	return filepath.Join(dir, "pedlog", "pedlog.toml")
}

// PlayerName returns the configured avatar name, or empty.
func (c FileConfig) PlayerName() string {
	return strOr(c.Player.Name, "")
}

// LogPath returns the configured chat log path, or empty for
// auto-detection.
func (c FileConfig) LogPath() string {
	return strOr(c.Log.Path, "")
}

// PollInterval returns the poll cadence.
func (c FileConfig) PollInterval() time.Duration {
	if c.Log.PollIntervalMS != nil && *c.Log.PollIntervalMS > 0 {
		return time.Duration(*c.Log.PollIntervalMS) * time.Millisecond
	}
	return DefaultPollInterval
}

// KillGap returns the kill grouping threshold.
func (c FileConfig) KillGap() time.Duration {
	if c.Session.KillGapMS != nil && *c.Session.KillGapMS > 0 {
		return time.Duration(*c.Session.KillGapMS) * time.Millisecond
	}
	return DefaultKillGap
}

// KillStale returns the kill window staleness horizon.
func (c FileConfig) KillStale() time.Duration {
	if c.Session.KillStaleSecs != nil && *c.Session.KillStaleSecs > 0 {
		return time.Duration(*c.Session.KillStaleSecs) * time.Second
	}
	return DefaultKillStale
}

// SummaryInterval returns the cadence of periodic session-summary
// upserts.
func (c FileConfig) SummaryInterval() time.Duration {
	if c.Session.SummarySeconds != nil && *c.Session.SummarySeconds > 0 {
		return time.Duration(*c.Session.SummarySeconds) * time.Second
	}
	return DefaultSummaryInterval
}

// DBPath returns the sqlite path, or empty when persistence is off.
func (c FileConfig) DBPath() string {
	return strOr(c.DB.Path, "")
}

func strOr(p *string, fallback string) string {
	if p != nil {
		return *p
	}
	return fallback
}
