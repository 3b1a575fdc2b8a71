// Package store handles SQLite persistence for events, session
// summaries and the weapon catalog.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pedlog/pedlog-go/pkg/pedlog"
	"github.com/pedlog/pedlog-go/pkg/pedlog/loadout"
	"github.com/pedlog/pedlog-go/pkg/pedlog/session"

	_ "modernc.org/sqlite" // SQLite driver.
)

// eventBufferSize bounds the in-flight event queue. SubmitEvent drops
// records once the buffer is full rather than block the watcher.
const eventBufferSize = 1024

// Store wraps SQLite access. It implements pedlog.EventSink,
// pedlog.SummarySink and loadout.Repository.
type Store struct {
	db *sql.DB

	events  chan pedlog.EventRecord
	done    chan struct{}
	dropped atomic.Int64

	closeOnce sync.Once
	closeErr  error
}

// Open opens or creates the SQLite database, applies migrations and
// starts the background event writer.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{
		db:     db,
		events: make(chan pedlog.EventRecord, eventBufferSize),
		done:   make(chan struct{}),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	go s.writeLoop()
	return s, nil
}

// Close drains pending events and closes the underlying database.
// Safe to call multiple times.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		close(s.events)
		<-s.done
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

// Dropped reports how many events were discarded because the write
// buffer was full.
func (s *Store) Dropped() int64 {
	return s.dropped.Load()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY,
			session_id TEXT NOT NULL,
			at TEXT NOT NULL,
			kind TEXT NOT NULL,
			raw TEXT NOT NULL,
			data TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_summaries (
			session_id TEXT PRIMARY KEY,
			activity TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			cost_total REAL NOT NULL,
			return_total REAL NOT NULL,
			total_markup REAL NOT NULL,
			kills INTEGER NOT NULL,
			globals INTEGER NOT NULL,
			hofs INTEGER NOT NULL,
			shots_taken INTEGER NOT NULL,
			items_looted INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS weapons (
			name TEXT PRIMARY KEY,
			weapon_type TEXT NOT NULL,
			damage REAL NOT NULL,
			ammo_burn REAL NOT NULL,
			decay REAL NOT NULL,
			reload_time REAL NOT NULL,
			range REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attachments (
			name TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			damage_bonus REAL NOT NULL,
			ammo_delta REAL NOT NULL,
			decay_delta REAL NOT NULL,
			economy_bonus REAL NOT NULL,
			range_bonus REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id);`,
		`CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SubmitEvent implements pedlog.EventSink. It never blocks: records
// are queued for the background writer and dropped on overflow.
func (s *Store) SubmitEvent(rec pedlog.EventRecord) {
	select {
	case s.events <- rec:
	default:
		s.dropped.Add(1)
	}
}

func (s *Store) writeLoop() {
	defer close(s.done)
	for rec := range s.events {
		data, err := json.Marshal(rec.Event)
		if err != nil {
			data = []byte("{}")
		}
		if _, err := s.db.Exec(
			`INSERT INTO events (session_id, at, kind, raw, data) VALUES (?, ?, ?, ?, ?)`,
			rec.SessionID,
			rec.Timestamp.Format(time.RFC3339Nano),
			string(rec.Kind),
			rec.Raw,
			string(data),
		); err != nil {
			// Persistence is best effort, the live session keeps going.
			s.dropped.Add(1)
		}
	}
}

// UpsertSummary implements pedlog.SummarySink.
func (s *Store) UpsertSummary(stats session.Stats) error {
	var endedAt any
	if !stats.EndTime.IsZero() {
		endedAt = stats.EndTime.Format(time.RFC3339Nano)
	}
	_, err := s.db.Exec(
		`INSERT INTO session_summaries
			(session_id, activity, started_at, ended_at, cost_total, return_total, total_markup, kills, globals, hofs, shots_taken, items_looted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
			activity = excluded.activity,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			cost_total = excluded.cost_total,
			return_total = excluded.return_total,
			total_markup = excluded.total_markup,
			kills = excluded.kills,
			globals = excluded.globals,
			hofs = excluded.hofs,
			shots_taken = excluded.shots_taken,
			items_looted = excluded.items_looted`,
		stats.SessionID,
		string(stats.Activity),
		stats.StartTime.Format(time.RFC3339Nano),
		endedAt,
		stats.CostTotal,
		stats.ReturnTotal,
		stats.TotalMarkup,
		stats.Kills,
		stats.Globals,
		stats.HOFs,
		stats.ShotsTaken,
		stats.ItemsLooted,
	)
	return err
}

// ListSummaries returns stored session summaries, most recent first.
func (s *Store) ListSummaries(ctx context.Context) ([]session.Stats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, activity, started_at, ended_at, cost_total, return_total, total_markup, kills, globals, hofs, shots_taken, items_looted
		 FROM session_summaries
		 ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []session.Stats
	for rows.Next() {
		var st session.Stats
		var activity, startedAt string
		var endedAt sql.NullString
		if err := rows.Scan(&st.SessionID, &activity, &startedAt, &endedAt,
			&st.CostTotal, &st.ReturnTotal, &st.TotalMarkup, &st.Kills,
			&st.Globals, &st.HOFs, &st.ShotsTaken, &st.ItemsLooted); err != nil {
			return nil, err
		}
		st.Activity = session.Activity(activity)
		if ts, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			st.StartTime = ts
		}
		if endedAt.Valid {
			if ts, err := time.Parse(time.RFC3339Nano, endedAt.String); err == nil {
				st.EndTime = ts
			}
		}
		result = append(result, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CountEvents returns how many events are stored for a session.
func (s *Store) CountEvents(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}

// SeedCatalog inserts reference weapons and attachments, keeping any
// rows the user has already customized.
func (s *Store) SeedCatalog(ctx context.Context, weapons []loadout.WeaponSpec, attachments []loadout.AttachmentSpec) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, w := range weapons {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO weapons (name, weapon_type, damage, ammo_burn, decay, reload_time, range)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(name) DO NOTHING`,
			w.Name, w.WeaponType, w.Damage, w.AmmoBurn, w.Decay, w.ReloadTime, w.Range,
		); err != nil {
			return err
		}
	}
	for _, a := range attachments {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO attachments (name, type, damage_bonus, ammo_delta, decay_delta, economy_bonus, range_bonus)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(name) DO NOTHING`,
			a.Name, a.Type, a.DamageBonus, a.AmmoDelta, a.DecayDelta, a.EconomyBonus, a.RangeBonus,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// WeaponByName implements loadout.Repository.
func (s *Store) WeaponByName(ctx context.Context, name string) (loadout.WeaponSpec, error) {
	var w loadout.WeaponSpec
	err := s.db.QueryRowContext(ctx,
		`SELECT name, weapon_type, damage, ammo_burn, decay, reload_time, range
		 FROM weapons WHERE name = ? COLLATE NOCASE`, name).
		Scan(&w.Name, &w.WeaponType, &w.Damage, &w.AmmoBurn, &w.Decay, &w.ReloadTime, &w.Range)
	if errors.Is(err, sql.ErrNoRows) {
		return loadout.WeaponSpec{}, loadout.ErrNotFound
	}
	if err != nil {
		return loadout.WeaponSpec{}, err
	}
	return w, nil
}

// AttachmentByName implements loadout.Repository.
func (s *Store) AttachmentByName(ctx context.Context, name string) (loadout.AttachmentSpec, error) {
	var a loadout.AttachmentSpec
	err := s.db.QueryRowContext(ctx,
		`SELECT name, type, damage_bonus, ammo_delta, decay_delta, economy_bonus, range_bonus
		 FROM attachments WHERE name = ? COLLATE NOCASE`, name).
		Scan(&a.Name, &a.Type, &a.DamageBonus, &a.AmmoDelta, &a.DecayDelta, &a.EconomyBonus, &a.RangeBonus)
	if errors.Is(err, sql.ErrNoRows) {
		return loadout.AttachmentSpec{}, loadout.ErrNotFound
	}
	if err != nil {
		return loadout.AttachmentSpec{}, err
	}
	return a, nil
}
