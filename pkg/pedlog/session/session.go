// Package session maintains rolling per-session economy statistics from
// classified chat events.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pedlog/pedlog-go/pkg/pedlog/event"
)

// Activity is the declared purpose of a tracking session.
type Activity string

const (
	ActivityHunting  Activity = "hunting"
	ActivityCrafting Activity = "crafting"
	ActivityMining   Activity = "mining"
)

// State is the accumulator lifecycle state.
type State int

const (
	// NotStarted means no session is running; events are dropped.
	NotStarted State = iota

	// Active means events are being accumulated.
	Active
)

// Stats is a snapshot of the running session totals.
// CostTotal and ReturnTotal only ever grow within one session.
type Stats struct {
	SessionID string    `json:"session_id"`
	Activity  Activity  `json:"activity"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time,omitzero"`

	// CostTotal is PED spent: shots times loadout cost, plus explicit
	// material costs.
	CostTotal float64 `json:"cost_total"`

	// ReturnTotal is PED looted at TT value.
	ReturnTotal float64 `json:"return_total"`

	// TotalMarkup is the looted value after per-item markup
	// multipliers. Items without a configured markup count at 100%,
	// so without a markup table this equals ReturnTotal.
	TotalMarkup float64 `json:"total_markup"`

	Kills       int `json:"kills"`
	Globals     int `json:"globals"`
	HOFs        int `json:"hofs"`
	ShotsTaken  int `json:"shots_taken"`
	ItemsLooted int `json:"items_looted"`
}

// ROI is the return on investment in percent. A session with zero cost
// is defined as 100% regardless of return.
func (s Stats) ROI() float64 {
	if s.CostTotal == 0 {
		return 100
	}
	return s.ReturnTotal / s.CostTotal * 100
}

// EvidenceCapture is notified when a global or HOF broadcast is
// attributed to the local player, so an external collaborator can grab
// a screenshot or similar proof. Implementations must not block.
type EvidenceCapture interface {
	CaptureGlobal(ev event.Global)
}

// Accumulator consumes classified events and maintains running session
// totals. It follows a single-writer discipline: exactly one goroutine
// (the watcher's poll loop) calls Start/OnEvent/AddMaterialCost/Stop,
// while any goroutine may take a Snapshot.
type Accumulator struct {
	mu          sync.Mutex
	state       State
	stats       Stats
	kills       *KillTracker
	localPlayer string
	evidence    EvidenceCapture
	markup      map[string]float64
}

// NewAccumulator creates an accumulator for the given local player
// name (used to attribute global broadcasts, case-insensitively).
// A nil tracker selects the default kill grouping windows.
func NewAccumulator(localPlayer string, kills *KillTracker) *Accumulator {
	if kills == nil {
		kills = NewKillTracker(0, 0)
	}
	return &Accumulator{kills: kills, localPlayer: localPlayer}
}

// SetEvidenceCapture attaches the external evidence collaborator.
func (a *Accumulator) SetEvidenceCapture(ec EvidenceCapture) {
	a.mu.Lock()
	a.evidence = ec
	a.mu.Unlock()
}

// SetMarkupTable sets per-item markup multipliers keyed by item name
// (case-insensitive). A multiplier of 1.10 values an item at 110% of
// TT; items absent from the table count at 100%.
func (a *Accumulator) SetMarkupTable(table map[string]float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(table) == 0 {
		a.markup = nil
		return
	}
	a.markup = make(map[string]float64, len(table))
	for name, mult := range table {
		a.markup[strings.ToLower(name)] = mult
	}
}

// markupFor returns the markup multiplier for an item. Callers hold the
// mutex.
func (a *Accumulator) markupFor(item string) float64 {
	if mult, ok := a.markup[strings.ToLower(item)]; ok && mult > 0 {
		return mult
	}
	return 1
}

// Start begins a new session, resetting all counters. Calling Start on
// an already active session is a no-op (idempotent against duplicate
// start calls). An empty sessionID generates one.
func (a *Accumulator) Start(sessionID string, activity Activity, start time.Time) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == Active {
		return a.stats.SessionID
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	a.stats = Stats{SessionID: sessionID, Activity: activity, StartTime: start}
	a.kills.Reset()
	a.state = Active
	return sessionID
}

// Active reports whether a session is running.
func (a *Accumulator) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state == Active
}

// OnEvent applies one classified event to the running totals.
// loadoutCost is the current cost per shot in PED, charged for every
// combat event that consumes ammo and decay. Events arriving while no
// session is active are silently dropped.
func (a *Accumulator) OnEvent(ev event.Event, loadoutCost float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != Active || ev == nil {
		return
	}

	switch e := ev.(type) {
	case event.Combat:
		if e.ConsumesShot() {
			a.stats.ShotsTaken++
			if loadoutCost > 0 {
				a.stats.CostTotal += loadoutCost
			}
		}
	case event.Loot:
		a.stats.ItemsLooted++
		if e.Value > 0 {
			a.stats.ReturnTotal += e.Value
			a.stats.TotalMarkup += e.Value * a.markupFor(e.ItemName)
		}
		if a.kills.ObserveLoot(e.Time()) {
			a.stats.Kills++
		}
	case event.Global:
		// Every broadcast is a global; HOFs are the record-setting subset.
		a.stats.Globals++
		if e.HOF {
			a.stats.HOFs++
		}
		if a.evidence != nil && a.isLocalPlayer(e.Player) {
			a.evidence.CaptureGlobal(e)
		}
	case event.Skill:
		// Skill gains carry no economic value.
	}
}

// AddMaterialCost records an explicit spend outside the per-shot path,
// e.g. materials consumed by a crafting attempt. Negative amounts are
// ignored: cost totals never decrease.
func (a *Accumulator) AddMaterialCost(cost float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != Active || cost <= 0 {
		return
	}
	a.stats.CostTotal += cost
}

// Snapshot returns a copy of the current totals. Safe to call from any
// goroutine at any time.
func (a *Accumulator) Snapshot() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Stop freezes and returns the session snapshot, returning the
// accumulator to NotStarted. The second return is false when no session
// was active. Safe to invoke at any time; it never interrupts an
// in-flight event application.
func (a *Accumulator) Stop(end time.Time) (Stats, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != Active {
		return Stats{}, false
	}
	a.stats.EndTime = end
	a.state = NotStarted
	return a.stats, true
}

func (a *Accumulator) isLocalPlayer(name string) bool {
	return a.localPlayer != "" && strings.EqualFold(name, a.localPlayer)
}
