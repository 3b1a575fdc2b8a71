// Package event defines the typed events produced by chat log classification.
//
// This package is separated from the main pedlog package to avoid import cycles
// between pkg/pedlog and internal/classifier.
package event

import (
	"sort"
	"strings"
	"time"
)

// Kind identifies the concrete type of a classified event.
type Kind string

const (
	// KindCombat covers damage dealt/taken, crits, misses, dodges and evades.
	KindCombat Kind = "combat"

	// KindLoot indicates an item looted by the local player.
	KindLoot Kind = "loot"

	// KindSkill indicates a skill experience or level gain.
	KindSkill Kind = "skill"

	// KindGlobal indicates a server-wide global or Hall of Fame broadcast.
	KindGlobal Kind = "global"
)

// allKinds is the canonical list of all event kinds.
// Add new kinds here when extending the classifier.
var allKinds = []Kind{KindCombat, KindLoot, KindSkill, KindGlobal}

// KindNames returns a sorted list of all valid event kind names.
// This is the single source of truth for kind enumeration.
func KindNames() []string {
	names := make([]string, len(allKinds))
	for i, k := range allKinds {
		names[i] = string(k)
	}
	sort.Strings(names)
	return names
}

// kindByName maps lowercase string names to Kind for efficient lookup.
// Built once from allKinds at package initialization.
var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(allKinds))
	for _, k := range allKinds {
		m[string(k)] = k
	}
	return m
}()

// ParseKind converts a string to Kind if valid.
// It is case-insensitive and trims leading/trailing whitespace.
// Returns the kind and true if found, zero value and false otherwise.
func ParseKind(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	k, ok := kindByName[name]
	return k, ok
}

// Event is the interface implemented by every classified chat event.
// Consumers are expected to type-switch on the concrete types (Combat,
// Loot, Skill, Global) and handle each case explicitly.
type Event interface {
	// Kind reports the event kind.
	Kind() Kind

	// Time is when the event occurred (timestamp from the log line,
	// or wall clock for legacy lines without a timestamp prefix).
	Time() time.Time

	// Raw is the original log line.
	Raw() string
}

// Meta carries the fields shared by all event types.
// It is embedded in every concrete event.
type Meta struct {
	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// RawLine is the original log line.
	RawLine string `json:"raw_line,omitempty"`
}

// Time returns the event timestamp.
func (m Meta) Time() time.Time { return m.Timestamp }

// Raw returns the original log line, if retained.
func (m Meta) Raw() string { return m.RawLine }

// Combat is an attack outcome involving the local player.
// Outgoing attacks that land (Damage > 0) and attacks the target dodged,
// evaded or jammed all burn ammo and decay; see ConsumesShot.
type Combat struct {
	Meta

	// Damage in points, zero for misses and defensive events.
	Damage float64 `json:"damage"`

	// Critical marks an "Additional damage!" critical hit.
	Critical bool `json:"critical,omitempty"`

	// Miss marks a plain "You missed" outcome.
	Miss bool `json:"miss,omitempty"`

	// Dodged marks "The target Dodged your attack".
	Dodged bool `json:"dodged,omitempty"`

	// Evaded marks "The target Evaded/Jammed your attack", or the local
	// player evading when Incoming is set.
	Evaded bool `json:"evaded,omitempty"`

	// Incoming marks events where the local player is the target
	// (damage taken, self-evade, deflect).
	Incoming bool `json:"incoming,omitempty"`
}

// Kind implements Event.
func (Combat) Kind() Kind { return KindCombat }

// ConsumesShot reports whether this combat event burned ammo and decay:
// a landed outgoing hit, or an outgoing attack the target dodged or
// evaded. Incoming events and plain misses do not consume a shot.
func (c Combat) ConsumesShot() bool {
	if c.Incoming {
		return false
	}
	if c.Dodged || c.Evaded {
		return true
	}
	return !c.Miss && c.Damage > 0
}

// Loot is an item received by the local player.
type Loot struct {
	Meta

	// ItemName is the looted item, e.g. "Animal Oil Residue".
	ItemName string `json:"item_name"`

	// Quantity is the stack size.
	Quantity int `json:"quantity"`

	// Value is the total TT value in PED.
	Value float64 `json:"value"`
}

// Kind implements Event.
func (Loot) Kind() Kind { return KindLoot }

// Skill is a skill experience or level gain.
type Skill struct {
	Meta

	// SkillName is the affected skill, e.g. "Laser Weaponry Technology".
	SkillName string `json:"skill_name"`

	// Amount is the experience or level delta gained.
	Amount float64 `json:"amount"`
}

// Kind implements Event.
func (Skill) Kind() Kind { return KindSkill }

// GlobalCategory classifies the activity behind a global broadcast.
type GlobalCategory string

const (
	// GlobalHunt is a creature-kill global.
	GlobalHunt GlobalCategory = "hunt"

	// GlobalCraft is a crafting global.
	GlobalCraft GlobalCategory = "craft"

	// GlobalMine is a mining-deposit global.
	GlobalMine GlobalCategory = "mine"
)

// Global is a server-wide broadcast of a high-value kill, craft or find.
type Global struct {
	Meta

	// Player is the broadcast subject: an avatar name, or a team name
	// for team kills.
	Player string `json:"player"`

	// Target is the creature, item or deposit named in the broadcast.
	Target string `json:"target"`

	// Value is the broadcast PED value.
	Value float64 `json:"value"`

	// HOF is set when the record-added phrase co-occurs.
	HOF bool `json:"hof,omitempty"`

	// Team is set for team-kill broadcasts.
	Team bool `json:"team,omitempty"`

	// Category is the activity behind the broadcast.
	Category GlobalCategory `json:"category"`

	// Location names where the kill happened, when the broadcast says so.
	Location string `json:"location,omitempty"`
}

// Kind implements Event.
func (Global) Kind() Kind { return KindGlobal }
