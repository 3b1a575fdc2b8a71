package pedlog

import "github.com/pedlog/pedlog-go/pkg/pedlog/event"

// Re-export event types for convenience.
// Users can import just "github.com/pedlog/pedlog-go/pkg/pedlog"
// and use pedlog.Event, pedlog.KindLoot, etc.

// Event represents a parsed chat log event.
type Event = event.Event

// Kind represents the kind of chat log event.
type Kind = event.Kind

// Event kind constants.
const (
	KindCombat = event.KindCombat
	KindLoot   = event.KindLoot
	KindSkill  = event.KindSkill
	KindGlobal = event.KindGlobal
)
