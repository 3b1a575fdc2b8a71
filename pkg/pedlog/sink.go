package pedlog

import (
	"time"

	"github.com/pedlog/pedlog-go/pkg/pedlog/event"
	"github.com/pedlog/pedlog-go/pkg/pedlog/session"
)

// EventRecord is one classified chat log event together with the
// session it was observed in.
type EventRecord struct {
	SessionID string      `json:"session_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Kind      event.Kind  `json:"kind"`
	Raw       string      `json:"raw"`
	Event     event.Event `json:"-"`
}

// EventSink receives classified events for persistence.
//
// SubmitEvent must not block the caller: implementations buffer
// internally and drop on overflow.
type EventSink interface {
	SubmitEvent(EventRecord)
}

// SummarySink receives session summaries. UpsertSummary replaces any
// previously stored summary for the same session ID.
type SummarySink interface {
	UpsertSummary(session.Stats) error
}
