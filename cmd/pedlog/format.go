package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pedlog/pedlog-go/pkg/pedlog"
	"github.com/pedlog/pedlog-go/pkg/pedlog/event"
)

// ValidFormats enumerates the supported output formats.
var ValidFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

// OutputEvent writes an event in the given format.
func OutputEvent(format string, ev pedlog.Event, w io.Writer) error {
	switch format {
	case "pretty":
		return OutputPretty(ev, w)
	default:
		return OutputJSON(ev, w)
	}
}

// OutputJSON writes an event as one JSON line with its kind spliced in.
func OutputJSON(ev pedlog.Event, w io.Writer) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	out := struct {
		Kind  pedlog.Kind     `json:"kind"`
		Event json.RawMessage `json:"event"`
	}{ev.Kind(), payload}

	enc := json.NewEncoder(w)
	return enc.Encode(out)
}

// OutputPretty writes a human-readable one-line rendering.
func OutputPretty(ev pedlog.Event, w io.Writer) error {
	ts := ev.Time().Format("15:04:05")

	var err error
	switch e := ev.(type) {
	case event.Combat:
		_, err = fmt.Fprintf(w, "[%s] %s\n", ts, prettyCombat(e))
	case event.Loot:
		_, err = fmt.Fprintf(w, "[%s] + %s x%d (%.2f PED)\n", ts, e.ItemName, e.Quantity, e.Value)
	case event.Skill:
		_, err = fmt.Fprintf(w, "[%s] ^ %s +%.4f\n", ts, e.SkillName, e.Amount)
	case event.Global:
		suffix := ""
		if e.HOF {
			suffix = " [HOF]"
		}
		_, err = fmt.Fprintf(w, "[%s] ! %s: %s (%.0f PED)%s\n", ts, e.Player, e.Target, e.Value, suffix)
	default:
		_, err = fmt.Fprintf(w, "[%s] %s\n", ts, ev.Kind())
	}
	return err
}

func prettyCombat(e event.Combat) string {
	switch {
	case e.Incoming && e.Evaded:
		return "evaded incoming attack"
	case e.Incoming:
		return fmt.Sprintf("took %.1f dmg", e.Damage)
	case e.Critical:
		return fmt.Sprintf("crit %.1f dmg", e.Damage)
	case e.Miss:
		return "missed"
	case e.Dodged:
		return "target dodged"
	case e.Evaded:
		return "target evaded"
	default:
		return fmt.Sprintf("hit %.1f dmg", e.Damage)
	}
}
