package main

import (
	"fmt"
	"strings"

	"github.com/pedlog/pedlog-go/pkg/pedlog"
	"github.com/pedlog/pedlog-go/pkg/pedlog/event"
)

// ValidEventKinds maps CLI string names to pedlog.Kind.
// Used for both validation and normalization.
var ValidEventKinds = map[string]pedlog.Kind{
	"combat": pedlog.KindCombat,
	"loot":   pedlog.KindLoot,
	"skill":  pedlog.KindSkill,
	"global": pedlog.KindGlobal,
}

// ValidEventKindNames returns a sorted list of valid event kind names.
// Delegates to event.KindNames() as the single source of truth.
func ValidEventKindNames() []string {
	return event.KindNames()
}

// NormalizeEventKinds converts CLI string values to a pedlog.Kind slice.
// It handles case-insensitivity, whitespace trimming, and duplicate removal.
func NormalizeEventKinds(values []string) ([]pedlog.Kind, error) {
	if len(values) == 0 {
		return nil, nil
	}

	result := make([]pedlog.Kind, 0, len(values))
	seen := make(map[pedlog.Kind]struct{})

	for _, raw := range values {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			return nil, fmt.Errorf("empty event kind provided (input: %q); valid kinds: %s", raw, strings.Join(ValidEventKindNames(), ", "))
		}

		k, ok := ValidEventKinds[name]
		if !ok {
			return nil, fmt.Errorf("unknown event kind %q (valid: %s)", raw, strings.Join(ValidEventKindNames(), ", "))
		}

		if _, dup := seen[k]; dup {
			continue // ignore duplicates silently
		}
		seen[k] = struct{}{}
		result = append(result, k)
	}

	return result, nil
}

// RejectOverlap returns an error if any event kind is in both includes and excludes.
func RejectOverlap(includes, excludes []pedlog.Kind) error {
	ex := make(map[pedlog.Kind]struct{}, len(excludes))
	for _, k := range excludes {
		ex[k] = struct{}{}
	}
	for _, k := range includes {
		if _, ok := ex[k]; ok {
			return fmt.Errorf("event kind %q cannot be both included and excluded", k)
		}
	}
	return nil
}
