// Package classifier turns raw chat log lines into typed events.
//
// Classification is an ordered rule table evaluated top to bottom; the
// first matching rule wins. Lines that match no rule are not an error,
// they are simply unclassified.
package classifier

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pedlog/pedlog-go/pkg/pedlog/event"
)

// timestampLayout is the chat.log line prefix format.
const timestampLayout = "2006-01-02 15:04:05"

// recordAddedPhrase co-occurs with a global broadcast when the value set
// a Hall of Fame record.
const recordAddedPhrase = "A record has been added to the Hall of Fame!"

// universalAmmo is excluded from loot: it is a byproduct of shrapnel
// conversion, not real loot.
const universalAmmo = "Universal Ammo"

// Channel names used by the game client.
const (
	channelSystem  = "System"
	channelGlobals = "Globals"
)

var (
	// lineRegex matches "2024-05-01 12:00:00 [Channel] [Speaker] message".
	lineRegex = regexp.MustCompile(`^([\d-]+ [\d:]+) \[(\w+)\] \[(.*?)\] (.*)$`)

	// legacyLineRegex matches the older client format without the
	// timestamp prefix.
	legacyLineRegex = regexp.MustCompile(`^\[(\w+)\] \[(.*?)\] (.*)$`)
)

// rawLine is a structurally parsed log line, before classification.
type rawLine struct {
	timestamp time.Time
	channel   string
	speaker   string
	message   string
}

// rule is one entry of the ordered classification table. build may
// return nil to deliberately drop a matched line (heals, enhancer
// breaks, overheard loot).
type rule struct {
	name  string
	re    *regexp.Regexp
	build func(c *Classifier, m []string, ln rawLine, meta event.Meta) event.Event
}

// systemRules classify System-channel messages. Order matters: the
// critical-hit pattern is a superstring of the plain damage pattern, and
// the experience pattern is more specific than the generic gain pattern.
var systemRules = []rule{
	{
		name: "damage_critical",
		re:   regexp.MustCompile(`Critical hit - Additional damage! You inflicted (\d+\.\d+) points of damage`),
		build: func(_ *Classifier, m []string, _ rawLine, meta event.Meta) event.Event {
			return event.Combat{Meta: meta, Damage: parseFloat(m[1]), Critical: true}
		},
	},
	{
		name: "damage_inflicted",
		re:   regexp.MustCompile(`You inflicted (\d+\.\d+) points of damage`),
		build: func(_ *Classifier, m []string, _ rawLine, meta event.Meta) event.Event {
			return event.Combat{Meta: meta, Damage: parseFloat(m[1])}
		},
	},
	{
		name: "damage_taken",
		re:   regexp.MustCompile(`You took (\d+\.\d+) points of damage`),
		build: func(_ *Classifier, m []string, _ rawLine, meta event.Meta) event.Event {
			return event.Combat{Meta: meta, Damage: parseFloat(m[1]), Incoming: true}
		},
	},
	{
		name: "deflect",
		re:   regexp.MustCompile(`Damage deflected!`),
		build: func(_ *Classifier, _ []string, _ rawLine, meta event.Meta) event.Event {
			return event.Combat{Meta: meta, Evaded: true, Incoming: true}
		},
	},
	{
		name: "evade_self",
		re:   regexp.MustCompile(`You Evaded the attack`),
		build: func(_ *Classifier, _ []string, _ rawLine, meta event.Meta) event.Event {
			return event.Combat{Meta: meta, Evaded: true, Incoming: true}
		},
	},
	{
		name: "miss",
		re:   regexp.MustCompile(`You missed`),
		build: func(_ *Classifier, _ []string, _ rawLine, meta event.Meta) event.Event {
			return event.Combat{Meta: meta, Miss: true}
		},
	},
	{
		name: "target_avoided",
		re:   regexp.MustCompile(`The target (Dodged|Evaded|Jammed) your attack`),
		build: func(_ *Classifier, m []string, _ rawLine, meta event.Meta) event.Event {
			if m[1] == "Dodged" {
				return event.Combat{Meta: meta, Dodged: true}
			}
			return event.Combat{Meta: meta, Evaded: true}
		},
	},
	{
		name: "heal",
		re:   regexp.MustCompile(`You healed yourself (\d+\.\d+) points`),
		build: func(_ *Classifier, _ []string, _ rawLine, _ event.Meta) event.Event {
			return nil // heals do not feed the economy model
		},
	},
	{
		name: "skill_experience",
		re:   regexp.MustCompile(`You have gained (\d+\.\d+) experience in your ([a-zA-Z ]+) skill`),
		build: func(_ *Classifier, m []string, _ rawLine, meta event.Meta) event.Event {
			return event.Skill{Meta: meta, SkillName: strings.TrimSpace(m[2]), Amount: parseFloat(m[1])}
		},
	},
	{
		name: "skill_points",
		re:   regexp.MustCompile(`You have gained (\d+\.\d+) ([a-zA-Z ]+)`),
		build: func(_ *Classifier, m []string, _ rawLine, meta event.Meta) event.Event {
			return event.Skill{Meta: meta, SkillName: strings.TrimSpace(m[2]), Amount: parseFloat(m[1])}
		},
	},
	{
		name: "skill_improved",
		re:   regexp.MustCompile(`Your ([a-zA-Z ]+) has improved by (\d+\.\d+)`),
		build: func(_ *Classifier, m []string, _ rawLine, meta event.Meta) event.Event {
			return event.Skill{Meta: meta, SkillName: strings.TrimSpace(m[1]), Amount: parseFloat(m[2])}
		},
	},
	{
		name: "enhancer_break",
		re:   regexp.MustCompile(`Your enhancer ([a-zA-Z0-9 ]+) on your .* broke`),
		build: func(_ *Classifier, _ []string, _ rawLine, _ event.Meta) event.Event {
			return nil // break notices carry no value; decay is already priced per shot
		},
	},
	{
		name: "loot",
		re:   regexp.MustCompile(`You received (.+?) x \((\d+)\) Value: (\d+\.\d+) PED`),
		build: func(c *Classifier, m []string, ln rawLine, meta event.Meta) event.Event {
			// Overheard broadcasts of other players' loot carry a
			// foreign speaker bracket; only self-loot counts.
			if !c.isSelf(ln.speaker) {
				return nil
			}
			name := strings.TrimSpace(m[1])
			if strings.EqualFold(name, universalAmmo) {
				return nil
			}
			qty, _ := strconv.Atoi(m[2])
			return event.Loot{Meta: meta, ItemName: name, Quantity: qty, Value: parseFloat(m[3])}
		},
	},
}

// globalRules classify Globals-channel messages. Team kills come before
// solo kills, and located kills before plain ones, because the narrower
// patterns would otherwise be shadowed.
var globalRules = []rule{
	{
		name: "global_team_kill",
		re:   regexp.MustCompile(`^The team "(.+?)" killed a creature \((.+?)\) with a value of (\d+(?:\.\d+)?) PED!`),
		build: func(_ *Classifier, m []string, ln rawLine, meta event.Meta) event.Event {
			g := creatureGlobal(m, ln, meta)
			g.Team = true
			return g
		},
	},
	{
		name: "global_kill_location",
		re:   regexp.MustCompile(`^(.+?) killed a creature \((.+?)\) with a value of (\d+(?:\.\d+)?) PED at (.+?)!`),
		build: func(_ *Classifier, m []string, ln rawLine, meta event.Meta) event.Event {
			g := creatureGlobal(m, ln, meta)
			g.Location = strings.TrimSpace(m[4])
			return g
		},
	},
	{
		name: "global_kill",
		re:   regexp.MustCompile(`^(.+?) killed a creature \((.+?)\) with a value of (\d+(?:\.\d+)?) PED!`),
		build: func(_ *Classifier, m []string, ln rawLine, meta event.Meta) event.Event {
			return creatureGlobal(m, ln, meta)
		},
	},
	{
		name: "global_craft",
		re:   regexp.MustCompile(`^(.+?) constructed an item \((.+?)\) worth (\d+(?:\.\d+)?) PED!`),
		build: func(_ *Classifier, m []string, ln rawLine, meta event.Meta) event.Event {
			g := creatureGlobal(m, ln, meta)
			g.Category = event.GlobalCraft
			return g
		},
	},
	{
		name: "global_mine",
		re:   regexp.MustCompile(`^(.+?) found a deposit \((.+?)\) with a value of (\d+(?:\.\d+)?) PED!`),
		build: func(_ *Classifier, m []string, ln rawLine, meta event.Meta) event.Event {
			g := creatureGlobal(m, ln, meta)
			g.Category = event.GlobalMine
			return g
		},
	},
}

// creatureGlobal builds the common Global shape from the standard
// (player, target, value) capture groups.
func creatureGlobal(m []string, ln rawLine, meta event.Meta) event.Global {
	return event.Global{
		Meta:     meta,
		Player:   strings.TrimSpace(m[1]),
		Target:   strings.TrimSpace(m[2]),
		Value:    parseFloat(m[3]),
		HOF:      strings.Contains(ln.message, recordAddedPhrase),
		Category: event.GlobalHunt,
	}
}

// Classifier maps one raw chat log line to a typed event.
// Classification is pure: the same line always yields the same event
// (up to the wall-clock fallback for legacy lines).
type Classifier struct {
	localPlayer string

	// now supplies the wall-clock fallback for legacy lines without a
	// timestamp prefix. Injectable for tests.
	now func() time.Time
}

// New creates a Classifier. localPlayer is the avatar name used for
// loot attribution; it may be empty, in which case only lines with an
// empty speaker bracket count as self-loot.
func New(localPlayer string) *Classifier {
	return &Classifier{
		localPlayer: localPlayer,
		now:         time.Now,
	}
}

// SetClock overrides the wall-clock fallback. Intended for tests.
func (c *Classifier) SetClock(now func() time.Time) {
	c.now = now
}

// Classify evaluates the ordered rule tables against a single line.
//
// Return values:
//   - (Event, nil): the line matched a rule
//   - (nil, nil): the line is unclassified (not an error)
func (c *Classifier) Classify(line string) (event.Event, error) {
	ln, ok := c.splitLine(line)
	if !ok {
		return nil, nil
	}

	var rules []rule
	switch ln.channel {
	case channelSystem:
		rules = systemRules
	case channelGlobals:
		rules = globalRules
	default:
		return nil, nil
	}

	meta := event.Meta{Timestamp: ln.timestamp, RawLine: line}
	for _, r := range rules {
		m := r.re.FindStringSubmatch(ln.message)
		if m == nil {
			continue
		}
		ev := r.build(c, m, ln, meta)
		if ev == nil {
			return nil, nil
		}
		return ev, nil
	}
	return nil, nil
}

// splitLine parses the channel/speaker/message framing. Lines without
// the timestamp prefix (legacy client versions) fall back to wall time.
func (c *Classifier) splitLine(line string) (rawLine, bool) {
	if m := lineRegex.FindStringSubmatch(line); m != nil {
		ts, err := time.ParseInLocation(timestampLayout, m[1], time.Local)
		if err != nil {
			ts = c.now()
		}
		return rawLine{timestamp: ts, channel: m[2], speaker: m[3], message: m[4]}, true
	}
	if m := legacyLineRegex.FindStringSubmatch(line); m != nil {
		return rawLine{timestamp: c.now(), channel: m[1], speaker: m[2], message: m[3]}, true
	}
	return rawLine{}, false
}

// isSelf reports whether a speaker bracket refers to the local player.
func (c *Classifier) isSelf(speaker string) bool {
	if speaker == "" {
		return true
	}
	return c.localPlayer != "" && strings.EqualFold(speaker, c.localPlayer)
}

// parseFloat parses a decimal captured by a rule regex. The patterns
// only admit digit runs, so failures cannot happen in practice.
func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
