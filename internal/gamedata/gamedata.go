// Package gamedata ships a small in-memory catalog of weapon and
// attachment reference data. It backs the CLI when no database is
// configured and seeds a fresh database.
package gamedata

import (
	"context"
	"sort"
	"strings"

	"github.com/pedlog/pedlog-go/pkg/pedlog/loadout"
)

// Catalog is an in-memory loadout.Repository keyed by lowercased name.
type Catalog struct {
	weapons     map[string]loadout.WeaponSpec
	attachments map[string]loadout.AttachmentSpec
}

// Default returns the stock catalog.
func Default() *Catalog {
	c := &Catalog{
		weapons:     make(map[string]loadout.WeaponSpec, len(stockWeapons)),
		attachments: make(map[string]loadout.AttachmentSpec, len(stockAttachments)),
	}
	for _, w := range stockWeapons {
		c.weapons[strings.ToLower(w.Name)] = w
	}
	for _, a := range stockAttachments {
		c.attachments[strings.ToLower(a.Name)] = a
	}
	return c
}

// WeaponByName implements loadout.Repository.
func (c *Catalog) WeaponByName(_ context.Context, name string) (loadout.WeaponSpec, error) {
	if w, ok := c.weapons[strings.ToLower(name)]; ok {
		return w, nil
	}
	return loadout.WeaponSpec{}, loadout.ErrNotFound
}

// AttachmentByName implements loadout.Repository.
func (c *Catalog) AttachmentByName(_ context.Context, name string) (loadout.AttachmentSpec, error) {
	if a, ok := c.attachments[strings.ToLower(name)]; ok {
		return a, nil
	}
	return loadout.AttachmentSpec{}, loadout.ErrNotFound
}

// Weapons returns all weapons sorted by name.
func (c *Catalog) Weapons() []loadout.WeaponSpec {
	out := make([]loadout.WeaponSpec, 0, len(c.weapons))
	for _, w := range c.weapons {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Attachments returns all attachments sorted by name.
func (c *Catalog) Attachments() []loadout.AttachmentSpec {
	out := make([]loadout.AttachmentSpec, 0, len(c.attachments))
	for _, a := range c.attachments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// stockWeapons are common starter and mid-game weapons. Damage in
// points, ammo burn in hundredths of a PEC, decay in PED, reload in
// seconds, range in meters.
var stockWeapons = []loadout.WeaponSpec{
	{Name: "Opalo", WeaponType: "Rifle", Damage: 12, AmmoBurn: 6, Decay: 0.03, ReloadTime: 2.8, Range: 45},
	{Name: "MMA", WeaponType: "Rifle", Damage: 15, AmmoBurn: 8, Decay: 0.05, ReloadTime: 2.5, Range: 50},
	{Name: "Korss H400 (L)", WeaponType: "Pistol", Damage: 28, AmmoBurn: 11, Decay: 0.10, ReloadTime: 3.0, Range: 55},
	{Name: "HL11 (L)", WeaponType: "Rifle", Damage: 32, AmmoBurn: 16, Decay: 0.20, ReloadTime: 3.2, Range: 58},
}

var stockAttachments = []loadout.AttachmentSpec{
	{Name: "A106 Amplifier", Type: "amplifier", DamageBonus: 0.5, DecayDelta: 0.25},
	{Name: "A204 Amplifier", Type: "amplifier", DamageBonus: 1.0, DecayDelta: 0.50},
	{Name: "Laser Sight", Type: "sight", DecayDelta: 0.01, EconomyBonus: 0.1},
	{Name: "Optical Scope", Type: "scope", DecayDelta: 0.02, EconomyBonus: 0.2, RangeBonus: 10},
}
