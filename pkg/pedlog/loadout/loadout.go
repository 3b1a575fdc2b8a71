// Package loadout models weapon/attachment combinations and their
// per-shot economics.
//
// All monetary figures are PED except ammo burn, which the game reports
// in hundredths of a PEC (10000 units to one PED).
package loadout

// MaxEnhancerLevel is the number of enhancer sockets per weapon.
const MaxEnhancerLevel = 20

// AmmoUnitsPerPED converts reported ammo-burn units to PED.
const AmmoUnitsPerPED = 10000

// Per-level enhancer multiplier steps.
const (
	damagePerLevel  = 0.10
	economyPerLevel = 0.05
)

// WeaponSpec is the reference data for one weapon.
type WeaponSpec struct {
	Name       string  `json:"name"`
	WeaponType string  `json:"weapon_type"`
	Damage     float64 `json:"damage"`
	AmmoBurn   float64 `json:"ammo_burn"` // hundredths of a PEC per shot
	Decay      float64 `json:"decay"`     // PED per shot
	ReloadTime float64 `json:"reload_time"`
	Range      float64 `json:"range"`
}

// AttachmentSpec is the reference data for one attachment, in any of
// the amplifier/scope/sight roles.
type AttachmentSpec struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	DamageBonus  float64 `json:"damage_bonus"`
	AmmoDelta    float64 `json:"ammo_delta"`
	DecayDelta   float64 `json:"decay_delta"`
	EconomyBonus float64 `json:"economy_bonus"`
	RangeBonus   float64 `json:"range_bonus"`
}

// Attachments groups the optional attachment slots of a loadout.
// Nil slots contribute nothing.
type Attachments struct {
	Amplifier *AttachmentSpec
	Scope     *AttachmentSpec
	Sight1    *AttachmentSpec
	Sight2    *AttachmentSpec
}

// Loadout names a weapon plus its attachments and enhancement levels,
// as configured by the user. Names are resolved against a Repository.
type Loadout struct {
	Weapon    string `json:"weapon" toml:"weapon"`
	Amplifier string `json:"amplifier,omitempty" toml:"amplifier"`
	Scope     string `json:"scope,omitempty" toml:"scope"`
	Sight1    string `json:"sight_1,omitempty" toml:"sight_1"`
	Sight2    string `json:"sight_2,omitempty" toml:"sight_2"`

	DamageEnh   int `json:"damage_enh" toml:"damage_enh"`
	AccuracyEnh int `json:"accuracy_enh" toml:"accuracy_enh"`
	EconomyEnh  int `json:"economy_enh" toml:"economy_enh"`
}

// Stats are the derived per-shot economics of a loadout.
type Stats struct {
	// Damage per shot after enhancers and attachments.
	Damage float64 `json:"damage"`

	// AmmoBurn per shot in hundredths of a PEC.
	AmmoBurn float64 `json:"ammo_burn"`

	// Decay per shot in PED.
	Decay float64 `json:"decay"`

	// CostPerShot is decay plus ammo, in PED.
	CostPerShot float64 `json:"cost_per_shot"`

	// DPS is damage per second (zero for a zero reload time).
	DPS float64 `json:"dps"`

	// DamagePerPEC is damage dealt per hundredth of a PED spent
	// (zero for a free weapon).
	DamagePerPEC float64 `json:"damage_per_pec"`

	// EffectiveRange is the weapon range plus any scope bonus.
	EffectiveRange float64 `json:"effective_range"`
}

// ClampEnhancer clamps an enhancer level to [0, MaxEnhancerLevel].
func ClampEnhancer(level int) int {
	if level < 0 {
		return 0
	}
	if level > MaxEnhancerLevel {
		return MaxEnhancerLevel
	}
	return level
}

// Compute derives the per-shot economics of a weapon with the given
// attachments and enhancement levels.
//
// Damage enhancers add 10% damage (and proportional ammo burn) per
// level. Economy enhancers reduce decay by 5% per level, clamped so
// decay can reach but never go below zero. Attachment deltas are flat
// additions after the multipliers.
func Compute(w WeaponSpec, atts Attachments, damageEnh, economyEnh int) Stats {
	damageMult := 1 + damagePerLevel*float64(ClampEnhancer(damageEnh))
	economyMult := 1 - economyPerLevel*float64(ClampEnhancer(economyEnh))
	if economyMult < 0 {
		economyMult = 0
	}

	damage := w.Damage * damageMult
	ammo := w.AmmoBurn * damageMult
	decay := w.Decay * damageMult * economyMult

	for _, att := range []*AttachmentSpec{atts.Amplifier, atts.Scope, atts.Sight1, atts.Sight2} {
		if att == nil {
			continue
		}
		damage += att.DamageBonus
		ammo += att.AmmoDelta
		decay += att.DecayDelta
	}

	s := Stats{
		Damage:         damage,
		AmmoBurn:       ammo,
		Decay:          decay,
		CostPerShot:    decay + ammo/AmmoUnitsPerPED,
		EffectiveRange: w.Range,
	}
	if atts.Scope != nil {
		s.EffectiveRange += atts.Scope.RangeBonus
	}
	if w.ReloadTime > 0 {
		s.DPS = damage / w.ReloadTime
	}
	if s.CostPerShot > 0 {
		// Cost expressed in hundredths of a PED.
		s.DamagePerPEC = damage / (s.CostPerShot * 100)
	}
	return s
}
