package loadout

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by repositories when a weapon or attachment
// name has no reference data. For attachments this degrades to a
// zero-contribution slot; for weapons it makes the whole calculation
// unavailable.
var ErrNotFound = errors.New("not found")

// Repository looks up weapon and attachment reference data by name.
// Lookups are case-insensitive on the name.
type Repository interface {
	WeaponByName(ctx context.Context, name string) (WeaponSpec, error)
	AttachmentByName(ctx context.Context, name string) (AttachmentSpec, error)
}

// Resolve looks up every named component of a loadout and computes its
// per-shot economics.
//
// A missing weapon makes the stats unavailable: Resolve returns an
// error wrapping ErrNotFound, which is distinct from a valid zero-cost
// weapon. Missing attachments contribute zero and are not an error.
func Resolve(ctx context.Context, repo Repository, lo Loadout) (Stats, error) {
	if lo.Weapon == "" {
		return Stats{}, fmt.Errorf("loadout has no weapon: %w", ErrNotFound)
	}
	weapon, err := repo.WeaponByName(ctx, lo.Weapon)
	if err != nil {
		return Stats{}, fmt.Errorf("weapon %q: %w", lo.Weapon, err)
	}

	atts := Attachments{
		Amplifier: lookupAttachment(ctx, repo, lo.Amplifier),
		Scope:     lookupAttachment(ctx, repo, lo.Scope),
		Sight1:    lookupAttachment(ctx, repo, lo.Sight1),
		Sight2:    lookupAttachment(ctx, repo, lo.Sight2),
	}
	return Compute(weapon, atts, lo.DamageEnh, lo.EconomyEnh), nil
}

// lookupAttachment resolves an optional attachment slot. Empty names
// and lookup misses both mean "slot absent".
func lookupAttachment(ctx context.Context, repo Repository, name string) *AttachmentSpec {
	if name == "" {
		return nil
	}
	att, err := repo.AttachmentByName(ctx, name)
	if err != nil {
		return nil
	}
	return &att
}
