package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pedlog/pedlog-go/internal/gamedata"
	"github.com/pedlog/pedlog-go/internal/store"
	"github.com/pedlog/pedlog-go/pkg/pedlog/loadout"
)

var (
	// weapons flags
	weaponsDBPath     string
	weaponsName       string
	weaponsAmplifier  string
	weaponsScope      string
	weaponsDamageEnh  int
	weaponsEconomyEnh int
)

var weaponsCmd = &cobra.Command{
	Use:   "weapons",
	Short: "List weapons and compute per-shot economics",
	Long: `List the weapon catalog, or compute the per-shot economics of one
loadout.

Without --weapon, prints the known weapons with their base cost per
shot. With --weapon, prints the full derived stats for that weapon plus
any attachments and enhancer levels.

Examples:
  # List the catalog
  pedlog weapons

  # Economics for an amped, enhanced rifle
  pedlog weapons --weapon "Opalo" --amp "A106 Amplifier" --damage-enh 5 --economy-enh 2

  # Use a database catalog with custom weapons
  pedlog weapons --db ~/pedlog.db --weapon "My Custom Gun"`,
	RunE: runWeapons,
}

func init() {
	weaponsCmd.Flags().StringVar(&weaponsDBPath, "db", "",
		"SQLite database with a seeded weapon catalog (default: built-in catalog)")
	weaponsCmd.Flags().StringVarP(&weaponsName, "weapon", "w", "",
		"Weapon name to compute economics for")
	weaponsCmd.Flags().StringVar(&weaponsAmplifier, "amp", "",
		"Amplifier attachment name")
	weaponsCmd.Flags().StringVar(&weaponsScope, "scope", "",
		"Scope attachment name")
	weaponsCmd.Flags().IntVar(&weaponsDamageEnh, "damage-enh", 0,
		"Damage enhancer levels (0-20)")
	weaponsCmd.Flags().IntVar(&weaponsEconomyEnh, "economy-enh", 0,
		"Economy enhancer levels (0-20)")
}

func runWeapons(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	catalog := gamedata.Default()

	var repo loadout.Repository = catalog
	if weaponsDBPath != "" {
		db, err := store.Open(weaponsDBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()
		if err := db.SeedCatalog(ctx, catalog.Weapons(), catalog.Attachments()); err != nil {
			return fmt.Errorf("seeding catalog: %w", err)
		}
		repo = db
	}

	if weaponsName == "" {
		return listWeapons(catalog)
	}

	lo := loadout.Loadout{
		Weapon:     weaponsName,
		Amplifier:  weaponsAmplifier,
		Scope:      weaponsScope,
		DamageEnh:  weaponsDamageEnh,
		EconomyEnh: weaponsEconomyEnh,
	}
	stats, err := loadout.Resolve(ctx, repo, lo)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "weapon:\t%s\n", weaponsName)
	if weaponsAmplifier != "" {
		fmt.Fprintf(tw, "amplifier:\t%s\n", weaponsAmplifier)
	}
	if weaponsScope != "" {
		fmt.Fprintf(tw, "scope:\t%s\n", weaponsScope)
	}
	if weaponsDamageEnh > 0 || weaponsEconomyEnh > 0 {
		fmt.Fprintf(tw, "enhancers:\t%d damage, %d economy\n", weaponsDamageEnh, weaponsEconomyEnh)
	}
	fmt.Fprintf(tw, "damage:\t%.2f\n", stats.Damage)
	fmt.Fprintf(tw, "ammo burn:\t%.0f\n", stats.AmmoBurn)
	fmt.Fprintf(tw, "decay:\t%.6f PED\n", stats.Decay)
	fmt.Fprintf(tw, "cost per shot:\t%.6f PED\n", stats.CostPerShot)
	fmt.Fprintf(tw, "dps:\t%.2f\n", stats.DPS)
	fmt.Fprintf(tw, "dmg per PEC:\t%.4f\n", stats.DamagePerPEC)
	return tw.Flush()
}

// listWeapons prints the catalog with base per-shot cost.
func listWeapons(catalog *gamedata.Catalog) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tDAMAGE\tCOST/SHOT\tDPS\tDMG/PEC")
	for _, w := range catalog.Weapons() {
		stats := loadout.Compute(w, loadout.Attachments{}, 0, 0)
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.6f\t%.2f\t%.4f\n",
			w.Name, w.WeaponType, stats.Damage, stats.CostPerShot, stats.DPS, stats.DamagePerPEC)
	}
	return tw.Flush()
}
