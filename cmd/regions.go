package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/censusmap/internal/region"
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Show region-name reconciliation between census and boundaries",
	Long: `Downloads both inputs and prints how each census region name resolves
through normalization and the alias table against the boundary shapefile.
Use this to diagnose join mismatches before adding alias entries.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		in, cleanup, err := loadInputs(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		aliases, err := region.LoadAliases(cfg.Join.AliasFile)
		if err != nil {
			return err
		}

		boundary := make(map[string]float64, len(in.regs))
		for _, r := range in.regs {
			boundary[region.NormalizeName(r.Name)] = r.AreaKm2
		}

		fmt.Printf("%-32s %-32s %-8s %12s\n", "Census", "Resolved", "Match", "Area km2")
		fmt.Println(strings.Repeat("-", 88))

		matched := make(map[string]bool, len(in.totals))
		for _, t := range in.totals {
			resolved := aliases.Apply(t.Region)
			area, ok := boundary[resolved]
			matched[resolved] = true
			mark := "yes"
			areaStr := fmt.Sprintf("%12.1f", area)
			if !ok {
				mark = "NO"
				areaStr = fmt.Sprintf("%12s", "-")
			}
			fmt.Printf("%-32s %-32s %-8s %s\n", t.Region, resolved, mark, areaStr)
		}

		for name, area := range boundary {
			if !matched[name] {
				fmt.Printf("%-32s %-32s %-8s %12.1f\n", "-", name, "NO", area)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(regionsCmd)
}
