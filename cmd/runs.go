package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/censusmap/internal/runlog"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past pipeline runs from the local ledger",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ledger, err := runlog.Open(cfg.Runlog.Path)
		if err != nil {
			return eris.Wrap(err, "runs: open run ledger")
		}
		defer ledger.Close() //nolint:errcheck

		entries, err := ledger.List(ctx)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No runs recorded yet")
			return nil
		}

		fmt.Printf("%-36s %-9s %-17s %8s %8s %10s %s\n",
			"ID", "Status", "Started", "Regions", "Rows", "Unmatched", "Output")
		fmt.Println(strings.Repeat("-", 100))

		for _, e := range entries {
			out := e.Output
			if e.Status == "failed" {
				out = e.Error
			}
			fmt.Printf("%-36s %-9s %-17s %8d %8d %10d %s\n",
				e.ID, e.Status, e.StartedAt.Format("2006-01-02 15:04"),
				e.Regions, e.Rows, e.Unmatched, out)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
}
