package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"protogen/internal/protogen/driver"
	"protogen/pkg/platform"
)

// newStatusCmd creates the status command: a read-only report of which
// targets are fresh and which would be regenerated.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [base|wrapped|dss|all]",
		Short: "Show per-target staleness without generating anything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(args)
		},
	}
}

func runStatus(args []string) error {
	d, err := driver.New(cfg, platform.NewCommandFactory(), log)
	if err != nil {
		return err
	}

	rows, err := d.Status(categoryArgs(args))
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		fmt.Println("No sources found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tSOURCE\tTARGET\tSTATE")
	stale := 0
	for _, row := range rows {
		state := "fresh"
		if row.Stale {
			state = "stale"
			stale++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", row.Category, row.Source, row.Target, state)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d target(s), %d stale\n", len(rows), stale)
	return nil
}
