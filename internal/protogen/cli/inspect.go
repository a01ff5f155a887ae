package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"protogen/internal/protogen/driver"
	"protogen/internal/protogen/inspect"
	"protogen/pkg/platform"
)

// newInspectCmd creates the inspect command: compile one category to a
// descriptor set and summarize its messages and enums.
func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <category>",
		Short: "Compile a category to descriptors and summarize its contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0])
		},
	}
}

func runInspect(name string) error {
	factory := platform.NewCommandFactory()

	d, err := driver.New(cfg, factory, log)
	if err != nil {
		return err
	}

	cat, sources, err := d.Sources(name)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		fmt.Printf("Category %s has no sources\n", name)
		return nil
	}

	ins := inspect.New(cfg.DescriptorTool, cfg.ToolTimeout, factory)
	report, err := ins.Run(context.Background(), cat, sources)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tPACKAGE\tMESSAGES\tENUMS")
	for _, file := range report.Files {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", file.Name, file.Package, file.Messages, file.Enums)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(report.Collisions) > 0 {
		fmt.Printf("\nWarning: duplicate basenames would collide after generation: %s\n",
			strings.Join(report.Collisions, ", "))
	}

	return nil
}
