package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"protogen/internal/protogen/driver"
	"protogen/pkg/platform"
)

// newBuildCmd creates the build command. With no argument (or "all") it
// processes every configured category; with a category name it processes
// just that one.
func newBuildCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "build [base|wrapped|dss|all]",
		Short: "Regenerate stale targets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(args, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Report what would be generated without invoking the tool")

	return cmd
}

func runBuild(args []string, dryRun bool) error {
	d, err := driver.New(cfg, platform.NewCommandFactory(), log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := d.Build(ctx, categoryArgs(args), dryRun)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Printf("Dry run: %d target(s) would be generated, %d fresh\n", summary.Planned, summary.Fresh)
		return nil
	}

	fmt.Printf("Build complete: %d generated, %d fresh\n", summary.Generated, summary.Fresh)
	return nil
}
