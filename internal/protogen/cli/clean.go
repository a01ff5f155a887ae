package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"protogen/internal/protogen/driver"
	"protogen/pkg/platform"
)

// newCleanCmd creates the clean command, which deletes every resolved
// target across all categories regardless of staleness.
func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Delete all generated targets",
		Args:  cobra.NoArgs,
		RunE:  runClean,
	}
}

func runClean(cmd *cobra.Command, args []string) error {
	d, err := driver.New(cfg, platform.NewCommandFactory(), log)
	if err != nil {
		return err
	}

	if err := d.Clean(nil); err != nil {
		return fmt.Errorf("clean failed: %w", err)
	}

	fmt.Println("Clean complete")
	return nil
}
