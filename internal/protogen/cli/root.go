// Package cli wires the protogen command tree: build, clean, status,
// inspect and version, plus the shared configuration and logger setup.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"protogen/pkg/config"
	"protogen/pkg/logger"
)

var (
	cfg *config.Config
	log *logger.Logger

	configPath string
	workers    int
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "protogen",
	Short: "protogen - incremental protobuf code generation driver",
	Long: `protogen drives an external protobuf code generator over the proto tree
and keeps the generated sources up to date. Only inputs newer than their
generated counterpart are recompiled.

Categories follow the repository layout: base (tree roots), wrapped and
dss (same-named subdirectories on both sides).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if workers > 0 {
			cfg.Workers = workers
		}

		level, err := logger.ParseLevel(cfg.LogLevel)
		if err != nil {
			level = logger.INFO
		}
		if verbose {
			level = logger.DEBUG
		}
		log = logger.New()
		log.SetLevel(level)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to configuration file (searches common locations if not specified)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0,
		"Number of parallel generator invocations (overrides configuration)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newCleanCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// categoryArgs maps the positional category argument to driver category
// names. No argument and "all" both mean every configured category.
func categoryArgs(args []string) []string {
	if len(args) == 0 || args[0] == "all" {
		return nil
	}
	return args[:1]
}
