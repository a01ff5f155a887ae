package driver

import (
	"fmt"
	"time"

	"protogen/pkg/config"
	"protogen/pkg/errors"
	"protogen/pkg/logger"
	"protogen/pkg/platform"
)

// Driver orchestrates discovery, staleness checks, generation and cleanup
// across the configured categories. It keeps no state between invocations
// beyond the optional hash manifest; everything else is recomputed from
// the filesystem.
type Driver struct {
	categories []Category

	tool       string
	toolArgs   []string
	outputFlag string
	timeout    time.Duration
	workers    int

	scratchRoot string

	commands platform.CommandFactory
	logger   *logger.Logger

	// non-nil only in hash staleness mode
	manifest *manifest
}

// New builds a driver from the loaded configuration.
func New(cfg *config.Config, commands platform.CommandFactory, log *logger.Logger) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Driver{
		categories:  CategoriesFromConfig(cfg),
		tool:        cfg.Tool,
		toolArgs:    cfg.ToolArgs,
		outputFlag:  cfg.OutputFlag,
		timeout:     cfg.ToolTimeout,
		workers:     cfg.Workers,
		scratchRoot: cfg.ScratchRoot,
		commands:    commands,
		logger:      log.WithField("component", "driver"),
	}

	if cfg.Staleness == "hash" {
		d.manifest = newManifest(manifestPath(cfg.DestRoot))
		if err := d.manifest.Load(); err != nil {
			// A corrupt or unreadable manifest degrades to "everything
			// stale", which regenerates and rewrites it.
			d.logger.Warn("hash manifest unreadable, treating all targets as stale", "error", err)
		}
	}

	return d, nil
}

// Categories returns the resolved categories matching the given names, or
// all of them when names is empty.
func (d *Driver) Categories(names []string) ([]Category, error) {
	if len(names) == 0 {
		return d.categories, nil
	}

	var out []Category
	for _, name := range names {
		found := false
		for _, cat := range d.categories {
			if cat.Name == name {
				out = append(out, cat)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", errors.ErrUnknownCategory, name)
		}
	}
	return out, nil
}
