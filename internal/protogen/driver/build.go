package driver

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"

	"protogen/pkg/errors"
)

// Summary reports what one build pass did.
type Summary struct {
	Generated int
	Fresh     int
	Planned   int // dry-run only
}

// TargetStatus is one row of a status report.
type TargetStatus struct {
	Category string
	Source   string
	Target   string
	Stale    bool
}

// Build regenerates every stale target in the named categories (all of
// them when names is empty). Generation failures and ambiguous tool
// output abort the batch immediately; a source that becomes unreadable
// mid-run only loses its own target and is reported at the end.
func (d *Driver) Build(ctx context.Context, names []string, dryRun bool) (Summary, error) {
	var summary Summary

	cats, err := d.Categories(names)
	if err != nil {
		return summary, err
	}

	var stale []Target
	var statErrs []error
	for _, cat := range cats {
		sources, err := Discover(cat)
		if err != nil {
			return summary, err
		}
		if len(sources) == 0 {
			d.logger.Debug("no sources found", "category", cat.Name, "dir", cat.SourceDir)
			continue
		}

		targets, err := resolveAll(sources)
		if err != nil {
			return summary, err
		}

		for _, tgt := range targets {
			isStale, err := d.IsStale(tgt)
			if err != nil {
				// Per-target failure: skip this one, keep going, report
				// the batch as failed at the end.
				d.logger.Error("staleness check failed", "category", cat.Name, "source", tgt.Source.Path, "error", err)
				statErrs = append(statErrs, err)
				continue
			}
			if isStale {
				stale = append(stale, tgt)
			} else {
				summary.Fresh++
			}
		}
	}

	if dryRun {
		for _, tgt := range stale {
			d.logger.Info("would generate", "category", tgt.Source.Category.Name, "source", tgt.Source.Path, "target", tgt.Path)
		}
		summary.Planned = len(stale)
		return summary, errors.JoinErrors(statErrs...)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for _, tgt := range stale {
		tgt := tgt
		g.Go(func() error {
			return d.Generate(gctx, tgt.Source, tgt)
		})
	}
	genErr := g.Wait()

	if d.manifest != nil {
		// Targets generated before a failure are still valid; keep the
		// manifest truthful either way.
		if err := d.manifest.Save(); err != nil && genErr == nil {
			genErr = err
		}
	}

	if genErr != nil {
		return summary, genErr
	}

	summary.Generated = len(stale)
	return summary, errors.JoinErrors(statErrs...)
}

// Clean deletes every resolved target of the named categories regardless
// of staleness. Deleting an absent file is not an error. Cleaning all
// categories also removes the hash manifest.
func (d *Driver) Clean(names []string) error {
	cats, err := d.Categories(names)
	if err != nil {
		return err
	}

	for _, cat := range cats {
		sources, err := Discover(cat)
		if err != nil {
			return err
		}
		for _, src := range sources {
			tgt, err := ResolveTarget(src)
			if err != nil {
				return err
			}
			if err := os.Remove(tgt.Path); err != nil && !os.IsNotExist(err) {
				return errors.WrapFilesystemError(tgt.Path, "remove", err)
			}
			d.logger.Debug("removed", "target", tgt.Path)
			if d.manifest != nil {
				d.manifest.Forget(tgt.Path)
			}
		}
	}

	if d.manifest != nil {
		if len(names) == 0 {
			return d.manifest.Remove()
		}
		return d.manifest.Save()
	}
	return nil
}

// Status reports the per-target staleness of the named categories without
// touching anything.
func (d *Driver) Status(names []string) ([]TargetStatus, error) {
	cats, err := d.Categories(names)
	if err != nil {
		return nil, err
	}

	var rows []TargetStatus
	for _, cat := range cats {
		sources, err := Discover(cat)
		if err != nil {
			return nil, err
		}
		targets, err := resolveAll(sources)
		if err != nil {
			return nil, err
		}
		for _, tgt := range targets {
			isStale, err := d.IsStale(tgt)
			if err != nil {
				return nil, err
			}
			rows = append(rows, TargetStatus{
				Category: cat.Name,
				Source:   tgt.Source.Path,
				Target:   tgt.Path,
				Stale:    isStale,
			})
		}
	}
	return rows, nil
}

// Sources exposes discovery for commands that need the raw file list,
// such as inspect.
func (d *Driver) Sources(name string) (Category, []SourceFile, error) {
	cats, err := d.Categories([]string{name})
	if err != nil {
		return Category{}, nil, err
	}
	sources, err := Discover(cats[0])
	if err != nil {
		return Category{}, nil, err
	}
	return cats[0], sources, nil
}
