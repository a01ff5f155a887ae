// Package driver implements the codegen driver: discover proto sources per
// category, decide which targets are stale, run the external generator for
// each stale input in an isolated scratch directory, and move the result
// to its deterministic destination path.
package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"protogen/pkg/config"
	"protogen/pkg/errors"
)

// Category is a named group of proto files sharing a source directory, a
// destination directory, and an extension pair.
type Category struct {
	Name      string
	SourceDir string
	DestDir   string
	InputExt  string
	OutputExt string
}

// SourceFile is one discovered descriptor file.
type SourceFile struct {
	Path     string
	Category Category
}

// Target is the expected generated-output file for one source.
type Target struct {
	Path   string
	Source SourceFile
}

// CategoriesFromConfig resolves configured categories against the proto
// and destination roots.
func CategoriesFromConfig(cfg *config.Config) []Category {
	cats := make([]Category, 0, len(cfg.Categories))
	for _, cc := range cfg.Categories {
		cats = append(cats, Category{
			Name:      cc.Name,
			SourceDir: filepath.Join(cfg.ProtoRoot, cc.SourceDir),
			DestDir:   filepath.Join(cfg.DestRoot, cc.DestDir),
			InputExt:  cc.InputExt,
			OutputExt: cc.OutputExt,
		})
	}
	return cats
}

// Discover lists the source files of a category. A missing source
// directory yields an empty set, mirroring glob-on-missing-directory.
// Results are sorted so logs and processing order are stable.
func Discover(cat Category) ([]SourceFile, error) {
	entries, err := os.ReadDir(cat.SourceDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapFilesystemError(cat.SourceDir, "readdir", err)
	}

	var sources []SourceFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), cat.InputExt) {
			continue
		}
		sources = append(sources, SourceFile{
			Path:     filepath.Join(cat.SourceDir, entry.Name()),
			Category: cat,
		})
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Path < sources[j].Path })
	return sources, nil
}

// ResolveTarget maps a source file to its target path by substituting the
// destination directory and the output extension. Pure, no I/O.
func ResolveTarget(src SourceFile) (Target, error) {
	base := filepath.Base(src.Path)
	if !strings.HasSuffix(base, src.Category.InputExt) {
		return Target{}, errors.NewPathError(src.Path)
	}

	name := strings.TrimSuffix(base, src.Category.InputExt) + src.Category.OutputExt
	return Target{
		Path:   filepath.Join(src.Category.DestDir, name),
		Source: src,
	}, nil
}

// resolveAll resolves every source of a category and rejects target-path
// collisions within it.
func resolveAll(sources []SourceFile) ([]Target, error) {
	targets := make([]Target, 0, len(sources))
	seen := make(map[string]string, len(sources))
	for _, src := range sources {
		tgt, err := ResolveTarget(src)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[tgt.Path]; ok {
			return nil, fmt.Errorf("category %s: %w: %s claimed by both %s and %s",
				src.Category.Name, errors.ErrTargetCollide, tgt.Path, prev, src.Path)
		}
		seen[tgt.Path] = src.Path
		targets = append(targets, tgt)
	}
	return targets, nil
}
