package driver

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"protogen/pkg/errors"
)

func TestCategoriesFromConfig(t *testing.T) {
	cfg := newTestConfig(t)

	cats := CategoriesFromConfig(cfg)
	require.Len(t, cats, 3)

	assert.Equal(t, "base", cats[0].Name)
	assert.Equal(t, cfg.ProtoRoot, cats[0].SourceDir)
	assert.Equal(t, cfg.DestRoot, cats[0].DestDir)

	assert.Equal(t, "wrapped", cats[1].Name)
	assert.Equal(t, filepath.Join(cfg.ProtoRoot, "wrapped"), cats[1].SourceDir)
	assert.Equal(t, filepath.Join(cfg.DestRoot, "wrapped"), cats[1].DestDir)
}

func TestDiscover(t *testing.T) {
	cfg := newTestConfig(t)
	writeProto(t, cfg, "", "secret.proto", "x")
	writeProto(t, cfg, "", "share.proto", "x")
	writeProto(t, cfg, "", "notes.txt", "x")
	// subdirectory files belong to other categories, not base
	writeProto(t, cfg, "wrapped", "secret.proto", "x")

	cats := CategoriesFromConfig(cfg)
	sources, err := Discover(cats[0])
	require.NoError(t, err)

	require.Len(t, sources, 2)
	// sorted
	assert.Equal(t, "secret.proto", filepath.Base(sources[0].Path))
	assert.Equal(t, "share.proto", filepath.Base(sources[1].Path))
	for _, src := range sources {
		assert.Equal(t, "base", src.Category.Name)
	}
}

func TestDiscover_MissingDirIsEmpty(t *testing.T) {
	cfg := newTestConfig(t)
	// proto root never created

	cats := CategoriesFromConfig(cfg)
	sources, err := Discover(cats[2])
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestResolveTarget(t *testing.T) {
	cfg := newTestConfig(t)
	cats := CategoriesFromConfig(cfg)

	src := SourceFile{
		Path:     filepath.Join(cats[1].SourceDir, "secret.proto"),
		Category: cats[1],
	}

	tgt, err := ResolveTarget(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cats[1].DestDir, "secret.rs"), tgt.Path)
	assert.Equal(t, src, tgt.Source)

	// pure: same input, same output
	again, err := ResolveTarget(src)
	require.NoError(t, err)
	assert.Equal(t, tgt, again)
}

func TestResolveTarget_WrongExtension(t *testing.T) {
	cfg := newTestConfig(t)
	cats := CategoriesFromConfig(cfg)

	src := SourceFile{
		Path:     filepath.Join(cats[0].SourceDir, "readme.md"),
		Category: cats[0],
	}

	_, err := ResolveTarget(src)
	require.Error(t, err)
	assert.True(t, errors.IsPathError(err))
}

func TestResolveAll_Collision(t *testing.T) {
	cfg := newTestConfig(t)
	cats := CategoriesFromConfig(cfg)

	// Distinct source paths that collapse to the same target basename.
	a := SourceFile{Path: filepath.Join("elsewhere", "secret.proto"), Category: cats[0]}
	b := SourceFile{Path: filepath.Join(cats[0].SourceDir, "secret.proto"), Category: cats[0]}

	_, err := resolveAll([]SourceFile{a, b})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTargetCollide)
}

func TestResolveAll_NoCollision(t *testing.T) {
	cfg := newTestConfig(t)
	writeProto(t, cfg, "", "secret.proto", "x")
	writeProto(t, cfg, "", "share.proto", "x")

	cats := CategoriesFromConfig(cfg)
	sources, err := Discover(cats[0])
	require.NoError(t, err)

	targets, err := resolveAll(sources)
	require.NoError(t, err)
	require.Len(t, targets, 2)

	seen := map[string]bool{}
	for _, tgt := range targets {
		assert.False(t, seen[tgt.Path], "duplicate target %s", tgt.Path)
		seen[tgt.Path] = true
	}
}
