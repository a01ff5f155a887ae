package driver

import (
	"os"

	"protogen/pkg/errors"
)

// IsStale reports whether a target needs regeneration. In mtime mode a
// target is stale when it is absent or strictly older than its source. In
// hash mode it is stale when absent, unknown to the manifest, or its
// recorded source hash no longer matches.
func (d *Driver) IsStale(tgt Target) (bool, error) {
	targetInfo, err := os.Stat(tgt.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, errors.WrapFilesystemError(tgt.Path, "stat", err)
	}

	if d.manifest != nil {
		recorded, ok := d.manifest.Get(tgt.Path)
		if !ok {
			return true, nil
		}
		current, err := hashFile(tgt.Source.Path)
		if err != nil {
			return false, err
		}
		return current != recorded, nil
	}

	// The source was just discovered; a stat failure here means it went
	// away mid-run.
	sourceInfo, err := os.Stat(tgt.Source.Path)
	if err != nil {
		return false, errors.WrapFilesystemError(tgt.Source.Path, "stat", err)
	}

	return targetInfo.ModTime().Before(sourceInfo.ModTime()), nil
}
