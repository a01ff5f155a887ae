package driver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"protogen/pkg/errors"
)

// toolOutputTail bounds how much of the tool's combined output is carried
// into a GenerationError.
const toolOutputTail = 4096

// Generate runs the external tool for one stale target: a fresh scratch
// directory is created for this invocation alone, the tool writes into
// it, and the single matching output file is moved over the target path.
// The scratch directory is removed on every exit path, so a failed run
// leaves no leftovers for the next one to trip over.
func (d *Driver) Generate(ctx context.Context, src SourceFile, tgt Target) (err error) {
	scratch, err := os.MkdirTemp(d.scratchRoot, "protogen-"+src.Category.Name+"-*")
	if err != nil {
		return errors.WrapFilesystemError(d.scratchRoot, "mkdtemp", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(scratch); rmErr != nil && err == nil {
			err = errors.WrapFilesystemError(scratch, "removeall", rmErr)
		}
	}()

	log := d.logger.WithFields("category", src.Category.Name, "source", src.Path)
	log.Info("generating", "target", tgt.Path)

	if err := d.runTool(ctx, src, scratch); err != nil {
		return err
	}

	generated, err := d.findOutput(src, scratch)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(tgt.Path), 0755); err != nil {
		return errors.WrapFilesystemError(filepath.Dir(tgt.Path), "mkdir", err)
	}
	if err := moveFile(generated, tgt.Path); err != nil {
		return err
	}

	if d.manifest != nil {
		hash, err := hashFile(src.Path)
		if err != nil {
			return err
		}
		d.manifest.Record(tgt.Path, hash)
	}

	log.Info("moved", "target", tgt.Path)
	return nil
}

// runTool invokes the external generator synchronously with the
// configured timeout: <tool> [args...] <output-flag> <scratch> <input>.
func (d *Driver) runTool(ctx context.Context, src SourceFile, scratch string) error {
	toolCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	args := make([]string, 0, len(d.toolArgs)+3)
	args = append(args, d.toolArgs...)
	args = append(args, d.outputFlag, scratch, src.Path)

	var output bytes.Buffer
	cmd := d.commands.CommandContext(toolCtx, d.tool, args...)
	cmd.SetStdout(&output)
	cmd.SetStderr(&output)

	if err := cmd.Run(); err != nil {
		cause := fmt.Errorf("%w: %v", errors.ErrToolFailed, err)
		if toolCtx.Err() == context.DeadlineExceeded {
			cause = fmt.Errorf("%w after %s", errors.ErrToolTimeout, d.timeout)
		}
		return errors.WrapGenerationError(src.Category.Name, src.Path, tail(output.String()), cause)
	}
	return nil
}

// findOutput locates the single generated file in the scratch directory.
// Anything other than exactly one match violates the one-input-one-output
// tool contract.
func (d *Driver) findOutput(src SourceFile, scratch string) (string, error) {
	entries, err := os.ReadDir(scratch)
	if err != nil {
		return "", errors.WrapFilesystemError(scratch, "readdir", err)
	}

	var matches []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), src.Category.OutputExt) {
			continue
		}
		matches = append(matches, filepath.Join(scratch, entry.Name()))
	}

	if len(matches) != 1 {
		return "", errors.NewAmbiguousOutputError(src.Category.Name, src.Path, len(matches))
	}
	return matches[0], nil
}

// moveFile renames src over dst, falling back to copy-and-remove when the
// scratch directory lives on a different filesystem than the destination.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return errors.WrapFilesystemError(src, "open", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.WrapFilesystemError(dst, "create", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.WrapFilesystemError(dst, "copy", err)
	}
	if err := out.Close(); err != nil {
		return errors.WrapFilesystemError(dst, "close", err)
	}

	if err := os.Remove(src); err != nil {
		return errors.WrapFilesystemError(src, "remove", err)
	}
	return nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= toolOutputTail {
		return s
	}
	return "..." + s[len(s)-toolOutputTail:]
}
