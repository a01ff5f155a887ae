package driver

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"protogen/pkg/config"
	"protogen/pkg/logger"
	"protogen/pkg/platform"
)

// fakeFactory stands in for the external tool. Its behavior function
// receives the invocation and typically writes files into the scratch
// directory the way a real generator would.
type fakeFactory struct {
	mu       sync.Mutex
	calls    [][]string
	behavior func(name string, args []string, stdout, stderr io.Writer) error
}

func (f *fakeFactory) CommandContext(ctx context.Context, name string, args ...string) platform.Command {
	return &fakeCommand{factory: f, ctx: ctx, name: name, args: args}
}

func (f *fakeFactory) LookPath(file string) (string, error) {
	return file, nil
}

func (f *fakeFactory) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.calls...)
}

type fakeCommand struct {
	factory *fakeFactory
	ctx     context.Context
	name    string
	args    []string
	stdout  io.Writer
	stderr  io.Writer
}

func (c *fakeCommand) Run() error {
	c.factory.mu.Lock()
	c.factory.calls = append(c.factory.calls, append([]string{c.name}, c.args...))
	c.factory.mu.Unlock()

	if err := c.ctx.Err(); err != nil {
		return err
	}
	if c.factory.behavior == nil {
		return nil
	}
	return c.factory.behavior(c.name, c.args, c.stdout, c.stderr)
}

func (c *fakeCommand) SetDir(dir string) {}

func (c *fakeCommand) SetStdout(w io.Writer) { c.stdout = w }

func (c *fakeCommand) SetStderr(w io.Writer) { c.stderr = w }

func (c *fakeCommand) SetEnv(env []string) {}

// emitOne is the well-behaved tool contract: exactly one output file in
// the scratch directory, derived from the input basename.
func emitOne(t *testing.T, outputExt string) func(string, []string, io.Writer, io.Writer) error {
	t.Helper()
	return func(name string, args []string, stdout, stderr io.Writer) error {
		scratch, input := scratchAndInput(args)
		base := filepath.Base(input)
		out := base[:len(base)-len(filepath.Ext(base))] + outputExt
		return os.WriteFile(filepath.Join(scratch, out), []byte("generated from "+input), 0644)
	}
}

// scratchAndInput extracts the scratch directory and input file from the
// driver's argv contract: ... <output-flag> <scratch> <input>.
func scratchAndInput(args []string) (string, string) {
	return args[len(args)-2], args[len(args)-1]
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()

	cfg := config.GetDefaults()
	cfg.Tool = "fake-tool"
	cfg.ProtoRoot = filepath.Join(root, "protos")
	cfg.DestRoot = filepath.Join(root, "src", "proto")
	cfg.ScratchRoot = filepath.Join(root, "scratch")
	require.NoError(t, os.MkdirAll(cfg.ScratchRoot, 0755))
	return cfg
}

func newTestDriver(t *testing.T, cfg *config.Config, factory *fakeFactory) *Driver {
	t.Helper()
	log := logger.NewWithConfig(logger.Config{Level: logger.ERROR, Output: io.Discard})
	d, err := New(cfg, factory, log)
	require.NoError(t, err)
	return d
}

// writeProto drops a source file into the given category subdirectory of
// the proto root ("" means the root itself).
func writeProto(t *testing.T, cfg *config.Config, subdir, name, content string) string {
	t.Helper()
	dir := filepath.Join(cfg.ProtoRoot, subdir)
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// backdate pushes a file's timestamps into the past so that a subsequent
// write elsewhere reads as strictly newer even on coarse filesystems.
func backdate(t *testing.T, path string, age time.Duration) {
	t.Helper()
	old := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, old, old))
}
