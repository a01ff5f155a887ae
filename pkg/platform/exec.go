package platform

import (
	"context"
	"io"
	"os/exec"
)

// NewCommandFactory returns the os/exec backed factory used outside tests.
func NewCommandFactory() CommandFactory {
	return &execFactory{}
}

type execFactory struct{}

func (f *execFactory) CommandContext(ctx context.Context, name string, args ...string) Command {
	return &execCommand{cmd: exec.CommandContext(ctx, name, args...)}
}

func (f *execFactory) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

type execCommand struct {
	cmd *exec.Cmd
}

func (c *execCommand) Run() error {
	return c.cmd.Run()
}

func (c *execCommand) SetDir(dir string) {
	c.cmd.Dir = dir
}

func (c *execCommand) SetStdout(w io.Writer) {
	c.cmd.Stdout = w
}

func (c *execCommand) SetStderr(w io.Writer) {
	c.cmd.Stderr = w
}

func (c *execCommand) SetEnv(env []string) {
	c.cmd.Env = env
}
