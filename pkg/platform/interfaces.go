// Package platform abstracts external process execution so the driver can
// be tested without a real code-generation tool on PATH.
package platform

import (
	"context"
	"io"
)

// CommandFactory creates and resolves external commands
type CommandFactory interface {
	CommandContext(ctx context.Context, name string, args ...string) Command
	LookPath(file string) (string, error)
}

// Command represents one external process invocation
type Command interface {
	Run() error
	SetDir(dir string)
	SetStdout(w io.Writer)
	SetStderr(w io.Writer)
	SetEnv(env []string)
}
