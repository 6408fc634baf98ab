package toolchain

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"

	"github.com/refmatrix/refmatrix/internal/ctxlog"
)

// Command is one blocking external command: what to exec, where, and with
// which extra environment on top of the process's own.
type Command struct {
	// Label identifies the step for logs and failure reports ("build",
	// "unit tests", ...).
	Label string

	// Argv is the program and its arguments. Must not be empty.
	Argv []string

	// Dir is the working directory.
	Dir string

	// Env is extra environment appended to os.Environ for this command.
	Env map[string]string
}

// Runner executes external commands one at a time. A non-nil error means
// the command could not start or exited non-zero.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands through os/exec, streaming their output to the
// given writers (the process's own streams by default).
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns an ExecRunner wired to the process's streams.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	if len(cmd.Argv) == 0 {
		return fmt.Errorf("command %q has no argv", cmd.Label)
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Running external command.", "label", cmd.Label, "argv", cmd.Argv, "dir", cmd.Dir)

	c := exec.CommandContext(ctx, cmd.Argv[0], cmd.Argv[1:]...)
	c.Dir = cmd.Dir
	c.Env = mergedEnviron(cmd.Env)
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr

	if err := c.Run(); err != nil {
		return fmt.Errorf("%s (%s) failed: %w", cmd.Label, cmd.Argv[0], err)
	}
	return nil
}

// mergedEnviron appends extra variables to the inherited environment in a
// stable order. Later entries win, so the extras override inherited values.
func mergedEnviron(extra map[string]string) []string {
	if len(extra) == 0 {
		return os.Environ()
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := os.Environ()
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}
