package testutil

import (
	"context"
	"sync"

	"github.com/refmatrix/refmatrix/internal/toolchain"
)

// ScriptedRunner is a toolchain.Runner for tests: it records every command
// instead of spawning processes, and fails whichever commands FailOn says
// should fail.
type ScriptedRunner struct {
	mu       sync.Mutex
	commands []toolchain.Command

	// FailOn, when set, is consulted for every command; a non-nil return
	// makes that command "exit non-zero".
	FailOn func(cmd toolchain.Command) error
}

// Run implements toolchain.Runner.
func (r *ScriptedRunner) Run(_ context.Context, cmd toolchain.Command) error {
	r.mu.Lock()
	// Decouple the record from the caller's env map.
	env := make(map[string]string, len(cmd.Env))
	for k, v := range cmd.Env {
		env[k] = v
	}
	cmd.Env = env
	r.commands = append(r.commands, cmd)
	r.mu.Unlock()

	if r.FailOn != nil {
		return r.FailOn(cmd)
	}
	return nil
}

// Commands returns everything recorded so far.
func (r *ScriptedRunner) Commands() []toolchain.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]toolchain.Command(nil), r.commands...)
}

// Labels returns the recorded command labels in order, which is usually all
// an ordering assertion needs.
func (r *ScriptedRunner) Labels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	labels := make([]string, len(r.commands))
	for i, cmd := range r.commands {
		labels[i] = cmd.Label
	}
	return labels
}
