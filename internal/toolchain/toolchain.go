package toolchain

import (
	"context"

	"github.com/refmatrix/refmatrix/internal/settings"
)

// Toolchain wraps a Runner with the build-system verbs the driver needs.
// Every verb is a single blocking command run from the library tree root.
type Toolchain struct {
	runner Runner
	root   string
	cfg    *settings.Settings
}

// New builds a Toolchain over the given runner and settings.
func New(runner Runner, cfg *settings.Settings) *Toolchain {
	return &Toolchain{
		runner: runner,
		root:   cfg.Paths.Root,
		cfg:    cfg,
	}
}

// Clean runs the build system's clean target.
func (t *Toolchain) Clean(ctx context.Context, env map[string]string) error {
	return t.runner.Run(ctx, Command{
		Label: "clean",
		Argv:  []string{t.cfg.Build.Make, "clean"},
		Dir:   t.root,
		Env:   env,
	})
}

// Build compiles the library with the given compiler flags.
func (t *Toolchain) Build(ctx context.Context, cflags string, env map[string]string) error {
	return t.runner.Run(ctx, Command{
		Label: "build",
		Argv:  []string{t.cfg.Build.Make, "CFLAGS=" + cflags},
		Dir:   t.root,
		Env:   env,
	})
}

// Test runs the mandatory unit-test suite.
func (t *Toolchain) Test(ctx context.Context, env map[string]string) error {
	return t.runner.Run(ctx, Command{
		Label: "unit tests",
		Argv:  []string{t.cfg.Build.Make, "test"},
		Dir:   t.root,
		Env:   env,
	})
}

// SetOption enables one boolean build option in the active configuration
// header via the library's option script.
func (t *Toolchain) SetOption(ctx context.Context, name string, env map[string]string) error {
	return t.runner.Run(ctx, Command{
		Label: "set option " + name,
		Argv:  []string{t.cfg.Resolve(t.cfg.Paths.OptionScript), "set", name},
		Dir:   t.root,
		Env:   env,
	})
}

// CompatTest runs the interoperability script with configuration-specific
// filter arguments.
func (t *Toolchain) CompatTest(ctx context.Context, args string, env map[string]string) error {
	argv, err := t.scriptArgv(t.cfg.Paths.CompatScript, args)
	if err != nil {
		return err
	}
	return t.runner.Run(ctx, Command{
		Label: "compat tests",
		Argv:  argv,
		Dir:   t.root,
		Env:   env,
	})
}

// OptionsTest runs the options-test script with configuration-specific
// arguments.
func (t *Toolchain) OptionsTest(ctx context.Context, args string, env map[string]string) error {
	argv, err := t.scriptArgv(t.cfg.Paths.OptionsScript, args)
	if err != nil {
		return err
	}
	return t.runner.Run(ctx, Command{
		Label: "options tests",
		Argv:  argv,
		Dir:   t.root,
		Env:   env,
	})
}

func (t *Toolchain) scriptArgv(script, args string) ([]string, error) {
	extra, err := SplitArgs(args)
	if err != nil {
		return nil, err
	}
	return append([]string{t.cfg.Resolve(script)}, extra...), nil
}
