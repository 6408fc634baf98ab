package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/refmatrix/refmatrix/internal/ctxlog"
	"github.com/refmatrix/refmatrix/internal/matrix"
	"github.com/refmatrix/refmatrix/internal/settings"
	"github.com/refmatrix/refmatrix/internal/toolchain"
	"github.com/refmatrix/refmatrix/internal/workspace"
)

// EnvConfigName is the environment variable identifying the active
// configuration to every command of a run.
const EnvConfigName = "REFMATRIX_CONFIG"

// ErrTestsFailed reports that at least one configuration failed its
// compatibility or options tests. The run itself completed.
var ErrTestsFailed = errors.New("one or more configurations failed")

// Driver walks the selected configurations in order, running the full
// build-and-test sequence for each. It is strictly sequential: one external
// command at a time, each awaited before the next starts.
type Driver struct {
	tc  *toolchain.Toolchain
	ws  *workspace.Workspace
	cfg *settings.Settings
}

// New builds a Driver.
func New(tc *toolchain.Toolchain, ws *workspace.Workspace, cfg *settings.Settings) *Driver {
	return &Driver{tc: tc, ws: ws, cfg: cfg}
}

// Run executes every case in the order given. Build and unit-test failures
// abort the whole run; compatibility/options failures fail only that
// configuration's run and the walk continues. The original configuration
// header is restored and the tree cleaned on every exit path, best effort.
func (d *Driver) Run(ctx context.Context, cases []matrix.Case) ([]Result, error) {
	logger := ctxlog.FromContext(ctx)

	if err := d.ws.EnsureSeedfile(); err != nil {
		return nil, err
	}
	if err := d.ws.Backup(); err != nil {
		return nil, err
	}
	logger.Debug("Configuration header backed up.", "header", d.ws.Header())

	defer func() {
		if err := d.ws.Restore(); err != nil {
			// Never escalate: a failed restore must not mask the run's outcome.
			logger.Warn("Could not restore the original configuration header.", "error", err)
		}
		if err := d.tc.Clean(ctx, nil); err != nil {
			logger.Warn("Final clean failed.", "error", err)
		}
	}()

	var results []Result
	anyFailed := false
	for _, c := range cases {
		passes := []bool{false}
		if c.TestWithFacade {
			passes = append(passes, true)
		}
		for _, facade := range passes {
			res, err := d.runCase(ctx, c, facade)
			results = append(results, res)
			if err != nil {
				return results, err
			}
			if res.Status == StatusFailed {
				anyFailed = true
			}
		}
	}

	if anyFailed {
		return results, ErrTestsFailed
	}
	return results, nil
}

// runCase runs one configuration once, with or without the crypto facade.
// A non-nil error is fatal for the whole run; a Result with StatusFailed
// and a nil error fails only this configuration.
func (d *Driver) runCase(ctx context.Context, c matrix.Case, facade bool) (Result, error) {
	label := c.Name
	if facade {
		label += "+facade"
	}
	logger := ctxlog.FromContext(ctx).With("configuration", label)
	logger.Info("Testing configuration.")

	start := time.Now()
	res := Result{Name: c.Name, Facade: facade, Status: StatusPassed}
	finish := func() Result {
		res.DurationSeconds = time.Since(start).Seconds()
		return res
	}
	fatal := func(step string, err error) (Result, error) {
		res.Status = StatusFailed
		res.FailedStep = step
		logger.Error("Configuration run failed.", "step", step, "error", err)
		return finish(), fmt.Errorf("%s: %s: %w", label, step, err)
	}
	caseFail := func(step string, err error) (Result, error) {
		res.Status = StatusFailed
		res.FailedStep = step
		logger.Error("Configuration run failed, continuing with the next configuration.", "step", step, "error", err)
		return finish(), nil
	}

	env := map[string]string{}
	for k, v := range c.Env {
		env[k] = v
	}
	env[EnvConfigName] = label

	if err := d.ws.RestoreBaseline(); err != nil {
		return fatal("restore baseline", err)
	}
	if err := d.tc.Clean(ctx, env); err != nil {
		return fatal("clean", err)
	}
	if err := d.ws.Install(c.Name); err != nil {
		return fatal("install header", err)
	}
	if facade {
		for _, opt := range d.cfg.Facade.Options {
			if err := d.tc.SetOption(ctx, opt, env); err != nil {
				return fatal("enable "+opt, err)
			}
		}
	}
	if err := d.tc.Build(ctx, d.cfg.Build.CFlags, env); err != nil {
		return fatal("build", err)
	}
	if err := d.tc.Test(ctx, env); err != nil {
		return fatal("unit tests", err)
	}

	if c.HasCompat() {
		if err := d.tc.CompatTest(ctx, c.Compat, env); err != nil {
			return caseFail("compat tests", err)
		}
	}

	if c.HasOpt() {
		if c.OptNeedsDebug {
			if err := d.tc.Clean(ctx, env); err != nil {
				return fatal("clean", err)
			}
			if err := d.tc.SetOption(ctx, d.cfg.OptionsTest.DebugOption, env); err != nil {
				return fatal("enable "+d.cfg.OptionsTest.DebugOption, err)
			}
			if err := d.tc.Build(ctx, d.cfg.Build.DebugCFlags, env); err != nil {
				return fatal("debug build", err)
			}
		}
		if err := d.tc.OptionsTest(ctx, c.Opt, env); err != nil {
			return caseFail("options tests", err)
		}
	}

	logger.Info("Configuration passed.")
	return finish(), nil
}
