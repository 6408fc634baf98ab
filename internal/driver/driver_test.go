package driver_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/refmatrix/refmatrix/internal/driver"
	"github.com/refmatrix/refmatrix/internal/matrix"
	"github.com/refmatrix/refmatrix/internal/settings"
	"github.com/refmatrix/refmatrix/internal/testutil"
	"github.com/refmatrix/refmatrix/internal/toolchain"
	"github.com/refmatrix/refmatrix/internal/workspace"
)

func newDriver(t *testing.T, cfg *settings.Settings, runner toolchain.Runner) *driver.Driver {
	t.Helper()
	return driver.New(toolchain.New(runner, cfg), workspace.New(cfg), cfg)
}

// configEnv returns the value of the per-run configuration variable for a
// recorded command, or "" for commands outside any configuration run.
func configEnv(cmd toolchain.Command) string {
	return cmd.Env[driver.EnvConfigName]
}

func TestRunHappyPathSequence(t *testing.T) {
	t.Parallel()

	cfg := testutil.LibraryTree(t, "config-mini.h")
	runner := &testutil.ScriptedRunner{}
	d := newDriver(t, cfg, runner)

	cases := []matrix.Case{{
		Name:   "config-mini.h",
		Compat: `-m tls12 -f '^TLS-RSA-WITH-AES-128-CBC-SHA$'`,
	}}

	results, err := d.Run(context.Background(), cases)
	require.NoError(t, err)

	require.Equal(t, []string{
		"clean",
		"build",
		"unit tests",
		"compat tests",
		"clean", // final cleanup
	}, runner.Labels())

	commands := runner.Commands()
	for _, cmd := range commands[:4] {
		require.Equal(t, "config-mini.h", configEnv(cmd))
	}
	require.Empty(t, configEnv(commands[4]), "the final clean runs outside any configuration")

	require.Len(t, results, 1)
	require.Equal(t, driver.StatusPassed, results[0].Status)
	require.Equal(t, "config-mini.h", results[0].Name)
	require.False(t, results[0].Facade)

	require.Equal(t, testutil.BaselineHeader, testutil.ReadHeader(t, cfg))
}

func TestRunFacadeRerun(t *testing.T) {
	t.Parallel()

	cfg := testutil.LibraryTree(t, "config-ccm-psk.h")
	runner := &testutil.ScriptedRunner{}
	d := newDriver(t, cfg, runner)

	cases := []matrix.Case{{
		Name:           "config-ccm-psk.h",
		TestWithFacade: true,
	}}

	results, err := d.Run(context.Background(), cases)
	require.NoError(t, err)

	require.Equal(t, []string{
		// base pass
		"clean",
		"build",
		"unit tests",
		// facade pass
		"clean",
		"set option TLS_CRYPTO_FACADE_C",
		"set option TLS_USE_CRYPTO_FACADE",
		"build",
		"unit tests",
		// final cleanup
		"clean",
	}, runner.Labels())

	commands := runner.Commands()
	for _, cmd := range commands[:3] {
		require.Equal(t, "config-ccm-psk.h", configEnv(cmd))
	}
	for _, cmd := range commands[3:8] {
		require.Equal(t, "config-ccm-psk.h+facade", configEnv(cmd))
	}

	require.Len(t, results, 2)
	require.False(t, results[0].Facade)
	require.True(t, results[1].Facade)
	require.Equal(t, driver.StatusPassed, results[0].Status)
	require.Equal(t, driver.StatusPassed, results[1].Status)
}

func TestRunOptionsTestDebugRebuild(t *testing.T) {
	t.Parallel()

	cfg := testutil.LibraryTree(t, "config-thread.h")
	runner := &testutil.ScriptedRunner{}
	d := newDriver(t, cfg, runner)

	cases := []matrix.Case{{
		Name:          "config-thread.h",
		Opt:           "-f ECJPAKE",
		OptNeedsDebug: true,
	}}

	_, err := d.Run(context.Background(), cases)
	require.NoError(t, err)

	require.Equal(t, []string{
		"clean",
		"build",
		"unit tests",
		"clean",
		"set option TLS_DEBUG_C",
		"build",
		"options tests",
		"clean", // final cleanup
	}, runner.Labels())

	commands := runner.Commands()
	require.Equal(t, "CFLAGS=-Os", commands[1].Argv[1])
	require.Equal(t, "CFLAGS=-g3 -O1", commands[5].Argv[1], "options tests need a debug rebuild first")
	require.Equal(t, []string{"-f", "ECJPAKE"}, commands[6].Argv[1:])
}

func TestRunBuildFailureAbortsRemainingConfigurations(t *testing.T) {
	t.Parallel()

	cfg := testutil.LibraryTree(t, "config-aaa.h", "config-bbb.h")
	runner := &testutil.ScriptedRunner{
		FailOn: func(cmd toolchain.Command) error {
			if cmd.Label == "build" && configEnv(cmd) == "config-aaa.h" {
				return os.ErrPermission
			}
			return nil
		},
	}
	d := newDriver(t, cfg, runner)

	cases := []matrix.Case{
		{Name: "config-aaa.h"},
		{Name: "config-bbb.h"},
	}

	results, err := d.Run(context.Background(), cases)
	require.Error(t, err)
	require.NotErrorIs(t, err, driver.ErrTestsFailed)
	require.Contains(t, err.Error(), "config-aaa.h")

	require.Len(t, results, 1)
	require.Equal(t, driver.StatusFailed, results[0].Status)
	require.Equal(t, "build", results[0].FailedStep)

	for _, cmd := range runner.Commands() {
		require.NotEqual(t, "config-bbb.h", configEnv(cmd), "no command may run for configurations after the abort")
	}

	// Restore and clean still happen on the failure path.
	require.Equal(t, testutil.BaselineHeader, testutil.ReadHeader(t, cfg))
	labels := runner.Labels()
	require.Equal(t, "clean", labels[len(labels)-1])
}

func TestRunUnitTestFailureAborts(t *testing.T) {
	t.Parallel()

	cfg := testutil.LibraryTree(t, "config-aaa.h", "config-bbb.h")
	runner := &testutil.ScriptedRunner{
		FailOn: func(cmd toolchain.Command) error {
			if cmd.Label == "unit tests" {
				return os.ErrInvalid
			}
			return nil
		},
	}
	d := newDriver(t, cfg, runner)

	results, err := d.Run(context.Background(), []matrix.Case{
		{Name: "config-aaa.h"},
		{Name: "config-bbb.h"},
	})
	require.Error(t, err)
	require.NotErrorIs(t, err, driver.ErrTestsFailed)
	require.Len(t, results, 1)
	require.Equal(t, "unit tests", results[0].FailedStep)
}

func TestRunCompatFailureContinuesWithNextConfiguration(t *testing.T) {
	t.Parallel()

	cfg := testutil.LibraryTree(t, "config-aaa.h", "config-bbb.h")
	runner := &testutil.ScriptedRunner{
		FailOn: func(cmd toolchain.Command) error {
			if cmd.Label == "compat tests" && configEnv(cmd) == "config-aaa.h" {
				return os.ErrInvalid
			}
			return nil
		},
	}
	d := newDriver(t, cfg, runner)

	results, err := d.Run(context.Background(), []matrix.Case{
		{Name: "config-aaa.h", Compat: "-m tls12"},
		{Name: "config-bbb.h", Compat: "-m tls12"},
	})
	require.ErrorIs(t, err, driver.ErrTestsFailed)

	require.Len(t, results, 2)
	require.Equal(t, driver.StatusFailed, results[0].Status)
	require.Equal(t, "compat tests", results[0].FailedStep)
	require.Equal(t, driver.StatusPassed, results[1].Status)

	sawSecondBuild := false
	for _, cmd := range runner.Commands() {
		if cmd.Label == "build" && configEnv(cmd) == "config-bbb.h" {
			sawSecondBuild = true
		}
	}
	require.True(t, sawSecondBuild, "the run must continue after a compat failure")
}

func TestRunCompatFailureSkipsOptionsTestOfSameRun(t *testing.T) {
	t.Parallel()

	cfg := testutil.LibraryTree(t, "config-aaa.h")
	runner := &testutil.ScriptedRunner{
		FailOn: func(cmd toolchain.Command) error {
			if cmd.Label == "compat tests" {
				return os.ErrInvalid
			}
			return nil
		},
	}
	d := newDriver(t, cfg, runner)

	_, err := d.Run(context.Background(), []matrix.Case{
		{Name: "config-aaa.h", Compat: "-m tls12", Opt: "-f X"},
	})
	require.ErrorIs(t, err, driver.ErrTestsFailed)
	require.NotContains(t, runner.Labels(), "options tests")
}

func TestRunOptionsFailureFailsOnlyThatConfiguration(t *testing.T) {
	t.Parallel()

	cfg := testutil.LibraryTree(t, "config-aaa.h", "config-bbb.h")
	runner := &testutil.ScriptedRunner{
		FailOn: func(cmd toolchain.Command) error {
			if cmd.Label == "options tests" {
				return os.ErrInvalid
			}
			return nil
		},
	}
	d := newDriver(t, cfg, runner)

	results, err := d.Run(context.Background(), []matrix.Case{
		{Name: "config-aaa.h", Opt: "-f X"},
		{Name: "config-bbb.h"},
	})
	require.ErrorIs(t, err, driver.ErrTestsFailed)
	require.Len(t, results, 2)
	require.Equal(t, "options tests", results[0].FailedStep)
	require.Equal(t, driver.StatusPassed, results[1].Status)
}

func TestRunCaseEnvReachesEveryCommand(t *testing.T) {
	t.Parallel()

	cfg := testutil.LibraryTree(t, "config-aaa.h")
	runner := &testutil.ScriptedRunner{}
	d := newDriver(t, cfg, runner)

	_, err := d.Run(context.Background(), []matrix.Case{
		{Name: "config-aaa.h", Env: map[string]string{"EXTRA_FLAG": "1"}},
	})
	require.NoError(t, err)

	commands := runner.Commands()
	for _, cmd := range commands[:len(commands)-1] {
		require.Equal(t, "1", cmd.Env["EXTRA_FLAG"])
		require.Equal(t, "config-aaa.h", configEnv(cmd))
	}
}

func TestRunCreatesSeedfile(t *testing.T) {
	t.Parallel()

	cfg := testutil.LibraryTree(t, "config-aaa.h")
	d := newDriver(t, cfg, &testutil.ScriptedRunner{})

	_, err := d.Run(context.Background(), []matrix.Case{{Name: "config-aaa.h"}})
	require.NoError(t, err)

	info, statErr := os.Stat(cfg.Resolve(cfg.Paths.Seedfile))
	require.NoError(t, statErr)
	require.EqualValues(t, 64, info.Size())
}

func TestRunBackupFailureIsFatalBeforeAnyWork(t *testing.T) {
	t.Parallel()

	cfg := testutil.LibraryTree(t)
	require.NoError(t, os.Remove(cfg.Resolve(cfg.Paths.ConfigHeader)))

	runner := &testutil.ScriptedRunner{}
	d := newDriver(t, cfg, runner)

	_, err := d.Run(context.Background(), []matrix.Case{{Name: "config-aaa.h"}})
	require.Error(t, err)
	require.Empty(t, runner.Commands(), "no command may run when the backup fails")
}

func TestRunRestoreFailureDoesNotMaskSuccess(t *testing.T) {
	t.Parallel()

	cfg := testutil.LibraryTree(t, "config-aaa.h")
	backup := cfg.Resolve(cfg.Paths.ConfigHeader) + ".bak"

	runner := &testutil.ScriptedRunner{}
	runner.FailOn = func(cmd toolchain.Command) error {
		// Sabotage the backup during the last in-run command so the
		// deferred restore has nothing to copy back.
		if cmd.Label == "unit tests" {
			_ = os.Remove(backup)
		}
		return nil
	}
	d := newDriver(t, cfg, runner)

	results, err := d.Run(context.Background(), []matrix.Case{{Name: "config-aaa.h"}})
	require.NoError(t, err, "a failed restore is a warning, not an error")
	require.Len(t, results, 1)
	require.Equal(t, driver.StatusPassed, results[0].Status)
}
