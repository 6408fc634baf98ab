package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/refmatrix/refmatrix/internal/ctxlog"
	"github.com/refmatrix/refmatrix/internal/driver"
	"github.com/refmatrix/refmatrix/internal/matrix"
	"github.com/refmatrix/refmatrix/internal/settings"
	"github.com/refmatrix/refmatrix/internal/toolchain"
	"github.com/refmatrix/refmatrix/internal/workspace"
)

// UsageError marks setup and validation failures that happen before any
// build or test work starts: unknown configuration names, unreadable
// settings or matrix files. The entrypoint maps these to a usage-class
// exit code, distinct from build/test failures.
type UsageError struct {
	Err error
}

// Error implements the error interface for UsageError.
func (e *UsageError) Error() string { return e.Err.Error() }

// Unwrap exposes the underlying error.
func (e *UsageError) Unwrap() error { return e.Err }

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	runner toolchain.Runner
}

// NewApp is the constructor for the main application. A nil runner gets the
// real os/exec-backed one; tests inject a scripted runner instead.
func NewApp(outW io.Writer, appConfig *Config, runner toolchain.Runner) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	if runner == nil {
		runner = toolchain.NewExecRunner()
	}

	return &App{
		outW:   outW,
		logger: logger,
		runner: runner,
	}
}

// Run executes the full lifecycle: build the configuration table, select
// the requested cases, and drive the build-and-test sequence over them.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	table := matrix.Builtin()
	if cfg.MatrixPath != "" {
		if err := table.LoadOverlay(ctx, cfg.MatrixPath); err != nil {
			return &UsageError{Err: err}
		}
	}

	if cfg.ListOnly {
		for _, name := range table.Names() {
			fmt.Fprintln(a.outW, name)
		}
		return nil
	}

	cases, err := table.Select(cfg.Names...)
	if err != nil {
		return &UsageError{Err: err}
	}

	sets, err := settings.Load(cfg.SettingsPath)
	if err != nil {
		return &UsageError{Err: err}
	}
	a.logger.Debug("Settings resolved.", "root", sets.Paths.Root, "header", sets.Paths.ConfigHeader)

	tc := toolchain.New(a.runner, sets)
	ws := workspace.New(sets)
	d := driver.New(tc, ws, sets)

	a.logger.Info("Starting configuration runs.", "configurations", len(cases))
	results, runErr := d.Run(ctx, cases)

	if cfg.ReportPath != "" {
		if err := driver.WriteReport(cfg.ReportPath, results); err != nil {
			a.logger.Error("Run report could not be written.", "error", err)
			if runErr == nil {
				runErr = err
			}
		} else {
			a.logger.Info("Run report written.", "path", cfg.ReportPath)
		}
	}

	if runErr != nil {
		return runErr
	}
	a.logger.Info("All configurations passed.", "runs", len(results))
	return nil
}
