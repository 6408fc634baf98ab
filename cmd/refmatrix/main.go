package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/refmatrix/refmatrix/internal/app"
	"github.com/refmatrix/refmatrix/internal/cli"
)

// main is the entrypoint for the refmatrix application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		var usageErr *app.UsageError
		if errors.As(err, &usageErr) {
			os.Exit(2)
		}
		// Build and test failures exit 1, and only 1, so that a bisect
		// driving this tool sees a plain bad/good signal.
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	refmatrixApp := app.NewApp(outW, appConfig, nil)
	return refmatrixApp.Run(context.Background(), appConfig)
}
