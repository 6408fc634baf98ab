package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/refmatrix/refmatrix/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("refmatrix", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
refmatrix - reference configuration test driver

Usage:
  refmatrix [options] [CONFIG_NAME ...]

Arguments:
  CONFIG_NAME
    Names of configurations to test. With none, every known configuration
    runs once, in sorted order.

Options:
`)
		flagSet.PrintDefaults()
	}

	settingsFlag := flagSet.String("settings", "", "Path to the TOML settings file. Empty probes ./refmatrix.toml.")
	matrixFlag := flagSet.String("matrix", "", "Path to an HCL file or directory extending the configuration table.")
	reportFlag := flagSet.String("report", "", "Write a YAML run report to this path.")
	listFlag := flagSet.Bool("list", false, "Print the known configuration names and exit.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		SettingsPath: *settingsFlag,
		MatrixPath:   *matrixFlag,
		ReportPath:   *reportFlag,
		ListOnly:     *listFlag,
		Names:        flagSet.Args(),
		LogFormat:    logFormat,
		LogLevel:     logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.")
	return config, false, nil
}
