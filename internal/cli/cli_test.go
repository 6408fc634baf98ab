package cli_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/refmatrix/refmatrix/internal/app"
	"github.com/refmatrix/refmatrix/internal/cli"
)

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		args           []string
		expectExit     bool
		expectErr      bool
		expectedConfig *app.Config
		checkOutput    func(t *testing.T, output string)
	}{
		{
			name: "happy path with all flags",
			args: []string{
				"-settings", "/etc/refmatrix.toml",
				"--matrix=/test/matrix",
				"--report=/tmp/report.yaml",
				"--log-level=debug",
				"--log-format=json",
				"config-mini.h", "config-thread.h",
			},
			expectedConfig: &app.Config{
				SettingsPath: "/etc/refmatrix.toml",
				MatrixPath:   "/test/matrix",
				ReportPath:   "/tmp/report.yaml",
				Names:        []string{"config-mini.h", "config-thread.h"},
				LogLevel:     "debug",
				LogFormat:    "json",
			},
		},
		{
			name: "no arguments selects everything with defaults",
			args: []string{},
			expectedConfig: &app.Config{
				Names:     []string{},
				LogLevel:  "info",
				LogFormat: "text",
			},
		},
		{
			name: "list flag",
			args: []string{"-list"},
			expectedConfig: &app.Config{
				ListOnly:  true,
				Names:     []string{},
				LogLevel:  "info",
				LogFormat: "text",
			},
		},
		{
			name:       "help flag triggers clean exit",
			args:       []string{"-h"},
			expectExit: true,
			checkOutput: func(t *testing.T, output string) {
				require.True(t, strings.Contains(output, "Usage:"), "Expected help text to be printed")
			},
		},
		{
			name:      "invalid log level returns an error",
			args:      []string{"--log-level=foo"},
			expectErr: true,
		},
		{
			name:      "invalid log format returns an error",
			args:      []string{"--log-format=yaml"},
			expectErr: true,
		},
		{
			name:      "unknown flag returns an error",
			args:      []string{"--no-such-flag"},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := &bytes.Buffer{}

			appConfig, shouldExit, err := cli.Parse(tc.args, out)

			if tc.expectErr {
				require.Error(t, err)
				var exitErr *cli.ExitError
				require.ErrorAs(t, err, &exitErr, "Expected error to be of type ExitError")
				require.Equal(t, 2, exitErr.Code)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expectExit, shouldExit)

			if tc.checkOutput != nil {
				tc.checkOutput(t, out.String())
			}
			if tc.expectedConfig != nil {
				if diff := cmp.Diff(tc.expectedConfig, appConfig); diff != "" {
					t.Fatalf("unexpected config (-want +got):\n%s", diff)
				}
			}
		})
	}
}
