package toolchain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitArgs(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected []string
		wantErr  bool
	}{
		{
			name:     "plain words",
			input:    "-m tls12 -p peer",
			expected: []string{"-m", "tls12", "-p", "peer"},
		},
		{
			name:     "single-quoted regex survives intact",
			input:    `-m tls12 -f '^TLS-PSK-WITH-AES-.*-CCM-8'`,
			expected: []string{"-m", "tls12", "-f", "^TLS-PSK-WITH-AES-.*-CCM-8"},
		},
		{
			name:     "double quotes group spaces",
			input:    `-f "a b" c`,
			expected: []string{"-f", "a b", "c"},
		},
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "whitespace only",
			input:    "   ",
			expected: nil,
		},
		{
			name:     "empty quoted token is kept",
			input:    `a '' b`,
			expected: []string{"a", "", "b"},
		},
		{
			name:    "unterminated quote",
			input:   `-f 'ECJPAKE`,
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			args, err := SplitArgs(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, args)
		})
	}
}
