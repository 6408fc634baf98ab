package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/refmatrix/refmatrix/internal/settings"
)

// BaselineHeader is the content of the shared configuration header in a
// fixture tree, so tests can tell the baseline from installed candidates.
const BaselineHeader = "// baseline configuration\n"

// LibraryTree creates a throwaway library tree under t.TempDir with the
// shared header, the named candidate configurations, and the directories
// the tool touches. It returns settings rooted there.
func LibraryTree(t *testing.T, configNames ...string) *settings.Settings {
	t.Helper()

	root := t.TempDir()
	cfg := settings.Default()
	cfg.Paths.Root = root

	for _, dir := range []string{"include/tls", "configs", "tests", "scripts"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}
	require.NoError(t, os.WriteFile(cfg.Resolve(cfg.Paths.ConfigHeader), []byte(BaselineHeader), 0o644))

	for _, name := range configNames {
		content := "// candidate " + name + "\n"
		require.NoError(t, os.WriteFile(filepath.Join(root, "configs", name), []byte(content), 0o644))
	}

	return cfg
}

// ReadHeader returns the current content of the tree's shared header.
func ReadHeader(t *testing.T, cfg *settings.Settings) string {
	t.Helper()
	data, err := os.ReadFile(cfg.Resolve(cfg.Paths.ConfigHeader))
	require.NoError(t, err)
	return string(data)
}

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  []byte
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.b = append(b.b, p...)
	return len(p), nil
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.b)
}
