package workspace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/refmatrix/refmatrix/internal/settings"
)

// Workspace owns the file-level side effects of a run: swapping candidate
// configuration headers into the shared header path and keeping a backup of
// the original so every exit path can put it back.
type Workspace struct {
	root       string
	header     string
	backup     string
	configsDir string
	seedfile   string
}

// New derives the workspace paths from the settings.
func New(cfg *settings.Settings) *Workspace {
	header := cfg.Resolve(cfg.Paths.ConfigHeader)
	return &Workspace{
		root:       cfg.Paths.Root,
		header:     header,
		backup:     header + ".bak",
		configsDir: cfg.Resolve(cfg.Paths.ConfigsDir),
		seedfile:   cfg.Resolve(cfg.Paths.Seedfile),
	}
}

// Header returns the path of the shared configuration header.
func (w *Workspace) Header() string { return w.header }

// Backup copies the shared header aside. It must succeed before any
// configuration is touched.
func (w *Workspace) Backup() error {
	if err := copyFile(w.header, w.backup); err != nil {
		return fmt.Errorf("failed to back up %s: %w", w.header, err)
	}
	return nil
}

// RestoreBaseline copies the backup over the live header. Each
// configuration run starts from this known state.
func (w *Workspace) RestoreBaseline() error {
	if err := copyFile(w.backup, w.header); err != nil {
		return fmt.Errorf("failed to restore baseline %s: %w", w.header, err)
	}
	return nil
}

// Install copies the named candidate configuration over the live header.
func (w *Workspace) Install(name string) error {
	src := filepath.Join(w.configsDir, name)
	if err := copyFile(src, w.header); err != nil {
		return fmt.Errorf("failed to install configuration %s: %w", name, err)
	}
	return nil
}

// Restore is the final best-effort restoration on the way out. The caller
// warns on error rather than failing, so the run's own exit code survives.
func (w *Workspace) Restore() error {
	if err := copyFile(w.backup, w.header); err != nil {
		return fmt.Errorf("failed to restore %s from backup: %w", w.header, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
