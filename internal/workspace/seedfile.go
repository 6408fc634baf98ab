package workspace

import (
	"bytes"
	"fmt"
	"os"
)

// seedfileSize is the minimum size the entropy seed file must have for
// configurations that read stored seeds at startup.
const seedfileSize = 64

// EnsureSeedfile writes a fixed-size placeholder seed file if it is absent
// or too small. Placeholder content is fine here; the seed only has to
// exist and be long enough for the library's tests to start.
func (w *Workspace) EnsureSeedfile() error {
	info, err := os.Stat(w.seedfile)
	if err == nil && info.Size() >= seedfileSize {
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat seedfile %s: %w", w.seedfile, err)
	}

	placeholder := bytes.Repeat([]byte{'*'}, seedfileSize)
	if err := os.WriteFile(w.seedfile, placeholder, 0o644); err != nil {
		return fmt.Errorf("failed to write seedfile %s: %w", w.seedfile, err)
	}
	return nil
}
