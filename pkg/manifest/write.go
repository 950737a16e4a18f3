package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jerrylockard/bazel-workspace-sync/internal/fsutil"
)

// WriteTo applies the manifest to disk under outDir. Symlinks are created
// with targets relative to the link's containing directory, replacing any
// existing link; files are written with the executable bit when requested;
// fingerprint entries have no write-time effect.
func (m *Manifest) WriteTo(outDir string) error {
	for _, path := range m.Paths() {
		// Fingerprint entries are keyed by the hashed file's own absolute
		// path and must leave no trace under outDir, not even a parent
		// directory.
		if _, isHash := m.entries[path].(FileHash); isHash {
			continue
		}

		outPath := filepath.Join(outDir, path)
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return fmt.Errorf("manifest: write %s: %w", path, err)
		}

		switch entry := m.entries[path].(type) {
		case Symlink:
			if err := fsutil.ForceSymlink(entry.Target, outPath); err != nil {
				return fmt.Errorf("manifest: write %s: %w", path, err)
			}
		case File:
			mode := os.FileMode(0o644)
			if entry.Executable {
				mode = 0o755
			}
			if err := os.WriteFile(outPath, []byte(entry.Content), mode); err != nil {
				return fmt.Errorf("manifest: write %s: %w", path, err)
			}
			// WriteFile does not chmod an existing file.
			if err := os.Chmod(outPath, mode); err != nil {
				return fmt.Errorf("manifest: write %s: %w", path, err)
			}
		}
	}
	return nil
}
