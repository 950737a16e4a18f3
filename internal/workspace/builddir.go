package workspace

import (
	"os"
	"path/filepath"
	"strings"
)

// buildDirMarker names the file at the source tree root that records the
// currently active build output directory, relative to the root.
const buildDirMarker = ".build-dir"

// defaultBuildDir is used when no marker file is present.
const defaultBuildDir = "out/default"

// DefaultBuildDir resolves the active Ninja build directory for a source
// tree: the marker file's content if present and non-empty, out/default
// otherwise.
func DefaultBuildDir(sourceDir string) string {
	buildDir := defaultBuildDir
	if data, err := os.ReadFile(filepath.Join(sourceDir, buildDirMarker)); err == nil {
		if dir := strings.TrimSpace(string(data)); dir != "" {
			buildDir = dir
		}
	}
	return filepath.Join(sourceDir, buildDir)
}
