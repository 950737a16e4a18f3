// Package manifest models the desired content of a generated workspace as a
// mapping from relative output path to entry (symlink, generated file, or
// file fingerprint).
//
// A manifest serializes to canonical JSON (sorted keys, stable indentation).
// The serialized form doubles as the change detector: if it differs from the
// sidecar persisted by the previous run, the output tree is rebuilt.
package manifest

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Manifest maps relative output paths to their desired entries.
type Manifest struct {
	entries map[string]Entry
}

// New creates an empty manifest.
func New() *Manifest {
	return &Manifest{entries: make(map[string]Entry)}
}

// add registers an entry, rejecting duplicate paths. Registering the same
// output path twice means two generators are fighting over one file, which
// is a bug in the caller.
func (m *Manifest) add(path string, entry Entry) error {
	if _, exists := m.entries[path]; exists {
		return fmt.Errorf("manifest: path already registered: %s", path)
	}
	m.entries[path] = entry
	return nil
}

// AddSymlink registers a symlink at path pointing to target.
func (m *Manifest) AddSymlink(path, target string) error {
	return m.add(path, Symlink{Target: target})
}

// AddFile registers a generated file at path with the given literal content.
func (m *Manifest) AddFile(path, content string, executable bool) error {
	return m.add(path, File{Content: content, Executable: executable})
}

// AddFileHash reads the file at path and registers an MD5 fingerprint of its
// bytes, keyed by path itself. MD5 is fine here: the digest only detects
// upstream changes, it protects nothing.
func (m *Manifest) AddFileHash(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("manifest: hash input: %w", err)
	}
	sum := md5.Sum(data)
	return m.add(path, FileHash{Digest: hex.EncodeToString(sum[:])})
}

// AddTopEntries registers a symlink under subdir for every immediate child
// of root not matched by exclude. The exclude predicate receives the bare
// child name, not a full path.
func (m *Manifest) AddTopEntries(root, subdir string, exclude func(name string) bool) error {
	children, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("manifest: list %s: %w", root, err)
	}
	for _, child := range children {
		name := child.Name()
		if exclude != nil && exclude(name) {
			continue
		}
		if err := m.AddSymlink(filepath.Join(subdir, name), filepath.Join(root, name)); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of registered entries.
func (m *Manifest) Len() int {
	return len(m.entries)
}

// Paths returns all registered paths in sorted order.
func (m *Manifest) Paths() []string {
	paths := make([]string, 0, len(m.entries))
	for path := range m.entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Entry returns the entry registered at path, if any.
func (m *Manifest) Entry(path string) (Entry, bool) {
	entry, ok := m.entries[path]
	return entry, ok
}

// ToJSON returns the canonical serialization of the manifest: sorted keys,
// two-space indent. Byte-stable under registration order, so it can be
// compared directly against a previously persisted sidecar.
func (m *Manifest) ToJSON() (string, error) {
	obj := make(map[string]any, len(m.entries))
	for path, entry := range m.entries {
		obj[path] = entry.entryJSON()
	}
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return "", fmt.Errorf("manifest: serialize: %w", err)
	}
	return string(data), nil
}
