// Package fsutil holds the filesystem primitives the workspace generator
// needs: forced symlink creation and a recursive removal that survives
// read-only entries and symlinked directories.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ForceSymlink creates a symlink at linkPath pointing to target, replacing
// any existing entry at linkPath. The link is written relative to its own
// directory so the tree stays valid if the topdir is moved as a whole.
func ForceSymlink(target, linkPath string) error {
	relTarget, err := filepath.Rel(filepath.Dir(linkPath), target)
	if err != nil {
		return fmt.Errorf("relative target for %s: %w", linkPath, err)
	}
	err = os.Symlink(relTarget, linkPath)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrExist) {
		return err
	}
	if err := os.Remove(linkPath); err != nil {
		return err
	}
	return os.Symlink(relTarget, linkPath)
}

// MakeWritable ensures the entry at path can be removed by setting its
// owner-write bit. Symlinks are left alone: chmod would follow the link and
// touch the target instead.
func MakeWritable(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return nil
	}
	if info.Mode().Perm()&0o200 == 0 {
		return os.Chmod(path, info.Mode().Perm()|0o200)
	}
	return nil
}

// RemoveTree removes root and everything under it.
//
// os.RemoveAll chokes on read-only entries, and a naive implementation that
// stats through symlinks will try to rmdir a symlink to a directory. This
// walks the tree without following links, makes every entry writable, then
// deletes files and directories deepest first.
func RemoveTree(root string) error {
	var files, dirs []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := MakeWritable(path); err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if d.IsDir() {
			// WalkDir never reports a symlink as a directory, so
			// anything landing here is a real one.
			dirs = append(dirs, path)
		} else {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove %s: %w", root, err)
	}

	for i := len(files) - 1; i >= 0; i-- {
		if err := os.Remove(files[i]); err != nil {
			return err
		}
	}
	for i := len(dirs) - 1; i >= 0; i-- {
		if err := os.Remove(dirs[i]); err != nil {
			return err
		}
	}
	return os.Remove(root)
}

// CreateCleanDir ensures path exists as an empty directory, removing any
// previous content first.
func CreateCleanDir(path string) error {
	if _, err := os.Lstat(path); err == nil {
		if err := RemoveTree(path); err != nil {
			return err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.MkdirAll(path, 0o755)
}
