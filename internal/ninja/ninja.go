// Package ninja decides whether the Ninja build plan is stale and regenerates
// it when needed.
package ninja

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// planDepFile lists the build plan's stamp file followed by every input the
// plan was generated from.
const planDepFile = "build.ninja.d"

// DepFile is a parsed dependency listing: a stamp file and the inputs whose
// modification invalidates it. Paths are relative to the build directory.
type DepFile struct {
	Stamp string
	Deps  []string
}

// ParseDepFile parses a build.ninja.d-style listing: the stamp file name
// (with a trailing colon) followed by space-separated dependency paths.
// A listing with no dependencies is malformed.
func ParseDepFile(data []byte) (DepFile, error) {
	fields := strings.Fields(string(data))
	if len(fields) < 2 {
		return DepFile{}, fmt.Errorf("ninja: malformed dep file: want a stamp and at least one dependency, got %d fields", len(fields))
	}
	return DepFile{
		Stamp: strings.TrimSuffix(fields[0], ":"),
		Deps:  fields[1:],
	}, nil
}

// PlanIsStale reports whether the build plan under buildDir needs to be
// regenerated: true if any listed dependency is missing or newer than the
// stamp file. A missing dep file means there is no plan to be stale.
//
// Reading the dep file and stat'ing its entries directly is much faster than
// asking Ninja to evaluate the whole build graph.
func PlanIsStale(buildDir string) (bool, error) {
	data, err := os.ReadFile(filepath.Join(buildDir, planDepFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("ninja: read dep file: %w", err)
	}

	depFile, err := ParseDepFile(data)
	if err != nil {
		return false, err
	}

	stampInfo, err := os.Stat(filepath.Join(buildDir, depFile.Stamp))
	if err != nil {
		return false, fmt.Errorf("ninja: stat stamp file: %w", err)
	}
	stampTime := stampInfo.ModTime()

	for _, dep := range depFile.Deps {
		info, err := os.Stat(filepath.Join(buildDir, dep))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return true, nil
			}
			return false, fmt.Errorf("ninja: stat dependency %s: %w", dep, err)
		}
		if info.ModTime().After(stampTime) {
			return true, nil
		}
	}
	return false, nil
}

// RegenPlan invokes Ninja to regenerate the build plan under buildDir. The
// command runs to completion; failure is fatal to the caller, there is no
// retry.
func RegenPlan(ctx context.Context, ninjaBin, buildDir string) error {
	cmd := exec.CommandContext(ctx, ninjaBin, "-C", buildDir, "build.ninja")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ninja: regenerate build plan: %w", err)
	}
	return nil
}
