package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jerrylockard/bazel-workspace-sync/internal/fsutil"
	"github.com/jerrylockard/bazel-workspace-sync/internal/ninja"
)

// Sync brings the generated workspace in line with the source tree. It first
// regenerates the Ninja build plan if stale, then rebuilds the workspace and
// output base from scratch when the desired-state manifest differs from the
// last persisted one (or when Force is set). It reports whether a rebuild
// happened.
//
// The rebuild is not transactional. A crash mid-write leaves a partial tree,
// which the next run detects as a mismatch and redoes in full.
func (g *Generator) Sync(ctx context.Context) (bool, error) {
	stale, err := ninja.PlanIsStale(g.BuildDir)
	if err != nil {
		return false, err
	}
	if stale {
		g.Log.Infof("Re-generating Ninja build plan!")
		if err := ninja.RegenPlan(ctx, g.NinjaBin, g.BuildDir); err != nil {
			return false, err
		}
	} else {
		g.Log.Debugf("Ninja build plan up to date.")
	}

	m, err := g.BuildManifest()
	if err != nil {
		return false, err
	}
	manifestJSON, err := m.ToJSON()
	if err != nil {
		return false, err
	}

	regen := g.Force
	if !regen {
		regen, err = g.needsRegen(manifestJSON)
		if err != nil {
			return false, err
		}
	}
	if !regen {
		g.Log.Debugf("Nothing to do (no changes detected).")
		return false, nil
	}

	suffix := ""
	if g.Force {
		suffix = ", --force used"
	}
	g.Log.Infof("Regenerating Bazel workspace%s.", suffix)

	if err := fsutil.CreateCleanDir(g.WorkspaceDir()); err != nil {
		return false, err
	}
	if err := fsutil.CreateCleanDir(g.OutputBaseDir()); err != nil {
		return false, err
	}
	if err := m.WriteTo(g.TopDir); err != nil {
		return false, err
	}
	if err := os.WriteFile(g.sidecarPath(), []byte(manifestJSON), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", g.sidecarPath(), err)
	}
	return true, nil
}

// needsRegen compares the fresh manifest against the persisted sidecar. Any
// mismatch, missing directory or missing sidecar forces a full rebuild: the
// sidecar and the on-disk tree must stay in lockstep.
func (g *Generator) needsRegen(manifestJSON string) (bool, error) {
	existing, err := os.ReadFile(g.sidecarPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			g.Log.Debugf("Missing file: %s", g.sidecarPath())
			return true, nil
		}
		return false, fmt.Errorf("read %s: %w", g.sidecarPath(), err)
	}

	for _, dir := range []string{g.WorkspaceDir(), g.OutputBaseDir()} {
		info, err := os.Stat(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				g.Log.Debugf("Missing directory: %s", dir)
				return true, nil
			}
			return false, err
		}
		if !info.IsDir() {
			g.Log.Debugf("Not a directory: %s", dir)
			return true, nil
		}
	}

	if string(existing) != manifestJSON {
		g.Log.Debugf("Changes in %s (%d -> %d bytes)", g.sidecarPath(), len(existing), len(manifestJSON))
		return true, nil
	}
	return false, nil
}
