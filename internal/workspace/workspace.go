// Package workspace generates and synchronizes the Bazel workspace mirrored
// from a source tree.
//
// The generated topdir looks like:
//
//	$TOPDIR/
//	  bazel                   Bazel launcher script.
//	  generated-info.json     State of inputs during last generation.
//	  output_base/            Bazel output base.
//	  workspace/              Bazel workspace directory.
//
// workspace/ is populated with symlinks mirroring the top level of the
// source tree, plus a few generated files (.bazelrc, WORKSPACE wiring). The
// whole tree is regenerated from scratch whenever the desired-state manifest
// differs from the one persisted in generated-info.json.
package workspace

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/jerrylockard/bazel-workspace-sync/internal/hosttag"
	"github.com/jerrylockard/bazel-workspace-sync/pkg/logger"
	"github.com/jerrylockard/bazel-workspace-sync/pkg/manifest"
)

const (
	workspaceSubdir  = "workspace"
	outputBaseSubdir = "output_base"
	launcherName     = "bazel"
	sidecarName      = "generated-info.json"

	// inputsManifestName is produced next to the workspace by the build
	// system and lists the Ninja outputs exposed to Bazel.
	inputsManifestName = "legacy_ninja_build_outputs.inputs_manifest.json"
)

// Generator builds the desired-state manifest for a workspace and applies it
// to disk when inputs have changed. All paths must be absolute.
type Generator struct {
	// SourceDir is the root of the mirrored source tree.
	SourceDir string
	// BuildDir is the Ninja build output directory.
	BuildDir string
	// NinjaBin and BazelBin are the external tool binaries.
	NinjaBin string
	BazelBin string
	// TopDir is the directory holding the launcher, sidecar, workspace
	// and output base.
	TopDir string
	// UseBzlmod selects MODULE.bazel-based external repositories.
	UseBzlmod bool
	// Excludes holds extra doublestar patterns matched against top-level
	// entry names of SourceDir.
	Excludes []string
	// SelfPath, when set, is fingerprinted into the manifest so that a
	// new version of this tool forces regeneration.
	SelfPath string
	// Force bypasses change detection entirely.
	Force bool

	Log *logger.Logger
}

// WorkspaceDir returns the workspace directory under TopDir.
func (g *Generator) WorkspaceDir() string {
	return filepath.Join(g.TopDir, workspaceSubdir)
}

// OutputBaseDir returns the isolated Bazel output base under TopDir.
func (g *Generator) OutputBaseDir() string {
	return filepath.Join(g.TopDir, outputBaseSubdir)
}

// LauncherPath returns the path of the generated launcher script.
func (g *Generator) LauncherPath() string {
	return filepath.Join(g.TopDir, launcherName)
}

func (g *Generator) sidecarPath() string {
	return filepath.Join(g.TopDir, sidecarName)
}

// BuildManifest enumerates every entry the generated tree should contain.
func (g *Generator) BuildManifest() (*manifest.Manifest, error) {
	m := manifest.New()

	topFile := func(name string) string {
		return filepath.Join(g.SourceDir, "build", "bazel", name)
	}

	if g.UseBzlmod {
		if err := m.AddFile("workspace/WORKSPACE.bazel", "# Empty on purpose, see MODULE.bazel\n", false); err != nil {
			return nil, err
		}
		if err := m.AddSymlink("workspace/WORKSPACE.bzlmod", topFile("toplevel.WORKSPACE.bzlmod")); err != nil {
			return nil, err
		}
		if err := m.AddSymlink("workspace/MODULE.bazel", topFile("toplevel.MODULE.bazel")); err != nil {
			return nil, err
		}
	} else {
		if err := m.AddSymlink("workspace/WORKSPACE.bazel", topFile("toplevel.WORKSPACE.bazel")); err != nil {
			return nil, err
		}
	}

	if err := m.AddTopEntries(g.SourceDir, workspaceSubdir, g.excluded); err != nil {
		return nil, err
	}

	if err := m.AddSymlink("workspace/BUILD.bazel", topFile("toplevel.BUILD.bazel")); err != nil {
		return nil, err
	}

	if err := m.AddFile("workspace/.bazelrc", g.bazelrcContent(), false); err != nil {
		return nil, err
	}

	// Symlink to the build-system-generated listing of Ninja outputs
	// exposed to Bazel. That file lives next to the workspace directory.
	if err := m.AddSymlink(
		"workspace/bazel_inputs_manifest.json",
		filepath.Join(g.WorkspaceDir(), "..", inputsManifestName)); err != nil {
		return nil, err
	}

	if err := m.AddFile(launcherName, g.launcherContent(), true); err != nil {
		return nil, err
	}

	if g.SelfPath != "" {
		if err := m.AddFileHash(g.SelfPath); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// excluded reports whether a top-level source tree entry must not be
// mirrored into the workspace.
func (g *Generator) excluded(name string) bool {
	// Never symlink the build output directory into the workspace.
	if name == "out" || name == buildDirMarker {
		return true
	}
	if rel, err := filepath.Rel(g.SourceDir, g.BuildDir); err == nil && !strings.HasPrefix(rel, "..") {
		if top := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]; name == top {
			return true
		}
	}
	// Symlinks to jiri state confuse 'jiri update'.
	if strings.HasPrefix(name, ".jiri") {
		return true
	}
	for _, pattern := range g.Excludes {
		if matched, _ := doublestar.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

func (g *Generator) bazelrcContent() string {
	content := fmt.Sprintf(`# Auto-generated - DO NOT EDIT!

# Ensure that platform-based C++ toolchain selection is performed, instead
# of relying on --crosstool_top / --cpu / --compiler.
build --incompatible_enable_cc_toolchain_resolution

# Set up the default platform.
build --platforms=//build/bazel/platforms:%s
`, strings.ReplaceAll(hosttag.Tag(), "-", "_"))

	if g.UseBzlmod {
		content += `
# Enable BzlMod, i.e. support for MODULE.bazel files.
common --experimental_enable_bzlmod
`
	}
	return content
}

// launcherContent renders the wrapper script that invokes Bazel with the
// isolated output base. Paths to the external tools are embedded absolute;
// the workspace and output base are resolved relative to the script itself.
func (g *Generator) launcherContent() string {
	return fmt.Sprintf(`#!/bin/bash
# Auto-generated - DO NOT EDIT!
readonly _SCRIPT_DIR="$(cd "$(dirname "${BASH_SOURCE[0]}")" >/dev/null 2>&1 && pwd)"
readonly _WORKSPACE_DIR="${_SCRIPT_DIR}/%s"
readonly _OUTPUT_BASE="${_SCRIPT_DIR}/%s"

# Exported explicitly to be used by repository rules to reference the
# Ninja output directory and binary.
export BAZEL_NINJA_OUTPUT_DIR="%s"
export BAZEL_NINJA_PREBUILT="%s"

cd "${_WORKSPACE_DIR}" && %s \
      --nohome_rc \
      --output_base="${_OUTPUT_BASE}" \
      "$@"
`,
		workspaceSubdir,
		outputBaseSubdir,
		g.BuildDir,
		g.NinjaBin,
		g.BazelBin)
}
