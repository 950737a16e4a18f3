// Command bazel-workspace-sync updates or generates the Bazel workspace
// mirrored from a source tree, regenerating it only when inputs changed.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/jerrylockard/bazel-workspace-sync/internal/config"
	"github.com/jerrylockard/bazel-workspace-sync/internal/hosttag"
	"github.com/jerrylockard/bazel-workspace-sync/internal/workspace"
	"github.com/jerrylockard/bazel-workspace-sync/pkg/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	sourceDir  string
	buildDir   string
	bazelBin   string
	topDir     string
	useBzlmod  bool
	excludes   []string
	configFile string
	verbose    int
	quiet      int
	force      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bazel-workspace-sync",
		Short: "Sync a generated Bazel workspace against its source tree",
		Long: `bazel-workspace-sync checks whether the Ninja build plan is stale, then
whether the generated Bazel workspace, launcher script and output base still
match the source tree. It exits without touching anything when no update is
needed, and otherwise regenerates the whole workspace from scratch.`,
		Version:      fmt.Sprintf("%s (commit: %s, built at: %s)", version, commit, date),
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.Flags().StringVar(&sourceDir, "source-dir", "", "Path to the source tree (defaults to the current directory)")
	rootCmd.Flags().StringVar(&buildDir, "build-dir", "", "Ninja build output directory (defaults to the tree's active build directory)")
	rootCmd.Flags().StringVar(&bazelBin, "bazel-bin", "", "Path to the bazel binary (defaults to the tree's prebuilt bazel)")
	rootCmd.Flags().StringVar(&topDir, "topdir", "", "Top output directory (defaults to BUILD_DIR/gen/build/bazel)")
	rootCmd.Flags().BoolVar(&useBzlmod, "bzlmod", false, "Use BzlMod to generate external repositories")
	rootCmd.Flags().StringSliceVar(&excludes, "exclude", nil, "Extra top-level entries to exclude from the workspace (doublestar patterns, multiple allowed)")
	rootCmd.Flags().StringVar(&configFile, "config", "", "Path to a YAML config file with flag defaults")
	rootCmd.Flags().CountVarP(&verbose, "verbose", "v", "Increase verbosity")
	rootCmd.Flags().CountVarP(&quiet, "quiet", "q", "Reduce verbosity")
	rootCmd.Flags().BoolVar(&force, "force", false, "Force workspace regeneration even when no change is detected")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg := &config.Config{}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Flags win over config file values.
	if sourceDir == "" {
		sourceDir = cfg.SourceDir
	}
	if sourceDir == "" {
		sourceDir = "."
	}
	sourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return err
	}

	if buildDir == "" {
		buildDir = cfg.BuildDir
	}
	if buildDir == "" {
		buildDir = workspace.DefaultBuildDir(sourceDir)
	}
	buildDir, err = filepath.Abs(buildDir)
	if err != nil {
		return err
	}

	if topDir == "" {
		topDir = cfg.TopDir
	}
	if topDir == "" {
		topDir = filepath.Join(buildDir, "gen", "build", "bazel")
	}
	topDir, err = filepath.Abs(topDir)
	if err != nil {
		return err
	}

	ninjaBin := filepath.Join(sourceDir, "prebuilt", "third_party", "ninja", hosttag.Tag(), "ninja")

	if bazelBin == "" {
		bazelBin = cfg.BazelBin
	}
	if bazelBin == "" {
		bazelBin = filepath.Join(sourceDir, "prebuilt", "third_party", "bazel", hosttag.Tag(), "bazel")
	}
	bazelBin, err = filepath.Abs(bazelBin)
	if err != nil {
		return err
	}

	allExcludes := append(cfg.Excludes, excludes...)
	if err := config.ValidatePatterns(allExcludes); err != nil {
		return err
	}

	log := logger.New(1 + verbose - quiet)

	selfPath, err := os.Executable()
	if err != nil {
		// Fingerprinting the tool itself is best-effort; without it the
		// workspace simply won't auto-refresh on tool upgrades.
		log.Debugf("Cannot resolve own executable path: %v", err)
		selfPath = ""
	}

	gen := &workspace.Generator{
		SourceDir: sourceDir,
		BuildDir:  buildDir,
		NinjaBin:  ninjaBin,
		BazelBin:  bazelBin,
		TopDir:    topDir,
		UseBzlmod: useBzlmod || cfg.UseBzlmod,
		Excludes:  allExcludes,
		SelfPath:  selfPath,
		Force:     force,
		Log:       log,
	}

	log.Debugf(`Using directories and files:
  Source:            %s
  Ninja build:       %s
  Ninja binary:      %s
  Bazel binary:      %s
  Topdir:            %s
  Bazel workspace:   %s
  Bazel output_base: %s
  Bazel launcher:    %s`,
		sourceDir, buildDir, ninjaBin, bazelBin, topDir,
		gen.WorkspaceDir(), gen.OutputBaseDir(), gen.LauncherPath())

	_, err = gen.Sync(cmd.Context())
	return err
}
