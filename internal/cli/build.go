package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	mjbuild "github.com/contriboss/mujoco-build-go"
)

var buildOpts struct {
	sourceDir     string
	buildTemp     string
	buildLib      string
	archiveDir    string
	metadata      string
	python        string
	extSuffix     string
	jobs          int
	debug         bool
	verbose       bool
	skipToolCheck bool
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the extension modules and stage the package",
	Long: `Build the MuJoCo extension modules with CMake and stage the package.

Environment:
  MUJOCO_PATH        directory tree holding the MuJoCo library and headers (required)
  MUJOCO_CMAKE       CMake executable (default: cmake)
  MUJOCO_CMAKE_ARGS  extra configure arguments, shell-style quoting allowed
  ARCHFLAGS          macOS only, e.g. "-arch arm64 -arch x86_64"

Examples:
  MUJOCO_PATH=$HOME/.mujoco mjbuild build
  MUJOCO_CMAKE_ARGS='-DCMAKE_CXX_FLAGS="-O3 -march=native"' mjbuild build --debug
  mjbuild build --build-lib dist/lib --archive-dir dist`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringVar(&buildOpts.sourceDir, "source-dir", ".", "directory holding the mujoco/ CMake project and cmake/ modules")
	f.StringVar(&buildOpts.buildTemp, "build-temp", filepath.Join("build", "temp"), "CMake binary directory")
	f.StringVar(&buildOpts.buildLib, "build-lib", filepath.Join("build", "lib"), "root of the staged package tree")
	f.StringVar(&buildOpts.archiveDir, "archive-dir", "", "write <name>-<version>.tar.xz of the staged tree here")
	f.StringVar(&buildOpts.metadata, "metadata", "", "YAML file overriding the package metadata")
	f.StringVar(&buildOpts.python, "python", "", "Python interpreter to build for (default: python3)")
	f.StringVar(&buildOpts.extSuffix, "ext-suffix", "", "extension module suffix (default: probed from the interpreter)")
	f.IntVarP(&buildOpts.jobs, "jobs", "j", 0, "parallel build jobs (default: number of CPUs)")
	f.BoolVar(&buildOpts.debug, "debug", false, "Debug build without interprocedural optimization")
	f.BoolVar(&buildOpts.verbose, "verbose", false, "include CMake command lines in the build output")
	f.BoolVar(&buildOpts.skipToolCheck, "skip-tool-check", false, "do not look up the CMake executable before configuring")
}

func runBuild(cmd *cobra.Command, args []string) error {
	env, err := mjbuild.EnvironmentFromOS()
	if err != nil {
		return err
	}

	meta, err := mjbuild.LoadMetadata(buildOpts.metadata)
	if err != nil {
		return err
	}

	packager := mjbuild.NewPackager(env, meta, log)
	report, err := packager.Run(cmd.Context(), mjbuild.Options{
		SourceDir:  buildOpts.sourceDir,
		BuildTemp:  buildOpts.buildTemp,
		BuildLib:   buildOpts.buildLib,
		ArchiveDir: buildOpts.archiveDir,
		Python: mjbuild.PythonConfig{
			Executable: buildOpts.python,
			ExtSuffix:  buildOpts.extSuffix,
		},
		Debug:         buildOpts.debug,
		Verbose:       buildOpts.verbose,
		Parallel:      buildOpts.jobs,
		SkipToolCheck: buildOpts.skipToolCheck,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Staged %s into %s\n", meta.ArtifactName(), buildOpts.buildLib)
	fmt.Fprintf(out, "  Extensions: %d\n", len(report.Extensions))
	fmt.Fprintf(out, "  Libraries:  %d\n", len(report.Libraries))
	fmt.Fprintf(out, "  Headers:    %d\n", len(report.Headers))
	fmt.Fprintf(out, "  Metadata:   %s\n", report.MetadataPath)
	fmt.Fprintf(out, "  Manifest:   %s\n", report.ManifestPath)
	if report.Archive != nil {
		fmt.Fprintf(out, "  Archive:    %s (%s)\n", report.Archive.Path, report.Archive.Digest)
	}

	return nil
}
