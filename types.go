package mjbuild

import (
	"context"
	"runtime"
)

// BuildResult contains the output and status of a build operation.
//
// After a build completes, this structure provides:
//   - Success status indicating if the build completed without errors
//   - Output lines captured from CMake (stdout/stderr)
//   - Extensions list of compiled extension module files
//   - Error information and the tool's exit code if the build failed
type BuildResult struct {
	Success    bool     // True if build completed successfully
	Output     []string // Lines of output from the build process
	Extensions []string // Absolute paths to built extension files
	Error      error    // Error if build failed, nil otherwise
	ExitCode   int      // Exit status of the failing tool, 0 on success
}

// PythonConfig describes the interpreter the extensions are compiled for.
//
// Empty fields are filled in by PythonProbe before configuring.
type PythonConfig struct {
	Executable string `json:"executable"` // Interpreter path (sys.executable)
	Root       string `json:"root"`       // Installation prefix (sys.prefix)
	Library    string `json:"library"`    // Standard library dir (sysconfig "stdlib")
	IncludeDir string `json:"include"`    // C headers dir (sysconfig "include")
	ExtSuffix  string `json:"ext_suffix"` // Extension module suffix (EXT_SUFFIX)
}

// Complete reports whether every field is set.
func (p PythonConfig) Complete() bool {
	return p.Executable != "" && p.Root != "" && p.Library != "" && p.IncludeDir != "" && p.ExtSuffix != ""
}

// Merge returns p with its empty fields taken from other.
func (p PythonConfig) Merge(other PythonConfig) PythonConfig {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&p.Executable, other.Executable)
	fill(&p.Root, other.Root)
	fill(&p.Library, other.Library)
	fill(&p.IncludeDir, other.IncludeDir)
	fill(&p.ExtSuffix, other.ExtSuffix)
	return p
}

// BuildConfig contains configuration for the build process.
//
// Source paths define where files are located:
//   - SourceDir: Directory holding the CMake project ("mujoco") and the
//     CMake module directory ("cmake")
//   - BuildTemp: Scratch directory CMake configures and compiles in
//   - BuildLib: Root of the staged package tree
//
// Native library:
//   - LibraryRoot: Tree searched for the library and headers (MUJOCO_PATH)
//   - LibraryDir, IncludeDir: Resolved by FindLibrary before configuring
//
// Build configuration:
//   - BuildArgs: Extra configure arguments, appended verbatim
//   - ArchFlags: ARCHFLAGS value, honoured on darwin only
//   - Env: Extra environment variables for both CMake invocations
//   - Parallel: Job count for the build step (0 = runtime.NumCPU())
type BuildConfig struct {
	// Source paths
	SourceDir string // Directory holding the mujoco/ CMake project and cmake/ modules
	BuildTemp string // CMake binary directory
	BuildLib  string // Root of the staged package tree

	// Native library
	LibraryRoot string // Tree searched for the library and headers
	LibraryDir  string // Directory holding the link library
	IncludeDir  string // Directory holding mujoco.h

	// Build arguments
	BuildArgs []string          // Additional configure arguments
	ArchFlags string            // ARCHFLAGS, darwin only
	Env       map[string]string // Environment variables for build

	// Python configuration
	Python PythonConfig

	// Extension modules to stage, e.g. "mujoco._structs"
	Extensions []string

	// Build options
	Debug    bool   // Debug build without interprocedural optimization
	Verbose  bool   // Record the command lines in the build output
	Parallel int    // Number of parallel jobs (cmake --build -j)
	GOOS     string // Target platform rules (defaults to runtime.GOOS)
}

func (c *BuildConfig) goos() string {
	if c.GOOS != "" {
		return c.GOOS
	}
	return runtime.GOOS
}

func (c *BuildConfig) jobs() int {
	if c.Parallel > 0 {
		return c.Parallel
	}
	return runtime.NumCPU()
}

func (c *BuildConfig) buildType() string {
	if c.Debug {
		return "Debug"
	}
	return "Release"
}

// CommonBuildSteps defines the configure → build → find sequence.
//
// Example usage in a builder:
//
//	return runCommonBuild(ctx, config, CommonBuildSteps{
//	    ConfigureFunc: b.runCmake,
//	    BuildFunc:     b.runBuild,
//	    FindFunc:      b.findBuiltExtensions,
//	})
type CommonBuildSteps struct {
	// ConfigureFunc prepares the build tree (e.g., run cmake)
	ConfigureFunc func(ctx context.Context, config *BuildConfig, result *BuildResult) error

	// BuildFunc compiles the extensions (e.g., run cmake --build)
	BuildFunc func(ctx context.Context, config *BuildConfig, result *BuildResult) error

	// FindFunc locates the compiled extension files after build completes
	FindFunc func(config *BuildConfig) ([]string, error)
}
