package mjbuild

import "context"

// Builder compiles the extension modules for one Packager run.
//
// The Packager calls Build once, after FindLibrary and ResolvePython have
// filled in the BuildConfig, and stages whatever BuildResult.Extensions
// lists. CmakeBuilder is the only implementation; tests substitute their
// own.
type Builder interface {
	// Name is used in logs and error messages, e.g. "CMake".
	Name() string

	// Build configures the build tree, compiles every module in
	// config.Extensions and returns the paths of the compiled files in the
	// same order. On failure the result carries the captured output and the
	// tool's exit status.
	Build(ctx context.Context, config *BuildConfig) (*BuildResult, error)

	// Clean removes the build tree. Nothing to clean is not an error.
	Clean(ctx context.Context, config *BuildConfig) error
}
