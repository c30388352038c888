package mjbuild

import (
	"context"
	"fmt"
	"runtime"

	"github.com/go-logr/logr"
)

// Options controls a single packaging run.
type Options struct {
	SourceDir     string       // Directory holding mujoco/, cmake/ and README.md
	BuildTemp     string       // CMake binary directory
	BuildLib      string       // Root of the staged package tree
	ArchiveDir    string       // Where to write the .tar.xz; empty skips archiving
	Python        PythonConfig // Interpreter facts; empty fields are probed
	Debug         bool         // Debug build type, no IPO
	Verbose       bool         // Record command lines in the build output
	Parallel      int          // Build jobs; 0 uses every CPU
	SkipToolCheck bool         // Do not look up the CMake executable first
	GOOS          string       // Platform rules; empty means runtime.GOOS
}

// Report summarizes what a run produced.
type Report struct {
	LibraryDir   string
	IncludeDir   string
	Build        *BuildResult
	Extensions   []string // Staged extension modules
	Libraries    []string // Staged shared libraries
	Headers      []string // Staged headers
	MetadataPath string // dist-info METADATA
	Manifest     *Manifest
	ManifestPath string
	Archive      *ArchiveResult // nil unless Options.ArchiveDir is set
}

// Packager locates the native library, builds the extension modules and
// stages everything into the package tree.
type Packager struct {
	Env      *Environment
	Metadata *Metadata
	Builder  Builder
	Log      logr.Logger
}

// NewPackager returns a Packager that builds with the CMake named in env.
func NewPackager(env *Environment, meta *Metadata, log logr.Logger) *Packager {
	return &Packager{
		Env:      env,
		Metadata: meta,
		Builder:  NewCmakeBuilder(env.CMake),
		Log:      log,
	}
}

// Run executes every step once, in order, and stops at the first failure.
// The library lookup happens before any subprocess is started.
func (p *Packager) Run(ctx context.Context, opts Options) (*Report, error) {
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	log := p.Log.WithValues("package", p.Metadata.ArtifactName())
	report := &Report{}

	if err := p.Metadata.Validate(); err != nil {
		return report, err
	}

	libraryDir, includeDir, err := FindLibrary(p.Env.LibraryRoot, goos)
	if err != nil {
		return report, err
	}
	report.LibraryDir, report.IncludeDir = libraryDir, includeDir
	log.Info("found MuJoCo", "libraryDir", libraryDir, "includeDir", includeDir)

	description, err := LongDescription(opts.SourceDir)
	if err != nil {
		return report, fmt.Errorf("reading long description: %w", err)
	}

	if checker, ok := p.Builder.(ToolChecker); ok && !opts.SkipToolCheck {
		if err := checker.CheckTools(); err != nil {
			return report, fmt.Errorf("build tools missing: %w", err)
		}
	}

	python, err := ResolvePython(opts.Python)
	if err != nil {
		return report, err
	}
	log.V(1).Info("resolved python", "executable", python.Executable, "extSuffix", python.ExtSuffix)

	config := &BuildConfig{
		SourceDir:   opts.SourceDir,
		BuildTemp:   opts.BuildTemp,
		BuildLib:    opts.BuildLib,
		LibraryRoot: p.Env.LibraryRoot,
		LibraryDir:  libraryDir,
		IncludeDir:  includeDir,
		BuildArgs:   p.Env.CMakeArgs,
		ArchFlags:   p.Env.ArchFlags,
		Python:      python,
		Extensions:  p.Metadata.ExtModules,
		Debug:       opts.Debug,
		Verbose:     opts.Verbose,
		Parallel:    opts.Parallel,
		GOOS:        goos,
	}

	result, err := p.Builder.Build(logr.NewContext(ctx, log), config)
	report.Build = result
	if err != nil {
		return report, err
	}

	stager, err := NewStager(opts.BuildLib, goos, log)
	if err != nil {
		return report, err
	}

	if report.Extensions, err = stager.InstallExtensions(p.Metadata.ExtModules, result.Extensions, python.ExtSuffix); err != nil {
		return report, err
	}
	if report.Libraries, err = stager.CopyExternalLibraries(p.Env.LibraryRoot); err != nil {
		return report, err
	}
	if report.Headers, err = stager.CopyHeaders(includeDir); err != nil {
		return report, err
	}
	log.Info("staged package", "dir", stager.PackageDir,
		"extensions", len(report.Extensions), "libraries", len(report.Libraries), "headers", len(report.Headers))

	if report.MetadataPath, err = WriteCoreMetadata(opts.BuildLib, p.Metadata, description); err != nil {
		return report, err
	}
	log.V(1).Info("wrote core metadata", "path", report.MetadataPath)

	platform := fmt.Sprintf("%s/%s", goos, runtime.GOARCH)
	manifest, err := BuildManifest(opts.BuildLib, platform, p.Metadata, report.Extensions)
	if err != nil {
		return report, err
	}
	report.Manifest = manifest
	report.ManifestPath = ManifestPath(opts.BuildLib, p.Metadata)
	if err := WriteManifest(manifest, report.ManifestPath); err != nil {
		return report, err
	}

	if opts.ArchiveDir != "" {
		archive, err := Archive(opts.BuildLib, opts.ArchiveDir, p.Metadata)
		if err != nil {
			return report, err
		}
		report.Archive = archive
		log.Info("wrote archive", "path", archive.Path, "digest", archive.Digest.String(), "size", archive.Size)
	}

	return report, nil
}
