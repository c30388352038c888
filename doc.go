// Package mjbuild packages the MuJoCo Python bindings around a prebuilt
// MuJoCo native library.
//
// It does not compile MuJoCo itself. It locates an existing installation,
// drives CMake to build the thin extension modules against it, and stages the
// results into an installable package tree.
//
// # Basic Usage
//
// Read the environment, then run the packager:
//
//	env, err := mjbuild.EnvironmentFromOS() // MUJOCO_PATH is required
//	if err != nil {
//	    return err
//	}
//
//	meta, err := mjbuild.LoadMetadata("")
//	if err != nil {
//	    return err
//	}
//
//	packager := mjbuild.NewPackager(env, meta, logr.Discard())
//	report, err := packager.Run(ctx, mjbuild.Options{
//	    SourceDir: "python",
//	    BuildTemp: "build/temp",
//	    BuildLib:  "build/lib",
//	})
//
// # Pipeline
//
// A run performs these steps once, in order, and aborts on the first error:
//
//	FindLibrary            MUJOCO_PATH → library dir + include dir
//	LongDescription        README.md (+ LICENSES_THIRD_PARTY.md)
//	CheckTools             MUJOCO_CMAKE is on PATH, CMake >= 3.15
//	ResolvePython          interpreter prefix, paths, EXT_SUFFIX
//	CmakeBuilder.Build     cmake configure → cmake --build → locate modules
//	Stager                 extensions, shared libraries, include/ headers
//	WriteCoreMetadata      <name>-<version>.dist-info/METADATA
//	WriteManifest          sha256 digest of every staged file
//	Archive                optional reproducible .tar.xz
//
// # Environment
//
//   - MUJOCO_PATH: tree containing the MuJoCo library and headers (required)
//   - MUJOCO_CMAKE: CMake executable (default "cmake")
//   - MUJOCO_CMAKE_ARGS: extra configure arguments, shell-style quoting allowed
//   - ARCHFLAGS: on macOS, selects CMAKE_OSX_ARCHITECTURES
//
// # Platform Support
//
// Linux, macOS and Windows library naming conventions are supported.
package mjbuild
