package mjbuild

import (
	"fmt"
	"os"
	"runtime"
)

// Environment variables read by the packager
const (
	EnvLibraryPath = "MUJOCO_PATH"
	EnvCMake       = "MUJOCO_CMAKE"
	EnvCMakeArgs   = "MUJOCO_CMAKE_ARGS"
	EnvArchFlags   = "ARCHFLAGS"
)

// Environment is the packager configuration taken from environment variables.
type Environment struct {
	LibraryRoot string   // MUJOCO_PATH, required
	CMake       string   // MUJOCO_CMAKE, defaults to "cmake"
	CMakeArgs   []string // MUJOCO_CMAKE_ARGS, parsed with ParseArgs
	ArchFlags   string   // ARCHFLAGS, darwin only
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// EnvironmentFromOS reads the process environment for the host platform.
func EnvironmentFromOS() (*Environment, error) {
	return EnvironmentFromLookup(os.LookupEnv, runtime.GOOS)
}

// EnvironmentFromLookup reads the packager configuration through lookup.
//
// A missing or empty MUJOCO_PATH fails with ErrMissingEnv; a MUJOCO_CMAKE_ARGS value
// with unbalanced quotes fails with ErrUnbalancedQuotes.
func EnvironmentFromLookup(lookup LookupFunc, goos string) (*Environment, error) {
	root, ok := lookup(EnvLibraryPath)
	if !ok || root == "" {
		return nil, fmt.Errorf("%s %w", EnvLibraryPath, ErrMissingEnv)
	}

	env := &Environment{
		LibraryRoot: root,
		CMake:       defaultCMake,
	}

	if cmake, ok := lookup(EnvCMake); ok && cmake != "" {
		env.CMake = cmake
	}

	if raw, ok := lookup(EnvCMakeArgs); ok {
		args, err := ParseArgs(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", EnvCMakeArgs, err)
		}
		env.CMakeArgs = args
	}

	if goos == platformDarwin {
		env.ArchFlags, _ = lookup(EnvArchFlags)
	}

	return env, nil
}
