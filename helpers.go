package mjbuild

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// MatchesGlob checks if a filename matches any of the given shell patterns.
//
// Patterns use filepath.Match syntax (*, ?, [...]) and are matched against
// the whole name, so callers pass base names. Matching is case-insensitive on
// Windows, where the filesystem is too. A malformed pattern never matches.
//
// # Example
//
//	// Versioned shared objects such as libmujoco.so.2.1.3
//	if MatchesGlob(name, "libmujoco*.so*") {
//	    // Ship it with the package
//	}
func MatchesGlob(filename string, patterns ...string) bool {
	if runtime.GOOS == platformWindows {
		filename = strings.ToLower(filename)
	}
	for _, pattern := range patterns {
		if runtime.GOOS == platformWindows {
			pattern = strings.ToLower(pattern)
		}
		if matched, _ := filepath.Match(pattern, filename); matched {
			return true
		}
	}
	return false
}

// MatchesExtension checks if a filename has any of the given extensions.
//
// This is a case-insensitive suffix check, so ".so" matches "ext.SO" but a
// versioned "libfoo.so.2" has to be matched with MatchesGlob instead.
func MatchesExtension(filename string, extensions ...string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(strings.ToLower(filename), strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// BuildError creates a standardized build error with output context.
//
// This helper formats subprocess failures consistently, including the
// captured output for debugging.
//
// # Format
//
// With error and output:
//
//	CMake build failed: running "cmake --build ..." failed with exit code 2
//
//	Build output:
//	[ 10%] Building CXX object ...
//	error: ...
//
// With error but no output:
//
//	CMake build failed: running "cmake ..." failed with exit code 1
//
// The returned error wraps err, so ExitCode still finds the exit status.
func BuildError(step string, output []string, err error) error {
	outputStr := strings.TrimRight(strings.Join(output, "\n"), "\n")

	if outputStr != "" {
		return fmt.Errorf("%s build failed: %w\n\nBuild output:\n%s", step, err, outputStr)
	}

	return fmt.Errorf("%s build failed: %w", step, err)
}

// ExitCode returns the exit status carried by err or anything it wraps.
// It is 0 for nil and 1 for errors that carry no status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var status interface{ ExitStatus() int }
	if errors.As(err, &status) {
		return status.ExitStatus()
	}
	return 1
}
