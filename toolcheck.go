package mjbuild

import (
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/magefile/mage/sh"
)

// MinCMakeVersion is the oldest CMake the bindings project configures with.
const MinCMakeVersion = "3.15"

// Replaced in tests.
var (
	execLookPath      = exec.LookPath
	toolVersionOutput = sh.Output
)

var versionPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// ToolChecker is implemented by builders that shell out to external tools.
//
// The Packager calls CheckTools after locating the native library and
// before any build step runs:
//
//	if checker, ok := builder.(ToolChecker); ok {
//	    if err := checker.CheckTools(); err != nil {
//	        return fmt.Errorf("build tools missing: %w", err)
//	    }
//	}
type ToolChecker interface {
	RequiredTools() []ToolRequirement
	CheckTools() error
}

// ToolRequirement describes an executable a builder runs.
//
//	ToolRequirement{
//	    Name:        "cmake",
//	    Purpose:     "CMake build system",
//	    MinVersion:  "3.15",
//	    VersionArgs: []string{"--version"},
//	}
type ToolRequirement struct {
	// Name is the binary name or path, e.g. "cmake" or MUJOCO_CMAKE.
	Name string

	// Alternatives are tried in order when Name is not found.
	Alternatives []string

	// Optional tools never fail the check.
	Optional bool

	// Purpose is shown next to the name in error messages.
	Purpose string

	// MinVersion, when set, is compared with the first x.y[.z] printed by
	// running the tool with VersionArgs.
	MinVersion  string
	VersionArgs []string
}

func (r ToolRequirement) label() string {
	if r.Purpose != "" {
		return fmt.Sprintf("%s (%s)", r.Name, r.Purpose)
	}
	return r.Name
}

// CheckToolAvailable resolves tool on PATH. Names containing a path
// separator are checked as given, which lets MUJOCO_CMAKE point at a CMake
// outside PATH.
func CheckToolAvailable(tool string) (string, error) {
	path, err := execLookPath(tool)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH", tool)
	}
	return path, nil
}

// CheckToolVersion runs the tool at path with req.VersionArgs and fails if it
// reports a version older than req.MinVersion.
func CheckToolVersion(path string, req ToolRequirement) error {
	if req.MinVersion == "" {
		return nil
	}

	constraint, err := semver.NewConstraint(">= " + req.MinVersion)
	if err != nil {
		return fmt.Errorf("invalid minimum version %q for %s: %w", req.MinVersion, req.Name, err)
	}

	out, err := toolVersionOutput(path, req.VersionArgs...)
	if err != nil {
		return fmt.Errorf("%s: reading version: %w", req.Name, err)
	}

	found := versionPattern.FindString(out)
	if found == "" {
		return fmt.Errorf("%s: no version in %q", req.Name, strings.TrimSpace(out))
	}
	v, err := semver.NewVersion(found)
	if err != nil {
		return fmt.Errorf("%s: %w", req.Name, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%s %s is older than the required %s", req.label(), v, req.MinVersion)
	}
	return nil
}

// CheckRequiredTools resolves every requirement, falling back to its
// alternatives, and checks versions where asked. Problems with optional
// tools are ignored. All problems are reported in one error:
//
//	cmake (CMake build system) not found in PATH
//	build tool check failed: cmake (CMake build system) 3.10.2 is older than the required 3.15; ninja not found in PATH
func CheckRequiredTools(requirements []ToolRequirement) error {
	var problems []string

	for _, req := range requirements {
		path, err := CheckToolAvailable(req.Name)
		for _, alt := range req.Alternatives {
			if err == nil {
				break
			}
			path, err = CheckToolAvailable(alt)
		}

		if err != nil {
			err = fmt.Errorf("%s not found in PATH", req.label())
		} else {
			err = CheckToolVersion(path, req)
		}

		if err != nil && !req.Optional {
			problems = append(problems, err.Error())
		}
	}

	switch len(problems) {
	case 0:
		return nil
	case 1:
		return errors.New(problems[0])
	default:
		return fmt.Errorf("build tool check failed: %s", strings.Join(problems, "; "))
	}
}
