package mjbuild

import "strings"

// Platform identifiers as reported by runtime.GOOS
const (
	platformWindows = "windows"
	platformDarwin  = "darwin"
)

// HeaderFile is the header whose directory is passed to CMake as the include dir.
const HeaderFile = "mujoco.h"

// HeaderPattern selects the headers staged into the package include directory.
const HeaderPattern = "*.h"

// PackageDataPatterns lists the files shipped as package data next to the
// extension modules.
var PackageDataPatterns = []string{
	"libmujoco*.dylib",
	"libmujoco*.so*",
	"mujoco*.dll",
	"libglew*.so*",
	"mujoco.h",
	"mj*.h",
}

// LibraryPattern returns the glob matching the MuJoCo link library on goos.
func LibraryPattern(goos string) string {
	switch goos {
	case platformWindows:
		return "mujoco*.lib"
	case platformDarwin:
		return "libmujoco*.dylib"
	default:
		return "libmujoco*.so*"
	}
}

// ExternalLibraryPatterns returns the globs of shared libraries that must be
// shipped alongside the extension modules on goos.
func ExternalLibraryPatterns(goos string) []string {
	switch goos {
	case platformWindows:
		return []string{"mujoco*.dll"}
	case platformDarwin:
		return []string{"libmujoco*.dylib"}
	default:
		return []string{"libmujoco*.so*", "libglew*.so"}
	}
}

// OSXArchitectures translates an ARCHFLAGS value such as
// "-arch x86_64 -arch arm64" into the list CMake expects in
// CMAKE_OSX_ARCHITECTURES. Unknown architectures are ignored.
func OSXArchitectures(archFlags string) []string {
	var archs []string
	if strings.Contains(archFlags, "-arch x86_64") {
		archs = append(archs, "x86_64")
	}
	if strings.Contains(archFlags, "-arch arm64") {
		archs = append(archs, "arm64")
	}
	return archs
}
