package mjbuild

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/go-logr/logr"
)

const (
	// PackageName is the Python package the extensions are staged into
	PackageName = "mujoco"

	// ExtPrefix prefixes every extension module name
	ExtPrefix = PackageName + "."

	includeDirName = "include"
)

// ModuleBaseName returns the part of an extension module name after
// "mujoco.". Modules must sit directly in the package, so the remainder may
// not contain another dot or a path separator.
func ModuleBaseName(module string) (string, error) {
	name, ok := strings.CutPrefix(module, ExtPrefix)
	if !ok || name == "" || strings.ContainsAny(name, `./\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidModule, module)
	}
	return name, nil
}

// Stager copies build outputs and native library files into the package tree.
type Stager struct {
	PackageDir string      // Destination package directory (<build-lib>/mujoco)
	GOOS       string      // Platform rules for library patterns
	Log        logr.Logger // Receives one V(1) line per staged file
}

// NewStager returns a Stager rooted at <buildLib>/mujoco.
func NewStager(buildLib, goos string, log logr.Logger) (*Stager, error) {
	pkgDir, err := securejoin.SecureJoin(buildLib, PackageName)
	if err != nil {
		return nil, err
	}
	if goos == "" {
		goos = runtime.GOOS
	}
	return &Stager{PackageDir: pkgDir, GOOS: goos, Log: log}, nil
}

// InstallExtensions copies each built extension (built[i] belongs to
// modules[i]) to <package>/<name><suffix> and returns the destinations.
func (s *Stager) InstallExtensions(modules, built []string, suffix string) ([]string, error) {
	if len(modules) != len(built) {
		return nil, fmt.Errorf("have %d built files for %d extension modules", len(built), len(modules))
	}

	var installed []string
	for i, module := range modules {
		name, err := ModuleBaseName(module)
		if err != nil {
			return nil, err
		}

		dest, err := securejoin.SecureJoin(s.PackageDir, name+suffix)
		if err != nil {
			return nil, err
		}
		if err := s.copy(built[i], dest); err != nil {
			return nil, err
		}
		installed = append(installed, dest)
	}

	return installed, nil
}

// CopyExternalLibraries copies every shared library under libraryRoot that
// the package must ship into the package directory. Existing files are
// overwritten. Libraries already inside the package directory are not
// sources, so a build lib placed under libraryRoot can be staged again.
func (s *Stager) CopyExternalLibraries(libraryRoot string) ([]string, error) {
	files, err := CollectFiles(libraryRoot, ExternalLibraryPatterns(s.GOOS)...)
	if err != nil {
		return nil, err
	}

	var copied []string
	for _, src := range files {
		if within(s.PackageDir, src) {
			s.Log.V(1).Info("skipping staged library", "path", src)
			continue
		}
		dest := filepath.Join(s.PackageDir, filepath.Base(src))
		if err := s.copy(src, dest); err != nil {
			return nil, err
		}
		copied = append(copied, dest)
	}

	return copied, nil
}

// CopyHeaders creates <package>/include and copies every header found under
// includeDir into it, flattened. It fails if the include directory already
// exists.
func (s *Stager) CopyHeaders(includeDir string) ([]string, error) {
	if err := os.MkdirAll(s.PackageDir, 0o755); err != nil {
		return nil, err
	}

	dst := filepath.Join(s.PackageDir, includeDirName)
	if err := os.Mkdir(dst, 0o755); err != nil {
		return nil, err
	}

	files, err := CollectFiles(includeDir, HeaderPattern)
	if err != nil {
		return nil, err
	}

	var copied []string
	for _, src := range files {
		dest := filepath.Join(dst, filepath.Base(src))
		if err := s.copy(src, dest); err != nil {
			return nil, err
		}
		copied = append(copied, dest)
	}

	return copied, nil
}

func (s *Stager) copy(src, dest string) error {
	s.Log.V(1).Info("staging file", "src", src, "dest", dest)
	return copyFile(src, dest)
}

func copyFile(srcPath, destPath string) error {
	info, err := os.Stat(srcPath)
	if err != nil {
		return err
	}

	if destInfo, err := os.Stat(destPath); err == nil && os.SameFile(info, destInfo) {
		return &Error{Op: "copy", Path: srcPath, Err: fmt.Errorf("%w: same file as %s", ErrSameFile, destPath)}
	}

	dir := filepath.Dir(destPath)
	if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
		return mkErr
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
