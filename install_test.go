package mjbuild

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/go-logr/logr"
)

func TestModuleBaseName(t *testing.T) {
	valid := map[string]string{
		"mujoco._structs":   "_structs",
		"mujoco._callbacks": "_callbacks",
	}
	for module, want := range valid {
		got, err := ModuleBaseName(module)
		if err != nil {
			t.Fatalf("ModuleBaseName(%q) returned error: %v", module, err)
		}
		if got != want {
			t.Errorf("ModuleBaseName(%q) = %q, want %q", module, got, want)
		}
	}

	for _, module := range []string{"_structs", "mujoco.", "mujoco.viewer._x", "mujoco../evil", `mujoco.a\b`, "other._structs"} {
		if _, err := ModuleBaseName(module); !errors.Is(err, ErrInvalidModule) {
			t.Errorf("ModuleBaseName(%q) error = %v, want ErrInvalidModule", module, err)
		}
	}
}

func TestStagerInstallExtensions(t *testing.T) {
	buildTemp := t.TempDir()
	buildLib := t.TempDir()

	built := []string{
		filepath.Join(buildTemp, "_structs.so"),
		filepath.Join(buildTemp, "_enums.so"),
	}
	for _, path := range built {
		writeTestFile(t, path, "binary")
		if err := os.Chmod(path, 0o755); err != nil {
			t.Fatalf("failed to chmod %s: %v", path, err)
		}
	}

	stager, err := NewStager(buildLib, "linux", logr.Discard())
	if err != nil {
		t.Fatalf("NewStager returned error: %v", err)
	}

	installed, err := stager.InstallExtensions([]string{"mujoco._structs", "mujoco._enums"}, built, ".so")
	if err != nil {
		t.Fatalf("InstallExtensions returned error: %v", err)
	}

	expected := []string{
		filepath.Join(buildLib, "mujoco", "_structs.so"),
		filepath.Join(buildLib, "mujoco", "_enums.so"),
	}
	if len(installed) != len(expected) {
		t.Fatalf("expected installed paths %v, got %v", expected, installed)
	}
	for i := range expected {
		if installed[i] != expected[i] {
			t.Errorf("expected installed[%d] = %s, got %s", i, expected[i], installed[i])
		}
		info, err := os.Stat(expected[i])
		if err != nil {
			t.Fatalf("expected extension copied to %s: %v", expected[i], err)
		}
		if runtime.GOOS != "windows" && info.Mode().Perm() != 0o755 {
			t.Errorf("expected %s to keep mode 0755, got %v", expected[i], info.Mode().Perm())
		}
	}
}

func TestStagerInstallExtensionsRejectsMismatch(t *testing.T) {
	stager, err := NewStager(t.TempDir(), "linux", logr.Discard())
	if err != nil {
		t.Fatalf("NewStager returned error: %v", err)
	}

	if _, err := stager.InstallExtensions([]string{"mujoco._a", "mujoco._b"}, []string{"a.so"}, ".so"); err == nil {
		t.Error("expected an error for mismatched module and file counts")
	}

	if _, err := stager.InstallExtensions([]string{"mujoco.sub._a"}, []string{"a.so"}, ".so"); !errors.Is(err, ErrInvalidModule) {
		t.Errorf("expected ErrInvalidModule, got %v", err)
	}
}

func TestStagerCopyExternalLibraries(t *testing.T) {
	libraryRoot := t.TempDir()
	buildLib := t.TempDir()

	writeTestFile(t, filepath.Join(libraryRoot, "lib", "libmujoco.so.2.1.3"), "new")
	writeTestFile(t, filepath.Join(libraryRoot, "lib", "libglew.so"), "glew")
	writeTestFile(t, filepath.Join(libraryRoot, "lib", "libglfw.so.3"), "glfw")
	writeTestFile(t, filepath.Join(libraryRoot, "bin", "mujoco.dll"), "dll")
	writeTestFile(t, filepath.Join(buildLib, "mujoco", "libmujoco.so.2.1.3"), "stale")

	stager, err := NewStager(buildLib, "linux", logr.Discard())
	if err != nil {
		t.Fatalf("NewStager returned error: %v", err)
	}

	copied, err := stager.CopyExternalLibraries(libraryRoot)
	if err != nil {
		t.Fatalf("CopyExternalLibraries returned error: %v", err)
	}
	if len(copied) != 2 {
		t.Fatalf("expected 2 libraries copied, got %v", copied)
	}

	data, err := os.ReadFile(filepath.Join(buildLib, "mujoco", "libmujoco.so.2.1.3"))
	if err != nil {
		t.Fatalf("expected library copied: %v", err)
	}
	if string(data) != "new" {
		t.Errorf("expected existing library to be overwritten, got %q", data)
	}

	for _, absent := range []string{"libglfw.so.3", "mujoco.dll"} {
		if _, err := os.Stat(filepath.Join(buildLib, "mujoco", absent)); !os.IsNotExist(err) {
			t.Errorf("did not expect %s in the package", absent)
		}
	}
}

func TestStagerCopyHeaders(t *testing.T) {
	includeDir := t.TempDir()
	buildLib := t.TempDir()

	writeTestFile(t, filepath.Join(includeDir, "mujoco.h"), "// mujoco")
	writeTestFile(t, filepath.Join(includeDir, "mjmodel.h"), "// model")
	writeTestFile(t, filepath.Join(includeDir, "nested", "mjxmacro.h"), "// macro")
	writeTestFile(t, filepath.Join(includeDir, "README"), "docs")

	stager, err := NewStager(buildLib, "linux", logr.Discard())
	if err != nil {
		t.Fatalf("NewStager returned error: %v", err)
	}

	copied, err := stager.CopyHeaders(includeDir)
	if err != nil {
		t.Fatalf("CopyHeaders returned error: %v", err)
	}
	if len(copied) != 3 {
		t.Fatalf("expected 3 headers copied, got %v", copied)
	}

	for _, name := range []string{"mujoco.h", "mjmodel.h", "mjxmacro.h"} {
		if _, err := os.Stat(filepath.Join(buildLib, "mujoco", "include", name)); err != nil {
			t.Errorf("expected header %s flattened into include/: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(buildLib, "mujoco", "include", "README")); !os.IsNotExist(err) {
		t.Error("did not expect non-header files in include/")
	}
}

func TestStagerCopyHeadersFailsWhenIncludeExists(t *testing.T) {
	includeDir := t.TempDir()
	buildLib := t.TempDir()
	writeTestFile(t, filepath.Join(includeDir, "mujoco.h"), "")

	if err := os.MkdirAll(filepath.Join(buildLib, "mujoco", "include"), 0o755); err != nil {
		t.Fatalf("failed to create include directory: %v", err)
	}

	stager, err := NewStager(buildLib, "linux", logr.Discard())
	if err != nil {
		t.Fatalf("NewStager returned error: %v", err)
	}

	_, err = stager.CopyHeaders(includeDir)
	if !errors.Is(err, os.ErrExist) {
		t.Fatalf("expected os.ErrExist, got %v", err)
	}
}

func TestStagerCopyExternalLibrariesTwiceUnderLibraryRoot(t *testing.T) {
	root := t.TempDir()
	lib := filepath.Join(root, "alib", "libmujoco.so.2")
	writeTestFile(t, lib, "mujoco-lib")

	stager, err := NewStager(filepath.Join(root, "build", "lib"), "linux", logr.Discard())
	if err != nil {
		t.Fatalf("NewStager returned error: %v", err)
	}

	for run := 1; run <= 2; run++ {
		copied, err := stager.CopyExternalLibraries(root)
		if err != nil {
			t.Fatalf("run %d: CopyExternalLibraries returned error: %v", run, err)
		}
		want := filepath.Join(stager.PackageDir, "libmujoco.so.2")
		if len(copied) != 1 || copied[0] != want {
			t.Fatalf("run %d: expected only %s, got %v", run, want, copied)
		}
		data, err := os.ReadFile(want)
		if err != nil {
			t.Fatalf("run %d: failed to read staged library: %v", run, err)
		}
		if string(data) != "mujoco-lib" {
			t.Fatalf("run %d: staged library = %q, want %q", run, data, "mujoco-lib")
		}
	}
}

func TestCopyFileRefusesSameFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "libmujoco.so")
	writeTestFile(t, path, "mujoco-lib")

	if err := copyFile(path, path); !errors.Is(err, ErrSameFile) {
		t.Fatalf("expected ErrSameFile, got %v", err)
	}

	link := filepath.Join(dir, "libmujoco.so.2")
	if err := os.Symlink(path, link); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}
	if err := copyFile(link, path); !errors.Is(err, ErrSameFile) {
		t.Fatalf("expected ErrSameFile through a symlink, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read library: %v", err)
	}
	if string(data) != "mujoco-lib" {
		t.Errorf("library content = %q, want %q", data, "mujoco-lib")
	}
}
