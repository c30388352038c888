package mjbuild

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const defaultCMake = "cmake"

// commandRunner runs name in dir and writes its combined output to out.
// Tests replace it to observe invocations without a CMake installation.
var commandRunner = func(ctx context.Context, dir string, env []string, out io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdout = out
	cmd.Stderr = out
	return cmd.Run()
}

// CmakeBuilder compiles the extension modules with CMake
type CmakeBuilder struct {
	// Executable is the CMake binary; empty means "cmake" from PATH.
	Executable string
}

// NewCmakeBuilder returns a builder that runs the given CMake executable.
func NewCmakeBuilder(executable string) *CmakeBuilder {
	return &CmakeBuilder{Executable: executable}
}

// Name returns the builder name
func (b *CmakeBuilder) Name() string {
	return "CMake"
}

// RequiredTools declares the CMake executable, at least MinCMakeVersion
func (b *CmakeBuilder) RequiredTools() []ToolRequirement {
	return []ToolRequirement{
		{
			Name:        b.executable(),
			Purpose:     "CMake build system",
			MinVersion:  MinCMakeVersion,
			VersionArgs: []string{"--version"},
		},
	}
}

// CheckTools verifies the CMake executable is available and recent enough
func (b *CmakeBuilder) CheckTools() error {
	return CheckRequiredTools(b.RequiredTools())
}

// Build configures and compiles the extensions using the cmake → cmake --build workflow
func (b *CmakeBuilder) Build(ctx context.Context, config *BuildConfig) (*BuildResult, error) {
	return runCommonBuild(ctx, config, CommonBuildSteps{
		ConfigureFunc: b.runCmake,
		BuildFunc:     b.runBuild,
		FindFunc:      b.findBuiltExtensions,
	})
}

// Clean removes the CMake binary directory
func (b *CmakeBuilder) Clean(_ context.Context, config *BuildConfig) error {
	if config.BuildTemp == "" {
		return nil
	}
	return os.RemoveAll(config.BuildTemp)
}

// ConfigureArgs returns the arguments passed to CMake for the configure step,
// excluding the trailing source directory.
func (b *CmakeBuilder) ConfigureArgs(config *BuildConfig) []string {
	goos := config.goos()
	ipo := "ON"
	if config.Debug {
		ipo = "OFF"
	}

	args := []string{
		fmt.Sprintf("-DPython3_ROOT_DIR=%s", config.Python.Root),
		fmt.Sprintf("-DPython3_EXECUTABLE=%s", config.Python.Executable),
		fmt.Sprintf("-DMUJOCO_LIBRARY_DIR=%s", config.LibraryDir),
		fmt.Sprintf("-DMUJOCO_INCLUDE_DIR=%s", config.IncludeDir),
		fmt.Sprintf("-DCMAKE_MODULE_PATH=%s", filepath.Join(config.SourceDir, "cmake")),
		fmt.Sprintf("-DCMAKE_BUILD_TYPE=%s", config.buildType()),
		fmt.Sprintf("-DCMAKE_LIBRARY_OUTPUT_DIRECTORY=%s", config.BuildTemp),
		fmt.Sprintf("-DCMAKE_INTERPROCEDURAL_OPTIMIZATION=%s", ipo),
		"-DCMAKE_Fortran_COMPILER:STRING=",
		"-DCMAKE_VERBOSE_MAKEFILE=ON",
		"-DBUILD_TESTING=OFF",
	}

	if goos != platformWindows {
		args = append(args,
			fmt.Sprintf("-DPython3_LIBRARY=%s", config.Python.Library),
			fmt.Sprintf("-DPython3_INCLUDE_DIR=%s", config.Python.IncludeDir))
	}

	if goos == platformDarwin && config.ArchFlags != "" {
		archs := OSXArchitectures(config.ArchFlags)
		args = append(args, fmt.Sprintf("-DCMAKE_OSX_ARCHITECTURES=%s", strings.Join(archs, ";")))
	}

	// Add any custom build args
	args = append(args, config.BuildArgs...)

	// CMake treats backslashes as escapes
	if goos == platformWindows {
		for i, arg := range args {
			args[i] = strings.ReplaceAll(arg, `\`, "/")
		}
	}

	return args
}

// BuildArgs returns the arguments passed to CMake for the build step.
func (b *CmakeBuilder) BuildArgs(config *BuildConfig) []string {
	return []string{
		"--build", ".",
		fmt.Sprintf("-j%d", config.jobs()),
		"--config", config.buildType(),
	}
}

// runCmake executes cmake to configure the build
func (b *CmakeBuilder) runCmake(ctx context.Context, config *BuildConfig, result *BuildResult) error {
	if err := os.MkdirAll(config.BuildTemp, 0o755); err != nil {
		return err
	}

	args := b.ConfigureArgs(config)

	log := logr.FromContextOrDiscard(ctx)
	log.Info("configuring CMake", "buildTemp", config.BuildTemp)
	for _, arg := range args {
		log.Info("    " + arg)
	}

	args = append(args, filepath.Join(config.SourceDir, "mujoco"))
	return b.run(ctx, config, "CMake", args, result)
}

// runBuild executes the build command
func (b *CmakeBuilder) runBuild(ctx context.Context, config *BuildConfig, result *BuildResult) error {
	logr.FromContextOrDiscard(ctx).Info("building all extensions with CMake", "jobs", config.jobs())
	return b.run(ctx, config, "CMake Build", b.BuildArgs(config), result)
}

// run invokes CMake inside the build directory and records its output.
// A nonzero exit keeps its status through mg.Fatalf.
func (b *CmakeBuilder) run(ctx context.Context, config *BuildConfig, step string, args []string, result *BuildResult) error {
	cmake := b.executable()

	env := os.Environ()
	for key, value := range config.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	var out bytes.Buffer
	err := commandRunner(ctx, config.BuildTemp, env, &out, cmake, args...)
	if out.Len() > 0 {
		result.Output = append(result.Output, strings.Split(strings.TrimRight(out.String(), "\n"), "\n")...)
	}

	if config.Verbose {
		result.Output = append(result.Output,
			fmt.Sprintf("Running: %s %s", cmake, strings.Join(args, " ")),
			fmt.Sprintf("Working directory: %s", config.BuildTemp))
	}

	if err == nil {
		return nil
	}

	if sh.CmdRan(err) {
		code := sh.ExitStatus(err)
		err = mg.Fatalf(code, `running "%s %s" failed with exit code %d`, cmake, strings.Join(args, " "), code)
	} else {
		err = fmt.Errorf(`failed to run "%s %s": %w`, cmake, strings.Join(args, " "), err)
	}
	return BuildError(step, result.Output, err)
}

// findBuiltExtensions locates the compiled extension files
func (b *CmakeBuilder) findBuiltExtensions(config *BuildConfig) ([]string, error) {
	var extensions []string

	for _, module := range config.Extensions {
		name, err := ModuleBaseName(module)
		if err != nil {
			return nil, err
		}

		path := filepath.Join(config.BuildTemp, name+config.Python.ExtSuffix)
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("%w: built extension %s: %v", ErrNotFound, module, err)
		}
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("%w: built extension %s is not a regular file", ErrNotFound, path)
		}

		extensions = append(extensions, path)
	}

	return extensions, nil
}

func (b *CmakeBuilder) executable() string {
	if b.Executable != "" {
		return b.Executable
	}
	return defaultCMake
}
