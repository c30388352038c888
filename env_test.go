package mjbuild

import (
	"testing"

	. "github.com/onsi/gomega"
)

func lookupFrom(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestEnvironmentFromLookup(t *testing.T) {
	g := NewWithT(t)

	env, err := EnvironmentFromLookup(lookupFrom(map[string]string{
		EnvLibraryPath: "/opt/mujoco",
		EnvCMake:       "/usr/local/bin/cmake3",
		EnvCMakeArgs:   `-DCMAKE_CXX_FLAGS="-O3 -g" -DFOO='bar baz'`,
		EnvArchFlags:   "-arch arm64",
	}), "linux")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(env).To(Equal(&Environment{
		LibraryRoot: "/opt/mujoco",
		CMake:       "/usr/local/bin/cmake3",
		CMakeArgs:   []string{"-DCMAKE_CXX_FLAGS=-O3 -g", "-DFOO=bar baz"},
	}))
}

func TestEnvironmentFromLookup_Defaults(t *testing.T) {
	g := NewWithT(t)

	env, err := EnvironmentFromLookup(lookupFrom(map[string]string{
		EnvLibraryPath: "/opt/mujoco",
		EnvCMake:       "",
	}), "linux")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(env.CMake).To(Equal("cmake"))
	g.Expect(env.CMakeArgs).To(BeEmpty())
	g.Expect(env.ArchFlags).To(BeEmpty())
}

func TestEnvironmentFromLookup_ArchFlagsOnDarwin(t *testing.T) {
	g := NewWithT(t)

	env, err := EnvironmentFromLookup(lookupFrom(map[string]string{
		EnvLibraryPath: "/opt/mujoco",
		EnvArchFlags:   "-arch arm64 -arch x86_64",
	}), "darwin")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(env.ArchFlags).To(Equal("-arch arm64 -arch x86_64"))
}

func TestEnvironmentFromLookup_MissingLibraryPath(t *testing.T) {
	g := NewWithT(t)

	_, err := EnvironmentFromLookup(lookupFrom(map[string]string{
		EnvCMake: "cmake",
	}), "linux")
	g.Expect(err).To(MatchError(ErrMissingEnv))
	g.Expect(err.Error()).To(Equal("MUJOCO_PATH environment variable is not set"))
}

func TestEnvironmentFromLookup_EmptyLibraryPath(t *testing.T) {
	g := NewWithT(t)

	_, err := EnvironmentFromLookup(lookupFrom(map[string]string{
		EnvLibraryPath: "",
	}), "linux")
	g.Expect(err).To(MatchError(ErrMissingEnv))
	g.Expect(err.Error()).To(Equal("MUJOCO_PATH environment variable is not set"))
}

func TestEnvironmentFromLookup_UnbalancedArgs(t *testing.T) {
	g := NewWithT(t)

	_, err := EnvironmentFromLookup(lookupFrom(map[string]string{
		EnvLibraryPath: "/opt/mujoco",
		EnvCMakeArgs:   `-DX="unterminated`,
	}), "linux")
	g.Expect(err).To(MatchError(ErrUnbalancedQuotes))
	g.Expect(err.Error()).To(HavePrefix("parsing MUJOCO_CMAKE_ARGS"))
}
