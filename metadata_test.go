package mjbuild

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
)

func TestDefaultMetadata(t *testing.T) {
	g := NewWithT(t)

	meta := DefaultMetadata()
	g.Expect(meta.Validate()).To(Succeed())
	g.Expect(meta.ArtifactName()).To(Equal("mujoco-2.1.3"))
	g.Expect(meta.ExtModules).To(HaveLen(8))
	g.Expect(meta.ExtModules).To(ContainElements("mujoco._structs", "mujoco._rollout"))
	g.Expect(meta.InstallRequires).To(Equal([]string{"absl-py", "glfw", "numpy", "pyopengl"}))

	// Callers may mutate their copy freely.
	meta.TestsRequire[0] = "pytest"
	meta.PackageData[0] = "*.txt"
	g.Expect(meta.InstallRequires[0]).To(Equal("absl-py"))
	g.Expect(PackageDataPatterns[0]).To(Equal("libmujoco*.dylib"))
}

func TestLoadMetadata(t *testing.T) {
	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "metadata.yaml")
	writeTestFile(t, path, `version: 2.2.0
ext_modules:
  - mujoco._structs
  - mujoco._render
`)

	meta, err := LoadMetadata(path)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(meta.Version).To(Equal("2.2.0"))
	g.Expect(meta.ExtModules).To(Equal([]string{"mujoco._structs", "mujoco._render"}))
	g.Expect(meta.Name).To(Equal("mujoco"))
	g.Expect(meta.Author).To(Equal("DeepMind"))
	g.Expect(meta.Validate()).To(Succeed())
}

func TestLoadMetadata_EmptyPath(t *testing.T) {
	g := NewWithT(t)

	meta, err := LoadMetadata("")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(meta).To(Equal(DefaultMetadata()))
}

func TestLoadMetadata_Errors(t *testing.T) {
	g := NewWithT(t)

	_, err := LoadMetadata(filepath.Join(t.TempDir(), "absent.yaml"))
	g.Expect(err).To(MatchError(os.ErrNotExist))

	path := filepath.Join(t.TempDir(), "broken.yaml")
	writeTestFile(t, path, "version: [unterminated")
	_, err = LoadMetadata(path)
	g.Expect(err).To(MatchError(ContainSubstring("parsing metadata")))
}

func TestMetadataValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Metadata)
		want   string
	}{
		{"bad version", func(m *Metadata) { m.Version = "2.1" }, `version "2.1"`},
		{"prefixed version", func(m *Metadata) { m.Version = "v2.1.3" }, `version "v2.1.3"`},
		{"no name", func(m *Metadata) { m.Name = "" }, "name is empty"},
		{"no modules", func(m *Metadata) { m.ExtModules = nil }, "no extension modules"},
		{"nested module", func(m *Metadata) { m.ExtModules = []string{"mujoco.viewer._gl"} }, "mujoco.viewer._gl"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewWithT(t)

			meta := DefaultMetadata()
			tc.mutate(meta)

			err := meta.Validate()
			g.Expect(err).To(MatchError(ErrInvalidMetadata))
			g.Expect(err.Error()).To(ContainSubstring(tc.want))
		})
	}
}

func TestLongDescription(t *testing.T) {
	g := NewWithT(t)

	dir := t.TempDir()
	_, err := LongDescription(dir)
	g.Expect(err).To(MatchError(os.ErrNotExist))

	writeTestFile(t, filepath.Join(dir, "README.md"), "# MuJoCo")
	desc, err := LongDescription(dir)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(desc).To(Equal("# MuJoCo"))

	writeTestFile(t, filepath.Join(dir, "LICENSES_THIRD_PARTY.md"), "third party")
	desc, err = LongDescription(dir)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(desc).To(Equal("# MuJoCo\nthird party"))
}

func TestCoreMetadata(t *testing.T) {
	g := NewWithT(t)

	meta := DefaultMetadata()
	meta.TestsRequire = []string{"pytest"}

	g.Expect(string(meta.CoreMetadata("# MuJoCo\nthird party"))).To(Equal(`Metadata-Version: 2.1
Name: mujoco
Version: 2.1.3
Summary: MuJoCo Physics Simulator
Home-page: https://github.com/deepmind/mujoco
Author: DeepMind
Author-email: mujoco@deepmind.com
License: Apache License 2.0
Classifier: License :: OSI Approved :: Apache Software License
Requires-Python: >=3.7
Description-Content-Type: text/markdown
Requires-Dist: absl-py
Requires-Dist: glfw
Requires-Dist: numpy
Requires-Dist: pyopengl
Provides-Extra: test
Requires-Dist: pytest; extra == "test"

# MuJoCo
third party`))
}

func TestCoreMetadata_OmitsEmptyFields(t *testing.T) {
	g := NewWithT(t)

	meta := &Metadata{Name: "mujoco", Version: "2.1.3"}
	g.Expect(string(meta.CoreMetadata(""))).To(Equal(
		"Metadata-Version: 2.1\nName: mujoco\nVersion: 2.1.3\nDescription-Content-Type: text/markdown\n\n"))
}

func TestWriteCoreMetadata(t *testing.T) {
	g := NewWithT(t)

	buildLib := t.TempDir()
	meta := DefaultMetadata()

	file, err := WriteCoreMetadata(buildLib, meta, "# MuJoCo")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(file).To(Equal(filepath.Join(DistInfoDir(buildLib, meta), "METADATA")))
	g.Expect(file).To(Equal(filepath.Join(buildLib, "mujoco-2.1.3.dist-info", "METADATA")))

	data, err := os.ReadFile(file)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(data).To(Equal(meta.CoreMetadata("# MuJoCo")))
}
