package mjbuild

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Version is the version of the MuJoCo package produced by default
const Version = "2.1.3"

const (
	coreMetadataVersion    = "2.1"
	descriptionContentType = "text/markdown"
	testExtra              = "test"
)

// Metadata holds the static description of the produced Python package
type Metadata struct {
	Name            string   `yaml:"name"`
	Version         string   `yaml:"version"`
	Author          string   `yaml:"author"`
	AuthorEmail     string   `yaml:"author_email"`
	Description     string   `yaml:"description"`
	URL             string   `yaml:"url"`
	License         string   `yaml:"license"`
	Classifiers     []string `yaml:"classifiers"`
	PythonRequires  string   `yaml:"python_requires"`
	InstallRequires []string `yaml:"install_requires"`
	TestsRequire    []string `yaml:"tests_require"`
	ExtModules      []string `yaml:"ext_modules"`
	PackageData     []string `yaml:"package_data"`
}

// DefaultMetadata returns the metadata of the upstream MuJoCo bindings
func DefaultMetadata() *Metadata {
	requires := []string{"absl-py", "glfw", "numpy", "pyopengl"}

	return &Metadata{
		Name:        PackageName,
		Version:     Version,
		Author:      "DeepMind",
		AuthorEmail: "mujoco@deepmind.com",
		Description: "MuJoCo Physics Simulator",
		URL:         "https://github.com/deepmind/mujoco",
		License:     "Apache License 2.0",
		Classifiers: []string{
			"License :: OSI Approved :: Apache Software License",
		},
		PythonRequires:  ">=3.7",
		InstallRequires: requires,
		TestsRequire:    append([]string(nil), requires...),
		ExtModules: []string{
			"mujoco._callbacks",
			"mujoco._constants",
			"mujoco._enums",
			"mujoco._errors",
			"mujoco._functions",
			"mujoco._render",
			"mujoco._rollout",
			"mujoco._structs",
		},
		PackageData: append([]string(nil), PackageDataPatterns...),
	}
}

// LoadMetadata reads a YAML file over the defaults. An empty path returns
// the defaults. Keys missing from the file keep their default value.
func LoadMetadata(path string) (*Metadata, error) {
	meta := DefaultMetadata()
	if path == "" {
		return meta, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}

	if err := yaml.Unmarshal(data, meta); err != nil {
		return nil, fmt.Errorf("parsing metadata: %w", err)
	}

	return meta, nil
}

// Validate checks the version and extension module names.
func (m *Metadata) Validate() error {
	var errs []error

	if m.Name == "" {
		errs = append(errs, errors.New("name is empty"))
	}
	if _, err := semver.StrictNewVersion(m.Version); err != nil {
		errs = append(errs, fmt.Errorf("version %q: %w", m.Version, err))
	}
	if len(m.ExtModules) == 0 {
		errs = append(errs, errors.New("no extension modules"))
	}
	for _, module := range m.ExtModules {
		if _, err := ModuleBaseName(module); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidMetadata, errors.Join(errs...))
	}
	return nil
}

// ArtifactName returns "<name>-<version>", the stem of the manifest and
// archive file names.
func (m *Metadata) ArtifactName() string {
	return fmt.Sprintf("%s-%s", m.Name, m.Version)
}

// LongDescription concatenates README.md and, when present,
// LICENSES_THIRD_PARTY.md from dir.
func LongDescription(dir string) (string, error) {
	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	if err != nil {
		return "", err
	}

	description := string(readme)
	thirdParty, err := os.ReadFile(filepath.Join(dir, "LICENSES_THIRD_PARTY.md"))
	switch {
	case err == nil:
		description = fmt.Sprintf("%s\n%s", description, thirdParty)
	case !errors.Is(err, os.ErrNotExist):
		return "", err
	}

	return description, nil
}

// DistInfoDir returns the dist-info directory for meta under buildLib.
func DistInfoDir(buildLib string, meta *Metadata) string {
	return filepath.Join(buildLib, meta.ArtifactName()+".dist-info")
}

// CoreMetadata renders m as a METADATA file with longDescription as the
// message body. TestsRequire becomes the "test" extra.
func (m *Metadata) CoreMetadata(longDescription string) []byte {
	var b strings.Builder
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", name, value)
		}
	}

	field("Metadata-Version", coreMetadataVersion)
	field("Name", m.Name)
	field("Version", m.Version)
	field("Summary", m.Description)
	field("Home-page", m.URL)
	field("Author", m.Author)
	field("Author-email", m.AuthorEmail)
	field("License", m.License)
	for _, c := range m.Classifiers {
		field("Classifier", c)
	}
	field("Requires-Python", m.PythonRequires)
	field("Description-Content-Type", descriptionContentType)
	for _, req := range m.InstallRequires {
		field("Requires-Dist", req)
	}
	if len(m.TestsRequire) > 0 {
		field("Provides-Extra", testExtra)
		for _, req := range m.TestsRequire {
			field("Requires-Dist", fmt.Sprintf("%s; extra == %q", req, testExtra))
		}
	}

	b.WriteString("\n")
	b.WriteString(longDescription)
	return []byte(b.String())
}

// WriteCoreMetadata writes <name>-<version>.dist-info/METADATA under
// buildLib and returns the file's path.
func WriteCoreMetadata(buildLib string, meta *Metadata, longDescription string) (string, error) {
	dir := DistInfoDir(buildLib, meta)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	file := filepath.Join(dir, "METADATA")
	if err := os.WriteFile(file, meta.CoreMetadata(longDescription), 0o644); err != nil {
		return "", fmt.Errorf("writing core metadata: %w", err)
	}
	return file, nil
}
