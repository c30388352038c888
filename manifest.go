package mjbuild

import (
	_ "crypto/sha256"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/opencontainers/go-digest"
	"gopkg.in/yaml.v3"
)

// Kinds of files recorded in a manifest
const (
	KindExtension = "extension"
	KindLibrary   = "library"
	KindHeader    = "header"
	KindData      = "data"
	KindMetadata  = "metadata"
)

// ManifestEntry records one staged file.
type ManifestEntry struct {
	Path   string `yaml:"path"` // Slash-separated, relative to the build lib dir
	Kind   string `yaml:"kind"`
	Digest string `yaml:"digest"`
	Size   int64  `yaml:"size"`
}

// Manifest lists every file of a staged package with its digest.
type Manifest struct {
	Name     string          `yaml:"name"`
	Version  string          `yaml:"version"`
	Platform string          `yaml:"platform"`
	Files    []ManifestEntry `yaml:"files"`
}

// ManifestPath returns where the manifest for meta is written under buildLib.
func ManifestPath(buildLib string, meta *Metadata) string {
	return filepath.Join(buildLib, meta.ArtifactName()+".manifest.yaml")
}

// BuildManifest digests the package data files matched by meta.PackageData,
// the given extension files and, when present, the files of the dist-info
// directory. All of them must live under buildLib.
func BuildManifest(buildLib, platform string, meta *Metadata, extensions []string) (*Manifest, error) {
	pkgDir := filepath.Join(buildLib, PackageName)
	data, err := FindDataFiles(pkgDir, meta.PackageData...)
	if err != nil {
		return nil, err
	}

	kinds := make(map[string]string)
	for _, rel := range data {
		kinds[path.Join(PackageName, rel)] = dataKind(rel)
	}

	distInfo := DistInfoDir(buildLib, meta)
	if _, err := os.Stat(distInfo); err == nil {
		files, err := FindDataFiles(distInfo, "*")
		if err != nil {
			return nil, err
		}
		for _, rel := range files {
			kinds[path.Join(filepath.Base(distInfo), rel)] = KindMetadata
		}
	}
	for _, ext := range extensions {
		rel, err := filepath.Rel(buildLib, ext)
		if err != nil {
			return nil, err
		}
		kinds[filepath.ToSlash(rel)] = KindExtension
	}

	rels := make([]string, 0, len(kinds))
	for rel := range kinds {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	m := &Manifest{
		Name:     meta.Name,
		Version:  meta.Version,
		Platform: platform,
	}
	for _, rel := range rels {
		d, size, err := digestFile(filepath.Join(buildLib, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}
		m.Files = append(m.Files, ManifestEntry{
			Path:   rel,
			Kind:   kinds[rel],
			Digest: d.String(),
			Size:   size,
		})
	}

	return m, nil
}

// WriteManifest writes m as YAML to file.
func WriteManifest(m *Manifest, file string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(file string) (*Manifest, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// VerifyManifest re-digests every entry under buildLib and returns an error
// for the first file that is missing or changed.
func VerifyManifest(buildLib string, m *Manifest) error {
	for _, entry := range m.Files {
		d, err := digest.Parse(entry.Digest)
		if err != nil {
			return fmt.Errorf("failed to parse digest of %s: %w", entry.Path, err)
		}

		f, err := os.Open(filepath.Join(buildLib, filepath.FromSlash(entry.Path)))
		if err != nil {
			return err
		}

		verifier := d.Verifier()
		_, err = io.Copy(verifier, f)
		f.Close()
		if err != nil {
			return err
		}
		if !verifier.Verified() {
			return fmt.Errorf("computed digest of %s doesn't match '%s'", entry.Path, d)
		}
	}
	return nil
}

func digestFile(p string) (digest.Digest, int64, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	digester := digest.Canonical.Digester()
	size, err := io.Copy(digester.Hash(), f)
	if err != nil {
		return "", 0, err
	}
	return digester.Digest(), size, nil
}

func dataKind(rel string) string {
	name := path.Base(rel)
	switch {
	case MatchesExtension(name, ".h"):
		return KindHeader
	case MatchesGlob(name, "*.so", "*.so.*", "*.dylib", "*.dll"):
		return KindLibrary
	default:
		return KindData
	}
}
