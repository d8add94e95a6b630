// Package loader reads FHIR NPM packages from the local cache, plain
// directories, or .tgz archives and feeds their conformance resources
// into definition registries.
package loader

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	fsh "github.com/gofhir/shorthand"
	"github.com/gofhir/shorthand/fhirdefs"
)

// DefaultPackagePath returns the default FHIR package cache path.
func DefaultPackagePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".fhir", "packages")
}

// PackageRef identifies a FHIR package by name and version.
type PackageRef struct {
	Name    string
	Version string
}

// String returns the package spec in "name#version" format.
func (p PackageRef) String() string {
	return fmt.Sprintf("%s#%s", p.Name, p.Version)
}

// ParsePackageSpec parses "name#version" into separate components.
func ParsePackageSpec(spec string) (name, version string) {
	parts := strings.SplitN(spec, "#", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return spec, ""
}

// Manifest represents the package.json of a FHIR NPM package.
type Manifest struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	FHIRVersion  string            `json:"fhirVersion,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Package holds the conformance resources read from one FHIR package.
// Only resource types the registry indexes are retained.
type Package struct {
	Name        string
	Version     string
	Path        string
	FHIRVersion string
	Definitions []*fhirdefs.StructureDefinition
}

// ApplyTo inserts every loaded definition into reg. Kind gating is the
// registry's concern; supplemental registries drop what they reject.
func (p *Package) ApplyTo(reg *fhirdefs.Registry) {
	for _, sd := range p.Definitions {
		reg.Insert(sd)
	}
}

// conformanceTypes are the resource types worth parsing out of a package.
var conformanceTypes = map[string]bool{
	"StructureDefinition": true,
	"ValueSet":            true,
	"CodeSystem":          true,
}

// Loader reads FHIR packages from an NPM-style cache directory.
type Loader struct {
	basePath string
	log      zerolog.Logger
}

// NewLoader creates a Loader rooted at basePath, falling back to the
// default cache path when basePath is empty.
func NewLoader(basePath string) *Loader {
	if basePath == "" {
		basePath = DefaultPackagePath()
	}
	return &Loader{basePath: basePath, log: zerolog.Nop()}
}

// SetLogger attaches a logger; unreadable or malformed files are logged
// at debug level and skipped.
func (l *Loader) SetLogger(log zerolog.Logger) {
	l.log = log
}

// BasePath returns the cache directory this loader reads from.
func (l *Loader) BasePath() string {
	return l.basePath
}

// LoadPackage loads a cached package by name and version. The cache
// layout is basePath/name#version/package/*.json.
func (l *Loader) LoadPackage(name, version string) (*Package, error) {
	pkgDir := filepath.Join(l.basePath, fmt.Sprintf("%s#%s", name, version))
	if _, err := os.Stat(pkgDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("package %s#%s not found at %s", name, version, pkgDir)
	}
	pkg, err := l.LoadDir(filepath.Join(pkgDir, "package"))
	if err != nil {
		return nil, err
	}
	pkg.Path = pkgDir
	return pkg, nil
}

// LoadDir loads a package from an extracted directory containing
// package.json and the package's resource files.
func (l *Loader) LoadDir(dir string) (*Package, error) {
	manifestData, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read package manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse package manifest: %w", err)
	}

	pkg := &Package{
		Name:        manifest.Name,
		Version:     manifest.Version,
		Path:        dir,
		FHIRVersion: manifest.FHIRVersion,
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read package directory: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if name == "package.json" || name == ".index.json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			l.log.Debug().Str("file", name).Err(err).Msg("skipping unreadable package file")
			continue
		}
		l.addResource(pkg, name, data)
	}
	return pkg, nil
}

// LoadFromTgz loads a package from a local .tgz archive.
func (l *Loader) LoadFromTgz(tgzPath string) (*Package, error) {
	file, err := os.Open(tgzPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open tgz file: %w", err)
	}
	defer file.Close()
	return l.loadFromTgzReader(file, tgzPath)
}

// loadFromTgzReader loads a package from a gzipped tar stream.
func (l *Loader) loadFromTgzReader(reader io.Reader, source string) (*Package, error) {
	gzReader, err := gzip.NewReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)
	pkg := &Package{Path: source}
	var manifestData []byte

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar entry: %w", err)
		}
		if header.Typeflag == tar.TypeDir {
			continue
		}
		name := strings.TrimPrefix(header.Name, "package/")
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := io.ReadAll(tarReader)
		if err != nil {
			l.log.Debug().Str("file", name).Err(err).Msg("skipping unreadable tar entry")
			continue
		}
		if name == "package.json" {
			manifestData = data
			continue
		}
		if name == ".index.json" {
			continue
		}
		l.addResource(pkg, name, data)
	}

	if manifestData == nil {
		return nil, fmt.Errorf("package.json not found in %s", source)
	}
	var manifest Manifest
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse package manifest: %w", err)
	}
	pkg.Name = manifest.Name
	pkg.Version = manifest.Version
	pkg.FHIRVersion = manifest.FHIRVersion
	return pkg, nil
}

// addResource parses one package file and keeps it if it is a
// conformance resource.
func (l *Loader) addResource(pkg *Package, file string, data []byte) {
	var probe struct {
		ResourceType string `json:"resourceType"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		l.log.Debug().Str("file", file).Err(err).Msg("skipping malformed package file")
		return
	}
	if !conformanceTypes[probe.ResourceType] {
		return
	}
	sd, err := fhirdefs.ParseStructureDefinition(data)
	if err != nil {
		l.log.Debug().Str("file", file).Err(err).Msg("skipping unparseable definition")
		return
	}
	pkg.Definitions = append(pkg.Definitions, sd)
}

// LoadIntoRegistry loads a cached package and inserts its definitions
// into reg's primary index.
func (l *Loader) LoadIntoRegistry(reg *fhirdefs.Registry, name, version string) (*Package, error) {
	pkg, err := l.LoadPackage(name, version)
	if err != nil {
		return nil, err
	}
	pkg.ApplyTo(reg)
	l.log.Info().Str("package", PackageRef{Name: name, Version: version}.String()).
		Int("definitions", len(pkg.Definitions)).
		Msg("loaded package")
	return pkg, nil
}

// LoadSupplemental loads a foreign release's core package and attaches
// it to reg as a kind-gated supplemental registry, making implied
// extensions from that release materializable.
func (l *Loader) LoadSupplemental(reg *fhirdefs.Registry, release fsh.FHIRRelease, version string) error {
	corePkg := release.CorePackage()
	pkg, err := l.LoadPackage(corePkg, version)
	if err != nil {
		return fmt.Errorf("failed to load supplemental package %s: %w", corePkg, err)
	}
	sup := fhirdefs.NewSupplementalRegistry()
	sup.SetRelease(release)
	pkg.ApplyTo(sup)
	reg.AttachSupplemental(corePkg, sup)
	l.log.Info().Str("package", corePkg).Int("definitions", sup.Count()).
		Msg("attached supplemental registry")
	return nil
}
