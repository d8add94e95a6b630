// Package config provides project configuration loading and validation.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	fsh "github.com/gofhir/shorthand"
)

// Config is the root project configuration. It mirrors the subset of a
// shorthand project file that definition resolution needs: the project's
// own FHIR version and the packages it declares dependencies on.
type Config struct {
	// Canonical is the project's canonical URL base.
	Canonical string `yaml:"canonical,omitempty"`

	// FHIRVersion is the project's own FHIR version (e.g. "4.0.1").
	FHIRVersion string `yaml:"fhirVersion"`

	// Dependencies maps package name to version. Core packages of
	// foreign releases declared here become supplemental registries.
	Dependencies map[string]string `yaml:"dependencies,omitempty"`

	// PackageCache overrides the FHIR package cache directory.
	PackageCache string `yaml:"packageCache,omitempty"`

	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// LoggingConfig configures CLI logging.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format,omitempty"` // "json" or "console"
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Default returns a configuration for an R4 project with no declared
// dependencies.
func Default() *Config {
	cfg := &Config{FHIRVersion: fsh.R4.FHIRVersion()}
	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	if cfg.FHIRVersion == "" {
		cfg.FHIRVersion = fsh.R4.FHIRVersion()
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

func validate(cfg *Config) error {
	if _, ok := fsh.ReleaseForVersion(cfg.FHIRVersion); !ok {
		return fmt.Errorf("fhirVersion must be one of 1.0.2, 3.0.2, 4.0.1, 5.0.0, got %q", cfg.FHIRVersion)
	}
	for name, version := range cfg.Dependencies {
		if version == "" {
			return fmt.Errorf("dependencies[%s] needs a version", name)
		}
	}
	return nil
}

// Release returns the project's own FHIR release.
func (c *Config) Release() fsh.FHIRRelease {
	release, _ := fsh.ReleaseForVersion(c.FHIRVersion)
	return release
}

// SupplementalDep names a declared dependency on a foreign release's
// core package.
type SupplementalDep struct {
	Release fsh.FHIRRelease
	Package string
	Version string
}

// Supplementals returns the declared dependencies that are core packages
// of a FHIR release, in chronological release order. These are the
// packages the CLI loads into supplemental registries.
func (c *Config) Supplementals() []SupplementalDep {
	var deps []SupplementalDep
	for _, release := range fsh.Releases() {
		pkg := release.CorePackage()
		if version, ok := c.Dependencies[pkg]; ok {
			deps = append(deps, SupplementalDep{Release: release, Package: pkg, Version: version})
		}
	}
	return deps
}
