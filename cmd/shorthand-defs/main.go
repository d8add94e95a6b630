// Package main implements the shorthand-defs CLI tool: it loads FHIR
// packages into a definition registry and materializes implied-extension
// definitions for cross-release element URLs.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	fsh "github.com/gofhir/shorthand"
	"github.com/gofhir/shorthand/cache"
	"github.com/gofhir/shorthand/config"
	"github.com/gofhir/shorthand/fhirdefs"
	"github.com/gofhir/shorthand/implied"
	"github.com/gofhir/shorthand/issue"
	"github.com/gofhir/shorthand/loader"
)

const (
	version = "0.1.0"
	usage   = `shorthand-defs - FHIR implied-extension materializer

Usage:
  shorthand-defs [options] <implied-extension-url>...

Examples:
  shorthand-defs http://hl7.org/fhir/3.0/StructureDefinition/extension-ValueSet.extensible
  shorthand-defs -config shorthand.yaml http://hl7.org/fhir/1.0/StructureDefinition/extension-MedicationOrder.priorPrescription
  shorthand-defs -package-file hl7.fhir.r2.core.tgz -output json <url>

Options:
`
)

// OutputFormat specifies the output format.
type OutputFormat string

// Output format constants.
const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// cliConfig holds CLI configuration.
type cliConfig struct {
	ConfigPath   string
	FHIRVersion  string
	PackageCache string
	PackageFiles []string
	Output       OutputFormat
	Quiet        bool
	Verbose      bool
	ShowVersion  bool
	Help         bool
	URLs         []string
}

// materializationOutput is the JSON output per URL.
type materializationOutput struct {
	URL        string          `json:"url"`
	OK         bool            `json:"ok"`
	Errors     int             `json:"errors"`
	Warnings   int             `json:"warnings"`
	Issues     []issueOutput   `json:"issues,omitempty"`
	Definition json.RawMessage `json:"definition,omitempty"`
	Duration   string          `json:"duration"`
}

// issueOutput is a single diagnostic in JSON output.
type issueOutput struct {
	Severity    string `json:"severity"`
	Code        string `json:"code"`
	Diagnostics string `json:"diagnostics"`
	MessageID   string `json:"messageId,omitempty"`
}

func main() {
	cli := parseFlags()

	if cli.ShowVersion {
		fmt.Printf("shorthand-defs v%s\n", version)
		os.Exit(0)
	}
	if cli.Help || len(cli.URLs) == 0 {
		flag.Usage()
		os.Exit(0)
	}

	os.Exit(run(cli))
}

func parseFlags() *cliConfig {
	cli := &cliConfig{Output: OutputText}

	var packageFiles, output string

	flag.StringVar(&cli.ConfigPath, "config", "", "Project YAML config (fhirVersion + dependencies)")
	flag.StringVar(&cli.FHIRVersion, "fhir-version", "", "Project FHIR version override (1.0.2, 3.0.2, 4.0.1, 5.0.0)")
	flag.StringVar(&cli.PackageCache, "cache", "", "FHIR package cache directory (default ~/.fhir/packages)")
	flag.StringVar(&packageFiles, "package-file", "", "Local .tgz package file(s) to load as supplemental registries (comma-separated)")
	flag.StringVar(&output, "output", "text", "Output format: text, json")
	flag.BoolVar(&cli.Quiet, "quiet", false, "Only show errors and warnings")
	flag.BoolVar(&cli.Verbose, "verbose", false, "Show detailed output")
	flag.BoolVar(&cli.ShowVersion, "v", false, "Show version")
	flag.BoolVar(&cli.Help, "help", false, "Show help")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if packageFiles != "" {
		cli.PackageFiles = strings.Split(packageFiles, ",")
	}
	if strings.EqualFold(output, "json") {
		cli.Output = OutputJSON
	}
	cli.URLs = flag.Args()
	return cli
}

func run(cli *cliConfig) int {
	cfg, err := loadProjectConfig(cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log := newLogger(cfg, cli)
	release := cfg.Release()

	metrics := fsh.NewMetrics()
	registry := fhirdefs.NewRegistry()
	registry.SetRelease(release)
	registry.SetMetrics(metrics)

	materializer := implied.NewCachedMaterializer(cache.DefaultCapacity)
	materializer.SetMetrics(metrics)
	registry.SetExtensionFactory(materializer)

	cacheDir := cfg.PackageCache
	if cli.PackageCache != "" {
		cacheDir = cli.PackageCache
	}
	pkgLoader := loader.NewLoader(cacheDir)
	pkgLoader.SetLogger(log)

	if err := loadPackages(pkgLoader, registry, cfg, cli, release, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	hasErrors := false
	outputs := make([]materializationOutput, 0, len(cli.URLs))
	for _, url := range cli.URLs {
		out := materializeURL(registry, url)
		outputs = append(outputs, out)
		if !out.OK {
			hasErrors = true
		}
		if cli.Output == OutputText {
			printText(out, cli.Quiet)
		}
	}

	if cli.Output == OutputJSON {
		jsonOutput, _ := json.MarshalIndent(outputs, "", "  ")
		fmt.Println(string(jsonOutput))
	}

	if cli.Verbose {
		snap := metrics.Snapshot()
		log.Info().
			Uint64("materializations", snap.Materializations).
			Uint64("cacheHits", snap.CacheHits).
			Uint64("cacheMisses", snap.CacheMisses).
			Msg("run complete")
	}

	if hasErrors {
		return 1
	}
	return 0
}

// loadProjectConfig reads the project config file, falling back to
// defaults, and applies CLI overrides.
func loadProjectConfig(cli *cliConfig) (*config.Config, error) {
	var cfg *config.Config
	if cli.ConfigPath != "" {
		loaded, err := config.Load(cli.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}
	if cli.FHIRVersion != "" {
		if _, ok := fsh.ReleaseForVersion(cli.FHIRVersion); !ok {
			return nil, fmt.Errorf("unsupported FHIR version %q", cli.FHIRVersion)
		}
		cfg.FHIRVersion = cli.FHIRVersion
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, cli *cliConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		level = parsed
	}
	if cli.Verbose {
		level = zerolog.DebugLevel
	}
	if cli.Quiet {
		level = zerolog.WarnLevel
	}

	var log zerolog.Logger
	if cfg.Logging.Format == "json" {
		log = zerolog.New(os.Stderr)
	} else {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return log.Level(level).With().Timestamp().Logger()
}

// loadPackages loads the project's own core package into the primary
// registry and every declared foreign core package into a supplemental
// registry. Local .tgz files are attached by the release their manifest
// names.
func loadPackages(pkgLoader *loader.Loader, registry *fhirdefs.Registry,
	cfg *config.Config, cli *cliConfig, release fsh.FHIRRelease, log zerolog.Logger) error {

	coreVersion := release.FHIRVersion()
	if declared, ok := cfg.Dependencies[release.CorePackage()]; ok {
		coreVersion = declared
	}
	if _, err := pkgLoader.LoadIntoRegistry(registry, release.CorePackage(), coreVersion); err != nil {
		return fmt.Errorf("failed to load core package: %w", err)
	}

	for _, dep := range cfg.Supplementals() {
		if dep.Release == release {
			continue
		}
		if err := pkgLoader.LoadSupplemental(registry, dep.Release, dep.Version); err != nil {
			log.Warn().Str("package", dep.Package).Err(err).Msg("skipping supplemental package")
		}
	}

	for _, tgz := range cli.PackageFiles {
		pkg, err := pkgLoader.LoadFromTgz(strings.TrimSpace(tgz))
		if err != nil {
			return fmt.Errorf("failed to load package file %s: %w", tgz, err)
		}
		pkgRelease, ok := fsh.ReleaseForCorePackage(pkg.Name)
		if !ok {
			pkgRelease, ok = fsh.ReleaseForVersion(pkg.FHIRVersion)
		}
		if !ok {
			return fmt.Errorf("cannot determine FHIR release of package %s", pkg.Name)
		}
		sup := fhirdefs.NewSupplementalRegistry()
		sup.SetRelease(pkgRelease)
		pkg.ApplyTo(sup)
		registry.AttachSupplemental(pkgRelease.CorePackage(), sup)
		log.Info().Str("package", pkg.Name).Str("release", pkgRelease.String()).
			Msg("attached supplemental package file")
	}
	return nil
}

func materializeURL(registry *fhirdefs.Registry, url string) materializationOutput {
	result := issue.NewResult()
	start := time.Now()
	sd := registry.FishForFHIR(url, result, fhirdefs.KindExtension)
	duration := time.Since(start)

	out := materializationOutput{
		URL:      url,
		OK:       sd != nil && !result.HasErrors(),
		Errors:   result.ErrorCount(),
		Warnings: result.WarningCount(),
		Duration: duration.String(),
	}
	for _, iss := range result.Issues {
		out.Issues = append(out.Issues, issueOutput{
			Severity:    string(iss.Severity),
			Code:        string(iss.Code),
			Diagnostics: iss.Diagnostics,
			MessageID:   iss.MessageID,
		})
	}
	if sd != nil {
		if data, err := json.MarshalIndent(sd, "", "  "); err == nil {
			out.Definition = data
		}
	}
	return out
}

func printText(out materializationOutput, quiet bool) {
	for _, iss := range out.Issues {
		fmt.Fprintf(os.Stderr, "%s: %s\n", iss.Severity, iss.Diagnostics)
	}
	if out.Definition != nil {
		fmt.Println(string(out.Definition))
	} else if !quiet {
		fmt.Fprintf(os.Stderr, "no definition produced for %s\n", out.URL)
	}
}
