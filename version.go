package fhirshorthand

// FHIRRelease represents a FHIR specification release.
type FHIRRelease string

// Supported FHIR releases.
const (
	// R2 is FHIR DSTU2 (1.0.2)
	R2 FHIRRelease = "R2"
	// R3 is FHIR STU3 (3.0.2)
	R3 FHIRRelease = "R3"
	// R4 is FHIR Release 4 (4.0.1)
	R4 FHIRRelease = "R4"
	// R5 is FHIR Release 5 (5.0.0)
	R5 FHIRRelease = "R5"
)

// String returns the release string.
func (r FHIRRelease) String() string {
	return string(r)
}

// IsValid returns true if this is a supported FHIR release.
func (r FHIRRelease) IsValid() bool {
	switch r {
	case R2, R3, R4, R5:
		return true
	default:
		return false
	}
}

// releaseConfig holds release-specific configuration.
type releaseConfig struct {
	// CorePackageName is the FHIR core package for this release
	CorePackageName string

	// VersionToken is the version segment used in cross-release
	// canonical URLs (e.g. "1.0" in http://hl7.org/fhir/1.0/...)
	VersionToken string

	// FHIRVersionString is the version string used in StructureDefinitions
	FHIRVersionString string
}

// releaseConfigs maps FHIR releases to their configurations.
var releaseConfigs = map[FHIRRelease]releaseConfig{
	R2: {
		CorePackageName:   "hl7.fhir.r2.core",
		VersionToken:      "1.0",
		FHIRVersionString: "1.0.2",
	},
	R3: {
		CorePackageName:   "hl7.fhir.r3.core",
		VersionToken:      "3.0",
		FHIRVersionString: "3.0.2",
	},
	R4: {
		CorePackageName:   "hl7.fhir.r4.core",
		VersionToken:      "4.0",
		FHIRVersionString: "4.0.1",
	},
	R5: {
		CorePackageName:   "hl7.fhir.r5.core",
		VersionToken:      "5.0",
		FHIRVersionString: "5.0.0",
	},
}

// CorePackage returns the core package name for this release
// (e.g. "hl7.fhir.r2.core" for R2).
func (r FHIRRelease) CorePackage() string {
	return releaseConfigs[r].CorePackageName
}

// VersionToken returns the version segment this release uses in
// cross-release canonical URLs (e.g. "1.0" for R2).
func (r FHIRRelease) VersionToken() string {
	return releaseConfigs[r].VersionToken
}

// FHIRVersion returns the version string used in StructureDefinitions
// (e.g. "4.0.1" for R4).
func (r FHIRRelease) FHIRVersion() string {
	return releaseConfigs[r].FHIRVersionString
}

// ReleaseForToken maps a cross-release URL version token to its release.
// Returns false for unknown tokens.
func ReleaseForToken(token string) (FHIRRelease, bool) {
	for release, cfg := range releaseConfigs {
		if cfg.VersionToken == token {
			return release, true
		}
	}
	return "", false
}

// ReleaseForVersion maps a StructureDefinition fhirVersion string to its
// release. Returns false for unknown versions.
func ReleaseForVersion(version string) (FHIRRelease, bool) {
	for release, cfg := range releaseConfigs {
		if cfg.FHIRVersionString == version {
			return release, true
		}
	}
	return "", false
}

// ReleaseForCorePackage maps a core package name to its release.
// Returns false for package names that are not core packages.
func ReleaseForCorePackage(name string) (FHIRRelease, bool) {
	for release, cfg := range releaseConfigs {
		if cfg.CorePackageName == name {
			return release, true
		}
	}
	return "", false
}

// Releases returns all supported releases in chronological order.
func Releases() []FHIRRelease {
	return []FHIRRelease{R2, R3, R4, R5}
}
