package fhirdefs

import (
	fsh "github.com/gofhir/shorthand"
	"github.com/gofhir/shorthand/issue"
)

// ExtensionFactory synthesizes implied-extension definitions on demand.
// It is implemented by the implied package and attached to a primary
// registry so that fishing for an implied-extension URL can fall through
// to materialization.
type ExtensionFactory interface {
	// IsImpliedExtension reports whether url names an implied extension.
	IsImpliedExtension(url string) bool

	// Materialize builds a current-release extension definition for the
	// given implied-extension URL, reading definitions from defs. It
	// returns nil when the extension cannot be built; diagnostics are
	// appended to result.
	Materialize(url string, defs *Registry, result *issue.Result) *StructureDefinition
}

// Registry is a layered store of FHIR definitions:
//
//   - a primary index of loaded package definitions, fished by id, name,
//     or canonical URL;
//   - a mapping from source file path to IG-authored "predefined"
//     resources;
//   - a mapping from foreign-package identifier to a nested, kind-gated
//     supplemental Registry for exactly that release.
//
// Registries are mutated only during a single-threaded load phase and
// are read-only afterwards, so lookups take no locks. Insert and lookup
// operations never fail: a miss is simply a nil result.
type Registry struct {
	byID   map[string]*StructureDefinition
	byName map[string]*StructureDefinition
	byURL  map[string]*StructureDefinition

	predefined   map[string]*StructureDefinition
	supplemental map[string]*Registry

	// isSupplemental gates Insert to the definition kinds that
	// implied-extension materialization can use.
	isSupplemental bool

	// release is the FHIR release this registry's definitions target.
	release fsh.FHIRRelease

	factory ExtensionFactory
	metrics *fsh.Metrics
}

// NewRegistry creates an empty primary registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:         make(map[string]*StructureDefinition),
		byName:       make(map[string]*StructureDefinition),
		byURL:        make(map[string]*StructureDefinition),
		predefined:   make(map[string]*StructureDefinition),
		supplemental: make(map[string]*Registry),
		release:      fsh.R4,
	}
}

// NewSupplementalRegistry creates an empty supplemental registry: a
// release-scoped registry that only accepts the definition kinds
// implied-extension materialization reads.
func NewSupplementalRegistry() *Registry {
	r := NewRegistry()
	r.isSupplemental = true
	return r
}

// IsSupplemental reports whether this registry is release-scoped.
func (r *Registry) IsSupplemental() bool {
	return r.isSupplemental
}

// SetExtensionFactory attaches the implied-extension factory used when a
// primary lookup misses on an implied-extension URL.
func (r *Registry) SetExtensionFactory(factory ExtensionFactory) {
	r.factory = factory
}

// SetRelease records the FHIR release this registry's definitions target.
// New primary registries default to R4.
func (r *Registry) SetRelease(release fsh.FHIRRelease) {
	r.release = release
}

// Release returns the FHIR release this registry's definitions target.
func (r *Registry) Release() fsh.FHIRRelease {
	return r.release
}

// SetMetrics attaches an optional metrics collector; lookups record
// hit/miss counts into it.
func (r *Registry) SetMetrics(metrics *fsh.Metrics) {
	r.metrics = metrics
}

// Insert adds a definition to the registry's primary index. On a
// supplemental registry only StructureDefinitions of kind primitive-type,
// complex-type, datatype, or resource with derivation other than
// constraint are accepted; everything else is silently dropped.
func (r *Registry) Insert(sd *StructureDefinition) {
	if sd == nil {
		return
	}
	if r.isSupplemental && !supplementalKind(sd) {
		return
	}
	if sd.ID != "" {
		r.byID[sd.ID] = sd
	}
	if sd.Name != "" {
		r.byName[sd.Name] = sd
	}
	if sd.URL != "" {
		r.byURL[sd.URL] = sd
	}
}

// supplementalKind reports whether a definition belongs in a supplemental
// registry.
func supplementalKind(sd *StructureDefinition) bool {
	if sd.ResourceType != "StructureDefinition" {
		return false
	}
	switch sd.Kind {
	case "primitive-type", "complex-type", "datatype":
		return true
	case "resource":
		return sd.Derivation != "constraint"
	default:
		return false
	}
}

// Count returns the number of definitions indexed by URL.
func (r *Registry) Count() int {
	return len(r.byURL)
}

// SetPredefined records an IG-authored resource under its source file path.
func (r *Registry) SetPredefined(file string, sd *StructureDefinition) {
	r.predefined[file] = sd
}

// Predefined returns the IG-authored resource recorded for a source file
// path, or nil.
func (r *Registry) Predefined(file string) *StructureDefinition {
	return r.predefined[file]
}

// ClearPredefined removes all recorded IG-authored resources.
func (r *Registry) ClearPredefined() {
	r.predefined = make(map[string]*StructureDefinition)
}

// AttachSupplemental registers a release-scoped registry under a foreign
// package identifier. Re-registering a key replaces the prior entry.
func (r *Registry) AttachSupplemental(pkg string, reg *Registry) {
	r.supplemental[pkg] = reg
}

// Supplemental returns the release-scoped registry for a foreign package
// identifier, or nil.
func (r *Registry) Supplemental(pkg string) *Registry {
	return r.supplemental[pkg]
}

// FishForFHIR looks up a definition by id, name, or canonical URL,
// optionally filtered by kinds. When the primary lookup misses, item
// names an implied extension, and KindExtension is acceptable, the lookup
// delegates to the attached ExtensionFactory with this registry as
// context. Diagnostics from materialization are appended to result;
// result may be nil, in which case they are discarded.
func (r *Registry) FishForFHIR(item string, result *issue.Result, kinds ...Kind) *StructureDefinition {
	if sd := r.lookup(item, kinds); sd != nil {
		r.metrics.RecordFish(true)
		return sd
	}

	if r.factory != nil && kindsAllow(kinds, KindExtension) && r.factory.IsImpliedExtension(item) {
		if result == nil {
			result = issue.NewResult()
		}
		sd := r.factory.Materialize(item, r, result)
		r.metrics.RecordFish(sd != nil)
		return sd
	}
	r.metrics.RecordFish(false)
	return nil
}

// lookup performs the primary index lookup without implied-extension
// fallthrough.
func (r *Registry) lookup(item string, kinds []Kind) *StructureDefinition {
	for _, index := range []map[string]*StructureDefinition{r.byID, r.byName, r.byURL} {
		if sd, ok := index[item]; ok && matchesKinds(sd, kinds) {
			return sd
		}
	}
	return nil
}

// FishForMetadata looks up a definition like FishForFHIR and projects the
// hit into its Metadata. CanBeTarget is derived for logical models only.
func (r *Registry) FishForMetadata(item string, result *issue.Result, kinds ...Kind) *Metadata {
	return MetadataFor(r.FishForFHIR(item, result, kinds...))
}

// FishForPredefined looks up a definition like FishForFHIR but only
// returns it when the hit is also recorded in the predefined store,
// distinguishing IG-authored content from package-derived content.
func (r *Registry) FishForPredefined(item string, result *issue.Result, kinds ...Kind) *StructureDefinition {
	sd := r.FishForFHIR(item, result, kinds...)
	if sd == nil || !r.isPredefined(sd) {
		return nil
	}
	return sd
}

// FishForPredefinedMetadata is FishForPredefined with a Metadata projection.
func (r *Registry) FishForPredefinedMetadata(item string, result *issue.Result, kinds ...Kind) *Metadata {
	return MetadataFor(r.FishForPredefined(item, result, kinds...))
}

// isPredefined reports whether a definition matches an entry in the
// predefined store by id, resourceType, and url.
func (r *Registry) isPredefined(sd *StructureDefinition) bool {
	for _, predefined := range r.predefined {
		if predefined == nil {
			continue
		}
		if predefined.ID == sd.ID &&
			predefined.ResourceType == sd.ResourceType &&
			predefined.URL == sd.URL {
			return true
		}
	}
	return false
}
