package fhirdefs

// Kind classifies a definition for fishing. It is a closed set: every
// definition maps to exactly one Kind, and lookups may be filtered by any
// subset of kinds.
type Kind string

// Kinds of definitions a registry can hold.
const (
	KindResource   Kind = "Resource"
	KindType       Kind = "Type"
	KindLogical    Kind = "Logical"
	KindProfile    Kind = "Profile"
	KindExtension  Kind = "Extension"
	KindValueSet   Kind = "ValueSet"
	KindCodeSystem Kind = "CodeSystem"
	KindInstance   Kind = "Instance"
)

// KindOf classifies a definition into exactly one Kind.
func KindOf(sd *StructureDefinition) Kind {
	if sd == nil {
		return KindInstance
	}
	switch sd.ResourceType {
	case "ValueSet":
		return KindValueSet
	case "CodeSystem":
		return KindCodeSystem
	case "StructureDefinition":
		// fall through to the kind/derivation checks below
	default:
		return KindInstance
	}

	if sd.Type == "Extension" && sd.BaseDefinition != "" {
		return KindExtension
	}
	if sd.Kind == "logical" {
		return KindLogical
	}
	if sd.Derivation == "constraint" {
		return KindProfile
	}
	if sd.Kind == "resource" {
		return KindResource
	}
	return KindType
}

// matchesKinds reports whether the definition's kind is acceptable.
// An empty filter accepts everything.
func matchesKinds(sd *StructureDefinition, kinds []Kind) bool {
	if len(kinds) == 0 {
		return true
	}
	kind := KindOf(sd)
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// kindsAllow reports whether a kind filter permits the given kind,
// treating an empty filter as "anything".
func kindsAllow(kinds []Kind, want Kind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, k := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// Metadata is the normalized projection of a definition returned by
// metadata fishing.
type Metadata struct {
	ID           string
	Name         string
	SDType       string
	URL          string
	Parent       string
	Abstract     bool
	Version      string
	ResourceType string

	// CanBeTarget is computed only for logical models: true iff the
	// definition carries one of the recognized reference-target markers.
	CanBeTarget bool
}

// Marker extensions recognized on logical models.
const (
	typeCharacteristicsURL  = "http://hl7.org/fhir/StructureDefinition/structuredefinition-type-characteristics"
	typeCharacteristicsCode = "can-be-target"
	logicalTargetURL        = "http://hl7.org/fhir/tools/StructureDefinition/logical-target"
)

// canBeTarget reports whether a logical model may be the target of a
// reference. The two recognized markers are OR-combined.
func canBeTarget(sd *StructureDefinition) bool {
	for _, ext := range sd.Extension {
		switch ext.URL {
		case typeCharacteristicsURL:
			if ext.ValueCode == typeCharacteristicsCode {
				return true
			}
		case logicalTargetURL:
			if ext.ValueBoolean != nil && *ext.ValueBoolean {
				return true
			}
		}
	}
	return false
}

// MetadataFor projects a definition into its Metadata.
func MetadataFor(sd *StructureDefinition) *Metadata {
	if sd == nil {
		return nil
	}
	md := &Metadata{
		ID:           sd.ID,
		Name:         sd.Name,
		SDType:       sd.Type,
		URL:          sd.URL,
		Parent:       sd.BaseDefinition,
		Abstract:     sd.Abstract,
		Version:      sd.Version,
		ResourceType: sd.ResourceType,
	}
	if KindOf(sd) == KindLogical {
		md.CanBeTarget = canBeTarget(sd)
	}
	return md
}
