package fhirdefs

import "testing"

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		sd   *StructureDefinition
		want Kind
	}{
		{
			name: "resource",
			sd:   &StructureDefinition{ResourceType: "StructureDefinition", Kind: "resource", Type: "Patient"},
			want: KindResource,
		},
		{
			name: "primitive type",
			sd:   &StructureDefinition{ResourceType: "StructureDefinition", Kind: "primitive-type", Type: "boolean"},
			want: KindType,
		},
		{
			name: "complex type",
			sd:   &StructureDefinition{ResourceType: "StructureDefinition", Kind: "complex-type", Type: "HumanName"},
			want: KindType,
		},
		{
			name: "logical",
			sd:   &StructureDefinition{ResourceType: "StructureDefinition", Kind: "logical", Type: "http://example.org/Model"},
			want: KindLogical,
		},
		{
			name: "profile",
			sd: &StructureDefinition{
				ResourceType: "StructureDefinition", Kind: "resource", Type: "Patient",
				Derivation: "constraint", BaseDefinition: "http://hl7.org/fhir/StructureDefinition/Patient",
			},
			want: KindProfile,
		},
		{
			name: "extension",
			sd: &StructureDefinition{
				ResourceType: "StructureDefinition", Kind: "complex-type", Type: "Extension",
				Derivation: "constraint", BaseDefinition: "http://hl7.org/fhir/StructureDefinition/Extension",
			},
			want: KindExtension,
		},
		{
			name: "value set",
			sd:   &StructureDefinition{ResourceType: "ValueSet", ID: "vs"},
			want: KindValueSet,
		},
		{
			name: "code system",
			sd:   &StructureDefinition{ResourceType: "CodeSystem", ID: "cs"},
			want: KindCodeSystem,
		},
		{
			name: "instance",
			sd:   &StructureDefinition{ResourceType: "Patient", ID: "example"},
			want: KindInstance,
		},
		{
			name: "nil",
			sd:   nil,
			want: KindInstance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.sd); got != tt.want {
				t.Errorf("KindOf() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestCanBeTarget(t *testing.T) {
	truthy := true
	falsy := false

	tests := []struct {
		name string
		ext  []Extension
		want bool
	}{
		{
			name: "type characteristics marker",
			ext: []Extension{{
				URL:       "http://hl7.org/fhir/StructureDefinition/structuredefinition-type-characteristics",
				ValueCode: "can-be-target",
			}},
			want: true,
		},
		{
			name: "type characteristics other code",
			ext: []Extension{{
				URL:       "http://hl7.org/fhir/StructureDefinition/structuredefinition-type-characteristics",
				ValueCode: "has-range",
			}},
			want: false,
		},
		{
			name: "logical target true",
			ext: []Extension{{
				URL:          "http://hl7.org/fhir/tools/StructureDefinition/logical-target",
				ValueBoolean: &truthy,
			}},
			want: true,
		},
		{
			name: "logical target false",
			ext: []Extension{{
				URL:          "http://hl7.org/fhir/tools/StructureDefinition/logical-target",
				ValueBoolean: &falsy,
			}},
			want: false,
		},
		{
			name: "no markers",
			ext:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sd := &StructureDefinition{
				ResourceType: "StructureDefinition",
				Kind:         "logical",
				Extension:    tt.ext,
			}
			if got := canBeTarget(sd); got != tt.want {
				t.Errorf("canBeTarget() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestMetadataFor(t *testing.T) {
	sd := &StructureDefinition{
		ResourceType:   "StructureDefinition",
		ID:             "Patient",
		Name:           "Patient",
		Type:           "Patient",
		URL:            "http://hl7.org/fhir/StructureDefinition/Patient",
		BaseDefinition: "http://hl7.org/fhir/StructureDefinition/DomainResource",
		Version:        "4.0.1",
		Kind:           "resource",
	}

	md := MetadataFor(sd)
	if md.ID != "Patient" || md.SDType != "Patient" {
		t.Errorf("metadata id/type = %q/%q", md.ID, md.SDType)
	}
	if md.Parent != sd.BaseDefinition {
		t.Errorf("Parent = %q; want base definition", md.Parent)
	}
	if md.CanBeTarget {
		t.Error("CanBeTarget = true for non-logical; want false")
	}

	truthy := true
	logical := &StructureDefinition{
		ResourceType: "StructureDefinition",
		Kind:         "logical",
		Extension: []Extension{{
			URL:          "http://hl7.org/fhir/tools/StructureDefinition/logical-target",
			ValueBoolean: &truthy,
		}},
	}
	if md := MetadataFor(logical); !md.CanBeTarget {
		t.Error("CanBeTarget = false for marked logical; want true")
	}

	if MetadataFor(nil) != nil {
		t.Error("MetadataFor(nil) != nil")
	}
}
