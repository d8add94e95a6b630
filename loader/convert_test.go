package loader

import (
	"testing"

	"github.com/gofhir/fhir/r4"
)

func TestR4Converter_ConvertStructureDefinition(t *testing.T) {
	converter := NewR4Converter()

	t.Run("nil input", func(t *testing.T) {
		if result := converter.ConvertStructureDefinition(nil); result != nil {
			t.Error("expected nil result for nil input")
		}
	})

	t.Run("basic conversion", func(t *testing.T) {
		url := "http://example.org/StructureDefinition/TestPatient"
		name := "TestPatient"
		typeName := "Patient"
		kind := r4.StructureDefinitionKindResource
		abstract := false
		baseDef := "http://hl7.org/fhir/StructureDefinition/Patient"
		version := r4.FHIRVersion401

		sd := &r4.StructureDefinition{
			Url:            &url,
			Name:           &name,
			Type:           &typeName,
			Kind:           &kind,
			Abstract:       &abstract,
			BaseDefinition: &baseDef,
			FhirVersion:    &version,
		}

		result := converter.ConvertStructureDefinition(sd)
		if result == nil {
			t.Fatal("expected non-nil result")
		}
		if result.ResourceType != "StructureDefinition" {
			t.Errorf("ResourceType = %q", result.ResourceType)
		}
		if result.URL != url {
			t.Errorf("URL = %q; want %q", result.URL, url)
		}
		if result.Name != name {
			t.Errorf("Name = %q; want %q", result.Name, name)
		}
		if result.Kind != "resource" {
			t.Errorf("Kind = %q; want %q", result.Kind, "resource")
		}
		if result.BaseDefinition != baseDef {
			t.Errorf("BaseDefinition = %q; want %q", result.BaseDefinition, baseDef)
		}
	})

	t.Run("with snapshot elements", func(t *testing.T) {
		url := "http://example.org/StructureDefinition/Test"
		path1 := "Patient"
		path2 := "Patient.id"
		minCard := uint32(0)
		maxCard := "1"

		sd := &r4.StructureDefinition{
			Url: &url,
			Snapshot: &r4.StructureDefinitionSnapshot{
				Element: []r4.ElementDefinition{
					{Path: &path1},
					{Path: &path2, Min: &minCard, Max: &maxCard},
				},
			},
		}

		result := converter.ConvertStructureDefinition(sd)
		if result == nil || result.Snapshot == nil {
			t.Fatal("expected a snapshot")
		}
		elements := result.Snapshot.Element
		if len(elements) != 2 {
			t.Fatalf("len(elements) = %d; want 2", len(elements))
		}
		if elements[0].Path != path1 {
			t.Errorf("elements[0].Path = %q; want %q", elements[0].Path, path1)
		}
		if elements[1].Min == nil || *elements[1].Min != 0 {
			t.Errorf("elements[1].Min = %v; want 0", elements[1].Min)
		}
		if elements[1].Max != maxCard {
			t.Errorf("elements[1].Max = %q; want %q", elements[1].Max, maxCard)
		}
		if result.Differential != nil {
			t.Error("differential should be absent")
		}
	})

	t.Run("with types and binding", func(t *testing.T) {
		url := "http://example.org/StructureDefinition/Test"
		path := "Patient.maritalStatus"
		typeCode := "CodeableConcept"
		profile := "http://example.org/StructureDefinition/CustomConcept"
		strength := r4.BindingStrengthRequired
		valueSet := "http://hl7.org/fhir/ValueSet/marital-status"

		sd := &r4.StructureDefinition{
			Url: &url,
			Snapshot: &r4.StructureDefinitionSnapshot{
				Element: []r4.ElementDefinition{
					{
						Path: &path,
						Type: []r4.ElementDefinitionType{
							{Code: &typeCode, Profile: []string{profile}},
						},
						Binding: &r4.ElementDefinitionBinding{
							Strength: &strength,
							ValueSet: &valueSet,
						},
					},
				},
			},
		}

		result := converter.ConvertStructureDefinition(sd)
		elem := result.Snapshot.Element[0]
		if len(elem.Type) != 1 || elem.Type[0].Code != typeCode {
			t.Fatalf("types = %+v", elem.Type)
		}
		if len(elem.Type[0].Profile) != 1 || elem.Type[0].Profile[0] != profile {
			t.Errorf("profile = %v", elem.Type[0].Profile)
		}
		if elem.Binding == nil || elem.Binding.Strength != "required" {
			t.Errorf("binding = %+v", elem.Binding)
		}
		if elem.Binding != nil && elem.Binding.ValueSet != valueSet {
			t.Errorf("valueSet = %q", elem.Binding.ValueSet)
		}
	})
}
