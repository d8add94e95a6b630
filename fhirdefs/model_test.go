package fhirdefs

import (
	"encoding/json"
	"testing"
)

func TestParseStructureDefinition(t *testing.T) {
	data := []byte(`{
		"resourceType": "StructureDefinition",
		"id": "Patient",
		"url": "http://hl7.org/fhir/StructureDefinition/Patient",
		"name": "Patient",
		"fhirVersion": "4.0.1",
		"kind": "resource",
		"type": "Patient",
		"snapshot": {
			"element": [
				{"id": "Patient", "path": "Patient", "min": 0, "max": "*"},
				{"id": "Patient.active", "path": "Patient.active", "min": 0, "max": "1",
				 "type": [{"code": "boolean"}]}
			]
		}
	}`)

	sd, err := ParseStructureDefinition(data)
	if err != nil {
		t.Fatalf("ParseStructureDefinition() error: %v", err)
	}
	if sd.Name != "Patient" || sd.Kind != "resource" {
		t.Errorf("parsed name/kind = %q/%q", sd.Name, sd.Kind)
	}
	if len(sd.Elements()) != 2 {
		t.Fatalf("Elements() = %d; want 2", len(sd.Elements()))
	}

	elem := sd.FindElement("Patient.active")
	if elem == nil {
		t.Fatal("FindElement(Patient.active) = nil")
	}
	if elem.Min == nil || *elem.Min != 0 || elem.Max != "1" {
		t.Errorf("cardinality = %v..%s; want 0..1", elem.Min, elem.Max)
	}
}

func TestStringList_SingleAndArray(t *testing.T) {
	// STU3 wrote targetProfile as a bare string; R4+ as an array.
	single := []byte(`{"path": "x", "type": [{"code": "Reference", "targetProfile": "http://hl7.org/fhir/StructureDefinition/Patient"}]}`)
	array := []byte(`{"path": "x", "type": [{"code": "Reference", "targetProfile": ["http://hl7.org/fhir/StructureDefinition/Patient", "http://hl7.org/fhir/StructureDefinition/Group"]}]}`)

	var edSingle, edArray ElementDefinition
	if err := json.Unmarshal(single, &edSingle); err != nil {
		t.Fatalf("single: %v", err)
	}
	if err := json.Unmarshal(array, &edArray); err != nil {
		t.Fatalf("array: %v", err)
	}

	if len(edSingle.Type[0].TargetProfile) != 1 {
		t.Errorf("single targetProfile len = %d; want 1", len(edSingle.Type[0].TargetProfile))
	}
	if len(edArray.Type[0].TargetProfile) != 2 {
		t.Errorf("array targetProfile len = %d; want 2", len(edArray.Type[0].TargetProfile))
	}
}

func TestBinding_EffectiveValueSet(t *testing.T) {
	tests := []struct {
		name    string
		binding *Binding
		want    string
	}{
		{"nil", nil, ""},
		{"r4 canonical", &Binding{ValueSet: "http://example.org/vs"}, "http://example.org/vs"},
		{"stu3 reference", &Binding{ValueSetReference: &Reference{Reference: "http://example.org/vs3"}}, "http://example.org/vs3"},
		{"canonical wins", &Binding{ValueSet: "a", ValueSetReference: &Reference{Reference: "b"}}, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.binding.EffectiveValueSet(); got != tt.want {
				t.Errorf("EffectiveValueSet() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestElementDefinition_Key(t *testing.T) {
	withID := ElementDefinition{ID: "Patient.name", Path: "Patient.name"}
	if withID.Key() != "Patient.name" {
		t.Errorf("Key() = %q", withID.Key())
	}
	// DSTU2 snapshots omit element ids.
	withoutID := ElementDefinition{Path: "MedicationOrder.prescriber"}
	if withoutID.Key() != "MedicationOrder.prescriber" {
		t.Errorf("Key() = %q; want path fallback", withoutID.Key())
	}
}

func TestClone_Independence(t *testing.T) {
	truthy := true
	sd := &StructureDefinition{
		ResourceType: "StructureDefinition",
		ID:           "test",
		URL:          "http://example.org/sd",
		Extension:    []Extension{{URL: "marker", ValueBoolean: &truthy}},
		Snapshot: &Snapshot{Element: []ElementDefinition{
			{
				ID:   "Extension.value[x]",
				Path: "Extension.value[x]",
				Min:  IntPtr(1),
				Type: []Type{{Code: "Reference", TargetProfile: StringList{"http://example.org/a"}}},
				Binding: &Binding{Strength: "required", ValueSet: "http://example.org/vs"},
			},
		}},
	}

	clone := sd.Clone()
	clone.Snapshot.Element[0].Type[0].TargetProfile[0] = "changed"
	*clone.Snapshot.Element[0].Min = 99
	clone.Snapshot.Element[0].Binding.Strength = "example"
	*clone.Extension[0].ValueBoolean = false

	orig := sd.Snapshot.Element[0]
	if orig.Type[0].TargetProfile[0] != "http://example.org/a" {
		t.Error("clone shares targetProfile backing array")
	}
	if *orig.Min != 1 {
		t.Error("clone shares min pointer")
	}
	if orig.Binding.Strength != "required" {
		t.Error("clone shares binding")
	}
	if !*sd.Extension[0].ValueBoolean {
		t.Error("clone shares extension valueBoolean pointer")
	}
}

func TestPlaceholderFlag(t *testing.T) {
	data := []byte(`{
		"resourceType": "StructureDefinition",
		"id": "CodeableReference",
		"url": "http://hl7.org/fhir/StructureDefinition/CodeableReference",
		"kind": "complex-type",
		"type": "CodeableReference",
		"_timeTraveler": true
	}`)

	sd, err := ParseStructureDefinition(data)
	if err != nil {
		t.Fatalf("ParseStructureDefinition() error: %v", err)
	}
	if !sd.Placeholder {
		t.Error("Placeholder = false; want true")
	}
}
