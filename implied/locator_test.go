package implied

import (
	"testing"

	fsh "github.com/gofhir/shorthand"
)

func TestParseLocator(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		ok        bool
		release   fsh.FHIRRelease
		elementID string
		rootType  string
	}{
		{
			name:      "dstu2",
			url:       "http://hl7.org/fhir/1.0/StructureDefinition/extension-MedicationOrder.priorPrescription",
			ok:        true,
			release:   fsh.R2,
			elementID: "MedicationOrder.priorPrescription",
			rootType:  "MedicationOrder",
		},
		{
			name:      "stu3",
			url:       "http://hl7.org/fhir/3.0/StructureDefinition/extension-ValueSet.extensible",
			ok:        true,
			release:   fsh.R3,
			elementID: "ValueSet.extensible",
			rootType:  "ValueSet",
		},
		{
			name:      "r4",
			url:       "http://hl7.org/fhir/4.0/StructureDefinition/extension-Patient.animal.species",
			ok:        true,
			release:   fsh.R4,
			elementID: "Patient.animal.species",
			rootType:  "Patient",
		},
		{
			name:      "r5",
			url:       "http://hl7.org/fhir/5.0/StructureDefinition/extension-Condition.evidence",
			ok:        true,
			release:   fsh.R5,
			elementID: "Condition.evidence",
			rootType:  "Condition",
		},
		{
			name: "unsupported version token",
			url:  "http://hl7.org/fhir/2.0/StructureDefinition/extension-Patient.animal",
			ok:   false,
		},
		{
			name: "root type only",
			url:  "http://hl7.org/fhir/3.0/StructureDefinition/extension-Patient",
			ok:   false,
		},
		{
			name: "plain core extension",
			url:  "http://hl7.org/fhir/StructureDefinition/patient-animal",
			ok:   false,
		},
		{
			name: "wrong host",
			url:  "http://example.org/fhir/3.0/StructureDefinition/extension-Patient.animal",
			ok:   false,
		},
		{
			name: "empty",
			url:  "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, ok := ParseLocator(tt.url)
			if ok != tt.ok {
				t.Fatalf("ParseLocator(%q) ok=%v; want %v", tt.url, ok, tt.ok)
			}
			if !ok {
				return
			}
			if loc.Release != tt.release {
				t.Errorf("Release = %v; want %v", loc.Release, tt.release)
			}
			if loc.ElementID != tt.elementID {
				t.Errorf("ElementID = %q; want %q", loc.ElementID, tt.elementID)
			}
			if loc.RootType != tt.rootType {
				t.Errorf("RootType = %q; want %q", loc.RootType, tt.rootType)
			}
			if loc.Package() != tt.release.CorePackage() {
				t.Errorf("Package() = %q; want %q", loc.Package(), tt.release.CorePackage())
			}
		})
	}
}

func TestIsImpliedExtension(t *testing.T) {
	if !IsImpliedExtension("http://hl7.org/fhir/3.0/StructureDefinition/extension-ValueSet.extensible") {
		t.Error("valid URL rejected")
	}
	if IsImpliedExtension("http://hl7.org/fhir/StructureDefinition/patient-animal") {
		t.Error("core extension URL accepted")
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ValueSet.extensible", "ValueSetExtensible"},
		{"Patient.animal.species", "PatientAnimalSpecies"},
		{"MedicationOrder.priorPrescription", "MedicationOrderPriorPrescription"},
		{"Patient.deceased[x]", "PatientDeceasedX"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := sanitizeName(tt.in); got != tt.want {
			t.Errorf("sanitizeName(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestVisitedSet(t *testing.T) {
	var v visited

	if v.has("a") {
		t.Error("empty set has a")
	}

	withA := v.with("a")
	if !withA.has("a") {
		t.Error("with(a) lost a")
	}
	if v.has("a") {
		t.Error("with() mutated the receiver")
	}

	// Sibling branches must not observe each other's additions.
	left := withA.clone()
	right := withA.clone()
	left = left.with("b")
	if right.has("b") {
		t.Error("sibling clone shares state")
	}
}
