package issue

import (
	"strings"
	"testing"
)

func TestResult_Add(t *testing.T) {
	r := NewResult()

	r.AddError(CodeNotFound, "missing definition")
	r.AddWarning(CodeNotSupported, "unsupported target")
	r.AddInfo(CodeInformational, "note")

	if len(r.Issues) != 3 {
		t.Fatalf("len(Issues) = %d; want 3", len(r.Issues))
	}
	if !r.HasErrors() {
		t.Error("HasErrors() = false; want true")
	}
	if got := r.ErrorCount(); got != 1 {
		t.Errorf("ErrorCount() = %d; want 1", got)
	}
	if got := r.WarningCount(); got != 1 {
		t.Errorf("WarningCount() = %d; want 1", got)
	}
}

func TestResult_HasErrors_Fatal(t *testing.T) {
	r := NewResult()
	r.AddIssue(Issue{Severity: SeverityFatal, Code: CodeProcessing, Diagnostics: "boom"})

	if !r.HasErrors() {
		t.Error("HasErrors() = false for fatal issue; want true")
	}
	if got := r.ErrorCount(); got != 1 {
		t.Errorf("ErrorCount() = %d; want 1", got)
	}
}

func TestResult_Merge(t *testing.T) {
	a := NewResult()
	a.AddError(CodeNotFound, "first")

	b := NewResult()
	b.AddWarning(CodeNotSupported, "second")

	a.Merge(b)
	if len(a.Issues) != 2 {
		t.Fatalf("len(Issues) after Merge = %d; want 2", len(a.Issues))
	}

	a.Merge(nil) // must not panic
	if len(a.Issues) != 2 {
		t.Errorf("len(Issues) after Merge(nil) = %d; want 2", len(a.Issues))
	}
}

func TestResult_Filter(t *testing.T) {
	r := NewResult()
	r.AddError(CodeNotFound, "e1")
	r.AddWarning(CodeNotSupported, "w1")
	r.AddWarning(CodeIncomplete, "w2")

	warnings := r.Filter(SeverityWarning)
	if len(warnings.Issues) != 2 {
		t.Fatalf("Filter(warning) returned %d issues; want 2", len(warnings.Issues))
	}
	for _, iss := range warnings.Issues {
		if iss.Severity != SeverityWarning {
			t.Errorf("filtered issue has severity %q; want warning", iss.Severity)
		}
	}
}

func TestFormatDiagnostic(t *testing.T) {
	tests := []struct {
		name   string
		id     DiagnosticID
		params map[string]any
		want   []string
	}{
		{
			name:   "malformed url",
			id:     DiagMalformedURL,
			params: map[string]any{"url": "http://example.org/bad"},
			want:   []string{"Unsupported implied extension URL", "http://example.org/bad"},
		},
		{
			name: "missing dependency",
			id:   DiagMissingDependency,
			params: map[string]any{
				"url":     "http://hl7.org/fhir/3.0/StructureDefinition/extension-Patient.animal",
				"package": "hl7.fhir.r3.core",
				"version": "3.0",
			},
			want: []string{"requires the hl7.fhir.r3.core package", "Declare a dependency", "FHIR 3.0"},
		},
		{
			name: "recursion",
			id:   DiagSubExtensionRecursion,
			params: map[string]any{
				"url":  "http://hl7.org/fhir/5.0/StructureDefinition/extension-Patient.contact",
				"type": "RelatedPerson",
			},
			want: []string{"sub-extension recursion", "RelatedPerson", "left empty"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatDiagnostic(tt.id, tt.params)
			for _, fragment := range tt.want {
				if !strings.Contains(got, fragment) {
					t.Errorf("FormatDiagnostic(%s) = %q; missing %q", tt.id, got, fragment)
				}
			}
			if strings.Contains(got, "{") {
				t.Errorf("FormatDiagnostic(%s) = %q; has unfilled placeholder", tt.id, got)
			}
		})
	}
}

func TestAddErrorWithID(t *testing.T) {
	r := NewResult()
	r.AddErrorWithID(DiagUnknownRootType, map[string]any{
		"url":     "http://hl7.org/fhir/1.0/StructureDefinition/extension-Foo.bar",
		"type":    "Foo",
		"package": "hl7.fhir.r2.core",
	})

	if len(r.Issues) != 1 {
		t.Fatalf("len(Issues) = %d; want 1", len(r.Issues))
	}
	iss := r.Issues[0]
	if iss.Severity != SeverityError {
		t.Errorf("Severity = %q; want error", iss.Severity)
	}
	if iss.Code != CodeNotFound {
		t.Errorf("Code = %q; want not-found", iss.Code)
	}
	if iss.MessageID != string(DiagUnknownRootType) {
		t.Errorf("MessageID = %q; want %q", iss.MessageID, DiagUnknownRootType)
	}
	if !strings.Contains(iss.Diagnostics, "Foo is not a valid resource or type") {
		t.Errorf("Diagnostics = %q; missing type name", iss.Diagnostics)
	}
}

func TestAddWarningWithID_TemplateSeverity(t *testing.T) {
	// Both Add*WithID helpers take severity from the template.
	r := NewResult()
	r.AddWarningWithID(DiagSubExtensionRecursion, map[string]any{
		"url":  "http://hl7.org/fhir/5.0/StructureDefinition/extension-Patient.contact",
		"type": "RelatedPerson",
	})
	r.AddWarningWithID(DiagUnknownRootType, map[string]any{
		"url":     "http://hl7.org/fhir/1.0/StructureDefinition/extension-Foo.bar",
		"type":    "Foo",
		"package": "hl7.fhir.r2.core",
	})

	if len(r.Issues) != 2 {
		t.Fatalf("len(Issues) = %d; want 2", len(r.Issues))
	}
	if r.Issues[0].Severity != SeverityWarning {
		t.Errorf("Severity = %q; want warning", r.Issues[0].Severity)
	}
	if r.Issues[1].Severity != SeverityError {
		t.Errorf("Severity = %q; want the template's error severity", r.Issues[1].Severity)
	}
}

func TestAddWarningWithID_UnknownTemplate(t *testing.T) {
	r := NewResult()
	r.AddWarningWithID(DiagnosticID("NO_SUCH_ID"), nil)

	if len(r.Issues) != 1 {
		t.Fatalf("len(Issues) = %d; want 1", len(r.Issues))
	}
	if r.Issues[0].Diagnostics != "NO_SUCH_ID" {
		t.Errorf("Diagnostics = %q; want raw id", r.Issues[0].Diagnostics)
	}
}

func TestGetDiagnosticTemplate(t *testing.T) {
	tmpl, ok := GetDiagnosticTemplate(DiagUnsupportedTargets)
	if !ok {
		t.Fatal("GetDiagnosticTemplate(DiagUnsupportedTargets) returned false")
	}
	if tmpl.ID != DiagUnsupportedTargets {
		t.Errorf("ID = %q; want %q", tmpl.ID, DiagUnsupportedTargets)
	}
	if tmpl.Severity != SeverityWarning {
		t.Errorf("Severity = %q; want warning", tmpl.Severity)
	}

	if _, ok := GetDiagnosticTemplate("NOPE"); ok {
		t.Error("GetDiagnosticTemplate(NOPE) returned true")
	}
}
