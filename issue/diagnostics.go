// Diagnostic message templates for definition resolution and
// implied-extension materialization.
package issue

import (
	"fmt"
	"strings"
)

// DiagnosticID identifies a specific diagnostic message.
type DiagnosticID string

// Diagnostic IDs for implied-extension materialization.
const (
	DiagMalformedURL            DiagnosticID = "IMPLIED_MALFORMED_URL"
	DiagMissingDependency       DiagnosticID = "IMPLIED_MISSING_DEPENDENCY"
	DiagUnknownRootType         DiagnosticID = "IMPLIED_UNKNOWN_ROOT_TYPE"
	DiagUnknownElementID        DiagnosticID = "IMPLIED_UNKNOWN_ELEMENT_ID"
	DiagUnsupportedResourceType DiagnosticID = "IMPLIED_UNSUPPORTED_RESOURCE_TYPE"
	DiagUnsupportedTargets      DiagnosticID = "IMPLIED_UNSUPPORTED_TARGETS"
	DiagSubExtensionRecursion   DiagnosticID = "IMPLIED_SUB_EXTENSION_RECURSION"
)

// DiagnosticTemplate defines the structure for a diagnostic message.
type DiagnosticTemplate struct {
	ID       DiagnosticID
	Severity Severity
	Code     Code
	Template string
}

// diagnosticTemplates maps diagnostic IDs to their templates.
// Templates use {placeholder} syntax for variable substitution.
var diagnosticTemplates = map[DiagnosticID]DiagnosticTemplate{
	DiagMalformedURL: {
		Severity: SeverityError,
		Code:     CodeNotSupported,
		Template: "Unsupported implied extension URL: {url}",
	},
	DiagMissingDependency: {
		Severity: SeverityError,
		Code:     CodeRequired,
		Template: "The extension {url} requires the {package} package. Declare a dependency on {package} at the project's own FHIR version to use implied extensions from FHIR {version}.",
	},
	DiagUnknownRootType: {
		Severity: SeverityError,
		Code:     CodeNotFound,
		Template: "Unable to materialize implied extension {url}: {type} is not a valid resource or type in {package}.",
	},
	DiagUnknownElementID: {
		Severity: SeverityError,
		Code:     CodeNotFound,
		Template: "Unable to materialize implied extension {url}: {elementId} is not a valid id in {package}.",
	},
	DiagUnsupportedResourceType: {
		Severity: SeverityError,
		Code:     CodeNotSupported,
		Template: "Implied extensions for Resource-typed elements are not supported: {elementId}.",
	},
	DiagUnsupportedTargets: {
		Severity: SeverityWarning,
		Code:     CodeNotSupported,
		Template: "Implied extension {url} uses types or targets that are not supported in FHIR {version}. Unsupported: {dropped}.",
	},
	DiagSubExtensionRecursion: {
		Severity: SeverityWarning,
		Code:     CodeIncomplete,
		Template: "Implied extension {url} hit sub-extension recursion on type {type}; the affected sub-extensions are left empty.",
	},
}

// FormatDiagnostic formats a diagnostic message with the given parameters.
func FormatDiagnostic(id DiagnosticID, params map[string]any) string {
	tmpl, ok := diagnosticTemplates[id]
	if !ok {
		return string(id)
	}
	return formatTemplate(tmpl.Template, params)
}

// GetDiagnosticTemplate returns the template for a diagnostic ID.
func GetDiagnosticTemplate(id DiagnosticID) (DiagnosticTemplate, bool) {
	tmpl, ok := diagnosticTemplates[id]
	if ok {
		tmpl.ID = id
	}
	return tmpl, ok
}

// formatTemplate replaces {placeholder} with values from params.
func formatTemplate(template string, params map[string]any) string {
	result := template
	for key, value := range params {
		placeholder := "{" + key + "}"
		result = strings.ReplaceAll(result, placeholder, fmt.Sprint(value))
	}
	return result
}

// AddErrorWithID adds an error using a diagnostic template.
func (r *Result) AddErrorWithID(id DiagnosticID, params map[string]any, expression ...string) {
	tmpl, ok := diagnosticTemplates[id]
	if !ok {
		r.AddError(CodeProcessing, string(id), expression...)
		return
	}

	r.Issues = append(r.Issues, Issue{
		Severity:    tmpl.Severity,
		Code:        tmpl.Code,
		Diagnostics: formatTemplate(tmpl.Template, params),
		Expression:  expression,
		MessageID:   string(id),
	})
}

// AddWarningWithID adds a warning using a diagnostic template.
func (r *Result) AddWarningWithID(id DiagnosticID, params map[string]any, expression ...string) {
	tmpl, ok := diagnosticTemplates[id]
	if !ok {
		r.AddWarning(CodeProcessing, string(id), expression...)
		return
	}

	r.Issues = append(r.Issues, Issue{
		Severity:    tmpl.Severity,
		Code:        tmpl.Code,
		Diagnostics: formatTemplate(tmpl.Template, params),
		Expression:  expression,
		MessageID:   string(id),
	})
}
