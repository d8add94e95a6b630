// Package fhirshorthand provides the definition-resolution core of a FHIR
// shorthand compiler: a layered registry of FHIR definitions spanning
// multiple specification releases, plus on-demand materialization of
// "implied extensions" for elements that only exist in a release other
// than the one the active project targets.
//
// # Quick Start
//
//	import (
//	    fsh "github.com/gofhir/shorthand"
//	    "github.com/gofhir/shorthand/fhirdefs"
//	    "github.com/gofhir/shorthand/implied"
//	    "github.com/gofhir/shorthand/issue"
//	)
//
//	defs := fhirdefs.NewRegistry()
//	// ... load current-release definitions into defs ...
//	r2 := fhirdefs.NewSupplementalRegistry()
//	// ... load hl7.fhir.r2.core definitions into r2 ...
//	defs.AttachSupplemental(fsh.R2.CorePackage(), r2)
//	defs.SetExtensionFactory(implied.NewMaterializer())
//
//	result := issue.NewResult()
//	sd := defs.FishForFHIR("http://hl7.org/fhir/1.0/StructureDefinition/extension-ValueSet.extensible",
//	    result, fhirdefs.KindExtension)
//
// The registries are populated during a single-threaded load phase and are
// read-only afterwards; materialization is a pure function of (url,
// registry snapshot) and reports everything through an issue.Result
// rather than returning errors.
//
// Supporting packages:
//
//   - fhirdefs: the layered registry and polymorphic "fishing" lookups
//   - implied: locator parsing, materialization, cross-release type fixup
//   - extension: the Extension StructureDefinition builder
//   - loader: FHIR NPM package loading from a cache directory or .tgz
//   - config: project configuration (target release + dependencies)
package fhirshorthand
