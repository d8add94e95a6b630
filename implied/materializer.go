package implied

import (
	"strings"
	"time"

	"github.com/gofhir/shorthand/extension"
	"github.com/gofhir/shorthand/fhirdefs"
	"github.com/gofhir/shorthand/issue"
)

// Materializer builds implied-extension definitions on demand. It never
// mutates the registries it reads; every call produces a self-contained
// document or nil plus diagnostics.
type Materializer struct{}

// NewMaterializer creates a Materializer.
func NewMaterializer() *Materializer {
	return &Materializer{}
}

// Materializer satisfies the registry's extension factory contract.
var _ fhirdefs.ExtensionFactory = (*Materializer)(nil)

// IsImpliedExtension reports whether url names an implied extension.
func (m *Materializer) IsImpliedExtension(url string) bool {
	return IsImpliedExtension(url)
}

// Materialize builds a current-release extension definition for the
// given implied-extension URL, reading foreign-release definitions from
// the supplemental registry attached to defs. It returns nil when the
// extension cannot be built; diagnostics go to result.
func (m *Materializer) Materialize(url string, defs *fhirdefs.Registry, result *issue.Result) *fhirdefs.StructureDefinition {
	if result == nil {
		result = issue.NewResult()
	}

	loc, ok := ParseLocator(url)
	if !ok {
		result.AddErrorWithID(issue.DiagMalformedURL, map[string]any{"url": url})
		return nil
	}

	supplemental := defs.Supplemental(loc.Package())
	if supplemental == nil {
		result.AddErrorWithID(issue.DiagMissingDependency, map[string]any{
			"url":     url,
			"package": loc.Package(),
			"version": loc.Release.VersionToken(),
		})
		return nil
	}

	rootDef := supplemental.FishForFHIR(loc.RootType, result,
		fhirdefs.KindResource, fhirdefs.KindType, fhirdefs.KindLogical)
	if rootDef == nil {
		result.AddErrorWithID(issue.DiagUnknownRootType, map[string]any{
			"url":     url,
			"type":    loc.RootType,
			"package": loc.Package(),
		})
		return nil
	}

	element := rootDef.FindElement(loc.ElementID)
	if element == nil {
		result.AddErrorWithID(issue.DiagUnknownElementID, map[string]any{
			"url":       url,
			"elementId": loc.ElementID,
			"package":   loc.Package(),
		})
		return nil
	}

	for _, t := range element.Type {
		if t.Code == "Resource" {
			result.AddErrorWithID(issue.DiagUnsupportedResourceType, map[string]any{
				"elementId": loc.ElementID,
			})
			return nil
		}
	}

	builder, err := extension.NewBuilder()
	if err != nil {
		result.AddError(issue.CodeProcessing, err.Error())
		return nil
	}

	sd := builder.SD()
	sd.ID = "extension-" + loc.ElementID
	sd.URL = url
	sd.Version = sourceVersion(rootDef, loc)
	sd.Name = sanitizeName(loc.ElementID)
	sd.Title = "Implied extension for " + loc.ElementID
	sd.Status = "active"
	sd.Date = time.Now().UTC().Format(time.RFC3339)
	sd.Description = "Implied extension for " + loc.ElementID
	sd.Kind = "complex-type"
	sd.Abstract = false
	sd.Context = []fhirdefs.ExtensionContext{{Type: "element", Expression: "Element"}}
	sd.Type = "Extension"
	sd.BaseDefinition = "http://hl7.org/fhir/StructureDefinition/Extension"
	sd.Derivation = "constraint"

	builder.CopyDocumentation("Extension", element)
	builder.ConstrainCardinality("Extension", element.Min, element.Max)

	m.buildElement(builder, "Extension", element, rootDef, loc, defs, supplemental, nil, result)

	builder.SetFixedURI("Extension.url", url)
	return builder.Definition()
}

// sourceVersion returns the foreign definition's FHIR version, falling
// back to the release named by the URL when the definition omits it.
func sourceVersion(rootDef *fhirdefs.StructureDefinition, loc *Locator) string {
	if rootDef.FHIRVersion != "" {
		return rootDef.FHIRVersion
	}
	return loc.Release.FHIRVersion()
}

// buildElement populates the extension element identified by targetID
// from a foreign source element. Exactly one of the value restriction and
// the sub-extension tree is left open; the other is forced to max 0.
func (m *Materializer) buildElement(b *extension.Builder, targetID string, element *fhirdefs.ElementDefinition,
	sourceDef *fhirdefs.StructureDefinition, loc *Locator, defs, supplemental *fhirdefs.Registry,
	seen visited, result *issue.Result) {

	valueID := targetID + ".value[x]"
	extensionID := targetID + ".extension"

	if isComplex(element, defs) {
		m.buildSubExtensions(b, targetID, element, sourceDef, loc, defs, supplemental, seen, result)
		b.Zero(valueID)
		if element.Type[0].Code == "CodeableReference" {
			m.relocateCodeableReference(b, targetID, element, loc, defs, result)
		}
		return
	}

	if binding := element.Binding; binding != nil && binding.EffectiveValueSet() != "" {
		b.SetBinding(valueID, &fhirdefs.Binding{
			Strength:    binding.Strength,
			Description: binding.Description,
			ValueSet:    binding.EffectiveValueSet(),
		})
	}
	if types := normalizeTypes(loc.Release, element.Type); len(types) > 0 {
		types = fixTypes(types, defs, loc.URL, result)
		b.SetTypes(valueID, types)
	}
	b.Zero(extensionID)
}

// isComplex classifies an element's representation. An element is complex
// only when it has exactly one type and that type is BackboneElement or
// Element, is absent from the current release, or is a not-yet-released
// placeholder. A choice of several types is always simple: it cannot be
// expressed as one complex extension.
func isComplex(element *fhirdefs.ElementDefinition, defs *fhirdefs.Registry) bool {
	if len(element.Type) != 1 {
		return false
	}
	code := element.Type[0].Code
	if code == "BackboneElement" || code == "Element" {
		return true
	}
	typeDef := defs.FishForFHIR(code, nil,
		fhirdefs.KindResource, fhirdefs.KindType, fhirdefs.KindLogical)
	return typeDef == nil || typeDef.Placeholder
}

// buildSubExtensions creates one named slice per direct child of the
// source element and recurses into each. When the source element has no
// inline children, its single type is resolved in the supplemental
// registry and that type's own element tree is used instead, guarded by
// the per-branch visited set.
func (m *Materializer) buildSubExtensions(b *extension.Builder, targetID string, element *fhirdefs.ElementDefinition,
	sourceDef *fhirdefs.StructureDefinition, loc *Locator, defs, supplemental *fhirdefs.Registry,
	seen visited, result *issue.Result) {

	srcDef := sourceDef
	base := element.Key()
	children := descendants(srcDef, base)

	if len(children) == 0 && len(element.Type) == 1 {
		typeDef := supplemental.FishForFHIR(element.Type[0].Code, result,
			fhirdefs.KindResource, fhirdefs.KindType, fhirdefs.KindLogical)
		if typeDef == nil {
			return
		}
		key := typeKey(typeDef)
		if seen.has(key) {
			result.AddWarningWithID(issue.DiagSubExtensionRecursion, map[string]any{
				"url":  loc.URL,
				"type": element.Type[0].Code,
			})
			return
		}
		seen = seen.with(key)
		srcDef = typeDef
		base = rootKey(typeDef)
		children = descendants(srcDef, base)
	}

	extensionArray := targetID + ".extension"
	for _, child := range children {
		if !fhirdefs.IsDirectChild(child.Key(), base) {
			continue
		}
		name := fhirdefs.LastSegment(child.Path)
		if name == "id" || name == "extension" || name == "modifierExtension" {
			continue
		}
		sliceName := strings.ReplaceAll(name, "[x]", "")

		sliceID := b.AddSlice(extensionArray, sliceName)
		if sliceID == "" {
			continue
		}
		b.CopyDocumentation(sliceID, child)
		b.ConstrainCardinality(sliceID, child.Min, child.Max)
		m.buildElement(b, sliceID, child, srcDef, loc, defs, supplemental, seen.clone(), result)
		b.SetFixedURI(sliceID+".url", sliceName)
	}
}

// relocateCodeableReference moves a CodeableReference element's binding
// onto the generated concept.value[x] slice and its reference-target list
// onto the reference.value[x] slice, re-running type fixup on the latter.
func (m *Materializer) relocateCodeableReference(b *extension.Builder, targetID string,
	element *fhirdefs.ElementDefinition, loc *Locator, defs *fhirdefs.Registry, result *issue.Result) {

	extensionArray := targetID + ".extension"

	if binding := element.Binding; binding != nil && binding.EffectiveValueSet() != "" {
		b.SetBinding(extensionArray+":concept.value[x]", &fhirdefs.Binding{
			Strength:    binding.Strength,
			Description: binding.Description,
			ValueSet:    binding.EffectiveValueSet(),
		})
	}

	targets := element.Type[0].TargetProfile
	if len(targets) == 0 {
		return
	}
	referenceValueID := extensionArray + ":reference.value[x]"
	referenceValue := b.Element(referenceValueID)
	if referenceValue == nil {
		return
	}

	types := make([]fhirdefs.Type, 0, len(referenceValue.Type))
	for i := range referenceValue.Type {
		t := *referenceValue.Type[i].Clone()
		if t.Code == "Reference" {
			t.TargetProfile = append(fhirdefs.StringList(nil), targets...)
		}
		types = append(types, t)
	}
	types = fixTypes(types, defs, loc.URL, result)
	b.SetTypes(referenceValueID, types)
}

// descendants returns the source elements one or more dot-segments below
// base, in snapshot order.
func descendants(sd *fhirdefs.StructureDefinition, base string) []*fhirdefs.ElementDefinition {
	elements := sd.Elements()
	var out []*fhirdefs.ElementDefinition
	for i := range elements {
		if fhirdefs.IsDescendant(elements[i].Key(), base) {
			out = append(out, &elements[i])
		}
	}
	return out
}

// rootKey returns the key of a definition's root element, falling back to
// its type name for snapshots that omit the root.
func rootKey(sd *fhirdefs.StructureDefinition) string {
	if elements := sd.Elements(); len(elements) > 0 {
		return elements[0].Key()
	}
	return sd.Type
}
