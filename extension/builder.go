// Package extension builds Extension StructureDefinitions from the
// embedded base template: element lookup, cardinality and type
// constraints, named sub-extension slices with their implicit children,
// and serialization of both the fully expanded snapshot and the minimal
// override-only differential.
package extension

import (
	"fmt"
	"strings"

	"github.com/gofhir/shorthand/fhirdefs"
	"github.com/gofhir/shorthand/specs"
)

// Builder assembles an Extension StructureDefinition. The snapshot is
// maintained in place; every modification is also recorded into a
// per-element override so the differential stays minimal.
type Builder struct {
	sd        *fhirdefs.StructureDefinition
	overrides map[string]*fhirdefs.ElementDefinition
}

// NewBuilder creates a Builder seeded with a clone of the embedded base
// Extension template.
func NewBuilder() (*Builder, error) {
	data, err := specs.ExtensionTemplate()
	if err != nil {
		return nil, err
	}
	template, err := fhirdefs.ParseStructureDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse extension template: %w", err)
	}
	return &Builder{
		sd:        template.Clone(),
		overrides: make(map[string]*fhirdefs.ElementDefinition),
	}, nil
}

// SD returns the document under construction. Document-level metadata
// (id, url, name, ...) is set directly on the returned value.
func (b *Builder) SD() *fhirdefs.StructureDefinition {
	return b.sd
}

// Element returns the snapshot element with the given id, or nil.
func (b *Builder) Element(id string) *fhirdefs.ElementDefinition {
	return b.sd.FindElement(id)
}

// override returns the differential entry for an element, creating it on
// first use with the element's identity fields.
func (b *Builder) override(id string) *fhirdefs.ElementDefinition {
	if entry, ok := b.overrides[id]; ok {
		return entry
	}
	elem := b.sd.FindElement(id)
	entry := &fhirdefs.ElementDefinition{ID: id}
	if elem != nil {
		entry.Path = elem.Path
		entry.SliceName = elem.SliceName
	}
	b.overrides[id] = entry
	return entry
}

// ConstrainCardinality sets min and/or max on an element. Pass nil or ""
// to leave a bound unchanged.
func (b *Builder) ConstrainCardinality(id string, min *int, max string) {
	elem := b.sd.FindElement(id)
	if elem == nil {
		return
	}
	entry := b.override(id)
	if min != nil {
		elem.Min = fhirdefs.IntPtr(*min)
		entry.Min = fhirdefs.IntPtr(*min)
	}
	if max != "" {
		elem.Max = max
		entry.Max = max
	}
}

// Zero closes an element by forcing its max cardinality to 0.
func (b *Builder) Zero(id string) {
	b.ConstrainCardinality(id, nil, "0")
}

// SetTypes replaces an element's type list.
func (b *Builder) SetTypes(id string, types []fhirdefs.Type) {
	elem := b.sd.FindElement(id)
	if elem == nil {
		return
	}
	elem.Type = types
	b.override(id).Type = types
}

// SetBinding sets an element's value-set binding.
func (b *Builder) SetBinding(id string, binding *fhirdefs.Binding) {
	elem := b.sd.FindElement(id)
	if elem == nil || binding == nil {
		return
	}
	elem.Binding = binding
	b.override(id).Binding = binding
}

// ClearBinding removes an element's value-set binding from the snapshot.
func (b *Builder) ClearBinding(id string) {
	if elem := b.sd.FindElement(id); elem != nil {
		elem.Binding = nil
	}
	if entry, ok := b.overrides[id]; ok {
		entry.Binding = nil
	}
}

// SetFixedURI fixes an element's uri value.
func (b *Builder) SetFixedURI(id, uri string) {
	elem := b.sd.FindElement(id)
	if elem == nil {
		return
	}
	elem.FixedUri = uri
	b.override(id).FixedUri = uri
}

// CopyDocumentation copies the descriptive fields that are present on the
// source element: short, definition, comment, requirements, isModifier,
// and isModifierReason.
func (b *Builder) CopyDocumentation(id string, src *fhirdefs.ElementDefinition) {
	elem := b.sd.FindElement(id)
	if elem == nil || src == nil {
		return
	}
	entry := b.override(id)
	if src.Short != "" {
		elem.Short = src.Short
		entry.Short = src.Short
	}
	if src.Definition != "" {
		elem.Definition = src.Definition
		entry.Definition = src.Definition
	}
	if src.Comment != "" {
		elem.Comment = src.Comment
		entry.Comment = src.Comment
	}
	if src.Requirements != "" {
		elem.Requirements = src.Requirements
		entry.Requirements = src.Requirements
	}
	if src.IsModifier {
		elem.IsModifier = true
		entry.IsModifier = true
	}
	if src.IsModifierReason != "" {
		elem.IsModifierReason = src.IsModifierReason
		entry.IsModifierReason = src.IsModifierReason
	}
}

// AddSlice adds a named slice to an extension array element (for example
// "Extension.extension" or "Extension.extension:foo.extension") and
// expands the slice's implicit extension/url/value[x] children. It
// returns the new slice's element id.
func (b *Builder) AddSlice(parentID, sliceName string) string {
	parent := b.sd.FindElement(parentID)
	if parent == nil {
		return ""
	}
	b.ensureSlicing(parentID, parent)

	sliceID := parentID + ":" + sliceName
	slice := fhirdefs.ElementDefinition{
		ID:        sliceID,
		Path:      parent.Path,
		SliceName: sliceName,
		Min:       fhirdefs.IntPtr(0),
		Max:       "*",
		Type:      []fhirdefs.Type{{Code: "Extension"}},
	}

	children := b.sliceChildren(sliceID, parent.Path)
	elements := append([]fhirdefs.ElementDefinition{slice}, children...)
	b.insertAfterSubtree(parentID, elements)

	entry := b.override(sliceID)
	entry.Min = fhirdefs.IntPtr(0)
	entry.Max = "*"
	entry.Type = []fhirdefs.Type{{Code: "Extension"}}
	return sliceID
}

// ensureSlicing makes sure the parent extension array carries the
// standard by-url slicing before its first slice is added.
func (b *Builder) ensureSlicing(parentID string, parent *fhirdefs.ElementDefinition) {
	if parent.Slicing != nil {
		return
	}
	slicing := &fhirdefs.Slicing{
		Discriminator: []fhirdefs.Discriminator{{Type: "value", Path: "url"}},
		Description:   "Extensions are always sliced by (at least) url",
		Rules:         "open",
	}
	parent.Slicing = slicing
	b.override(parentID).Slicing = slicing
}

// sliceChildren builds the implicit children of a named slice: its own
// extension array, the url discriminator (fixed to the slice name), and
// the value choice. They are cloned from the base template elements so
// documentation and types stay aligned with the base Extension.
func (b *Builder) sliceChildren(sliceID, slicePath string) []fhirdefs.ElementDefinition {
	children := make([]fhirdefs.ElementDefinition, 0, 3)
	for _, name := range []string{"extension", "url", "value[x]"} {
		base := b.sd.FindElement("Extension." + name)
		if base == nil {
			continue
		}
		child := *base.Clone()
		child.ID = sliceID + "." + name
		child.Path = slicePath + "." + name
		child.Slicing = nil
		children = append(children, child)
	}
	return children
}

// insertAfterSubtree inserts elements after the parent element, its
// descendants, and any previously added slices of the parent, keeping
// snapshot order depth-first.
func (b *Builder) insertAfterSubtree(parentID string, elements []fhirdefs.ElementDefinition) {
	snapshot := b.sd.Snapshot.Element
	insertAt := len(snapshot)
	for i := range snapshot {
		id := snapshot[i].ID
		if id == parentID || strings.HasPrefix(id, parentID+".") || strings.HasPrefix(id, parentID+":") {
			insertAt = i + 1
		}
	}

	updated := make([]fhirdefs.ElementDefinition, 0, len(snapshot)+len(elements))
	updated = append(updated, snapshot[:insertAt]...)
	updated = append(updated, elements...)
	updated = append(updated, snapshot[insertAt:]...)
	b.sd.Snapshot.Element = updated
}

// Definition finalizes and returns the document: the snapshot is the
// fully expanded view, and the differential is rebuilt from the recorded
// overrides in snapshot order.
func (b *Builder) Definition() *fhirdefs.StructureDefinition {
	diff := make([]fhirdefs.ElementDefinition, 0, len(b.overrides)+1)
	for i := range b.sd.Snapshot.Element {
		id := b.sd.Snapshot.Element[i].ID
		if entry, ok := b.overrides[id]; ok {
			diff = append(diff, *entry)
		}
	}
	b.sd.Differential = &fhirdefs.Differential{Element: diff}
	return b.sd
}
