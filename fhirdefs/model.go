// Package fhirdefs provides a layered registry of FHIR definitions spanning
// multiple specification releases, with polymorphic "fishing" lookups by id,
// name, or canonical URL.
package fhirdefs

import "encoding/json"

// StructureDefinition represents a minimal view of a FHIR StructureDefinition.
// We use a lightweight struct with JSON tags so definitions from any release
// can be loaded without importing full FHIR types; release-specific wire
// quirks are absorbed by custom unmarshaling on the nested types.
type StructureDefinition struct {
	ResourceType   string             `json:"resourceType"`
	ID             string             `json:"id,omitempty"`
	Extension      []Extension        `json:"extension,omitempty"`
	URL            string             `json:"url,omitempty"`
	Version        string             `json:"version,omitempty"`
	Name           string             `json:"name,omitempty"`
	Title          string             `json:"title,omitempty"`
	Status         string             `json:"status,omitempty"`
	Date           string             `json:"date,omitempty"`
	Description    string             `json:"description,omitempty"`
	FHIRVersion    string             `json:"fhirVersion,omitempty"`
	Kind           string             `json:"kind,omitempty"` // resource, complex-type, primitive-type, datatype, logical
	Abstract       bool               `json:"abstract"`
	Context        []ExtensionContext `json:"context,omitempty"`
	Type           string             `json:"type,omitempty"`           // The type this SD defines
	BaseDefinition string             `json:"baseDefinition,omitempty"` // URL of the base SD
	Derivation     string             `json:"derivation,omitempty"`     // specialization | constraint

	Snapshot     *Snapshot     `json:"snapshot,omitempty"`
	Differential *Differential `json:"differential,omitempty"`

	// Placeholder marks a definition that was copied in from a later
	// release and has not been published for this one. Package tooling
	// writes this under the "_timeTraveler" key.
	Placeholder bool `json:"_timeTraveler,omitempty"`
}

// ExtensionContext defines where an extension can be used.
type ExtensionContext struct {
	Type       string `json:"type"`       // element, extension, fhirpath
	Expression string `json:"expression"` // The context expression
}

// Snapshot contains the complete set of ElementDefinitions.
type Snapshot struct {
	Element []ElementDefinition `json:"element"`
}

// Differential contains only the modified ElementDefinitions.
type Differential struct {
	Element []ElementDefinition `json:"element"`
}

// ElementDefinition represents a FHIR ElementDefinition.
type ElementDefinition struct {
	ID               string      `json:"id,omitempty"`
	Path             string      `json:"path"`
	SliceName        string      `json:"sliceName,omitempty"`
	Slicing          *Slicing    `json:"slicing,omitempty"`
	Short            string      `json:"short,omitempty"`
	Definition       string      `json:"definition,omitempty"`
	Comment          string      `json:"comment,omitempty"`
	Requirements     string      `json:"requirements,omitempty"`
	Min              *int        `json:"min,omitempty"`
	Max              string      `json:"max,omitempty"`
	ContentReference string      `json:"contentReference,omitempty"`
	Type             []Type      `json:"type,omitempty"`
	FixedUri         string      `json:"fixedUri,omitempty"`
	IsModifier       bool        `json:"isModifier,omitempty"`
	IsModifierReason string      `json:"isModifierReason,omitempty"`
	IsSummary        bool        `json:"isSummary,omitempty"`
	Binding          *Binding    `json:"binding,omitempty"`
	Extension        []Extension `json:"extension,omitempty"`
}

// Key returns the element's id, falling back to its path for releases
// whose snapshots omit element ids.
func (ed *ElementDefinition) Key() string {
	if ed.ID != "" {
		return ed.ID
	}
	return ed.Path
}

// Type represents an allowed type for an element.
//
// Unmarshaling accepts both the single-valued profile/targetProfile shape
// used by STU3 and the array shape used by R4 and later.
type Type struct {
	Code          string      `json:"code"`
	Profile       StringList  `json:"profile,omitempty"`
	TargetProfile StringList  `json:"targetProfile,omitempty"`
	Aggregation   []string    `json:"aggregation,omitempty"`
	Versioning    string      `json:"versioning,omitempty"`
	Extension     []Extension `json:"extension,omitempty"`
}

// StringList is a []string that also accepts a bare JSON string, covering
// releases where a canonical list element had cardinality 0..1.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringList) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*s = StringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// Binding represents a terminology binding.
type Binding struct {
	Strength    string `json:"strength,omitempty"` // required | extensible | preferred | example
	Description string `json:"description,omitempty"`
	ValueSet    string `json:"valueSet,omitempty"`

	// ValueSetReference carries the STU3/DSTU2 reference shape; callers
	// should use EffectiveValueSet instead of reading either field directly.
	ValueSetReference *Reference `json:"valueSetReference,omitempty"`
}

// Reference is a FHIR Reference as used by pre-R4 binding shapes.
type Reference struct {
	Reference string `json:"reference,omitempty"`
}

// EffectiveValueSet returns the bound value set canonical regardless of
// which release's wire shape carried it.
func (b *Binding) EffectiveValueSet() string {
	if b == nil {
		return ""
	}
	if b.ValueSet != "" {
		return b.ValueSet
	}
	if b.ValueSetReference != nil {
		return b.ValueSetReference.Reference
	}
	return ""
}

// Slicing represents slicing rules for an element.
type Slicing struct {
	Discriminator []Discriminator `json:"discriminator,omitempty"`
	Description   string          `json:"description,omitempty"`
	Ordered       bool            `json:"ordered,omitempty"`
	Rules         string          `json:"rules,omitempty"` // open | closed | openAtEnd
}

// Discriminator defines how to match elements to slices.
type Discriminator struct {
	Type string `json:"type"` // value | exists | pattern | type | profile
	Path string `json:"path"`
}

// Extension represents a FHIR extension.
type Extension struct {
	URL            string `json:"url"`
	ValueBoolean   *bool  `json:"valueBoolean,omitempty"`
	ValueCode      string `json:"valueCode,omitempty"`
	ValueString    string `json:"valueString,omitempty"`
	ValueUri       string `json:"valueUri,omitempty"`
	ValueCanonical string `json:"valueCanonical,omitempty"`
}

// ParseStructureDefinition parses a StructureDefinition from raw JSON.
func ParseStructureDefinition(data []byte) (*StructureDefinition, error) {
	var sd StructureDefinition
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	return &sd, nil
}

// Elements returns the snapshot elements, or nil if there is no snapshot.
func (sd *StructureDefinition) Elements() []ElementDefinition {
	if sd == nil || sd.Snapshot == nil {
		return nil
	}
	return sd.Snapshot.Element
}

// FindElement returns the snapshot element whose id (or path, for releases
// that omit ids) equals key, or nil.
func (sd *StructureDefinition) FindElement(key string) *ElementDefinition {
	if sd == nil || sd.Snapshot == nil {
		return nil
	}
	for i := range sd.Snapshot.Element {
		if sd.Snapshot.Element[i].Key() == key {
			return &sd.Snapshot.Element[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the StructureDefinition.
func (sd *StructureDefinition) Clone() *StructureDefinition {
	if sd == nil {
		return nil
	}
	out := *sd
	out.Extension = cloneExtensions(sd.Extension)
	out.Context = append([]ExtensionContext(nil), sd.Context...)
	if sd.Snapshot != nil {
		out.Snapshot = &Snapshot{Element: cloneElements(sd.Snapshot.Element)}
	}
	if sd.Differential != nil {
		out.Differential = &Differential{Element: cloneElements(sd.Differential.Element)}
	}
	return &out
}

// Clone returns a deep copy of the ElementDefinition.
func (ed *ElementDefinition) Clone() *ElementDefinition {
	if ed == nil {
		return nil
	}
	out := *ed
	if ed.Min != nil {
		minVal := *ed.Min
		out.Min = &minVal
	}
	out.Type = cloneTypes(ed.Type)
	out.Binding = ed.Binding.clone()
	out.Extension = cloneExtensions(ed.Extension)
	if ed.Slicing != nil {
		slicing := *ed.Slicing
		slicing.Discriminator = append([]Discriminator(nil), ed.Slicing.Discriminator...)
		out.Slicing = &slicing
	}
	return &out
}

// Clone returns a deep copy of the Type.
func (t *Type) Clone() *Type {
	if t == nil {
		return nil
	}
	out := *t
	out.Profile = append(StringList(nil), t.Profile...)
	out.TargetProfile = append(StringList(nil), t.TargetProfile...)
	out.Aggregation = append([]string(nil), t.Aggregation...)
	out.Extension = cloneExtensions(t.Extension)
	return &out
}

func (b *Binding) clone() *Binding {
	if b == nil {
		return nil
	}
	out := *b
	if b.ValueSetReference != nil {
		ref := *b.ValueSetReference
		out.ValueSetReference = &ref
	}
	return &out
}

func cloneElements(elements []ElementDefinition) []ElementDefinition {
	if elements == nil {
		return nil
	}
	out := make([]ElementDefinition, len(elements))
	for i := range elements {
		out[i] = *elements[i].Clone()
	}
	return out
}

func cloneTypes(types []Type) []Type {
	if types == nil {
		return nil
	}
	out := make([]Type, len(types))
	for i := range types {
		out[i] = *types[i].Clone()
	}
	return out
}

func cloneExtensions(extensions []Extension) []Extension {
	if extensions == nil {
		return nil
	}
	out := make([]Extension, len(extensions))
	for i, ext := range extensions {
		out[i] = ext
		if ext.ValueBoolean != nil {
			b := *ext.ValueBoolean
			out[i].ValueBoolean = &b
		}
	}
	return out
}

// IntPtr returns a pointer to n, for building element cardinalities.
func IntPtr(n int) *int {
	return &n
}
