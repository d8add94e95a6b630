package loader

import (
	"github.com/gofhir/fhir/r4"

	"github.com/gofhir/shorthand/fhirdefs"
)

// R4Converter converts typed R4 models into the registry's internal
// definition model, for callers that already hold r4.StructureDefinition
// values rather than raw package JSON.
type R4Converter struct{}

// NewR4Converter creates a new R4 converter.
func NewR4Converter() *R4Converter {
	return &R4Converter{}
}

// ConvertStructureDefinition converts an r4.StructureDefinition into the
// internal model. Returns nil for nil input.
func (c *R4Converter) ConvertStructureDefinition(sd *r4.StructureDefinition) *fhirdefs.StructureDefinition {
	if sd == nil {
		return nil
	}

	result := &fhirdefs.StructureDefinition{
		ResourceType:   "StructureDefinition",
		ID:             derefString(sd.Id),
		URL:            derefString(sd.Url),
		Version:        derefString(sd.Version),
		Name:           derefString(sd.Name),
		Title:          derefString(sd.Title),
		Date:           derefString(sd.Date),
		Description:    derefString(sd.Description),
		FHIRVersion:    c.convertFHIRVersion(sd.FhirVersion),
		Kind:           c.convertKind(sd.Kind),
		Abstract:       derefBool(sd.Abstract),
		Context:        c.convertContext(sd.Context),
		Type:           derefString(sd.Type),
		BaseDefinition: derefString(sd.BaseDefinition),
		Derivation:     c.convertDerivation(sd.Derivation),
		Status:         c.convertStatus(sd.Status),
	}

	if sd.Snapshot != nil {
		result.Snapshot = &fhirdefs.Snapshot{Element: c.convertElementDefinitions(sd.Snapshot.Element)}
	}
	if sd.Differential != nil {
		result.Differential = &fhirdefs.Differential{Element: c.convertElementDefinitions(sd.Differential.Element)}
	}
	return result
}

func (c *R4Converter) convertElementDefinitions(elements []r4.ElementDefinition) []fhirdefs.ElementDefinition {
	if len(elements) == 0 {
		return nil
	}
	result := make([]fhirdefs.ElementDefinition, 0, len(elements))
	for i := range elements {
		result = append(result, c.convertElementDefinition(&elements[i]))
	}
	return result
}

func (c *R4Converter) convertElementDefinition(ed *r4.ElementDefinition) fhirdefs.ElementDefinition {
	return fhirdefs.ElementDefinition{
		ID:               derefString(ed.Id),
		Path:             derefString(ed.Path),
		SliceName:        derefString(ed.SliceName),
		Slicing:          c.convertSlicing(ed.Slicing),
		Short:            derefString(ed.Short),
		Definition:       derefString(ed.Definition),
		Comment:          derefString(ed.Comment),
		Requirements:     derefString(ed.Requirements),
		Min:              c.convertMin(ed.Min),
		Max:              derefString(ed.Max),
		ContentReference: derefString(ed.ContentReference),
		Type:             c.convertTypes(ed.Type),
		FixedUri:         derefString(ed.FixedUri),
		IsModifier:       derefBool(ed.IsModifier),
		IsModifierReason: derefString(ed.IsModifierReason),
		IsSummary:        derefBool(ed.IsSummary),
		Binding:          c.convertBinding(ed.Binding),
	}
}

func (c *R4Converter) convertTypes(types []r4.ElementDefinitionType) []fhirdefs.Type {
	if len(types) == 0 {
		return nil
	}
	result := make([]fhirdefs.Type, 0, len(types))
	for i := range types {
		t := &types[i]
		result = append(result, fhirdefs.Type{
			Code:          derefString(t.Code),
			Profile:       fhirdefs.StringList(t.Profile),
			TargetProfile: fhirdefs.StringList(t.TargetProfile),
		})
	}
	return result
}

func (c *R4Converter) convertBinding(binding *r4.ElementDefinitionBinding) *fhirdefs.Binding {
	if binding == nil {
		return nil
	}
	return &fhirdefs.Binding{
		Strength:    c.convertBindingStrength(binding.Strength),
		ValueSet:    derefString(binding.ValueSet),
		Description: derefString(binding.Description),
	}
}

func (c *R4Converter) convertSlicing(slicing *r4.ElementDefinitionSlicing) *fhirdefs.Slicing {
	if slicing == nil {
		return nil
	}
	return &fhirdefs.Slicing{
		Discriminator: c.convertDiscriminators(slicing.Discriminator),
		Description:   derefString(slicing.Description),
		Ordered:       derefBool(slicing.Ordered),
		Rules:         c.convertSlicingRules(slicing.Rules),
	}
}

func (c *R4Converter) convertDiscriminators(discriminators []r4.ElementDefinitionSlicingDiscriminator) []fhirdefs.Discriminator {
	if len(discriminators) == 0 {
		return nil
	}
	result := make([]fhirdefs.Discriminator, 0, len(discriminators))
	for i := range discriminators {
		d := &discriminators[i]
		result = append(result, fhirdefs.Discriminator{
			Type: c.convertDiscriminatorType(d.Type),
			Path: derefString(d.Path),
		})
	}
	return result
}

func (c *R4Converter) convertContext(contexts []r4.StructureDefinitionContext) []fhirdefs.ExtensionContext {
	if len(contexts) == 0 {
		return nil
	}
	result := make([]fhirdefs.ExtensionContext, 0, len(contexts))
	for i := range contexts {
		ctx := &contexts[i]
		result = append(result, fhirdefs.ExtensionContext{
			Type:       c.convertContextType(ctx.Type),
			Expression: derefString(ctx.Expression),
		})
	}
	return result
}

// Enum conversion helpers

func (c *R4Converter) convertKind(kind *r4.StructureDefinitionKind) string {
	if kind == nil {
		return ""
	}
	return string(*kind)
}

func (c *R4Converter) convertFHIRVersion(version *r4.FHIRVersion) string {
	if version == nil {
		return ""
	}
	return string(*version)
}

func (c *R4Converter) convertStatus(status *r4.PublicationStatus) string {
	if status == nil {
		return ""
	}
	return string(*status)
}

func (c *R4Converter) convertDerivation(derivation *r4.TypeDerivationRule) string {
	if derivation == nil {
		return ""
	}
	return string(*derivation)
}

func (c *R4Converter) convertBindingStrength(strength *r4.BindingStrength) string {
	if strength == nil {
		return ""
	}
	return string(*strength)
}

func (c *R4Converter) convertSlicingRules(rules *r4.SlicingRules) string {
	if rules == nil {
		return ""
	}
	return string(*rules)
}

func (c *R4Converter) convertContextType(ctype *r4.ExtensionContextType) string {
	if ctype == nil {
		return ""
	}
	return string(*ctype)
}

func (c *R4Converter) convertDiscriminatorType(dtype *r4.DiscriminatorType) string {
	if dtype == nil {
		return ""
	}
	return string(*dtype)
}

func (c *R4Converter) convertMin(minVal *uint32) *int {
	if minVal == nil {
		return nil
	}
	return fhirdefs.IntPtr(int(*minVal))
}

// Generic helpers

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefBool(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}
