package implied

import (
	"strings"

	"github.com/gofhir/shorthand/fhirdefs"
	"github.com/gofhir/shorthand/issue"
)

const canonicalPrefix = "http://hl7.org/fhir/StructureDefinition/"

// typeRenames maps resource names that were renamed across FHIR releases
// to their current-release names. Reference targets that fail to resolve
// are renamed through this table before being dropped.
var typeRenames = map[string]string{
	// DSTU2 / STU3 names
	"BodySite":            "BodyStructure",
	"Conformance":         "CapabilityStatement",
	"DataElement":         "StructureDefinition",
	"DeviceUseRequest":    "DeviceRequest",
	"DiagnosticOrder":     "ServiceRequest",
	"EligibilityRequest":  "CoverageEligibilityRequest",
	"EligibilityResponse": "CoverageEligibilityResponse",
	"MedicationOrder":     "MedicationRequest",
	"ProcedureRequest":    "ServiceRequest",
	"ReferralRequest":     "ServiceRequest",
	"Sequence":            "MolecularSequence",
	// R5 names not present in R4
	"MedicationUsage":      "MedicationStatement",
	"RequestOrchestration": "RequestGroup",
}

// fixTypes rewrites a normalized type list so it is valid in the current
// release held by defs:
//
//   - entries whose code cannot be resolved as a current resource or type
//     are dropped;
//   - unresolvable profile references are dropped;
//   - unresolvable reference targets are renamed through typeRenames when
//     the table has a substitute, otherwise dropped;
//   - emptied profile/targetProfile lists are deleted entirely (absence
//     means unrestricted).
//
// All drops are reported in a single aggregated warning naming the
// current release.
func fixTypes(types []fhirdefs.Type, defs *fhirdefs.Registry, url string, result *issue.Result) []fhirdefs.Type {
	var dropped []string

	out := make([]fhirdefs.Type, 0, len(types))
	for i := range types {
		t := types[i]
		if defs.FishForFHIR(t.Code, nil, fhirdefs.KindResource, fhirdefs.KindType, fhirdefs.KindLogical) == nil {
			dropped = append(dropped, t.Code)
			continue
		}
		t.Profile = fixProfiles(t.Profile, defs, &dropped)
		t.TargetProfile = fixTargets(t.TargetProfile, defs, &dropped)
		out = append(out, t)
	}

	if len(dropped) > 0 {
		result.AddWarningWithID(issue.DiagUnsupportedTargets, map[string]any{
			"url":     url,
			"version": defs.Release().FHIRVersion(),
			"dropped": strings.Join(dropped, ", "),
		})
	}
	return out
}

// fixProfiles keeps only profile references that resolve against the
// current release's profile and extension definitions.
func fixProfiles(profiles fhirdefs.StringList, defs *fhirdefs.Registry, dropped *[]string) fhirdefs.StringList {
	if len(profiles) == 0 {
		return nil
	}
	kept := make(fhirdefs.StringList, 0, len(profiles))
	for _, profile := range profiles {
		if defs.FishForFHIR(profile, nil, fhirdefs.KindProfile, fhirdefs.KindExtension) != nil {
			kept = append(kept, profile)
		} else {
			*dropped = append(*dropped, profile)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// fixTargets keeps resolvable reference targets, substitutes renamed
// resources, and drops the rest.
func fixTargets(targets fhirdefs.StringList, defs *fhirdefs.Registry, dropped *[]string) fhirdefs.StringList {
	if len(targets) == 0 {
		return nil
	}
	kept := make(fhirdefs.StringList, 0, len(targets))
	for _, target := range targets {
		if defs.FishForFHIR(target, nil, fhirdefs.KindResource, fhirdefs.KindProfile, fhirdefs.KindLogical) != nil {
			kept = append(kept, target)
			continue
		}
		name := strings.TrimPrefix(target, canonicalPrefix)
		if renamed, ok := typeRenames[name]; ok {
			kept = append(kept, canonicalPrefix+renamed)
			continue
		}
		*dropped = append(*dropped, name)
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}
