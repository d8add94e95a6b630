package implied

import (
	fsh "github.com/gofhir/shorthand"
	"github.com/gofhir/shorthand/fhirdefs"
)

// normalizeTypes translates a source element's raw type entries, in
// whichever shape the given release used, into canonical entries.
//
//   - R4 and R5 entries pass through unchanged.
//   - STU3 entries may repeat a code with single-valued profile and
//     targetProfile; same-code entries are merged, unioning their
//     profile/targetProfile/aggregation lists, with last-writer-wins on
//     versioning.
//   - DSTU2 has no targetProfile: when the code is Reference, its profile
//     entries are reference targets and are carried as targetProfile.
//     Duplicate codes merge as for STU3.
//
// The input is never modified; an empty input yields nil.
func normalizeTypes(release fsh.FHIRRelease, types []fhirdefs.Type) []fhirdefs.Type {
	if len(types) == 0 {
		return nil
	}

	switch release {
	case fsh.R2, fsh.R3:
		return mergeTypes(release, types)
	default:
		out := make([]fhirdefs.Type, 0, len(types))
		for i := range types {
			out = append(out, *types[i].Clone())
		}
		return out
	}
}

// mergeTypes folds repeated same-code entries into one canonical entry.
func mergeTypes(release fsh.FHIRRelease, types []fhirdefs.Type) []fhirdefs.Type {
	out := make([]fhirdefs.Type, 0, len(types))
	index := make(map[string]int, len(types))

	for i := range types {
		t := &types[i]
		profiles := t.Profile
		targets := t.TargetProfile
		if release == fsh.R2 && t.Code == "Reference" {
			// DSTU2 stores reference targets in profile
			targets = t.Profile
			profiles = nil
		}

		at, ok := index[t.Code]
		if !ok {
			out = append(out, fhirdefs.Type{Code: t.Code})
			at = len(out) - 1
			index[t.Code] = at
		}
		entry := &out[at]
		entry.Profile = unionStrings(entry.Profile, profiles)
		entry.TargetProfile = unionStrings(entry.TargetProfile, targets)
		entry.Aggregation = unionPlain(entry.Aggregation, t.Aggregation)
		if t.Versioning != "" {
			entry.Versioning = t.Versioning
		}
	}
	return out
}

// unionStrings appends the values not already present, preserving order.
func unionStrings(existing fhirdefs.StringList, more fhirdefs.StringList) fhirdefs.StringList {
	for _, v := range more {
		if !containsString(existing, v) {
			existing = append(existing, v)
		}
	}
	return existing
}

func unionPlain(existing []string, more []string) []string {
	for _, v := range more {
		if !containsString(existing, v) {
			existing = append(existing, v)
		}
	}
	return existing
}

func containsString[S ~[]string](list S, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
