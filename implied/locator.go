// Package implied materializes implied extensions: current-release
// extension definitions synthesized for elements that only exist in a
// FHIR release other than the one the active project targets.
package implied

import (
	"regexp"
	"strings"

	fsh "github.com/gofhir/shorthand"
	"github.com/gofhir/shorthand/fhirdefs"
)

// impliedExtensionRegex matches cross-release extension URLs such as
// http://hl7.org/fhir/3.0/StructureDefinition/extension-Patient.animal.species.
var impliedExtensionRegex = regexp.MustCompile(
	`^http://hl7\.org/fhir/(1\.0|3\.0|4\.0|5\.0)/StructureDefinition/extension-(([^./]+)\..+)$`)

// Locator is the decomposition of an implied-extension URL into version
// and element coordinates.
type Locator struct {
	// URL is the full implied-extension URL.
	URL string

	// Release is the foreign FHIR release named by the URL's version token.
	Release fsh.FHIRRelease

	// ElementID is the full dotted element id (e.g. "Patient.animal.species").
	ElementID string

	// RootType is the element id's leading segment (e.g. "Patient").
	RootType string
}

// Package returns the core package identifier of the foreign release.
func (l *Locator) Package() string {
	return l.Release.CorePackage()
}

// ParseLocator decomposes an implied-extension URL. It returns false when
// the URL does not match the implied-extension pattern.
func ParseLocator(url string) (*Locator, bool) {
	match := impliedExtensionRegex.FindStringSubmatch(url)
	if match == nil {
		return nil, false
	}
	release, ok := fsh.ReleaseForToken(match[1])
	if !ok {
		return nil, false
	}
	return &Locator{
		URL:       url,
		Release:   release,
		ElementID: match[2],
		RootType:  match[3],
	}, true
}

// IsImpliedExtension reports whether url names an implied extension.
func IsImpliedExtension(url string) bool {
	_, ok := ParseLocator(url)
	return ok
}

// sanitizeName converts an element id into a computable extension name:
// non-alphanumeric characters are removed and the letter following each
// removed run is upper-cased (e.g. "ValueSet.extensible" -> "ValueSetExtensible").
func sanitizeName(elementID string) string {
	var sb strings.Builder
	sb.Grow(len(elementID))
	boundary := true
	for _, r := range elementID {
		switch {
		case r >= 'a' && r <= 'z':
			if boundary {
				sb.WriteRune(r - ('a' - 'A'))
			} else {
				sb.WriteRune(r)
			}
			boundary = false
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			sb.WriteRune(r)
			boundary = false
		default:
			boundary = true
		}
	}
	return sb.String()
}

// visited is the per-branch set of type URLs already expanded along one
// root-to-leaf path. It is cloned at every fan-out so sibling branches
// never share state.
type visited []string

func (v visited) has(url string) bool {
	for _, seen := range v {
		if seen == url {
			return true
		}
	}
	return false
}

// with returns a new set containing url; the receiver is not modified.
func (v visited) with(url string) visited {
	out := make(visited, 0, len(v)+1)
	out = append(out, v...)
	return append(out, url)
}

// clone returns an independent copy for a sibling branch.
func (v visited) clone() visited {
	return append(visited(nil), v...)
}

// typeKey identifies a type definition in the visited set: its canonical
// URL when it has one, otherwise its type name.
func typeKey(sd *fhirdefs.StructureDefinition) string {
	if sd.URL != "" {
		return sd.URL
	}
	return sd.Type
}
