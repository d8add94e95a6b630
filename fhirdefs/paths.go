package fhirdefs

import "strings"

// SplitPath splits a FHIR element path into segments.
// Example: "Patient.name.family" -> ["Patient", "name", "family"]
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// JoinPath joins path segments with a dot.
func JoinPath(segments ...string) string {
	return strings.Join(segments, ".")
}

// LastSegment returns the last segment of a path.
func LastSegment(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

// ParentPath returns the parent path.
// Example: "Patient.name.family" -> "Patient.name"
func ParentPath(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

// RootSegment returns the first segment of a path.
// Example: "ValueSet.extensible" -> "ValueSet"
func RootSegment(path string) string {
	idx := strings.Index(path, ".")
	if idx < 0 {
		return path
	}
	return path[:idx]
}

// IsDescendant reports whether child is one or more dot-segments below
// parent.
func IsDescendant(child, parent string) bool {
	return strings.HasPrefix(child, parent+".")
}

// IsDirectChild reports whether child is exactly one dot-segment below
// parent.
func IsDirectChild(child, parent string) bool {
	if !IsDescendant(child, parent) {
		return false
	}
	return !strings.Contains(child[len(parent)+1:], ".")
}
