// Package specs provides embedded FHIR specification templates.
//
// This package embeds the base R4 Extension StructureDefinition used as
// the starting point for materialized implied extensions. Materialized
// output is always R4-shaped regardless of which release the source
// element came from.
//
// Usage:
//
//	data, err := specs.ExtensionTemplate()
//	if err != nil {
//	    return err
//	}
package specs

import (
	"embed"
	"fmt"
)

// Embedded template files
//
//go:embed r4/*.json
var r4Templates embed.FS

// Template file names in the r4 directory.
var TemplateFiles = struct {
	Extension string
}{
	Extension: "extension-template.json",
}

// ExtensionTemplate returns the base R4 Extension StructureDefinition.
func ExtensionTemplate() ([]byte, error) {
	return ReadFile(TemplateFiles.Extension)
}

// ReadFile reads a template file from the embedded r4 directory.
func ReadFile(filename string) ([]byte, error) {
	path := "r4/" + filename
	data, err := r4Templates.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// ListFiles returns the list of embedded template files.
func ListFiles() ([]string, error) {
	entries, err := r4Templates.ReadDir("r4")
	if err != nil {
		return nil, fmt.Errorf("failed to read template directory: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}
