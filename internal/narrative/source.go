// Package narrative renders catalogs and scenario sets into Markdown documents
// through text/template. Templates come either from the embedded defaults or
// from files supplied by the user.
package narrative

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/papapumpkin/usecase/internal/source"
)

// Names of the embedded default templates.
const (
	CatalogTemplate     = "catalog.md.tmpl"
	ScenarioSetTemplate = "scenario_set.md.tmpl"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Sentinel errors for template selection.
var (
	// ErrInvalidTemplateSpec indicates a template override is not a "catalog|scenario-set" pair.
	ErrInvalidTemplateSpec = errors.New(`template specification must be "<catalog template>|<scenario set template>"`)
	// ErrTemplateNotFound indicates a template override names a missing file.
	ErrTemplateNotFound = errors.New("template file not found")
	// ErrUnknownTemplate indicates an embedded template name that does not exist.
	ErrUnknownTemplate = errors.New("unknown embedded template")
)

// Source is where one template's text comes from: an embedded default or a
// file on disk.
type Source struct {
	name string
	path string
}

// Embedded returns a Source for the built-in template called name.
func Embedded(name string) Source {
	return Source{name: name}
}

// File returns a Source reading the template at path.
func File(path string) Source {
	return Source{path: path}
}

// IsEmbedded reports whether the source is a built-in template.
func (s Source) IsEmbedded() bool {
	return s.path == ""
}

// String returns the file path, or "embedded:<name>".
func (s Source) String() string {
	if s.IsEmbedded() {
		return "embedded:" + s.name
	}
	return s.path
}

// Load returns the template text.
func (s Source) Load() (string, error) {
	if s.IsEmbedded() {
		data, err := DefaultTemplate(s.name)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("narrative: reading template %s: %w", s.path, err)
	}
	return string(data), nil
}

// DefaultTemplate returns the text of an embedded template.
func DefaultTemplate(name string) ([]byte, error) {
	data, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	return data, nil
}

// TemplateSet pairs the catalog template with the scenario-set template.
type TemplateSet struct {
	Catalog     Source
	ScenarioSet Source
}

// DefaultTemplates selects both embedded templates.
func DefaultTemplates() TemplateSet {
	return TemplateSet{
		Catalog:     Embedded(CatalogTemplate),
		ScenarioSet: Embedded(ScenarioSetTemplate),
	}
}

// ParseTemplateSpec parses a "catalog.tmpl|scenario-set.tmpl" override.
// Surrounding quotes and spaces are trimmed, exactly two non-blank paths are
// required, and each must name an existing file (allowing for differently
// normalized Unicode names). An empty spec selects the defaults.
func ParseTemplateSpec(spec string) (TemplateSet, error) {
	spec = strings.Trim(spec, `" `)
	if spec == "" {
		return DefaultTemplates(), nil
	}

	parts := strings.Split(spec, "|")
	if len(parts) != 2 {
		return TemplateSet{}, ErrInvalidTemplateSpec
	}
	paths := make([]string, 2)
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return TemplateSet{}, ErrInvalidTemplateSpec
		}
		found, ok := source.NormalizedPath(p)
		if !ok {
			return TemplateSet{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, p)
		}
		paths[i] = found
	}
	return TemplateSet{Catalog: File(paths[0]), ScenarioSet: File(paths[1])}, nil
}
