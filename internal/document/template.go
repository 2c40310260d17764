package document

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed template_default.yaml
var defaultTemplateYAML []byte

// SectionSpec declares one section of a document template.
type SectionSpec struct {
	Title       string   `yaml:"title"`
	Generatable bool     `yaml:"generatable"`
	Prompt      string   `yaml:"prompt"`
	Requires    []string `yaml:"requires"`
}

// Template is the closed set of sections a document may contain, with the
// dependency table used to gate generation. Templates are validated at
// construction so unknown titles cannot appear at runtime.
type Template struct {
	Sections []SectionSpec
}

type templateFile struct {
	Sections []SectionSpec `yaml:"sections"`
}

// ParseTemplate decodes and validates a YAML template.
func ParseTemplate(raw []byte) (Template, error) {
	var file templateFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Template{}, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	return NewTemplate(file.Sections)
}

// LoadTemplateFile reads and parses a template from disk.
func LoadTemplateFile(path string) (Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("read template: %w", err)
	}
	return ParseTemplate(raw)
}

// NewTemplate validates the section specs: titles must be unique and every
// dependency must reference an earlier section (order is meaningful, so a
// section can only depend on what precedes it).
func NewTemplate(specs []SectionSpec) (Template, error) {
	if len(specs) == 0 {
		return Template{}, fmt.Errorf("%w: no sections", ErrInvalidTemplate)
	}
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if spec.Title == "" {
			return Template{}, fmt.Errorf("%w: empty section title", ErrInvalidTemplate)
		}
		if _, dup := seen[spec.Title]; dup {
			return Template{}, fmt.Errorf("%w: duplicate section %q", ErrInvalidTemplate, spec.Title)
		}
		for _, req := range spec.Requires {
			if _, ok := seen[req]; !ok {
				return Template{}, fmt.Errorf("%w: section %q requires unknown or later section %q", ErrInvalidTemplate, spec.Title, req)
			}
		}
		if !spec.Generatable && len(spec.Requires) > 0 {
			return Template{}, fmt.Errorf("%w: section %q has dependencies but is not generatable", ErrInvalidTemplate, spec.Title)
		}
		seen[spec.Title] = struct{}{}
	}
	out := Template{Sections: make([]SectionSpec, len(specs))}
	copy(out.Sections, specs)
	return out, nil
}

// Default returns the built-in requirement-document template.
func Default() Template {
	tmpl, err := ParseTemplate(defaultTemplateYAML)
	if err != nil {
		// The embedded template is covered by tests; failing here means the
		// binary itself is broken.
		panic(err)
	}
	return tmpl
}

// Spec returns the spec for a title, if the template defines it.
func (t Template) Spec(title string) (SectionSpec, bool) {
	for _, spec := range t.Sections {
		if spec.Title == title {
			return spec, true
		}
	}
	return SectionSpec{}, false
}

// NewDocument instantiates an empty document from the template.
func (t Template) NewDocument(brief string) Document {
	doc := Document{Brief: brief, Sections: make([]Section, 0, len(t.Sections))}
	for _, spec := range t.Sections {
		doc.Sections = append(doc.Sections, Section{
			Title:       spec.Title,
			Status:      StatusDraft,
			Generatable: spec.Generatable,
			GenState:    GenerationIdle,
		})
	}
	return doc
}
