package document_test

import (
	"errors"
	"testing"

	"workshop-backend/internal/document"
)

func TestDefaultTemplateIsValid(t *testing.T) {
	tmpl := document.Default()
	if len(tmpl.Sections) == 0 {
		t.Fatalf("default template has no sections")
	}
	arch, ok := tmpl.Spec("Tech Architecture")
	if !ok {
		t.Fatalf("default template missing Tech Architecture")
	}
	if len(arch.Requires) != 1 || arch.Requires[0] != "Core Features" {
		t.Fatalf("unexpected architecture dependencies: %v", arch.Requires)
	}
	if ux, ok := tmpl.Spec("UX Design"); !ok || len(ux.Requires) != 0 {
		t.Fatalf("UX Design should exist with no prerequisites")
	}
}

func TestNewTemplateRejectsDuplicates(t *testing.T) {
	_, err := document.NewTemplate([]document.SectionSpec{
		{Title: "Features", Generatable: true},
		{Title: "Features", Generatable: true},
	})
	if !errors.Is(err, document.ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate, got %v", err)
	}
}

func TestNewTemplateRejectsForwardDependency(t *testing.T) {
	_, err := document.NewTemplate([]document.SectionSpec{
		{Title: "Architecture", Generatable: true, Requires: []string{"Features"}},
		{Title: "Features", Generatable: true},
	})
	if !errors.Is(err, document.ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate for forward reference, got %v", err)
	}
}

func TestParseTemplateYAML(t *testing.T) {
	raw := []byte(`
sections:
  - title: A
    generatable: true
  - title: B
    generatable: true
    requires: [A]
`)
	tmpl, err := document.ParseTemplate(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	doc := tmpl.NewDocument("hello")
	if doc.Brief != "hello" || len(doc.Sections) != 2 {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.Sections[0].Status != document.StatusDraft {
		t.Fatalf("new sections should start as draft")
	}
}
