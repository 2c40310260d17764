package document_test

import (
	"errors"
	"testing"

	"workshop-backend/internal/document"
)

func testTemplate(t *testing.T) document.Template {
	t.Helper()
	tmpl, err := document.NewTemplate([]document.SectionSpec{
		{Title: "Overview"},
		{Title: "Features", Generatable: true, Prompt: "list features"},
		{Title: "Architecture", Generatable: true, Prompt: "design it", Requires: []string{"Features"}},
	})
	if err != nil {
		t.Fatalf("build template: %v", err)
	}
	return tmpl
}

func TestSetContentDemotesToReviewing(t *testing.T) {
	store := document.NewStore(testTemplate(t), "a todo app")

	if err := store.SetContent("Features", "- login"); err != nil {
		t.Fatalf("set content: %v", err)
	}
	sec, err := store.Section("Features")
	if err != nil {
		t.Fatalf("get section: %v", err)
	}
	if sec.Status != document.StatusReviewing {
		t.Fatalf("expected reviewing after edit, got %s", sec.Status)
	}

	// A completed section is demoted again by a later edit.
	if err := store.ApplyGenerationResult("Features", "- login\n- signup"); err != nil {
		t.Fatalf("apply result: %v", err)
	}
	if err := store.SetContent("Features", "- login only"); err != nil {
		t.Fatalf("edit completed section: %v", err)
	}
	sec, _ = store.Section("Features")
	if sec.Status != document.StatusReviewing {
		t.Fatalf("expected completed section demoted to reviewing, got %s", sec.Status)
	}
}

func TestSetContentRejectedWhileGenerating(t *testing.T) {
	store := document.NewStore(testTemplate(t), "")
	if err := store.MarkGenerating("Features"); err != nil {
		t.Fatalf("mark generating: %v", err)
	}

	err := store.SetContent("Features", "manual text")
	if !errors.Is(err, document.ErrSectionLocked) {
		t.Fatalf("expected ErrSectionLocked, got %v", err)
	}
	sec, _ := store.Section("Features")
	if sec.Content != "" {
		t.Fatalf("locked edit must not change content, got %q", sec.Content)
	}
}

func TestMarkGeneratingSingleFlight(t *testing.T) {
	store := document.NewStore(testTemplate(t), "")
	if err := store.MarkGenerating("Features"); err != nil {
		t.Fatalf("first mark: %v", err)
	}
	if err := store.MarkGenerating("Features"); !errors.Is(err, document.ErrAlreadyGenerating) {
		t.Fatalf("expected ErrAlreadyGenerating, got %v", err)
	}
	// A different section is independent.
	if err := store.MarkGenerating("Architecture"); err != nil {
		t.Fatalf("independent section mark: %v", err)
	}
}

func TestApplyGenerationResultCompletes(t *testing.T) {
	store := document.NewStore(testTemplate(t), "")
	if err := store.MarkGenerating("Features"); err != nil {
		t.Fatalf("mark generating: %v", err)
	}
	if err := store.ApplyGenerationResult("Features", "generated"); err != nil {
		t.Fatalf("apply result: %v", err)
	}
	sec, _ := store.Section("Features")
	if sec.Status != document.StatusCompleted || sec.GenState != document.GenerationIdle || sec.Content != "generated" {
		t.Fatalf("unexpected section after apply: %+v", sec)
	}
}

func TestClearGeneratingKeepsContentAndStatus(t *testing.T) {
	store := document.NewStore(testTemplate(t), "")
	if err := store.SetContent("Features", "draft text"); err != nil {
		t.Fatalf("set content: %v", err)
	}
	if err := store.MarkGenerating("Features"); err != nil {
		t.Fatalf("mark generating: %v", err)
	}
	store.ClearGenerating("Features")

	sec, _ := store.Section("Features")
	if sec.GenState != document.GenerationIdle {
		t.Fatalf("expected idle after clear, got %s", sec.GenState)
	}
	if sec.Content != "draft text" || sec.Status != document.StatusReviewing {
		t.Fatalf("clear must not touch content or status: %+v", sec)
	}
}

func TestConfirm(t *testing.T) {
	store := document.NewStore(testTemplate(t), "")
	if err := store.Confirm("Features"); !errors.Is(err, document.ErrEmptySection) {
		t.Fatalf("expected ErrEmptySection, got %v", err)
	}
	if err := store.SetContent("Features", "- login"); err != nil {
		t.Fatalf("set content: %v", err)
	}
	if err := store.Confirm("Features"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	sec, _ := store.Section("Features")
	if sec.Status != document.StatusCompleted {
		t.Fatalf("expected completed, got %s", sec.Status)
	}
}

func TestUnknownSection(t *testing.T) {
	store := document.NewStore(testTemplate(t), "")
	if err := store.SetContent("Budget", "x"); !errors.Is(err, document.ErrSectionNotFound) {
		t.Fatalf("expected ErrSectionNotFound, got %v", err)
	}
	if err := store.MarkGenerating("Budget"); !errors.Is(err, document.ErrSectionNotFound) {
		t.Fatalf("expected ErrSectionNotFound, got %v", err)
	}
	if _, err := store.Section("Budget"); !errors.Is(err, document.ErrSectionNotFound) {
		t.Fatalf("expected ErrSectionNotFound, got %v", err)
	}
}

func TestDocumentCloneIsDeep(t *testing.T) {
	store := document.NewStore(testTemplate(t), "brief")
	doc := store.Document()
	doc.Sections[0].Content = "mutated"
	doc.Brief = "mutated"

	fresh := store.Document()
	if fresh.Sections[0].Content != "" || fresh.Brief != "brief" {
		t.Fatalf("store state leaked through clone: %+v", fresh)
	}
}
