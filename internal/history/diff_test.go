package history_test

import (
	"testing"

	"workshop-backend/internal/document"
	"workshop-backend/internal/history"
)

func snapWith(sections ...document.Section) history.Snapshot {
	return history.Snapshot{Document: document.Document{Sections: sections}}
}

func TestDiffStatsAddedLines(t *testing.T) {
	a := snapWith(document.Section{Title: "Features", Content: ""})
	b := snapWith(document.Section{Title: "Features", Content: "- login\n- signup\n"})

	delta := history.DiffStats(a, b)
	if delta.Added != 2 || delta.Removed != 0 {
		t.Fatalf("expected 2 added 0 removed, got +%d -%d", delta.Added, delta.Removed)
	}
	if len(delta.Sections) != 1 || delta.Sections[0].Title != "Features" {
		t.Fatalf("unexpected section deltas: %+v", delta.Sections)
	}
}

func TestDiffStatsChangedLines(t *testing.T) {
	a := snapWith(document.Section{Title: "Features", Content: "- login\n- signup\n- export\n"})
	b := snapWith(document.Section{Title: "Features", Content: "- login\n- sso signup\n- export\n"})

	delta := history.DiffStats(a, b)
	if delta.Added != 1 || delta.Removed != 1 {
		t.Fatalf("expected one line replaced, got +%d -%d", delta.Added, delta.Removed)
	}
}

func TestDiffStatsUnchangedSectionsOmitted(t *testing.T) {
	a := snapWith(
		document.Section{Title: "Features", Content: "same\n"},
		document.Section{Title: "UX Design", Content: "old\n"},
	)
	b := snapWith(
		document.Section{Title: "Features", Content: "same\n"},
		document.Section{Title: "UX Design", Content: "new\n"},
	)

	delta := history.DiffStats(a, b)
	if len(delta.Sections) != 1 || delta.Sections[0].Title != "UX Design" {
		t.Fatalf("unchanged sections should not appear: %+v", delta.Sections)
	}
}

func TestDiffStatsContentWithoutTrailingNewline(t *testing.T) {
	a := snapWith(document.Section{Title: "Features", Content: ""})
	b := snapWith(document.Section{Title: "Features", Content: "single line"})

	delta := history.DiffStats(a, b)
	if delta.Added != 1 {
		t.Fatalf("expected 1 added line, got %d", delta.Added)
	}
}
