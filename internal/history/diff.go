package history

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// SectionDelta is the line-count change for one section between snapshots.
type SectionDelta struct {
	Title   string `json:"title"`
	Added   int    `json:"added"`
	Removed int    `json:"removed"`
}

// Delta is a coarse line-count summary between two snapshots. It is not a
// structural diff; it answers "N lines changed" style questions.
type Delta struct {
	Added    int            `json:"added"`
	Removed  int            `json:"removed"`
	Sections []SectionDelta `json:"sections"`
}

// DiffStats computes per-section added/removed line counts from snapshot a
// to snapshot b.
func DiffStats(a, b Snapshot) Delta {
	dmp := diffmatchpatch.New()

	oldContent := make(map[string]string, len(a.Document.Sections))
	for _, sec := range a.Document.Sections {
		oldContent[sec.Title] = sec.Content
	}

	var delta Delta
	seen := make(map[string]struct{}, len(b.Document.Sections))
	for _, sec := range b.Document.Sections {
		seen[sec.Title] = struct{}{}
		added, removed := lineDelta(dmp, oldContent[sec.Title], sec.Content)
		if added == 0 && removed == 0 {
			continue
		}
		delta.Added += added
		delta.Removed += removed
		delta.Sections = append(delta.Sections, SectionDelta{Title: sec.Title, Added: added, Removed: removed})
	}
	// Sections present only in the older snapshot count as fully removed.
	for _, sec := range a.Document.Sections {
		if _, ok := seen[sec.Title]; ok {
			continue
		}
		removed := lineCount(sec.Content)
		if removed == 0 {
			continue
		}
		delta.Removed += removed
		delta.Sections = append(delta.Sections, SectionDelta{Title: sec.Title, Removed: removed})
	}
	return delta
}

func lineDelta(dmp *diffmatchpatch.DiffMatchPatch, old, new string) (added, removed int) {
	if old == new {
		return 0, 0
	}
	c1, c2, lines := dmp.DiffLinesToChars(old, new)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(c1, c2, false), lines)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += lineCount(d.Text)
		case diffmatchpatch.DiffDelete:
			removed += lineCount(d.Text)
		}
	}
	return added, removed
}

func lineCount(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
