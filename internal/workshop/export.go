package workshop

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"workshop-backend/internal/document"
)

// Markdown assembles the whole document into one markdown text, sections in
// document order.
func Markdown(doc document.Document) string {
	var sb strings.Builder
	sb.WriteString("# Requirement Document\n\n")
	if doc.Brief != "" {
		fmt.Fprintf(&sb, "> %s\n\n", doc.Brief)
	}
	for _, sec := range doc.Sections {
		fmt.Fprintf(&sb, "## %s\n\n", sec.Title)
		if sec.Content == "" {
			sb.WriteString("_Not written yet._\n\n")
			continue
		}
		sb.WriteString(strings.TrimRight(sec.Content, "\n"))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// ExportHTML renders the assembled document to HTML.
func ExportHTML(doc document.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(doc)), &buf); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return buf.Bytes(), nil
}
