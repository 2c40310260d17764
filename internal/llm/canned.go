package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Canned is a deterministic offline provider used in dev and tests. It never
// calls the network and produces the same output for the same input.
type Canned struct{}

// GenerateSection returns a small markdown draft derived from the request.
func (Canned) GenerateSection(ctx context.Context, req SectionRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Draft for %s.\n\n", req.SectionTitle)
	if req.Brief != "" {
		fmt.Fprintf(&sb, "Based on the brief: %s\n\n", req.Brief)
	}
	if len(req.Context) > 0 {
		titles := make([]string, 0, len(req.Context))
		for title := range req.Context {
			titles = append(titles, title)
		}
		sort.Strings(titles)
		fmt.Fprintf(&sb, "Builds on: %s\n\n", strings.Join(titles, ", "))
	}
	sb.WriteString("- point one\n- point two\n- point three\n")
	return sb.String(), nil
}

// StreamReply streams a fixed-form reply word by word, then returns it whole.
func (Canned) StreamReply(ctx context.Context, turns []Turn, onToken func(fragment string)) (string, error) {
	last := ""
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == "user" {
			last = turns[i].Content
			break
		}
	}
	reply := fmt.Sprintf("Noted: %s. I updated my understanding of the requirements.", strings.TrimSpace(last))

	words := strings.SplitAfter(reply, " ")
	for _, w := range words {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if onToken != nil {
			onToken(w)
		}
	}
	return reply, nil
}
