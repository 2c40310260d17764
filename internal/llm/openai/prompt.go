package openai

import (
	"fmt"
	"sort"
	"strings"

	"workshop-backend/internal/llm"
)

const sectionSystemPrompt = `You are a product requirements writer. You draft one named section of a requirement document at a time. Respond with the section body only, in markdown, without repeating the section title as a heading.`

const replySystemPrompt = `You are the requirements workshop assistant. You help the user refine a one-line product brief into a structured requirement document. Answer briefly and concretely.`

func buildSectionMessages(req llm.SectionRequest) []chatMessage {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Section to write: %s\n", req.SectionTitle)
	if req.Brief != "" {
		fmt.Fprintf(&sb, "Product brief: %s\n", req.Brief)
	}
	titles := make([]string, 0, len(req.Context))
	for title := range req.Context {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	for _, title := range titles {
		fmt.Fprintf(&sb, "\nCompleted section %q for reference:\n%s\n", title, req.Context[title])
	}
	if req.Prompt != "" {
		fmt.Fprintf(&sb, "\nInstructions: %s\n", req.Prompt)
	}
	return []chatMessage{
		{Role: "system", Content: sectionSystemPrompt},
		{Role: "user", Content: sb.String()},
	}
}

func buildReplyMessages(turns []llm.Turn) []chatMessage {
	messages := make([]chatMessage, 0, len(turns)+1)
	messages = append(messages, chatMessage{Role: "system", Content: replySystemPrompt})
	for _, turn := range turns {
		role := turn.Role
		switch role {
		case "user", "assistant", "system":
		default:
			role = "user"
		}
		messages = append(messages, chatMessage{Role: role, Content: turn.Content})
	}
	return messages
}
