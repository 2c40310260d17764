package llm

import "context"

// SectionRequest carries everything a provider needs to draft one section.
// Context holds the content of completed prerequisite sections keyed by
// title, e.g. the architecture prompt is seeded with the features content.
type SectionRequest struct {
	SectionTitle string
	Prompt       string
	Brief        string
	Context      map[string]string
}

// Turn is one message of the conversation handed to the reply provider.
type Turn struct {
	Role    string
	Content string
}

// ContentClient produces section drafts. Calls may be slow and may fail; the
// orchestrator owns timeouts and cancellation through ctx.
type ContentClient interface {
	GenerateSection(ctx context.Context, req SectionRequest) (string, error)
}

// ReplyClient produces conversational replies, delivering incremental
// fragments through onToken as they arrive and returning the full reply.
type ReplyClient interface {
	StreamReply(ctx context.Context, turns []Turn, onToken func(fragment string)) (string, error)
}
