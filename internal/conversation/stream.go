package conversation

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// abortedReply replaces the accumulated content when a turn is aborted, so
// the log never ends with a permanently streaming message.
const abortedReply = "Sorry, I could not finish that reply. Please try again."

// Stream is the ordered message log with streaming-append semantics for the
// single in-flight assistant reply. The workflow is turn based: a new user
// message cannot be posted while a reply is still streaming.
type Stream struct {
	mu       sync.Mutex
	messages []Message
	openID   string
}

// NewStream constructs an empty message log.
func NewStream() *Stream {
	return &Stream{}
}

// Messages returns a copy of the log in order.
func (s *Stream) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// PostUser appends an immutable user message and returns its id.
func (s *Stream) PostUser(content string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openID != "" {
		return "", ErrStreamBusy
	}
	return s.append(RoleUser, content, false), nil
}

// PostSystem appends an immutable system message and returns its id.
func (s *Stream) PostSystem(content string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openID != "" {
		return "", ErrStreamBusy
	}
	return s.append(RoleSystem, content, false), nil
}

// BeginAssistantTurn opens the streaming assistant message and returns its id.
func (s *Stream) BeginAssistantTurn() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openID != "" {
		return "", ErrTurnAlreadyOpen
	}
	id := s.append(RoleAssistant, "", true)
	s.openID = id
	return id, nil
}

// AppendToken concatenates a fragment onto the open streaming message.
// Token order is the caller's responsibility; fragments are appended in call
// order and never reordered.
func (s *Stream) AppendToken(id, fragment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.open(id)
	if msg == nil {
		return ErrNotStreaming
	}
	msg.Content += fragment
	return nil
}

// Finalize closes the open turn keeping the accumulated content.
func (s *Stream) Finalize(id string) error {
	return s.close(id, "", false)
}

// FinalizeWith closes the open turn replacing the accumulated content
// wholesale with a definitive reply.
func (s *Stream) FinalizeWith(id, content string) error {
	return s.close(id, content, true)
}

// Abort closes the open turn with a fixed fallback message. Used when reply
// generation fails mid-stream.
func (s *Stream) Abort(id string) error {
	return s.close(id, abortedReply, true)
}

// OpenTurn returns the id of the streaming assistant message, if one exists.
func (s *Stream) OpenTurn() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openID, s.openID != ""
}

func (s *Stream) close(id, content string, replace bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.open(id)
	if msg == nil {
		return ErrNotStreaming
	}
	if replace {
		msg.Content = content
	}
	msg.Streaming = false
	s.openID = ""
	return nil
}

// open returns the streaming message iff id names it. Caller holds the lock.
func (s *Stream) open(id string) *Message {
	if id == "" || id != s.openID {
		return nil
	}
	for i := range s.messages {
		if s.messages[i].ID == id {
			return &s.messages[i]
		}
	}
	return nil
}

func (s *Stream) append(role Role, content string, streaming bool) string {
	msg := Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Streaming: streaming,
		CreatedAt: time.Now().UTC(),
	}
	s.messages = append(s.messages, msg)
	return msg.ID
}
