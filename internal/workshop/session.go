package workshop

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"workshop-backend/internal/conversation"
	"workshop-backend/internal/document"
	"workshop-backend/internal/generation"
	"workshop-backend/internal/history"
	"workshop-backend/internal/llm"
	"workshop-backend/internal/shared/metrics"
	"workshop-backend/internal/shared/telemetry"
)

const defaultReplyTimeout = 120 * time.Second

// Config holds everything a session needs. Template, Content, and Reply are
// required; the rest default sensibly.
type Config struct {
	Template          document.Template
	Brief             string
	Content           llm.ContentClient
	Reply             llm.ReplyClient
	GenerationTimeout time.Duration
	ReplyTimeout      time.Duration
	HistoryKeep       int
	Archive           history.Archive
}

// Session owns one requirement document, its conversation channel, and its
// version history. It is the only entry point callers use; there is no
// process-wide state.
type Session struct {
	ID        string
	CreatedAt time.Time

	tmpl   document.Template
	store  *document.Store
	log    *history.Log
	stream *conversation.Stream
	orch   *generation.Orchestrator
	reply  llm.ReplyClient
	events *broadcaster

	replyTimeout time.Duration

	turnMu     sync.Mutex
	turnID     string
	turnCancel context.CancelFunc
}

// NewSession builds a session, commits the initial snapshot, and wires the
// generation orchestrator.
func NewSession(cfg Config) *Session {
	s := &Session{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		tmpl:         cfg.Template,
		store:        document.NewStore(cfg.Template, cfg.Brief),
		log:          history.NewLog(cfg.HistoryKeep),
		stream:       conversation.NewStream(),
		reply:        cfg.Reply,
		events:       newBroadcaster(),
		replyTimeout: cfg.ReplyTimeout,
	}
	if s.replyTimeout <= 0 {
		s.replyTimeout = defaultReplyTimeout
	}
	if cfg.Archive != nil {
		s.log.UseArchive(cfg.Archive, s.ID)
	}
	s.log.Commit(s.store.Document(), history.CauseInitialState)
	s.orch = generation.NewOrchestrator(cfg.Template, s.store, s.log, cfg.Content, cfg.GenerationTimeout, s.onGeneration)
	return s
}

// Document returns a copy of the current document.
func (s *Session) Document() document.Document {
	return s.store.Document()
}

// Messages returns the conversation log in order.
func (s *Session) Messages() []conversation.Message {
	return s.stream.Messages()
}

// History returns snapshots, most recent first.
func (s *Session) History(limit int) []history.Snapshot {
	return s.log.List(limit)
}

// Diff returns line-count deltas between two retained snapshots.
func (s *Session) Diff(from, to uint64) (history.Delta, error) {
	a, err := s.log.Get(from)
	if err != nil {
		return history.Delta{}, err
	}
	b, err := s.log.Get(to)
	if err != nil {
		return history.Delta{}, err
	}
	return history.DiffStats(a, b), nil
}

// Subscribe registers an event listener. The returned cancel must be called
// when the listener goes away.
func (s *Session) Subscribe() (<-chan Event, func()) {
	return s.events.subscribe()
}

// SetBrief updates the freeform brief that seeds generation prompts.
func (s *Session) SetBrief(brief string) {
	s.store.SetBrief(strings.TrimSpace(brief))
	snap := s.log.Commit(s.store.Document(), history.CauseManualEdit)
	s.events.publish(Event{Type: EventSnapshotCommitted, Seq: snap.Seq})
}

// EditSection applies a manual edit and commits a snapshot. Edits to a
// generating section are rejected with document.ErrSectionLocked.
func (s *Session) EditSection(title, content string) error {
	if err := s.store.SetContent(title, content); err != nil {
		return err
	}
	snap := s.log.Commit(s.store.Document(), history.CauseManualEdit)
	s.events.publish(Event{Type: EventSectionUpdated, Section: title})
	s.events.publish(Event{Type: EventSnapshotCommitted, Seq: snap.Seq})
	return nil
}

// ConfirmSection promotes a reviewed section to completed, unblocking the
// sections that depend on it.
func (s *Session) ConfirmSection(title string) error {
	if err := s.store.Confirm(title); err != nil {
		return err
	}
	snap := s.log.Commit(s.store.Document(), history.CauseManualEdit)
	s.events.publish(Event{Type: EventSectionUpdated, Section: title})
	s.events.publish(Event{Type: EventSnapshotCommitted, Seq: snap.Seq})
	return nil
}

// Generate starts an asynchronous generation task for the section. The
// snapshot for a successful result is committed by the orchestrator.
func (s *Session) Generate(title string) (*generation.Task, error) {
	task, err := s.orch.Request(title)
	if err != nil {
		return nil, err
	}
	s.events.publish(Event{Type: EventGenerationStarted, Section: title})
	return task, nil
}

// CancelGeneration aborts the running task for a section.
func (s *Session) CancelGeneration(title string) error {
	return s.orch.Cancel(title)
}

// GeneratingTask returns the in-flight task for a section, if any.
func (s *Session) GeneratingTask(title string) (*generation.Task, bool) {
	return s.orch.Active(title)
}

// SendMessage appends the user message, opens the assistant turn, and starts
// streaming the reply. It returns the user and assistant message ids.
func (s *Session) SendMessage(content string) (string, string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", "", ErrInvalidInput
	}

	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	userID, err := s.stream.PostUser(content)
	if err != nil {
		return "", "", err
	}
	turnID, err := s.stream.BeginAssistantTurn()
	if err != nil {
		return "", "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.replyTimeout)
	s.turnID = turnID
	s.turnCancel = cancel

	metrics.IncTurnStarted()
	s.events.publish(Event{Type: EventMessagePosted, MessageID: userID})

	go s.runTurn(ctx, cancel, turnID)
	return userID, turnID, nil
}

// CancelTurn aborts the open assistant turn, installing the fallback reply.
func (s *Session) CancelTurn() error {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()
	if s.turnID == "" {
		return ErrNoOpenTurn
	}
	turnID := s.turnID
	s.turnCancel()
	_ = s.stream.Abort(turnID)
	s.turnID = ""
	s.turnCancel = nil

	metrics.IncTurnAborted()
	s.events.publish(Event{Type: EventTurnFinished, MessageID: turnID, State: "aborted"})
	return nil
}

func (s *Session) runTurn(ctx context.Context, cancel context.CancelFunc, turnID string) {
	defer cancel()

	final, err := s.reply.StreamReply(ctx, s.replyContext(turnID), func(fragment string) {
		if s.stream.AppendToken(turnID, fragment) == nil {
			s.events.publish(Event{Type: EventAssistantToken, MessageID: turnID, Token: fragment})
		}
	})

	s.turnMu.Lock()
	defer s.turnMu.Unlock()
	if s.turnID != turnID {
		// The turn was cancelled while we streamed; the late result is gone.
		return
	}
	s.turnID = ""
	s.turnCancel = nil

	if err != nil {
		_ = s.stream.Abort(turnID)
		metrics.IncTurnAborted()
		telemetry.Error("turn.failed", map[string]any{
			"session_id": s.ID,
			"message_id": turnID,
			"error":      err.Error(),
		})
		s.events.publish(Event{Type: EventTurnFinished, MessageID: turnID, State: "aborted"})
		return
	}

	if final != "" {
		_ = s.stream.FinalizeWith(turnID, final)
	} else {
		_ = s.stream.Finalize(turnID)
	}
	s.events.publish(Event{Type: EventTurnFinished, MessageID: turnID, State: "completed"})
}

// replyContext converts the finalized log into provider turns, skipping the
// message currently being streamed.
func (s *Session) replyContext(turnID string) []llm.Turn {
	messages := s.stream.Messages()
	turns := make([]llm.Turn, 0, len(messages))
	for _, msg := range messages {
		if msg.ID == turnID {
			continue
		}
		turns = append(turns, llm.Turn{Role: string(msg.Role), Content: msg.Content})
	}
	return turns
}

func (s *Session) onGeneration(task *generation.Task, state generation.TaskState) {
	ev := Event{Type: EventGenerationFinished, Section: task.Section, State: string(state)}
	s.events.publish(ev)
	if state == generation.TaskSucceeded {
		s.events.publish(Event{Type: EventSectionUpdated, Section: task.Section})
		if snap, ok := s.log.Latest(); ok {
			s.events.publish(Event{Type: EventSnapshotCommitted, Seq: snap.Seq})
		}
	}
}
