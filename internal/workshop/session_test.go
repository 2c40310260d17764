package workshop

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"workshop-backend/internal/conversation"
	"workshop-backend/internal/document"
	"workshop-backend/internal/generation"
	"workshop-backend/internal/history"
	"workshop-backend/internal/llm"
)

type fakeContent struct {
	gate   chan struct{}
	result string
	err    error
}

func (f *fakeContent) GenerateSection(ctx context.Context, req llm.SectionRequest) (string, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	if f.result != "" {
		return f.result, nil
	}
	return "generated " + req.SectionTitle, nil
}

type fakeReply struct {
	gate   chan struct{}
	tokens []string
	final  string
}

func (f *fakeReply) StreamReply(ctx context.Context, turns []llm.Turn, onToken func(string)) (string, error) {
	for _, tok := range f.tokens {
		if onToken != nil {
			onToken(tok)
		}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.final != "" {
		return f.final, nil
	}
	return strings.Join(f.tokens, ""), nil
}

func newTestSession(t *testing.T, content llm.ContentClient, reply llm.ReplyClient) *Session {
	t.Helper()
	if content == nil {
		content = &fakeContent{}
	}
	if reply == nil {
		reply = &fakeReply{tokens: []string{"ok"}}
	}
	return NewSession(Config{
		Template: document.Default(),
		Brief:    "a todo app",
		Content:  content,
		Reply:    reply,
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not reached in time")
}

func TestNewSessionCommitsInitialSnapshot(t *testing.T) {
	s := newTestSession(t, nil, nil)

	snaps := s.History(0)
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}
	if snaps[0].Cause != history.CauseInitialState {
		t.Fatalf("expected initial_state cause, got %s", snaps[0].Cause)
	}
	if snaps[0].Document.Brief != "a todo app" {
		t.Fatalf("unexpected brief: %q", snaps[0].Document.Brief)
	}
}

func TestEditSectionDemotesAndCommits(t *testing.T) {
	s := newTestSession(t, nil, nil)

	if err := s.EditSection("Core Features", "- login\n- lists\n"); err != nil {
		t.Fatalf("EditSection: %v", err)
	}
	sec, ok := s.Document().Section("Core Features")
	if !ok {
		t.Fatalf("section missing")
	}
	if sec.Status != document.StatusReviewing {
		t.Fatalf("expected reviewing, got %s", sec.Status)
	}
	if len(s.History(0)) != 2 {
		t.Fatalf("expected edit to commit a snapshot")
	}

	if err := s.EditSection("Nope", "x"); !errors.Is(err, document.ErrSectionNotFound) {
		t.Fatalf("expected ErrSectionNotFound, got %v", err)
	}
}

func TestConfirmSectionPromotesToCompleted(t *testing.T) {
	s := newTestSession(t, nil, nil)

	if err := s.ConfirmSection("Core Features"); !errors.Is(err, document.ErrEmptySection) {
		t.Fatalf("expected ErrEmptySection, got %v", err)
	}
	if err := s.EditSection("Core Features", "- login\n"); err != nil {
		t.Fatalf("EditSection: %v", err)
	}
	if err := s.ConfirmSection("Core Features"); err != nil {
		t.Fatalf("ConfirmSection: %v", err)
	}
	sec, _ := s.Document().Section("Core Features")
	if sec.Status != document.StatusCompleted {
		t.Fatalf("expected completed, got %s", sec.Status)
	}
}

func TestGenerateLocksSectionUntilDone(t *testing.T) {
	content := &fakeContent{gate: make(chan struct{}), result: "## features\n"}
	s := newTestSession(t, content, nil)

	task, err := s.Generate("Core Features")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if err := s.EditSection("Core Features", "manual"); !errors.Is(err, document.ErrSectionLocked) {
		t.Fatalf("expected ErrSectionLocked while generating, got %v", err)
	}
	if _, ok := s.GeneratingTask("Core Features"); !ok {
		t.Fatalf("expected an active task")
	}

	close(content.gate)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := task.Wait(ctx); err != nil {
		t.Fatalf("task failed: %v", err)
	}

	sec, _ := s.Document().Section("Core Features")
	if sec.Content != "## features\n" {
		t.Fatalf("unexpected content: %q", sec.Content)
	}
	if sec.Status != document.StatusCompleted {
		t.Fatalf("expected completed after generation, got %s", sec.Status)
	}

	snaps := s.History(1)
	if len(snaps) != 1 || snaps[0].Cause != history.CauseGenerationCompleted {
		t.Fatalf("expected a generation_completed snapshot")
	}
}

func TestGenerateBlockedByDependencies(t *testing.T) {
	s := newTestSession(t, nil, nil)

	_, err := s.Generate("Tech Architecture")
	var unmet *generation.DependencyUnmetError
	if !errors.As(err, &unmet) {
		t.Fatalf("expected DependencyUnmetError, got %v", err)
	}
	if len(unmet.Missing) != 1 || unmet.Missing[0] != "Core Features" {
		t.Fatalf("unexpected missing list: %v", unmet.Missing)
	}

	// No snapshot and no state change from the refusal.
	if len(s.History(0)) != 1 {
		t.Fatalf("refused generation must not commit a snapshot")
	}
}

func TestGenerateAfterDependencyConfirmed(t *testing.T) {
	s := newTestSession(t, &fakeContent{}, nil)

	if err := s.EditSection("Core Features", "- login\n"); err != nil {
		t.Fatalf("EditSection: %v", err)
	}
	if err := s.ConfirmSection("Core Features"); err != nil {
		t.Fatalf("ConfirmSection: %v", err)
	}

	task, err := s.Generate("Tech Architecture")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := task.Wait(ctx); err != nil {
		t.Fatalf("task failed: %v", err)
	}
	sec, _ := s.Document().Section("Tech Architecture")
	if sec.Content == "" {
		t.Fatalf("expected generated content")
	}
}

func TestSendMessageStreamsReplyInOrder(t *testing.T) {
	reply := &fakeReply{tokens: []string{"Hel", "lo ", "there"}}
	s := newTestSession(t, nil, reply)

	userID, turnID, err := s.SendMessage("please add offline mode")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if userID == "" || turnID == "" {
		t.Fatalf("expected message ids")
	}

	waitFor(t, func() bool {
		for _, msg := range s.Messages() {
			if msg.ID == turnID && !msg.Streaming {
				return true
			}
		}
		return false
	})

	messages := s.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Role != conversation.RoleUser || messages[0].Content != "please add offline mode" {
		t.Fatalf("unexpected user message: %+v", messages[0])
	}
	if messages[1].Content != "Hello there" {
		t.Fatalf("unexpected reply: %q", messages[1].Content)
	}
}

func TestSendMessageRejectedWhileStreaming(t *testing.T) {
	reply := &fakeReply{gate: make(chan struct{}), tokens: []string{"thinking"}}
	s := newTestSession(t, nil, reply)

	if _, _, err := s.SendMessage("first"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if _, _, err := s.SendMessage("second"); !errors.Is(err, conversation.ErrStreamBusy) {
		t.Fatalf("expected ErrStreamBusy, got %v", err)
	}
	close(reply.gate)
}

func TestCancelTurnInstallsFallback(t *testing.T) {
	reply := &fakeReply{gate: make(chan struct{}), tokens: []string{"partial "}}
	s := newTestSession(t, nil, reply)

	_, turnID, err := s.SendMessage("cancel me")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	waitFor(t, func() bool {
		for _, msg := range s.Messages() {
			if msg.ID == turnID && msg.Content != "" {
				return true
			}
		}
		return false
	})

	if err := s.CancelTurn(); err != nil {
		t.Fatalf("CancelTurn: %v", err)
	}
	var content string
	for _, msg := range s.Messages() {
		if msg.ID == turnID {
			content = msg.Content
			if msg.Streaming {
				t.Fatalf("aborted turn still streaming")
			}
		}
	}
	if !strings.Contains(content, "could not finish") {
		t.Fatalf("expected fallback reply, got %q", content)
	}

	if err := s.CancelTurn(); !errors.Is(err, ErrNoOpenTurn) {
		t.Fatalf("expected ErrNoOpenTurn after cancel, got %v", err)
	}

	// The provider is still blocked; a new turn must be possible anyway.
	if _, _, err := s.SendMessage("try again"); err != nil {
		t.Fatalf("SendMessage after cancel: %v", err)
	}
	close(reply.gate)
}

func TestSetBriefFeedsGenerationPrompt(t *testing.T) {
	content := &fakeContent{}
	s := newTestSession(t, content, nil)

	s.SetBrief("a habit tracker")
	if s.Document().Brief != "a habit tracker" {
		t.Fatalf("brief not updated")
	}
	if len(s.History(0)) != 2 {
		t.Fatalf("expected brief change to commit a snapshot")
	}
}

func TestDiffBetweenSnapshots(t *testing.T) {
	s := newTestSession(t, nil, nil)

	if err := s.EditSection("Core Features", "- one\n- two\n"); err != nil {
		t.Fatalf("EditSection: %v", err)
	}

	delta, err := s.Diff(1, 2)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	found := false
	for _, sec := range delta.Sections {
		if sec.Title == "Core Features" && sec.Added == 2 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 2 added lines for Core Features, got %+v", delta.Sections)
	}

	if _, err := s.Diff(1, 99); !errors.Is(err, history.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestSubscribeReceivesSectionEvents(t *testing.T) {
	s := newTestSession(t, nil, nil)

	events, cancel := s.Subscribe()
	defer cancel()

	if err := s.EditSection("Core Features", "- a\n"); err != nil {
		t.Fatalf("EditSection: %v", err)
	}

	var got []EventType
	timeout := time.After(time.Second)
	for len(got) < 2 {
		select {
		case ev := <-events:
			got = append(got, ev.Type)
		case <-timeout:
			t.Fatalf("events not delivered, got %v", got)
		}
	}
	if got[0] != EventSectionUpdated || got[1] != EventSnapshotCommitted {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestManagerCreateGetList(t *testing.T) {
	m := NewManager(ManagerConfig{
		Template: document.Default(),
		Content:  &fakeContent{},
		Reply:    &fakeReply{tokens: []string{"ok"}},
	})

	first := m.Create("first brief")
	second := m.Create("second brief")

	got, err := m.Get(first.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != first.ID {
		t.Fatalf("wrong session returned")
	}
	if _, err := m.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	sessions := m.List()
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	_ = second
}
