package workshop

import (
	"sort"
	"strings"
	"sync"
	"time"

	"workshop-backend/internal/document"
	"workshop-backend/internal/history"
	"workshop-backend/internal/llm"
)

// Manager owns the live sessions for the HTTP surface. Each session is
// independent; nothing is shared across sessions except the providers and
// the snapshot archive.
type Manager struct {
	template          document.Template
	content           llm.ContentClient
	reply             llm.ReplyClient
	archive           history.Archive
	generationTimeout time.Duration
	replyTimeout      time.Duration
	historyKeep       int

	mu       sync.RWMutex
	sessions map[string]*Session
}

// ManagerConfig configures session defaults shared by all sessions.
type ManagerConfig struct {
	Template          document.Template
	Content           llm.ContentClient
	Reply             llm.ReplyClient
	Archive           history.Archive
	GenerationTimeout time.Duration
	ReplyTimeout      time.Duration
	HistoryKeep       int
}

// NewManager constructs a Manager.
func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{
		template:          cfg.Template,
		content:           cfg.Content,
		reply:             cfg.Reply,
		archive:           cfg.Archive,
		generationTimeout: cfg.GenerationTimeout,
		replyTimeout:      cfg.ReplyTimeout,
		historyKeep:       cfg.HistoryKeep,
		sessions:          make(map[string]*Session),
	}
}

// Create starts a new session for the given brief.
func (m *Manager) Create(brief string) *Session {
	session := NewSession(Config{
		Template:          m.template,
		Brief:             strings.TrimSpace(brief),
		Content:           m.content,
		Reply:             m.reply,
		Archive:           m.archive,
		GenerationTimeout: m.generationTimeout,
		ReplyTimeout:      m.replyTimeout,
		HistoryKeep:       m.historyKeep,
	})
	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()
	return session
}

// Get returns a session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// List returns all live sessions, newest first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		out = append(out, session)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
