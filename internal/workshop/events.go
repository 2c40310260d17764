package workshop

import "sync"

// EventType enumerates the session events pushed to subscribers.
type EventType string

const (
	EventSectionUpdated     EventType = "section_updated"
	EventGenerationStarted  EventType = "generation_started"
	EventGenerationFinished EventType = "generation_finished"
	EventSnapshotCommitted  EventType = "snapshot_committed"
	EventMessagePosted      EventType = "message_posted"
	EventAssistantToken     EventType = "assistant_token"
	EventTurnFinished       EventType = "turn_finished"
)

// Event is one notification about session state. Fields besides Type are
// populated per event kind.
type Event struct {
	Type      EventType `json:"type"`
	Section   string    `json:"section,omitempty"`
	MessageID string    `json:"messageId,omitempty"`
	Token     string    `json:"token,omitempty"`
	Seq       uint64    `json:"seq,omitempty"`
	State     string    `json:"state,omitempty"`
}

const subscriberBuffer = 64

// broadcaster fans session events out to subscribers. Publishing never
// blocks: a subscriber that falls behind loses events rather than stalling
// state transitions.
type broadcaster struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan Event)}
}

func (b *broadcaster) subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (b *broadcaster) publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		select {
		case sub <- ev:
		default:
		}
	}
}
