package history

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"workshop-backend/internal/document"
	"workshop-backend/internal/shared/metrics"
	"workshop-backend/internal/shared/telemetry"
)

const archiveTimeout = 5 * time.Second

// Log is the append-only in-memory version history for one session. Commits
// from concurrent paths (manual edits, finished generations) serialize into
// one totally ordered sequence.
type Log struct {
	mu      sync.Mutex
	nextSeq uint64
	snaps   []Snapshot

	keep      int
	archive   Archive
	sessionID string
}

// NewLog constructs a log. keep caps retained snapshots; zero means
// unbounded retention.
func NewLog(keep int) *Log {
	if keep < 0 {
		keep = 0
	}
	return &Log{nextSeq: 1, keep: keep}
}

// UseArchive mirrors every commit into an external archive, best effort.
// Archive failures are logged and never block or fail the commit.
func (l *Log) UseArchive(archive Archive, sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.archive = archive
	l.sessionID = sessionID
}

// Commit deep-copies the document, assigns the next sequence number, and
// appends. Returns the new snapshot.
func (l *Log) Commit(doc document.Document, cause Cause) Snapshot {
	l.mu.Lock()
	snap := Snapshot{
		Seq:      l.nextSeq,
		Cause:    cause,
		TakenAt:  time.Now().UTC(),
		Document: doc.Clone(),
	}
	l.nextSeq++
	l.snaps = append(l.snaps, snap)
	if l.keep > 0 && len(l.snaps) > l.keep {
		l.snaps = l.snaps[len(l.snaps)-l.keep:]
	}
	archive, sessionID := l.archive, l.sessionID
	l.mu.Unlock()

	metrics.IncSnapshotCommitted()
	if archive != nil {
		go mirrorToArchive(archive, sessionID, snap)
	}
	return snap
}

// Latest returns the most recent snapshot.
func (l *Log) Latest() (Snapshot, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.snaps) == 0 {
		return Snapshot{}, false
	}
	return l.snaps[len(l.snaps)-1], true
}

// Get returns a retained snapshot by sequence number.
func (l *Log) Get(seq uint64) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.snaps) - 1; i >= 0; i-- {
		if l.snaps[i].Seq == seq {
			return l.snaps[i], nil
		}
	}
	return Snapshot{}, ErrSnapshotNotFound
}

// List returns snapshots most recent first. limit <= 0 returns all retained.
func (l *Log) List(limit int) []Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.snaps)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Snapshot, 0, n)
	for i := len(l.snaps) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.snaps[i])
	}
	return out
}

// Len returns the number of retained snapshots.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.snaps)
}

func mirrorToArchive(archive Archive, sessionID string, snap Snapshot) {
	raw, err := json.Marshal(snap.Document)
	if err != nil {
		telemetry.Error("history.archive.marshal", map[string]any{
			"session_id": sessionID,
			"seq":        snap.Seq,
			"error":      err.Error(),
		})
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()
	rec := Record{
		SessionID: sessionID,
		Seq:       snap.Seq,
		Cause:     snap.Cause,
		TakenAt:   snap.TakenAt,
		Document:  raw,
	}
	if err := archive.Save(ctx, rec); err != nil {
		telemetry.Error("history.archive.save", map[string]any{
			"session_id": sessionID,
			"seq":        snap.Seq,
			"error":      err.Error(),
		})
	}
}
