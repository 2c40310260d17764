package history

import (
	"context"
	"sort"
	"sync"
)

// MemoryArchive stores snapshot records in memory and is safe for concurrent
// use. It is the default when no database is configured.
type MemoryArchive struct {
	mu        sync.RWMutex
	bySession map[string][]Record
}

// NewMemoryArchive constructs a MemoryArchive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{bySession: make(map[string][]Record)}
}

// Save stores the record.
func (a *MemoryArchive) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.bySession[rec.SessionID] = append(a.bySession[rec.SessionID], rec)
	return nil
}

// ListBySession returns records for a session, newest first, with limit/offset.
func (a *MemoryArchive) ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	a.mu.RLock()
	stored := a.bySession[sessionID]
	a.mu.RUnlock()

	if len(stored) == 0 || offset >= len(stored) {
		return []Record{}, nil
	}

	records := make([]Record, len(stored))
	copy(records, stored)
	sort.Slice(records, func(i, j int) bool {
		return records[i].Seq > records[j].Seq
	})

	end := len(records)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return records[offset:end], nil
}
