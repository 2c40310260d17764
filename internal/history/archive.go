package history

import (
	"context"
	"encoding/json"
	"time"
)

// Record is a snapshot flattened for archival outside the session.
type Record struct {
	SessionID string
	Seq       uint64
	Cause     Cause
	TakenAt   time.Time
	Document  json.RawMessage
}

// Archive defines persistence operations for snapshot records. Archival is
// best effort: the in-memory log is authoritative for the session lifetime.
type Archive interface {
	Save(ctx context.Context, rec Record) error
	ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]Record, error)
}
