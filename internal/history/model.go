package history

import (
	"time"

	"workshop-backend/internal/document"
)

// Cause records what kind of committed mutation produced a snapshot.
type Cause string

const (
	CauseInitialState        Cause = "initial_state"
	CauseManualEdit          Cause = "manual_edit"
	CauseGenerationCompleted Cause = "generation_completed"
)

// Snapshot is an immutable copy of the document at a committed mutation.
// Sequence numbers are assigned monotonically per session and never reused,
// even when old snapshots are pruned.
type Snapshot struct {
	Seq      uint64            `json:"seq"`
	Cause    Cause             `json:"cause"`
	TakenAt  time.Time         `json:"takenAt"`
	Document document.Document `json:"document"`
}
