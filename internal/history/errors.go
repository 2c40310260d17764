package history

import "errors"

var (
	// ErrSnapshotNotFound indicates a sequence number outside retained history.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)
