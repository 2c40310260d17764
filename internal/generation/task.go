package generation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskState is the lifecycle of one generation task.
type TaskState string

const (
	TaskRunning   TaskState = "running"
	TaskSucceeded TaskState = "succeeded"
	TaskFailed    TaskState = "failed"
	TaskCancelled TaskState = "cancelled"
)

// Task is one asynchronous generation attempt for a section. State
// transitions happen under the orchestrator's lock; readers use the
// accessors. Done is closed exactly once when the task reaches a terminal
// state.
type Task struct {
	ID        string
	Section   string
	StartedAt time.Time

	mu     sync.Mutex
	state  TaskState
	err    error
	cancel context.CancelFunc
	done   chan struct{}
}

func newTask(section string, cancel context.CancelFunc) *Task {
	return &Task{
		ID:        uuid.NewString(),
		Section:   section,
		StartedAt: time.Now().UTC(),
		state:     TaskRunning,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Wait blocks until the task reaches a terminal state or ctx is done. It
// returns the task's failure, if any.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
		return t.err
	}
}

// State returns the current lifecycle state.
func (t *Task) State() TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Err returns the failure of a terminal task, if any.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// resolve moves the task to a terminal state. A task already terminal stays
// as it is; resolve reports whether the transition happened.
func (t *Task) resolve(state TaskState, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TaskRunning {
		return false
	}
	t.state = state
	t.err = err
	t.cancel()
	close(t.done)
	return true
}

func (t *Task) terminal() bool {
	return t.State() != TaskRunning
}
