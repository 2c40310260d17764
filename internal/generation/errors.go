package generation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInProgress indicates a second request for a section that already
	// has a task in flight.
	ErrInProgress = errors.New("generation already in progress")

	// ErrNoActiveTask indicates a cancel for a section with nothing running.
	ErrNoActiveTask = errors.New("no active generation task")
)

// DependencyUnmetError reports every prerequisite that blocked a generation
// request, so callers can tell the user exactly what to finish first.
type DependencyUnmetError struct {
	Section string
	Missing []string
}

func (e *DependencyUnmetError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("cannot generate %q", e.Section)
	}
	return fmt.Sprintf("cannot generate %q: complete %s first", e.Section, strings.Join(e.Missing, ", "))
}
