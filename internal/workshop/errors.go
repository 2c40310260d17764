package workshop

import "errors"

var (
	// ErrSessionNotFound indicates an unknown workshop session id.
	ErrSessionNotFound = errors.New("workshop session not found")

	// ErrNoOpenTurn indicates a turn cancel with no assistant reply open.
	ErrNoOpenTurn = errors.New("no assistant turn open")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")
)
