package conversation

import "errors"

var (
	// ErrStreamBusy indicates a user message was posted while an assistant
	// turn is still streaming.
	ErrStreamBusy = errors.New("assistant turn still streaming")

	// ErrTurnAlreadyOpen indicates a second assistant turn was opened.
	ErrTurnAlreadyOpen = errors.New("assistant turn already open")

	// ErrNotStreaming indicates an append or finalize that does not target
	// the currently open streaming message.
	ErrNotStreaming = errors.New("message is not the open streaming message")
)
