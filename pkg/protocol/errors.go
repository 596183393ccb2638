package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrPayloadTooLarge indicates a payload beyond MaxPayload.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrQueueFull indicates the outbound queue rejected an enqueue.
	// The frame is dropped; callers decide whether to retry or coalesce.
	ErrQueueFull = errors.New("outbound queue full")
	// ErrShortPayload indicates a payload shorter than its fixed layout.
	ErrShortPayload = errors.New("short payload")
	// ErrUnknownCommand indicates an id outside the closed command set.
	ErrUnknownCommand = errors.New("unknown command")
)

// UnboundError reports a valid frame whose command has no handler.
type UnboundError struct {
	Command CommandID
}

// Error implements error.
func (e *UnboundError) Error() string {
	return fmt.Sprintf("no handler bound for %s", e.Command)
}
