package thinktap

import (
	"context"
	"time"
)

// StreamOptions controls the event-channel streaming facade.
type StreamOptions struct {
	// BufferSize sets the channel buffer size for events (default: 100)
	BufferSize int
}

// StreamEvent represents a single event in the stream.
type StreamEvent struct {
	Type StreamEventType

	// Text content (for EventTypeChunk and EventTypeThought)
	Text string

	// Usage metadata (for EventTypeUsage)
	Usage *StreamUsage

	// Result is the aggregate outcome (for EventTypeDone)
	Result *ReasoningResult

	// Error (for EventTypeError)
	Err error

	// Internal fields
	provider  Provider
	timestamp time.Time
}

// StreamEventType identifies the event kind.
type StreamEventType int

const (
	// EventTypeChunk is a final-answer text fragment
	EventTypeChunk StreamEventType = iota
	// EventTypeThought is an intermediate reasoning fragment
	EventTypeThought
	// EventTypeUsage contains token usage metadata
	EventTypeUsage
	// EventTypeDone signals stream completion and carries the aggregate result
	EventTypeDone
	// EventTypeError signals an error occurred
	EventTypeError
)

// StreamResponse provides control over an active stream.
type StreamResponse struct {
	Events <-chan StreamEvent
	Cancel context.CancelFunc
}
