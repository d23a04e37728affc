package service

import "iter"

// FrameKind is the type of a decoded stream frame.
type FrameKind string

const (
	FrameChunk    FrameKind = "chunk"
	FrameComplete FrameKind = "complete"
	FrameError    FrameKind = "error"
)

// Frame is one decoded unit of a streaming AI response.
type Frame struct {
	Kind    FrameKind      `json:"type"`
	Content string         `json:"content,omitempty"`
	Data    *TaskBreakdown `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// IsTerminal reports whether the frame ends a session.
func (f Frame) IsTerminal() bool {
	return f.Kind == FrameComplete || f.Kind == FrameError
}

// Outcome describes how a streaming session ended.
type Outcome int

const (
	// OutcomePending means the session has not finished yet.
	OutcomePending Outcome = iota
	// OutcomeComplete means a complete frame was delivered.
	OutcomeComplete
	// OutcomeError means an error frame was delivered.
	OutcomeError
	// OutcomeDone means the [DONE] sentinel ended the stream without a terminal frame.
	OutcomeDone
	// OutcomeCancelled means the caller aborted the session.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeComplete:
		return "complete"
	case OutcomeError:
		return "error"
	case OutcomeDone:
		return "done"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "pending"
	}
}

// StreamCallbacks are invoked as frames are delivered, in arrival order.
// Any of them may be nil.
type StreamCallbacks struct {
	OnChunk    func(content string)
	OnComplete func(f Frame)
	OnError    func(message string)
}

// Stream is an in-flight streaming AI response.
type Stream interface {
	// Frames yields decoded frames in arrival order. At most one terminal
	// frame is yielded and nothing follows it.
	Frames() iter.Seq[Frame]

	// Outcome reports how the stream ended.
	Outcome() Outcome

	// Close aborts the stream. Safe to call more than once.
	Close() error
}
