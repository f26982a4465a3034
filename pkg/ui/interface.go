// Package ui defines the interface for chat user interfaces.
//
// Implementations of [ChatUI] adapt a frontend to a common event-driven chat
// model. The caller receives incoming events via [ChatUI.Receive] and sends
// responses through the [Context] attached to each event.
package ui

import (
	"context"
)

///////////////////////////////////////////////////////////////////////////////
// INTERFACES

// ChatUI is the interface that every chat frontend implements. Callers loop
// over Receive to process incoming user activity.
type ChatUI interface {
	// Receive blocks until the next event is available or the context is
	// cancelled. It returns io.EOF when the input is closed.
	Receive(ctx context.Context) (Event, error)

	// Close releases resources held by the interface
	Close() error
}

// Context represents the conversation for a single event
type Context interface {
	// UserID returns an identifier for the user who triggered the event
	UserID() string

	// ConversationID returns an identifier for the conversation, which is
	// used as the thread identifier for the agent
	ConversationID() string

	// SendText sends plain text to the conversation
	SendText(ctx context.Context, text string) error

	// SendMarkdown sends markdown, rendered as the frontend sees fit
	SendMarkdown(ctx context.Context, markdown string) error

	// SendError reports an error to the user
	SendError(ctx context.Context, err error) error

	// SetTyping signals the bot is processing a request
	SetTyping(ctx context.Context, typing bool) error
}

///////////////////////////////////////////////////////////////////////////////
// EVENT TYPES

// EventType identifies the kind of incoming event.
type EventType int

const (
	EventText    EventType = iota // User sent a question
	EventCommand                  // User sent a command (e.g. quit, /tools)
)

func (t EventType) String() string {
	switch t {
	case EventText:
		return "text"
	case EventCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Event represents an incoming event from the user.
type Event struct {
	// Type identifies what kind of event this is.
	Type EventType

	// Context provides the conversation and response methods.
	Context Context

	// Text contains the line as entered, without surrounding whitespace
	Text string

	// Command contains the lowercased command name without any leading
	// slash (for EventCommand only)
	Command string

	// Args contains the command arguments (for EventCommand only)
	Args []string
}
