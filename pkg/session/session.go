// Package session stores conversation history keyed by a thread identifier,
// and trims the history before it is sent to a model.
package session

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	// Packages
	ollama "github.com/mutablelogic/go-llmservice/pkg/ollama"
	opt "github.com/mutablelogic/go-llmservice/pkg/opt"
)

///////////////////////////////////////////////////////////////////////////////
// INTERFACE

// Store holds threads of messages
type Store interface {
	// Create a thread with a generated identifier
	Create(context.Context) (*Thread, error)

	// Get a thread by identifier, or ErrNotFound
	Get(context.Context, string) (*Thread, error)

	// Append messages to a thread, creating it if it does not exist
	Append(context.Context, string, ...ollama.Message) (*Thread, error)

	// Delete a thread, or ErrNotFound
	Delete(context.Context, string) error

	// List threads, most recently modified first
	List(context.Context, ...opt.Opt) ([]*Thread, error)
}

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Thread is a conversation
type Thread struct {
	ID       string           `json:"id"`
	Messages []ollama.Message `json:"messages"`
	Created  time.Time        `json:"created"`
	Modified time.Time        `json:"modified"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// The most recent messages kept by Trim, together with the first message
	trimKeep = 3
)

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (t Thread) String() string {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Trim returns the messages unchanged when there are three or fewer. Otherwise
// it returns the first message followed by the last three messages when the
// number of messages is even, or the last four when it is odd. The result
// never shares its backing array with the input.
func Trim[T any](messages []T) []T {
	if len(messages) <= trimKeep {
		return slices.Clone(messages)
	}
	keep := trimKeep
	if len(messages)%2 == 1 {
		keep++
	}
	result := make([]T, 0, keep+1)
	result = append(result, messages[0])
	return append(result, messages[len(messages)-keep:]...)
}

// clone returns a deep copy of a thread
func (t *Thread) clone() *Thread {
	result := *t
	result.Messages = slices.Clone(t.Messages)
	return &result
}
