package tool

import (
	"encoding/json"

	// Packages
	llm "github.com/mutablelogic/go-llmservice"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Request names a tool and carries its arguments as a JSON object
type Request struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Kind classifies an invocation failure
type Kind string

// ErrorRecord is the structured error returned in place of a payload
type ErrorRecord struct {
	Kind    Kind   `json:"error"`
	Message string `json:"message"`
}

// Result is either a payload or an error record, never both
type Result struct {
	Payload any
	Err     *ErrorRecord
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	KindNotFound         Kind = "not_found"
	KindInvalidArguments Kind = "invalid_arguments"
	KindHandlerError     Kind = "handler_error"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewResult returns a successful result
func NewResult(payload any) Result {
	return Result{Payload: payload}
}

// NewError returns a failed result
func NewError(kind Kind, err error) Result {
	return Result{Err: &ErrorRecord{Kind: kind, Message: err.Error()}}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// OK returns true if the result carries a payload
func (r Result) OK() bool {
	return r.Err == nil
}

// Error returns nil for a successful result, or an error wrapping the
// code which corresponds to the kind of failure
func (r Result) Error() error {
	if r.Err == nil {
		return nil
	}
	return r.Err.Code().With(r.Err.Message)
}

// Code returns the error code for the kind of failure
func (e ErrorRecord) Code() llm.Err {
	switch e.Kind {
	case KindNotFound:
		return llm.ErrNotFound
	case KindInvalidArguments:
		return llm.ErrBadParameter
	default:
		return llm.ErrInternalServerError
	}
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

// MarshalJSON returns the payload, or the error record for a failure
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(r.Err)
	}
	return json.Marshal(r.Payload)
}

func (r Result) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}
