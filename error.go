package llmservice

import (
	"fmt"
	"strings"
)

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ErrSuccess Err = iota
	ErrNotFound
	ErrBadParameter
	ErrNotImplemented
	ErrConflict
	ErrInternalServerError
	ErrNoResponse
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Errors
type Err int

// Error is an error with a code, a message and an ordered list of causes.
// The causes are returned by Unwrap, so errors.Is and errors.As see them.
type Error struct {
	Code    Err
	Message string
	Causes  []error
}

var _ error = (*Error)(nil)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS - ERR

func (e Err) Error() string {
	switch e {
	case ErrSuccess:
		return "success"
	case ErrNotFound:
		return "not found"
	case ErrBadParameter:
		return "bad parameter"
	case ErrNotImplemented:
		return "not implemented"
	case ErrConflict:
		return "conflict"
	case ErrInternalServerError:
		return "internal server error"
	case ErrNoResponse:
		return "no response"
	}
	return fmt.Sprintf("error code %d", int(e))
}

// Code returns a short machine-readable name for the error code
func (e Err) Code() string {
	switch e {
	case ErrSuccess:
		return "success"
	case ErrNotFound:
		return "not_found"
	case ErrBadParameter:
		return "bad_parameter"
	case ErrNotImplemented:
		return "not_implemented"
	case ErrConflict:
		return "conflict"
	case ErrInternalServerError:
		return "internal_error"
	case ErrNoResponse:
		return "no_response"
	}
	return fmt.Sprintf("error_%d", int(e))
}

func (e Err) With(args ...interface{}) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprint(args...))
}

func (e Err) Withf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprintf(format, args...))
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS - ERROR

// Join returns an Error with the given code and message, holding the non-nil
// errors as causes in the order given. It returns nil if there are no causes.
func Join(code Err, message string, errs ...error) error {
	causes := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			causes = append(causes, err)
		}
	}
	if len(causes) == 0 {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Causes:  causes,
	}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		b.WriteString(e.Code.Error())
	}
	switch len(e.Causes) {
	case 0:
		// No causes
	case 1:
		b.WriteString(": ")
		b.WriteString(e.Causes[0].Error())
	default:
		for i, cause := range e.Causes {
			fmt.Fprintf(&b, "\n  [%d] %v", i+1, cause)
		}
	}
	return b.String()
}

// Unwrap returns the code followed by the causes
func (e *Error) Unwrap() []error {
	return append([]error{e.Code}, e.Causes...)
}
