package tool

import (
	"bytes"
	"context"
	"encoding/json"

	// Packages
	llm "github.com/mutablelogic/go-llmservice"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Invoke resolves the named tool, checks the arguments against its schema
// and runs it. Failures are returned as an error record in the result:
// an unknown name is KindNotFound, missing or malformed arguments are
// KindInvalidArguments (and the tool is not run), and any error or panic
// from the tool is KindHandlerError.
func (tk *Toolkit) Invoke(ctx context.Context, req Request) Result {
	t, err := tk.Resolve(req.Name)
	if err != nil {
		return NewError(KindNotFound, err)
	}

	args, err := validate(t, req.Arguments)
	if err != nil {
		return NewError(KindInvalidArguments, err)
	}

	payload, err := call(ctx, t, args)
	if err != nil {
		return NewError(KindHandlerError, err)
	}
	return NewResult(payload)
}

// Run executes a tool by name with the given input, which may be
// json.RawMessage, []byte, nil or any value which marshals to a JSON object.
// Returns the payload or an error wrapping ErrNotFound, ErrBadParameter or
// ErrInternalServerError.
func (tk *Toolkit) Run(ctx context.Context, name string, input any) (any, error) {
	var raw json.RawMessage
	switch v := input.(type) {
	case nil:
		// No arguments
	case json.RawMessage:
		raw = v
	case []byte:
		raw = json.RawMessage(v)
	default:
		data, err := json.Marshal(input)
		if err != nil {
			return nil, llm.ErrBadParameter.Withf("failed to marshal input: %v", err)
		}
		raw = data
	}

	result := tk.Invoke(ctx, Request{Name: name, Arguments: raw})
	if err := result.Error(); err != nil {
		return nil, err
	}
	return result.Payload, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// validate returns the arguments as a JSON object, after checking that
// required keys are present and the arguments match the schema
func validate(t Tool, input json.RawMessage) (json.RawMessage, error) {
	// Absent arguments are an empty object
	if len(bytes.TrimSpace(input)) == 0 || bytes.Equal(bytes.TrimSpace(input), []byte("null")) {
		input = json.RawMessage("{}")
	}

	// Arguments must be an object
	var args map[string]any
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, llm.ErrBadParameter.Withf("arguments must be a JSON object: %v", err)
	} else if args == nil {
		return nil, llm.ErrBadParameter.With("arguments must be a JSON object")
	}

	// Get the schema
	schema, err := t.Schema()
	if err != nil {
		return nil, llm.ErrBadParameter.Withf("schema generation failed: %v", err)
	} else if schema == nil {
		return input, nil
	}

	// Required keys
	for _, key := range schema.Required {
		if _, exists := args[key]; !exists {
			return nil, llm.ErrBadParameter.Withf("missing required argument: %q", key)
		}
	}

	// Validate against schema
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, llm.ErrBadParameter.Withf("schema resolution failed: %v", err)
	}
	if err := resolved.Validate(args); err != nil {
		return nil, llm.ErrBadParameter.Withf("input validation failed: %v", err)
	}

	return input, nil
}

// call runs the tool, converting a panic into an error
func call(ctx context.Context, t Tool, args json.RawMessage) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = llm.ErrInternalServerError.Withf("tool %q panic: %v", t.Name(), r)
		}
	}()
	return t.Run(ctx, args)
}
