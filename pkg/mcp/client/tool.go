package client

import (
	"context"
	"encoding/json"

	// Packages
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	llm "github.com/mutablelogic/go-llmservice"
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// remoteTool calls a tool on a connected server
type remoteTool struct {
	desc   Descriptor
	server string
	client *Client
}

var _ tool.Tool = (*remoteTool)(nil)

///////////////////////////////////////////////////////////////////////////////
// TOOL INTERFACE

func (t *remoteTool) Name() string {
	return t.desc.Name
}

func (t *remoteTool) Description() string {
	return t.desc.Description
}

func (t *remoteTool) Schema() (*jsonschema.Schema, error) {
	return t.desc.Schema, nil
}

// Run calls the remote tool. A result flagged as an error by the server
// is returned as an error with the text of the result.
func (t *remoteTool) Run(ctx context.Context, input json.RawMessage) (any, error) {
	var args map[string]any
	if len(input) > 0 {
		if err := json.Unmarshal(input, &args); err != nil {
			return nil, llm.ErrBadParameter.Withf("failed to unmarshal input: %v", err)
		}
	}

	result, err := t.client.CallTool(ctx, t.server, t.desc.Name, args)
	if err != nil {
		return nil, err
	} else if result.IsError {
		return nil, llm.ErrInternalServerError.With(result.Text())
	}
	return result.Value(), nil
}

// Server returns the name of the server which provides the tool
func (t *remoteTool) Server() string {
	return t.server
}
