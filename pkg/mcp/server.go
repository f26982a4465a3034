// Package mcp exposes a toolkit over the Model Context Protocol, using the
// SSE and streamable HTTP transports or standard input and output, together
// with a plain JSON interface for discovery and invocation.
package mcp

import (
	"context"
	"encoding/json"
	"time"

	// Packages
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	llm "github.com/mutablelogic/go-llmservice"
	log "github.com/mutablelogic/go-llmservice/pkg/log"
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
	version "github.com/mutablelogic/go-llmservice/pkg/version"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Server struct {
	name      string
	version   string
	keepalive time.Duration
	log       *log.Logger
	toolkit   *tool.Toolkit
	server    *sdk.Server
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultName      = "WeatherServerSSE"
	DefaultAddr      = "0.0.0.0:8000"
	DefaultKeepAlive = 30 * time.Second
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a server for the tools in the toolkit. The tools are read
// once, so all tools should be registered before the server is created.
func New(toolkit *tool.Toolkit, opts ...Opt) (*Server, error) {
	if toolkit == nil {
		return nil, llm.ErrBadParameter.With("toolkit is required")
	}

	self := &Server{
		name:      DefaultName,
		version:   version.Version(),
		keepalive: DefaultKeepAlive,
		log:       log.Nop(),
		toolkit:   toolkit,
	}
	if err := self.apply(opts...); err != nil {
		return nil, err
	}

	// Create the protocol server
	self.server = sdk.NewServer(&sdk.Implementation{
		Name:    self.name,
		Version: self.version,
	}, &sdk.ServerOptions{
		KeepAlive: self.keepalive,
	})

	// Register the tools
	for _, t := range toolkit.Tools() {
		schema, err := t.Schema()
		if err != nil {
			return nil, llm.ErrInternalServerError.Withf("tool %q: schema: %v", t.Name(), err)
		} else if schema == nil {
			schema = &jsonschema.Schema{Type: "object"}
		}
		self.server.AddTool(&sdk.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: schema,
		}, self.handler(t.Name()))
	}

	// Return success
	return self, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Name returns the implementation name reported to clients
func (server *Server) Name() string {
	return server.name
}

// Toolkit returns the tools served
func (server *Server) Toolkit() *tool.Toolkit {
	return server.toolkit
}

// Connect serves a single session over the given transport, and returns
// once the session is initialised
func (server *Server) Connect(ctx context.Context, transport sdk.Transport) (*sdk.ServerSession, error) {
	return server.server.Connect(ctx, transport, nil)
}

// RunStdio serves a single session over standard input and output, and
// returns when the client disconnects or the context is done
func (server *Server) RunStdio(ctx context.Context) error {
	server.log.Debugw("serving over stdio", "name", server.name, "tools", server.toolkit.Len())
	return server.server.Run(ctx, &sdk.StdioTransport{})
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// handler returns the protocol handler for a tool, which delegates to the
// toolkit dispatcher. Error records are returned as tool errors.
func (server *Server) handler(name string) sdk.ToolHandler {
	return func(ctx context.Context, req *sdk.CallToolRequest) (*sdk.CallToolResult, error) {
		var args json.RawMessage
		if req.Params != nil {
			args = req.Params.Arguments
		}

		// Invoke the tool
		started := time.Now()
		result := server.toolkit.Invoke(ctx, tool.Request{Name: name, Arguments: args})
		if result.OK() {
			server.log.Infow("call tool", "tool", name, "duration", time.Since(started))
		} else {
			server.log.Warnw("call tool", "tool", name, "error", result.Err.Kind, "message", result.Err.Message)
		}

		return toolResult(result)
	}
}

// toolResult converts a dispatcher result into protocol content. A string
// payload is returned as text, anything else as JSON text which is also
// returned as structured content when it is an object.
func toolResult(result tool.Result) (*sdk.CallToolResult, error) {
	var text string
	var structured any
	if s, ok := result.Payload.(string); ok && result.OK() {
		text = s
	} else {
		data, err := json.Marshal(result)
		if err != nil {
			return nil, llm.ErrInternalServerError.Withf("failed to marshal result: %v", err)
		}
		text = string(data)
		if len(data) > 0 && data[0] == '{' {
			structured = json.RawMessage(data)
		}
	}
	return &sdk.CallToolResult{
		IsError:           !result.OK(),
		Content:           []sdk.Content{&sdk.TextContent{Text: text}},
		StructuredContent: structured,
	}, nil
}
