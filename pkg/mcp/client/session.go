package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"

	// Packages
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	mcpclient "github.com/mark3labs/mcp-go/client"
	mcpschema "github.com/mark3labs/mcp-go/mcp"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	llm "github.com/mutablelogic/go-llmservice"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// session is a connection to one server, over any transport
type session interface {
	ListTools(ctx context.Context) ([]Descriptor, error)
	CallTool(ctx context.Context, name string, args map[string]any) (*Result, error)
	Close() error
}

// Descriptor describes a remote tool
type Descriptor struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
}

// mcpgoSession is an sse or stdio session. The event stream of an sse
// session lives until the session is closed.
type mcpgoSession struct {
	client *mcpclient.Client
	cancel context.CancelFunc
}

// sdkSession is a streamable HTTP session
type sdkSession struct {
	session *sdk.ClientSession
}

// headerTransport adds headers to every request
type headerTransport struct {
	headers map[string]string
	next    http.RoundTripper
}

var _ session = (*mcpgoSession)(nil)
var _ session = (*sdkSession)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// dial connects and initialises a session with a server
func dial(ctx context.Context, server Server, info Implementation) (session, error) {
	switch server.Kind() {
	case TransportStdio:
		env := os.Environ()
		for k, v := range server.Env {
			env = append(env, k+"="+v)
		}
		// The stdio client starts the process itself
		c, err := mcpclient.NewStdioMCPClient(server.Command, env, server.Args...)
		if err != nil {
			return nil, err
		}
		return initialize(ctx, c, info)
	case TransportSSE:
		c, err := mcpclient.NewSSEMCPClient(server.URL, mcpclient.WithHeaders(server.Headers))
		if err != nil {
			return nil, err
		}
		stream, cancel := context.WithCancel(context.WithoutCancel(ctx))
		if err := c.Start(stream); err != nil {
			cancel()
			return nil, err
		}
		s, err := initialize(ctx, c, info)
		if err != nil {
			cancel()
			return nil, err
		}
		s.cancel = cancel
		return s, nil
	case TransportStreamableHTTP:
		httpClient := &http.Client{}
		if len(server.Headers) > 0 {
			httpClient.Transport = &headerTransport{headers: server.Headers, next: http.DefaultTransport}
		}
		c := sdk.NewClient(&sdk.Implementation{Name: info.Name, Version: info.Version}, nil)
		s, err := c.Connect(ctx, &sdk.StreamableClientTransport{
			Endpoint:   server.URL,
			HTTPClient: httpClient,
		}, nil)
		if err != nil {
			return nil, err
		}
		return &sdkSession{session: s}, nil
	default:
		return nil, llm.ErrBadParameter.Withf("unsupported transport %q", server.Kind())
	}
}

func initialize(ctx context.Context, c *mcpclient.Client, info Implementation) (*mcpgoSession, error) {
	req := mcpschema.InitializeRequest{}
	req.Params.ProtocolVersion = mcpschema.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcpschema.Implementation{
		Name:    info.Name,
		Version: info.Version,
	}
	if _, err := c.Initialize(ctx, req); err != nil {
		c.Close()
		return nil, err
	}
	return &mcpgoSession{client: c}, nil
}

///////////////////////////////////////////////////////////////////////////////
// SSE AND STDIO

func (s *mcpgoSession) ListTools(ctx context.Context) ([]Descriptor, error) {
	tools, err := s.client.ListTools(ctx, mcpschema.ListToolsRequest{})
	if err != nil {
		return nil, err
	}
	result := make([]Descriptor, 0, len(tools.Tools))
	for _, t := range tools.Tools {
		var input any = t.InputSchema
		if len(t.RawInputSchema) > 0 {
			input = t.RawInputSchema
		}
		schema, err := toSchema(input)
		if err != nil {
			return nil, llm.ErrBadParameter.Withf("tool %q: %v", t.Name, err)
		}
		result = append(result, Descriptor{Name: t.Name, Description: t.Description, Schema: schema})
	}
	return result, nil
}

func (s *mcpgoSession) CallTool(ctx context.Context, name string, args map[string]any) (*Result, error) {
	req := mcpschema.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	response, err := s.client.CallTool(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &Result{IsError: response.IsError}
	for _, content := range response.Content {
		switch content := content.(type) {
		case mcpschema.TextContent:
			result.Content = append(result.Content, Text{Text: content.Text})
		case mcpschema.ImageContent:
			data, err := base64.StdEncoding.DecodeString(content.Data)
			if err != nil {
				return nil, llm.ErrBadParameter.Withf("image content: %v", err)
			}
			result.Content = append(result.Content, Image{MIMEType: content.MIMEType, Data: data})
		case mcpschema.EmbeddedResource:
			switch resource := content.Resource.(type) {
			case mcpschema.TextResourceContents:
				result.Content = append(result.Content, Resource{URI: resource.URI, MIMEType: resource.MIMEType, Text: resource.Text})
			case mcpschema.BlobResourceContents:
				blob, err := base64.StdEncoding.DecodeString(resource.Blob)
				if err != nil {
					return nil, llm.ErrBadParameter.Withf("resource content: %v", err)
				}
				result.Content = append(result.Content, Resource{URI: resource.URI, MIMEType: resource.MIMEType, Blob: blob})
			default:
				return nil, llm.ErrNotImplemented.Withf("resource content %T", resource)
			}
		default:
			return nil, llm.ErrNotImplemented.Withf("content %T", content)
		}
	}
	return result, nil
}

func (s *mcpgoSession) Close() error {
	err := s.client.Close()
	if s.cancel != nil {
		s.cancel()
	}
	return err
}

///////////////////////////////////////////////////////////////////////////////
// STREAMABLE HTTP

func (s *sdkSession) ListTools(ctx context.Context) ([]Descriptor, error) {
	tools, err := s.session.ListTools(ctx, nil)
	if err != nil {
		return nil, err
	}
	result := make([]Descriptor, 0, len(tools.Tools))
	for _, t := range tools.Tools {
		schema, err := toSchema(t.InputSchema)
		if err != nil {
			return nil, llm.ErrBadParameter.Withf("tool %q: %v", t.Name, err)
		}
		result = append(result, Descriptor{Name: t.Name, Description: t.Description, Schema: schema})
	}
	return result, nil
}

func (s *sdkSession) CallTool(ctx context.Context, name string, args map[string]any) (*Result, error) {
	response, err := s.session.CallTool(ctx, &sdk.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return nil, err
	}

	result := &Result{IsError: response.IsError}
	for _, content := range response.Content {
		switch content := content.(type) {
		case *sdk.TextContent:
			result.Content = append(result.Content, Text{Text: content.Text})
		case *sdk.ImageContent:
			result.Content = append(result.Content, Image{MIMEType: content.MIMEType, Data: content.Data})
		case *sdk.AudioContent:
			result.Content = append(result.Content, Image{MIMEType: content.MIMEType, Data: content.Data})
		case *sdk.ResourceLink:
			result.Content = append(result.Content, Resource{URI: content.URI, MIMEType: content.MIMEType})
		case *sdk.EmbeddedResource:
			if content.Resource == nil {
				return nil, llm.ErrBadParameter.With("embedded resource without contents")
			}
			result.Content = append(result.Content, Resource{
				URI:      content.Resource.URI,
				MIMEType: content.Resource.MIMEType,
				Text:     content.Resource.Text,
				Blob:     content.Resource.Blob,
			})
		default:
			return nil, llm.ErrNotImplemented.Withf("content %T", content)
		}
	}
	return result, nil
}

func (s *sdkSession) Close() error {
	return s.session.Close()
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.next.RoundTrip(req)
}

// toSchema converts a remote input schema to an object schema. A schema
// without properties accepts an empty object.
func toSchema(v any) (*jsonschema.Schema, error) {
	schema := new(jsonschema.Schema)
	if v != nil {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		if string(data) != "null" {
			if err := json.Unmarshal(data, schema); err != nil {
				return nil, err
			}
		}
	}
	if schema.Type == "" {
		schema.Type = "object"
	}
	if schema.Properties == nil {
		schema.Properties = map[string]*jsonschema.Schema{}
	}
	return schema, nil
}
