// Package client connects to one or more MCP servers over the sse, stdio
// or streamable HTTP transports, and adapts their tools so they can be
// registered in a toolkit.
package client

import (
	"context"
	"sync"

	// Packages
	llm "github.com/mutablelogic/go-llmservice"
	log "github.com/mutablelogic/go-llmservice/pkg/log"
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
	version "github.com/mutablelogic/go-llmservice/pkg/version"
	errgroup "golang.org/x/sync/errgroup"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Client holds a session with each connected server
type Client struct {
	mu       sync.Mutex
	log      *log.Logger
	names    []string
	sessions map[string]session
}

// Implementation identifies the client to servers
type Implementation struct {
	Name    string
	Version string
}

type Opt func(*opts) error

type opts struct {
	log  *log.Logger
	info Implementation
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultClientName = "llmservice"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// Connect connects to all servers in the configuration concurrently. When
// some servers fail, the client for the remaining servers is returned
// together with an error which has one cause per failed server, in server
// name order. When all servers fail, the client is nil.
func Connect(ctx context.Context, config *Config, opt ...Opt) (*Client, error) {
	o := opts{
		log:  log.Nop(),
		info: Implementation{Name: DefaultClientName, Version: version.Version()},
	}
	for _, fn := range opt {
		if err := fn(&o); err != nil {
			return nil, err
		}
	}
	if config == nil || len(config.Servers) == 0 {
		return nil, llm.ErrBadParameter.With("no servers configured")
	}

	// Connect in parallel, keeping errors in name order
	names := config.Names()
	sessions := make([]session, len(names))
	errs := make([]error, len(names))
	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			o.log.Debugw("connecting", "server", name, "transport", config.Servers[name].Kind())
			s, err := dial(ctx, config.Servers[name], o.info)
			if err != nil {
				errs[i] = llm.ErrInternalServerError.Withf("%s: %v", name, err)
			} else {
				sessions[i] = s
			}
			return nil
		})
	}
	_ = g.Wait()

	// Collect the sessions
	self := &Client{
		log:      o.log,
		sessions: make(map[string]session, len(names)),
	}
	for i, name := range names {
		if sessions[i] != nil {
			self.names = append(self.names, name)
			self.sessions[name] = sessions[i]
			o.log.Infow("connected", "server", name)
		}
	}

	err := llm.Join(llm.ErrInternalServerError, "failed to connect to MCP servers", errs...)
	if len(self.sessions) == 0 {
		return nil, err
	}
	return self, err
}

// Close closes every session, and returns an error with one cause for
// each session which could not be closed
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	errs := make([]error, 0, len(c.names))
	for _, name := range c.names {
		if err := c.sessions[name].Close(); err != nil {
			errs = append(errs, llm.ErrInternalServerError.Withf("%s: %v", name, err))
		}
	}
	c.names = nil
	c.sessions = map[string]session{}
	return llm.Join(llm.ErrInternalServerError, "failed to close MCP servers", errs...)
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

func WithLogger(v *log.Logger) Opt {
	return func(o *opts) error {
		if v != nil {
			o.log = v
		}
		return nil
	}
}

// WithImplementation sets the client name and version sent to servers
func WithImplementation(name, version string) Opt {
	return func(o *opts) error {
		if name == "" {
			return llm.ErrBadParameter.With("client name cannot be empty")
		}
		o.info = Implementation{Name: name, Version: version}
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Servers returns the names of connected servers, sorted
func (c *Client) Servers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.names...)
}

// Tools lists the tools of every connected server, in server name order,
// adapted so they can be registered in a toolkit
func (c *Client) Tools(ctx context.Context) ([]tool.Tool, error) {
	c.mu.Lock()
	names := append([]string(nil), c.names...)
	c.mu.Unlock()

	var result []tool.Tool
	var errs []error
	for _, name := range names {
		s := c.session(name)
		if s == nil {
			continue
		}
		tools, err := s.ListTools(ctx)
		if err != nil {
			errs = append(errs, llm.ErrInternalServerError.Withf("%s: %v", name, err))
			continue
		}
		for _, t := range tools {
			result = append(result, &remoteTool{desc: t, server: name, client: c})
		}
		c.log.Debugw("listed tools", "server", name, "count", len(tools))
	}
	if err := llm.Join(llm.ErrInternalServerError, "failed to list tools", errs...); err != nil {
		return nil, err
	}
	return result, nil
}

// CallTool calls a tool on a named server
func (c *Client) CallTool(ctx context.Context, server, name string, args map[string]any) (*Result, error) {
	s := c.session(server)
	if s == nil {
		return nil, llm.ErrNotFound.Withf("server not connected: %q", server)
	}
	if args == nil {
		args = map[string]any{}
	}
	return s.CallTool(ctx, name, args)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (c *Client) session(name string) session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[name]
}
