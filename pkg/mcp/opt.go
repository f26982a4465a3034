package mcp

import (
	"time"

	// Packages
	llm "github.com/mutablelogic/go-llmservice"
	log "github.com/mutablelogic/go-llmservice/pkg/log"
)

/////////////////////////////////////////////////////////////////////////////////
// TYPES

type Opt func(*Server) error

/////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func (server *Server) apply(opts ...Opt) error {
	for _, opt := range opts {
		if err := opt(server); err != nil {
			return err
		}
	}
	return nil
}

/////////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithName sets the implementation name reported to clients
func WithName(v string) Opt {
	return func(server *Server) error {
		if v == "" {
			return llm.ErrBadParameter.With("name cannot be empty")
		}
		server.name = v
		return nil
	}
}

// WithVersion sets the implementation version reported to clients
func WithVersion(v string) Opt {
	return func(server *Server) error {
		server.version = v
		return nil
	}
}

func WithLogger(v *log.Logger) Opt {
	return func(server *Server) error {
		if v != nil {
			server.log = v
		}
		return nil
	}
}

// WithKeepAlive sets the interval for pinging connected clients. Zero
// disables keep-alive.
func WithKeepAlive(v time.Duration) Opt {
	return func(server *Server) error {
		if v < 0 {
			return llm.ErrBadParameter.With("keep-alive cannot be negative")
		}
		server.keepalive = v
		return nil
	}
}
