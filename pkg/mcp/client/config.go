package client

import (
	"encoding/json"
	"errors"
	"os"
	"slices"
	"strings"

	// Packages
	llm "github.com/mutablelogic/go-llmservice"
	yaml "gopkg.in/yaml.v3"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Config is the set of MCP servers to connect to, keyed by name
type Config struct {
	Servers map[string]Server `json:"mcpServers" yaml:"mcpServers"`
}

// Server describes how to connect to one MCP server. Either the transport
// or the type field names the transport.
type Server struct {
	Transport string `json:"transport,omitempty" yaml:"transport,omitempty"`
	Type      string `json:"type,omitempty" yaml:"type,omitempty"`

	URL     string            `json:"url,omitempty" yaml:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	Command string            `json:"command,omitempty" yaml:"command,omitempty"`
	Args    []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	TransportSSE            = "sse"
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable_http"
	DefaultConfig           = "mcp.json"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// Parse reads a configuration file as JSON, or YAML if it is not JSON.
// Returns ErrNotFound if the file does not exist.
func Parse(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, llm.ErrNotFound.Withf("configuration file: %q", path)
	} else if err != nil {
		return nil, err
	}
	return ParseBytes(data)
}

// ParseBytes parses configuration as JSON, or YAML if it is not JSON, and
// validates each server
func ParseBytes(data []byte) (*Config, error) {
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		config = Config{}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, llm.ErrBadParameter.Withf("failed to parse configuration: %v", err)
		}
	}

	// Validate the servers
	var result error
	for _, name := range config.Names() {
		server := config.Servers[name]
		result = errors.Join(result, server.validate(name))
	}
	if result != nil {
		return nil, result
	}

	return &config, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Names returns the server names, sorted
func (config *Config) Names() []string {
	names := make([]string, 0, len(config.Servers))
	for name := range config.Servers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Kind returns the normalised transport. When no transport is set, a
// server with a command is stdio, and a server with a URL ending in /sse
// is sse, otherwise streamable_http.
func (server Server) Kind() string {
	kind := server.Transport
	if kind == "" {
		kind = server.Type
	}
	switch strings.ToLower(strings.ReplaceAll(kind, "-", "_")) {
	case TransportSSE:
		return TransportSSE
	case TransportStdio:
		return TransportStdio
	case TransportStreamableHTTP, "streamablehttp", "http":
		return TransportStreamableHTTP
	case "":
		switch {
		case server.Command != "":
			return TransportStdio
		case strings.HasSuffix(strings.TrimSuffix(server.URL, "/"), "/sse"):
			return TransportSSE
		case server.URL != "":
			return TransportStreamableHTTP
		}
	}
	return kind
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (server Server) validate(name string) error {
	switch server.Kind() {
	case TransportStdio:
		if server.Command == "" {
			return llm.ErrBadParameter.Withf("server %q: command is required", name)
		}
	case TransportSSE, TransportStreamableHTTP:
		if server.URL == "" {
			return llm.ErrBadParameter.Withf("server %q: url is required", name)
		}
	default:
		return llm.ErrBadParameter.Withf("server %q: unsupported transport %q", name, server.Kind())
	}
	return nil
}
