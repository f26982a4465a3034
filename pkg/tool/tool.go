package tool

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"

	// Packages
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	llm "github.com/mutablelogic/go-llmservice"
	types "github.com/mutablelogic/go-llmservice/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Tool is an interface for a tool with a name, description and JSON schema
type Tool interface {
	// Return the name of the tool
	Name() string

	// Return the description of the tool
	Description() string

	// Return the JSON schema for the tool input, which is an object
	Schema() (*jsonschema.Schema, error)

	// Run the tool with the given input as JSON (may be nil)
	Run(ctx context.Context, input json.RawMessage) (any, error)
}

// Toolkit is a collection of tools with unique names. Tools are registered
// at startup and looked up concurrently afterwards.
type Toolkit struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// Descriptor describes a tool for discovery
type Descriptor struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	ArgsSchema  *jsonschema.Schema `json:"args_schema"`
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewToolkit creates a new toolkit with the given tools.
// Returns an error if any tool has an invalid or duplicate name.
func NewToolkit(tools ...Tool) (*Toolkit, error) {
	tk := &Toolkit{
		tools: make(map[string]Tool),
	}
	if err := tk.Register(tools...); err != nil {
		return nil, err
	}
	return tk, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Register adds one or more tools to the toolkit. Returns an error if any
// tool has an invalid or duplicate name, or a schema which is not an object.
// No tools are added when an error is returned.
func (tk *Toolkit) Register(tools ...Tool) error {
	tk.mu.Lock()
	defer tk.mu.Unlock()

	// Check all tools before adding any of them
	names := make(map[string]struct{}, len(tools))
	for _, t := range tools {
		if t == nil {
			return llm.ErrBadParameter.With("tool cannot be nil")
		}
		name := t.Name()
		if !types.IsToolName(name) {
			return llm.ErrBadParameter.Withf("invalid tool name: %q", name)
		}
		if _, exists := tk.tools[name]; exists {
			return llm.ErrBadParameter.Withf("duplicate tool name: %q", name)
		} else if _, exists := names[name]; exists {
			return llm.ErrBadParameter.Withf("duplicate tool name: %q", name)
		}
		if schema, err := t.Schema(); err != nil {
			return llm.ErrBadParameter.Withf("tool %q: schema: %v", name, err)
		} else if schema != nil && schema.Type != "object" {
			return llm.ErrBadParameter.Withf("tool %q: schema type must be object", name)
		}
		names[name] = struct{}{}
	}

	for _, t := range tools {
		tk.tools[t.Name()] = t
	}
	return nil
}

// Lookup returns a tool by name, or nil if not found
func (tk *Toolkit) Lookup(name string) Tool {
	tk.mu.RLock()
	defer tk.mu.RUnlock()
	return tk.tools[name]
}

// Resolve returns a tool by exact name, or ErrNotFound
func (tk *Toolkit) Resolve(name string) (Tool, error) {
	if t := tk.Lookup(name); t != nil {
		return t, nil
	}
	return nil, llm.ErrNotFound.Withf("tool not found: %q", name)
}

// Tools returns all tools in the toolkit, sorted by name
func (tk *Toolkit) Tools() []Tool {
	tk.mu.RLock()
	defer tk.mu.RUnlock()

	result := make([]Tool, 0, len(tk.tools))
	for _, t := range tk.tools {
		result = append(result, t)
	}
	slices.SortFunc(result, func(a, b Tool) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return result
}

// Len returns the number of tools in the toolkit, or zero for a nil toolkit
func (tk *Toolkit) Len() int {
	if tk == nil {
		return 0
	}
	tk.mu.RLock()
	defer tk.mu.RUnlock()
	return len(tk.tools)
}

// Describe returns the name, description and argument schema of every tool,
// sorted by name
func (tk *Toolkit) Describe() ([]Descriptor, error) {
	tools := tk.Tools()
	result := make([]Descriptor, 0, len(tools))
	for _, t := range tools {
		desc, err := Describe(t)
		if err != nil {
			return nil, err
		}
		result = append(result, desc)
	}
	return result, nil
}

// Describe returns the name, description and argument schema of a tool
func Describe(t Tool) (Descriptor, error) {
	schema, err := t.Schema()
	if err != nil {
		return Descriptor{}, llm.ErrInternalServerError.Withf("tool %q: schema: %v", t.Name(), err)
	}
	return Descriptor{
		Name:        t.Name(),
		Description: t.Description(),
		ArgsSchema:  schema,
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (tk *Toolkit) String() string {
	tools := tk.Tools()
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name())
	}
	return "<toolkit " + strings.Join(names, " ") + ">"
}
