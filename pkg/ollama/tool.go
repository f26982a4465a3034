package ollama

import (
	// Packages
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Tool is a function definition sent with a chat request
type Tool struct {
	Type     string       `json:"type"` // function
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewTools returns function definitions for every tool in the toolkit
func NewTools(tk *tool.Toolkit) ([]Tool, error) {
	if tk == nil {
		return nil, nil
	}
	desc, err := tk.Describe()
	if err != nil {
		return nil, err
	}
	result := make([]Tool, 0, len(desc))
	for _, d := range desc {
		params := d.ArgsSchema
		if params == nil {
			params = &jsonschema.Schema{Type: "object"}
		}
		result = append(result, Tool{
			Type: "function",
			Function: ToolFunction{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  params,
			},
		})
	}
	return result, nil
}
