package ollama

import (
	"encoding/json"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Message is a chat message
type Message struct {
	Role      string     `json:"role"`                 // system, user, assistant, tool
	Content   string     `json:"content"`              // text content
	Images    []Data     `json:"images,omitempty"`     // image attachments
	ToolCalls []ToolCall `json:"tool_calls,omitempty"` // tool calls from the assistant
	ToolName  string     `json:"tool_name,omitempty"`  // function name, when role is tool
}

// ToolCall is a request from the model to call a function
type ToolCall struct {
	Function ToolCallFunction `json:"function"`
}

type ToolCallFunction struct {
	Index     int            `json:"index,omitempty"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// Data represents the raw binary data of an image file.
type Data []byte

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// ToolMessage returns the result of calling a function
func ToolMessage(name, content string) Message {
	return Message{Role: RoleTool, ToolName: name, Content: content}
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (m Message) String() string {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Arguments returns the arguments of a tool call as a JSON object
func (call ToolCall) Arguments() json.RawMessage {
	if call.Function.Arguments == nil {
		return json.RawMessage("{}")
	}
	data, err := json.Marshal(call.Function.Arguments)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}
