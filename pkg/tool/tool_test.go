package tool_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	// Packages
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	llm "github.com/mutablelogic/go-llmservice"
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

///////////////////////////////////////////////////////////////////////////////
// STUBS

type echoRequest struct {
	Text  string `json:"text" jsonschema:"Text to echo"`
	Times int    `json:"times,omitempty" jsonschema:"Number of repetitions"`
}

type stubTool struct {
	name  string
	calls atomic.Int32
	run   func(context.Context, json.RawMessage) (any, error)
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub " + s.name }
func (s *stubTool) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[echoRequest](nil)
}
func (s *stubTool) Run(ctx context.Context, input json.RawMessage) (any, error) {
	s.calls.Add(1)
	if s.run != nil {
		return s.run(ctx, input)
	}
	var req echoRequest
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, err
	}
	return req.Text, nil
}

type arrayTool struct{ stubTool }

func (*arrayTool) Schema() (*jsonschema.Schema, error) {
	return &jsonschema.Schema{Type: "array"}, nil
}

///////////////////////////////////////////////////////////////////////////////
// REGISTRY

func Test_tool_001(t *testing.T) {
	assert := assert.New(t)
	tk, err := tool.NewToolkit(&stubTool{name: "zeta"}, &stubTool{name: "alpha"})
	require.NoError(t, err)

	assert.Equal(2, tk.Len())
	tools := tk.Tools()
	assert.Equal("alpha", tools[0].Name())
	assert.Equal("zeta", tools[1].Name())
	assert.Equal("<toolkit alpha zeta>", tk.String())
}

func Test_tool_002(t *testing.T) {
	// Invalid names, nil tools and duplicates are rejected
	assert := assert.New(t)
	tk, err := tool.NewToolkit(&stubTool{name: "echo"})
	require.NoError(t, err)

	assert.ErrorIs(tk.Register(nil), llm.ErrBadParameter)
	assert.ErrorIs(tk.Register(&stubTool{name: ""}), llm.ErrBadParameter)
	assert.ErrorIs(tk.Register(&stubTool{name: "9lives"}), llm.ErrBadParameter)
	assert.ErrorIs(tk.Register(&stubTool{name: "has space"}), llm.ErrBadParameter)
	assert.ErrorIs(tk.Register(&stubTool{name: "echo"}), llm.ErrBadParameter)
	assert.ErrorIs(tk.Register(&arrayTool{stubTool{name: "array"}}), llm.ErrBadParameter)
	assert.Equal(1, tk.Len())
}

func Test_tool_003(t *testing.T) {
	// A failing batch registers nothing
	assert := assert.New(t)
	tk, err := tool.NewToolkit()
	require.NoError(t, err)

	err = tk.Register(&stubTool{name: "a"}, &stubTool{name: "b"}, &stubTool{name: "a"})
	assert.ErrorIs(err, llm.ErrBadParameter)
	assert.Equal(0, tk.Len())
	assert.Nil(tk.Lookup("a"))
}

func Test_tool_004(t *testing.T) {
	// Lookup is an exact match
	assert := assert.New(t)
	tk, err := tool.NewToolkit(&stubTool{name: "get_weather"})
	require.NoError(t, err)

	assert.NotNil(tk.Lookup("get_weather"))
	assert.Nil(tk.Lookup("GET_WEATHER"))
	assert.Nil(tk.Lookup("get_weather "))

	_, err = tk.Resolve("get_forecast")
	assert.ErrorIs(err, llm.ErrNotFound)
}

func Test_tool_005(t *testing.T) {
	assert := assert.New(t)
	tk, err := tool.NewToolkit(&stubTool{name: "echo"})
	require.NoError(t, err)

	desc, err := tk.Describe()
	require.NoError(t, err)
	require.Len(t, desc, 1)
	assert.Equal("echo", desc[0].Name)
	assert.Equal("stub echo", desc[0].Description)
	assert.Equal("object", desc[0].ArgsSchema.Type)
	assert.Equal([]string{"text"}, desc[0].ArgsSchema.Required)

	data, err := json.Marshal(desc[0])
	require.NoError(t, err)
	assert.Contains(string(data), `"args_schema":`)
}

///////////////////////////////////////////////////////////////////////////////
// DISPATCHER

func Test_invoke_001(t *testing.T) {
	assert := assert.New(t)
	echo := &stubTool{name: "echo"}
	tk, err := tool.NewToolkit(echo)
	require.NoError(t, err)

	result := tk.Invoke(context.Background(), tool.Request{Name: "echo", Arguments: json.RawMessage(`{"text":"hello"}`)})
	assert.True(result.OK())
	assert.NoError(result.Error())
	assert.Equal("hello", result.Payload)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Equal(`"hello"`, string(data))
}

func Test_invoke_002(t *testing.T) {
	// Unknown tool is an error record, not a fault
	assert := assert.New(t)
	tk, err := tool.NewToolkit()
	require.NoError(t, err)

	result := tk.Invoke(context.Background(), tool.Request{Name: "missing"})
	assert.False(result.OK())
	assert.Equal(tool.KindNotFound, result.Err.Kind)
	assert.ErrorIs(result.Error(), llm.ErrNotFound)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(`{"error":"not_found","message":"not found: tool not found: \"missing\""}`, string(data))
}

func Test_invoke_003(t *testing.T) {
	// Missing required keys never reach the handler
	assert := assert.New(t)
	echo := &stubTool{name: "echo"}
	tk, err := tool.NewToolkit(echo)
	require.NoError(t, err)

	for _, args := range []string{``, `null`, `{}`, `{"times":2}`} {
		result := tk.Invoke(context.Background(), tool.Request{Name: "echo", Arguments: json.RawMessage(args)})
		assert.Equal(tool.KindInvalidArguments, result.Err.Kind, args)
		assert.Contains(result.Err.Message, `"text"`, args)
	}
	assert.Equal(int32(0), echo.calls.Load())
}

func Test_invoke_004(t *testing.T) {
	// Arguments which are not an object, or have the wrong type
	assert := assert.New(t)
	echo := &stubTool{name: "echo"}
	tk, err := tool.NewToolkit(echo)
	require.NoError(t, err)

	for _, args := range []string{`[]`, `"text"`, `42`, `{"text":42}`, `{bad json`} {
		result := tk.Invoke(context.Background(), tool.Request{Name: "echo", Arguments: json.RawMessage(args)})
		if assert.NotNil(result.Err, args) {
			assert.Equal(tool.KindInvalidArguments, result.Err.Kind, args)
			assert.ErrorIs(result.Error(), llm.ErrBadParameter)
		}
	}
	assert.Equal(int32(0), echo.calls.Load())
}

func Test_invoke_005(t *testing.T) {
	// Handler errors and panics become handler_error
	assert := assert.New(t)
	failing := &stubTool{name: "failing", run: func(context.Context, json.RawMessage) (any, error) {
		return nil, errors.New("disk full")
	}}
	panicking := &stubTool{name: "panicking", run: func(context.Context, json.RawMessage) (any, error) {
		panic("boom")
	}}
	tk, err := tool.NewToolkit(failing, panicking)
	require.NoError(t, err)

	args := json.RawMessage(`{"text":"x"}`)
	result := tk.Invoke(context.Background(), tool.Request{Name: "failing", Arguments: args})
	assert.Equal(tool.KindHandlerError, result.Err.Kind)
	assert.Equal("disk full", result.Err.Message)

	result = tk.Invoke(context.Background(), tool.Request{Name: "panicking", Arguments: args})
	assert.Equal(tool.KindHandlerError, result.Err.Kind)
	assert.Contains(result.Err.Message, "boom")
	assert.ErrorIs(result.Error(), llm.ErrInternalServerError)
}

func Test_invoke_006(t *testing.T) {
	// Run accepts values, raw JSON and bytes
	assert := assert.New(t)
	tk, err := tool.NewToolkit(&stubTool{name: "echo"})
	require.NoError(t, err)

	out, err := tk.Run(context.Background(), "echo", map[string]any{"text": "a"})
	assert.NoError(err)
	assert.Equal("a", out)

	out, err = tk.Run(context.Background(), "echo", json.RawMessage(`{"text":"b"}`))
	assert.NoError(err)
	assert.Equal("b", out)

	out, err = tk.Run(context.Background(), "echo", []byte(`{"text":"c"}`))
	assert.NoError(err)
	assert.Equal("c", out)

	_, err = tk.Run(context.Background(), "echo", nil)
	assert.ErrorIs(err, llm.ErrBadParameter)

	_, err = tk.Run(context.Background(), "nope", nil)
	assert.ErrorIs(err, llm.ErrNotFound)
}
