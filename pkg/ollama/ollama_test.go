package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	// Packages
	opts "github.com/mutablelogic/go-client"
	llm "github.com/mutablelogic/go-llmservice"
	ollama "github.com/mutablelogic/go-llmservice/pkg/ollama"
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
	weather "github.com/mutablelogic/go-llmservice/pkg/weather"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

///////////////////////////////////////////////////////////////////////////////
// TEST SET-UP

// Helper to start a fake ollama server, which records the last request body
func newServer(t *testing.T, handler func(path string, body map[string]any) any) *ollama.Client {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Method == http.MethodPost {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(handler(r.URL.Path, body))
	}))
	t.Cleanup(ts.Close)

	client, err := ollama.New(ts.URL + "/api")
	require.NoError(t, err)
	return client
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_client_001(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("http://localhost:12356/api", ollama.Endpoint(""))
	assert.Equal("http://localhost:12356/api", ollama.Endpoint("localhost:12356"))
	assert.Equal("https://ollama.local/api", ollama.Endpoint("https://ollama.local/"))
	assert.Equal("http://127.0.0.1:11434/api", ollama.Endpoint("http://127.0.0.1:11434/api"))

	_, err := ollama.New("")
	assert.ErrorIs(err, llm.ErrBadParameter)
}

func Test_chat_001(t *testing.T) {
	assert := assert.New(t)
	var request map[string]any
	client := newServer(t, func(path string, body map[string]any) any {
		assert.Equal("/api/chat", path)
		request = body
		return map[string]any{
			"model":       "llama3.1:8b",
			"message":     map[string]any{"role": "assistant", "content": "The sky is blue"},
			"done":        true,
			"done_reason": "stop",
			"eval_count":  5,
		}
	})

	response, err := client.Chat(context.Background(), "llama3.1:8b", []ollama.Message{
		ollama.SystemMessage("be brief"),
		ollama.UserMessage("why is the sky blue?"),
	}, ollama.WithTemperature(0.7), ollama.WithTopK(40), ollama.WithSeed(42), ollama.WithKeepAlive(5*time.Minute))
	require.NoError(t, err)
	assert.Equal("The sky is blue", response.Message.Content)
	assert.Equal("assistant", response.Message.Role)
	assert.True(response.Done)
	assert.Equal(5, response.EvalCount)

	// Check the request
	assert.Equal("llama3.1:8b", request["model"])
	assert.Equal(false, request["stream"])
	assert.Equal("5m0s", request["keep_alive"])
	assert.Equal(map[string]any{"temperature": 0.7, "top_k": float64(40), "seed": float64(42)}, request["options"])
	assert.Len(request["messages"], 2)
	assert.Nil(request["tools"])
}

func Test_chat_002(t *testing.T) {
	// Tools are sent, and tool calls are returned
	assert := assert.New(t)
	tk, err := tool.NewToolkit(weather.NewTool(nil))
	require.NoError(t, err)

	var request map[string]any
	client := newServer(t, func(path string, body map[string]any) any {
		request = body
		return map[string]any{
			"model": "llama3.1:8b",
			"message": map[string]any{
				"role":    "assistant",
				"content": "",
				"tool_calls": []any{
					map[string]any{"function": map[string]any{"name": "get_weather", "arguments": map[string]any{"city": "Beijing"}}},
				},
			},
			"done": true,
		}
	})

	response, err := client.Chat(context.Background(), "llama3.1:8b", []ollama.Message{ollama.UserMessage("weather in Beijing?")}, ollama.WithToolkit(tk))
	require.NoError(t, err)
	require.Len(t, response.Message.ToolCalls, 1)
	call := response.Message.ToolCalls[0]
	assert.Equal("get_weather", call.Function.Name)
	assert.JSONEq(`{"city":"Beijing"}`, string(call.Arguments()))

	tools, ok := request["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 1)
	fn := tools[0].(map[string]any)["function"].(map[string]any)
	assert.Equal("get_weather", fn["name"])
	assert.Equal("object", fn["parameters"].(map[string]any)["type"])
}

func Test_chat_003(t *testing.T) {
	assert := assert.New(t)
	var request map[string]any
	client := newServer(t, func(path string, body map[string]any) any {
		request = body
		return map[string]any{"message": map[string]any{"role": "assistant", "content": `{"joke":"..."}`}, "done": true}
	})

	_, err := client.Chat(context.Background(), "llama3.1:8b", []ollama.Message{ollama.UserMessage("tell me a joke")}, ollama.WithJSONFormat())
	require.NoError(t, err)
	assert.Equal("json", request["format"])

	// Bad parameters
	_, err = client.Chat(context.Background(), "", []ollama.Message{ollama.UserMessage("x")})
	assert.ErrorIs(err, llm.ErrBadParameter)
	_, err = client.Chat(context.Background(), "llama3.1:8b", nil)
	assert.ErrorIs(err, llm.ErrBadParameter)
	_, err = client.Chat(context.Background(), "llama3.1:8b", []ollama.Message{ollama.UserMessage("x")}, ollama.WithTemperature(3))
	assert.ErrorIs(err, llm.ErrBadParameter)
	_, err = client.Chat(context.Background(), "llama3.1:8b", []ollama.Message{ollama.UserMessage("x")}, ollama.WithStream(nil))
	assert.ErrorIs(err, llm.ErrBadParameter)
}

func Test_embed_001(t *testing.T) {
	assert := assert.New(t)
	client := newServer(t, func(path string, body map[string]any) any {
		assert.Equal("/api/embed", path)
		input := body["input"].([]any)
		embeddings := make([][]float64, len(input))
		for i := range input {
			embeddings[i] = []float64{float64(i), 1}
		}
		return map[string]any{"model": body["model"], "embeddings": embeddings}
	})

	response, err := client.Embed(context.Background(), "nomic-embed-text", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(response.Embeddings, 3)
	assert.Equal([]float64{2, 1}, response.Embeddings[2])

	vector, err := client.Embedding(context.Background(), "nomic-embed-text", "a")
	require.NoError(t, err)
	assert.Equal([]float64{0, 1}, vector)

	_, err = client.Embed(context.Background(), "nomic-embed-text", nil)
	assert.ErrorIs(err, llm.ErrBadParameter)
}

func Test_model_001(t *testing.T) {
	assert := assert.New(t)
	client := newServer(t, func(path string, body map[string]any) any {
		assert.Equal("/api/tags", path)
		return map[string]any{"models": []any{
			map[string]any{"name": "llama3.1:8b", "size": 4920753328, "details": map[string]any{"family": "llama", "parameter_size": "8.0B"}},
		}}
	})

	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal("llama3.1:8b", models[0].Name)
	assert.Equal("8.0B", models[0].Details.ParameterSize)
}

func Test_live_001(t *testing.T) {
	endpoint := os.Getenv("OLLAMA_URL")
	if endpoint == "" {
		t.Skip("OLLAMA_URL not set")
	}
	assert := assert.New(t)
	client, err := ollama.New(ollama.Endpoint(endpoint), opts.OptTrace(os.Stderr, testing.Verbose()), opts.OptTimeout(5*time.Minute))
	require.NoError(t, err)

	models, err := client.ListModels(context.Background())
	assert.NoError(err)
	for _, model := range models {
		t.Log(model.Name)
	}
}
