package agent_test

import (
	"context"
	"testing"
	"time"

	// Packages
	llm "github.com/mutablelogic/go-llmservice"
	agent "github.com/mutablelogic/go-llmservice/pkg/agent"
	ollama "github.com/mutablelogic/go-llmservice/pkg/ollama"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

func Test_generate_001(t *testing.T) {
	assert := assert.New(t)
	model := &script{replies: []ollama.Message{ollama.AssistantMessage(`{"joke":"为什么程序员喜欢黑暗？因为光会产生 bug。"}`)}}
	a, err := agent.New(model, "deepseek-r1:70b")
	require.NoError(t, err)

	result, err := a.GenerateJSON(context.TODO(), "告诉我一个笑话。")
	require.NoError(t, err)
	assert.Contains(result.Value, "joke")
	assert.GreaterOrEqual(result.Duration, time.Duration(0))

	// The prompt has the format instructions and the question, without a system prompt
	require.Len(t, model.calls, 1)
	require.Len(t, model.calls[0], 1)
	assert.Contains(model.calls[0][0].Content, "Return a JSON object.")
	assert.Contains(model.calls[0][0].Content, "问题为告诉我一个笑话。")

	_, err = a.GenerateJSON(context.TODO(), " ")
	assert.ErrorIs(err, llm.ErrBadParameter)
}

func Test_generate_002(t *testing.T) {
	assert := assert.New(t)

	value, err := agent.ParseJSON(`{"a":1}`)
	require.NoError(t, err)
	assert.Equal(map[string]any{"a": float64(1)}, value)

	value, err = agent.ParseJSON("<think>\nlet me think\n</think>\n```json\n{\"a\": \"b\"}\n```")
	require.NoError(t, err)
	assert.Equal(map[string]any{"a": "b"}, value)

	_, err = agent.ParseJSON("<think>x</think>")
	assert.ErrorIs(err, llm.ErrNoResponse)

	_, err = agent.ParseJSON("[1,2]")
	assert.ErrorIs(err, llm.ErrInternalServerError)

	_, err = agent.ParseJSON("null")
	assert.ErrorIs(err, llm.ErrInternalServerError)
}
