package terminal_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	// Packages
	llm "github.com/mutablelogic/go-llmservice"
	ui "github.com/mutablelogic/go-llmservice/pkg/ui"
	terminal "github.com/mutablelogic/go-llmservice/pkg/ui/terminal"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

func Test_terminal_001(t *testing.T) {
	assert := assert.New(t)

	_, err := terminal.New(terminal.WithWidth(5))
	assert.ErrorIs(err, llm.ErrBadParameter)
	_, err = terminal.New(terminal.WithInput(nil))
	assert.ErrorIs(err, llm.ErrBadParameter)
	_, err = terminal.New(terminal.WithConversation(" "))
	assert.ErrorIs(err, llm.ErrBadParameter)

	term, err := terminal.New(terminal.WithOutput(io.Discard))
	require.NoError(t, err)
	assert.Equal(terminal.DefaultWidth, term.Width())
}

func Test_terminal_002(t *testing.T) {
	// Blank lines are skipped, and the end of input is io.EOF
	assert := assert.New(t)
	var out bytes.Buffer
	term, err := terminal.New(
		terminal.WithInput(strings.NewReader("北京天气怎么样?\n\n   \ntools\nquit\n")),
		terminal.WithOutput(&out),
		terminal.WithConversation("user-001"),
	)
	require.NoError(t, err)
	defer term.Close()

	ctx := context.Background()
	event, err := term.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(ui.EventText, event.Type)
	assert.Equal("北京天气怎么样?", event.Text)
	assert.Equal("user-001", event.Context.ConversationID())
	assert.NotEmpty(event.Context.UserID())

	event, err = term.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(ui.EventCommand, event.Type)
	assert.Equal("tools", event.Command)

	event, err = term.Receive(ctx)
	require.NoError(t, err)
	assert.True(event.IsQuit())

	_, err = term.Receive(ctx)
	assert.ErrorIs(err, io.EOF)
	assert.Contains(out.String(), terminal.DefaultPrompt)
}

func Test_terminal_003(t *testing.T) {
	// Receive returns when the context is cancelled or the terminal closed
	assert := assert.New(t)
	r, w := io.Pipe()
	defer w.Close()
	term, err := terminal.New(terminal.WithInput(r), terminal.WithOutput(io.Discard))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = term.Receive(ctx)
	assert.True(errors.Is(err, context.DeadlineExceeded))

	go func() {
		time.Sleep(20 * time.Millisecond)
		term.Close()
	}()
	_, err = term.Receive(context.Background())
	assert.ErrorIs(err, io.EOF)
	assert.NoError(term.Close())
}

func Test_terminal_004(t *testing.T) {
	assert := assert.New(t)
	var out bytes.Buffer
	term, err := terminal.New(
		terminal.WithInput(strings.NewReader("question\n")),
		terminal.WithOutput(&out),
		terminal.WithWidth(40),
	)
	require.NoError(t, err)
	defer term.Close()

	ctx := context.Background()
	event, err := term.Receive(ctx)
	require.NoError(t, err)
	out.Reset()

	require.NoError(t, event.Context.SetTyping(ctx, true))
	require.NoError(t, event.Context.SetTyping(ctx, false))
	require.NoError(t, event.Context.SendMarkdown(ctx, "The weather in **Beijing** is sunny"))
	require.NoError(t, event.Context.SendError(ctx, llm.ErrNoResponse.With("没有收到有效响应")))
	require.NoError(t, event.Context.SendError(ctx, nil))

	text := out.String()
	assert.Equal(1, strings.Count(text, "正在思考"))
	assert.Contains(text, "AI:")
	assert.Contains(text, "Beijing")
	assert.Contains(text, "没有收到有效响应")

	out.Reset()
	require.NoError(t, event.Context.SendText(ctx, strings.Repeat("word ", 20)))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Greater(len(lines), 1)
	for _, line := range lines {
		assert.LessOrEqual(len(strings.TrimSpace(line)), 40, line)
	}
}
