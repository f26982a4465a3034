package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	// Packages
	llm "github.com/mutablelogic/go-llmservice"
	agent "github.com/mutablelogic/go-llmservice/pkg/agent"
	mcpclient "github.com/mutablelogic/go-llmservice/pkg/mcp/client"
	ollama "github.com/mutablelogic/go-llmservice/pkg/ollama"
	query "github.com/mutablelogic/go-llmservice/pkg/query"
	session "github.com/mutablelogic/go-llmservice/pkg/session"
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
	ui "github.com/mutablelogic/go-llmservice/pkg/ui"
	command "github.com/mutablelogic/go-llmservice/pkg/ui/command"
	table "github.com/mutablelogic/go-llmservice/pkg/ui/table"
	terminal "github.com/mutablelogic/go-llmservice/pkg/ui/terminal"
	version "github.com/mutablelogic/go-llmservice/pkg/version"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type ChatCmd struct {
	Config      string  `name:"config" short:"c" env:"MCP_CONFIG" default:"mcp.json" help:"MCP server configuration file (JSON or YAML)"`
	Thread      string  `name:"thread" default:"user-001" help:"Conversation thread"`
	Temperature float64 `name:"temperature" default:"0.7" help:"Sampling temperature"`
	MaxSteps    int     `name:"max-steps" default:"10" help:"Maximum number of model calls for each question"`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *ChatCmd) Run(ctx *Globals) error {
	// Read the configuration
	config, err := mcpclient.Parse(cmd.Config)
	if errors.Is(err, llm.ErrNotFound) {
		ctx.logger.Infow("create the configuration file, see mcp.json.example", "config", cmd.Config)
		return err
	} else if err != nil {
		return err
	}

	// Connect to the servers, continuing with those which succeed
	remote, err := mcpclient.Connect(ctx.ctx, config,
		mcpclient.WithLogger(ctx.logger),
		mcpclient.WithImplementation(ctx.execName, version.Version()),
	)
	if remote == nil {
		return err
	} else if err != nil {
		ctx.logger.Warnw("some servers could not be connected", "error", err)
	}
	defer func() {
		ctx.logger.Infow("closing connections")
		if err := remote.Close(); err != nil {
			ctx.logger.Warnw("error closing connections", "error", err)
		}
	}()

	// Create a toolkit from the remote tools
	tools, err := remote.Tools(ctx.ctx)
	if err != nil {
		return err
	}
	toolkit, err := tool.NewToolkit(tools...)
	if err != nil {
		return err
	}
	ctx.logger.Infow("connected", "servers", strings.Join(remote.Servers(), ","), "tools", toolkit.Len())

	// Create the agent
	client, err := ctx.Client()
	if err != nil {
		return err
	}
	agent, err := agent.New(client, ctx.ModelName(),
		agent.WithSystemPrompt(agent.ToolPrompt(tools)),
		agent.WithToolkit(toolkit),
		agent.WithStore(session.NewMemoryStore()),
		agent.WithMaxSteps(cmd.MaxSteps),
		agent.WithChatOpts(ollama.WithTemperature(cmd.Temperature)),
		agent.WithTracer(ctx.tracer),
		agent.WithLogger(ctx.logger),
	)
	if err != nil {
		return err
	}

	// Create the terminal
	term, err := terminal.New(terminal.WithConversation(cmd.Thread))
	if err != nil {
		return err
	}
	defer term.Close()

	// Print the tools and the welcome message
	if descriptors, err := toolkit.Describe(); err != nil {
		return err
	} else if len(descriptors) > 0 {
		fmt.Fprintln(os.Stdout, table.Render(table.Tools(descriptors), term.Width()))
	}
	fmt.Fprintln(os.Stdout, command.Welcome)

	// Run the chat loop
	return chat(ctx.ctx, term, command.New(toolkit, term.Width()), agent)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// chat receives events until the input ends or the user quits. Errors in
// answering a question are reported and the loop continues.
func chat(ctx context.Context, chatui ui.ChatUI, handler *command.Handler, asker query.Asker) error {
	for {
		evt, err := chatui.Receive(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}

		// Commands
		if evt.Type == ui.EventCommand {
			quit, err := handler.Handle(ctx, evt)
			if err != nil {
				if err := evt.Context.SendError(ctx, err); err != nil {
					return err
				}
			}
			if quit {
				return nil
			}
			continue
		}

		// Questions
		if err := evt.Context.SetTyping(ctx, true); err != nil {
			return err
		}
		answer, err := asker.Ask(ctx, evt.Context.ConversationID(), evt.Text)
		if err := evt.Context.SetTyping(ctx, false); err != nil {
			return err
		}
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			err = evt.Context.SendError(ctx, err)
		case strings.TrimSpace(answer) == "":
			err = evt.Context.SendError(ctx, llm.ErrNoResponse.With("没有收到有效响应"))
		default:
			err = evt.Context.SendMarkdown(ctx, answer)
		}
		if err != nil {
			return err
		}
	}
}
