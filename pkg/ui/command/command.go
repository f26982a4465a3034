// Package command implements the commands understood by the chat loop.
//
// The [Handler] processes quit, tools and help against any [ui.Context], so
// the same logic can serve any frontend.
package command

import (
	"context"
	"strings"

	// Packages
	llm "github.com/mutablelogic/go-llmservice"
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
	ui "github.com/mutablelogic/go-llmservice/pkg/ui"
	table "github.com/mutablelogic/go-llmservice/pkg/ui/table"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Describer lists the tools available to the agent.
// *tool.Toolkit satisfies this interface.
type Describer interface {
	Describe() ([]tool.Descriptor, error)
}

// Handler processes commands
type Handler struct {
	tools Describer
	width int
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	Welcome = "🤖 MCP Agent 已启动，可以开始对话了！\n" +
		"💡 输入 'quit' 或 'exit' 退出\n" +
		"💡 输入 'tools' 查看可用工具列表\n" +
		"💡 输入 'help' 查看帮助信息"
	Help = "可用命令:\n" +
		"  - quit/exit/q: 退出程序\n" +
		"  - tools: 显示工具列表\n" +
		"  - help: 显示帮助信息\n\n" +
		"或者直接输入你的问题，Agent会尝试使用工具来回答。"
	Goodbye = "👋 再见！"
	NoTools = "没有可用的工具"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a command handler for the given tools, which may be nil.
// Tables are fitted to width when it is positive.
func New(tools Describer, width int) *Handler {
	return &Handler{
		tools: tools,
		width: width,
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Handle processes a command event and returns true when the chat
// should end
func (h *Handler) Handle(ctx context.Context, evt ui.Event) (bool, error) {
	if evt.Type != ui.EventCommand {
		return false, llm.ErrBadParameter.Withf("not a command: %q", evt.Text)
	}
	switch evt.Command {
	case ui.CmdQuit, ui.CmdExit, ui.CmdQ:
		return true, evt.Context.SendText(ctx, Goodbye)
	case ui.CmdTools:
		return false, h.cmdTools(ctx, evt)
	case ui.CmdHelp:
		return false, evt.Context.SendText(ctx, Help)
	default:
		return false, llm.ErrNotFound.Withf("unknown command: /%s (try help)", evt.Command)
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (h *Handler) cmdTools(ctx context.Context, evt ui.Event) error {
	if h.tools == nil {
		return evt.Context.SendText(ctx, NoTools)
	}
	descriptors, err := h.tools.Describe()
	if err != nil {
		return err
	}

	// Filter by name when arguments are given
	if len(evt.Args) > 0 {
		filtered := make([]tool.Descriptor, 0, len(descriptors))
		for _, d := range descriptors {
			for _, arg := range evt.Args {
				if strings.Contains(strings.ToLower(d.Name), strings.ToLower(arg)) {
					filtered = append(filtered, d)
					break
				}
			}
		}
		descriptors = filtered
	}
	if len(descriptors) == 0 {
		return evt.Context.SendText(ctx, NoTools)
	}
	return evt.Context.SendText(ctx, table.Render(table.Tools(descriptors), h.width))
}
