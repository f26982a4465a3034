package ui

import (
	"slices"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	CmdQuit  = "quit"
	CmdExit  = "exit"
	CmdQ     = "q"
	CmdTools = "tools"
	CmdHelp  = "help"
)

// Commands recognised without a leading slash
var bareCommands = []string{CmdQuit, CmdExit, CmdQ, CmdTools, CmdHelp}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Parse turns a line of input into an event. It returns false for a blank
// line. A line starting with "/" is always a command, and the bare words
// quit, exit, q, tools and help (in any case) are commands too.
func Parse(ctx Context, line string) (Event, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Event{}, false
	}

	event := Event{
		Type:    EventText,
		Context: ctx,
		Text:    line,
	}
	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	switch {
	case strings.HasPrefix(name, "/"):
		name = strings.TrimPrefix(name, "/")
		if name == "" {
			return event, true
		}
	case len(fields) == 1 && slices.Contains(bareCommands, name):
		// Bare command
	default:
		return event, true
	}

	event.Type = EventCommand
	event.Command = name
	event.Args = fields[1:]
	return event, true
}

// IsQuit returns true if the event asks to leave the chat
func (e Event) IsQuit() bool {
	if e.Type != EventCommand {
		return false
	}
	switch e.Command {
	case CmdQuit, CmdExit, CmdQ:
		return true
	}
	return false
}
