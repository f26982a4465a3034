// Package terminal implements [ui.ChatUI] as a line-based terminal chat.
// Questions are read one line at a time and answers are rendered as
// markdown via glamour.
package terminal

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/user"
	"strings"
	"sync"

	// Packages
	glamour "github.com/charmbracelet/glamour"
	lipgloss "github.com/charmbracelet/lipgloss"
	llm "github.com/mutablelogic/go-llmservice"
	ui "github.com/mutablelogic/go-llmservice/pkg/ui"
	wordwrap "github.com/muesli/reflow/wordwrap"
	termenv "github.com/muesli/termenv"
	term "golang.org/x/term"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Terminal reads questions from an input stream and writes answers to an
// output stream
type Terminal struct {
	mu           sync.Mutex
	in           io.Reader
	out          io.Writer
	tty          bool
	width        int
	prompt       string
	userID       string
	conversation string
	renderer     *glamour.TermRenderer
	lines        chan string
	once         sync.Once
	done         chan struct{}
	closed       bool
	err          error
}

// Opt is an option for the terminal
type Opt func(*Terminal) error

type termContext struct {
	*Terminal
}

var _ ui.ChatUI = (*Terminal)(nil)
var _ ui.Context = (*termContext)(nil)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultWidth        = 80
	DefaultPrompt       = "👤 你: "
	DefaultConversation = "terminal"
	minWidth            = 20
	assistantLabel      = "🤖 AI:"
	typingText          = "🤔 正在思考..."
	errorLabel          = "❌ 处理请求时出错:"
)

var (
	promptStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")) // blue
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")) // green
	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))  // red
	dimStyle       = lipgloss.NewStyle().Faint(true)
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a terminal chat UI, which reads from stdin and writes to
// stdout unless other streams are given
func New(opts ...Opt) (*Terminal, error) {
	t := &Terminal{
		in:           os.Stdin,
		out:          os.Stdout,
		prompt:       DefaultPrompt,
		conversation: DefaultConversation,
		userID:       "user",
		done:         make(chan struct{}),
		lines:        make(chan string),
	}
	if u, err := user.Current(); err == nil {
		t.userID = u.Username
	}
	if f, ok := t.out.(*os.File); ok {
		t.tty = term.IsTerminal(int(f.Fd()))
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	// Width from the terminal, unless set
	if t.width == 0 {
		t.width = DefaultWidth
		if f, ok := t.out.(*os.File); ok && t.tty {
			if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
				t.width = w
			}
		}
	}

	// Detect the background before reading any input, so the terminal
	// response is not read as a question
	style := "notty"
	if t.tty {
		style = "dark"
		if !termenv.HasDarkBackground() {
			style = "light"
		}
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(t.wrapWidth()),
	)
	if err != nil {
		return nil, err
	}
	t.renderer = renderer

	return t, nil
}

// Close the terminal. Any blocked Receive returns io.EOF.
func (t *Terminal) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.closed = true
		close(t.done)
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithInput sets the stream questions are read from
func WithInput(r io.Reader) Opt {
	return func(t *Terminal) error {
		if r == nil {
			return llm.ErrBadParameter.With("input is required")
		}
		t.in = r
		return nil
	}
}

// WithOutput sets the stream answers are written to. Output which is not a
// terminal is rendered without colour.
func WithOutput(w io.Writer) Opt {
	return func(t *Terminal) error {
		if w == nil {
			return llm.ErrBadParameter.With("output is required")
		}
		t.out = w
		t.tty = false
		if f, ok := w.(*os.File); ok {
			t.tty = term.IsTerminal(int(f.Fd()))
		}
		return nil
	}
}

// WithWidth sets the width for word wrapping
func WithWidth(width int) Opt {
	return func(t *Terminal) error {
		if width < minWidth {
			return llm.ErrBadParameter.Withf("width must be at least %d", minWidth)
		}
		t.width = width
		return nil
	}
}

// WithPrompt sets the prompt printed before each line is read
func WithPrompt(prompt string) Opt {
	return func(t *Terminal) error {
		t.prompt = prompt
		return nil
	}
}

// WithConversation sets the conversation identifier for events
func WithConversation(id string) Opt {
	return func(t *Terminal) error {
		if strings.TrimSpace(id) == "" {
			return llm.ErrBadParameter.With("conversation is required")
		}
		t.conversation = id
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Width returns the width used for wrapping output
func (t *Terminal) Width() int {
	return t.width
}

// Receive prints the prompt and blocks until a non-blank line is read.
// Commands are returned as ui.EventCommand events.
func (t *Terminal) Receive(ctx context.Context) (ui.Event, error) {
	t.once.Do(func() {
		go t.read()
	})
	for {
		if err := t.write("\n" + promptStyle.Render(t.prompt)); err != nil {
			return ui.Event{}, err
		}
		select {
		case <-ctx.Done():
			return ui.Event{}, ctx.Err()
		case <-t.done:
			return ui.Event{}, io.EOF
		case line, ok := <-t.lines:
			if !ok {
				t.mu.Lock()
				defer t.mu.Unlock()
				if t.err != nil {
					return ui.Event{}, t.err
				}
				return ui.Event{}, io.EOF
			}
			if event, ok := ui.Parse(&termContext{t}, line); ok {
				return event, nil
			}
		}
	}
}

///////////////////////////////////////////////////////////////////////////////
// ui.Context IMPLEMENTATION

func (c *termContext) UserID() string         { return c.userID }
func (c *termContext) ConversationID() string { return c.conversation }

func (c *termContext) SendText(_ context.Context, text string) error {
	return c.writeln(wordwrap.String(text, c.width))
}

func (c *termContext) SendMarkdown(_ context.Context, markdown string) error {
	rendered, err := c.renderer.Render(markdown)
	if err != nil {
		rendered = wordwrap.String(markdown, c.wrapWidth())
	}
	return c.writeln("\n" + assistantStyle.Render(assistantLabel) + "\n" + indent(strings.TrimSpace(rendered)))
}

func (c *termContext) SendError(_ context.Context, err error) error {
	if err == nil {
		return nil
	}
	return c.writeln("\n" + errorStyle.Render(errorLabel) + " " + wordwrap.String(err.Error(), c.wrapWidth()))
}

func (c *termContext) SetTyping(_ context.Context, typing bool) error {
	if !typing {
		return nil
	}
	return c.writeln(dimStyle.Render(typingText))
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// read lines from the input until the end of the stream
func (t *Terminal) read() {
	defer close(t.lines)
	scanner := bufio.NewScanner(t.in)
	for scanner.Scan() {
		select {
		case t.lines <- scanner.Text():
		case <-t.done:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		t.mu.Lock()
		t.err = err
		t.mu.Unlock()
	}
}

func (t *Terminal) wrapWidth() int {
	return max(t.width-2, minWidth)
}

func (t *Terminal) write(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := io.WriteString(t.out, text)
	return err
}

func (t *Terminal) writeln(text string) error {
	return t.write(text + "\n")
}

// indent every non-empty line by two spaces, unless already indented
func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" && !strings.HasPrefix(line, "  ") {
			lines[i] = "  " + line
		}
	}
	return strings.Join(lines, "\n")
}
