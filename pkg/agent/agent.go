// Package agent answers questions with a chat model which may call tools.
// The agent sends the conversation to the model, runs any tool calls the
// model requests and sends the results back, until the model answers.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	// Packages
	otel "github.com/mutablelogic/go-client/pkg/otel"
	llm "github.com/mutablelogic/go-llmservice"
	log "github.com/mutablelogic/go-llmservice/pkg/log"
	ollama "github.com/mutablelogic/go-llmservice/pkg/ollama"
	session "github.com/mutablelogic/go-llmservice/pkg/session"
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
	attribute "go.opentelemetry.io/otel/attribute"
	trace "go.opentelemetry.io/otel/trace"
	noop "go.opentelemetry.io/otel/trace/noop"
)

///////////////////////////////////////////////////////////////////////////////
// INTERFACE

// Chatter sends messages to a model and returns the response
type Chatter interface {
	Chat(ctx context.Context, model string, messages []ollama.Message, opts ...ollama.Opt) (*ollama.Response, error)
}

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Agent struct {
	client   Chatter
	model    string
	prompt   string
	toolkit  *tool.Toolkit
	store    session.Store
	maxSteps int
	opts     []ollama.Opt
	tracer   trace.Tracer
	log      *log.Logger
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultModel    = "llama3.1:8b"
	DefaultMaxSteps = 10
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns an agent which chats with the named model
func New(client Chatter, model string, opts ...Opt) (*Agent, error) {
	if client == nil {
		return nil, llm.ErrBadParameter.With("missing client")
	}
	if model == "" {
		model = DefaultModel
	}

	self := &Agent{
		client:   client,
		model:    model,
		prompt:   DefaultSystemPrompt,
		maxSteps: DefaultMaxSteps,
		tracer:   noop.NewTracerProvider().Tracer("agent"),
		log:      log.Nop(),
	}
	for _, opt := range opts {
		if err := opt(self); err != nil {
			return nil, err
		}
	}

	// Return success
	return self, nil
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (a *Agent) String() string {
	return fmt.Sprintf("<agent model=%q tools=%d steps=%d>", a.model, a.toolkit.Len(), a.maxSteps)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Model returns the model name
func (a *Agent) Model() string {
	return a.model
}

// Toolkit returns the tools the model may call, which may be nil
func (a *Agent) Toolkit() *tool.Toolkit {
	return a.toolkit
}

// Ask sends the question to the model and returns the answer, which may be
// empty. When thread is not empty and the agent has a store, the history of
// the thread is sent with the question, and the question and answer are
// appended to the thread. Tool failures are returned to the model, not to
// the caller. Returns ErrInternalServerError if the model is still calling
// tools after the maximum number of steps, in which case the thread is not
// changed.
func (a *Agent) Ask(ctx context.Context, thread, question string) (answer string, err error) {
	ctx, endSpan := otel.StartSpan(a.tracer, ctx, "Ask",
		attribute.String("model", a.model),
		attribute.String("thread", thread),
	)
	defer func() { endSpan(err) }()

	// Load the history
	history, err := a.history(ctx, thread)
	if err != nil {
		return "", err
	}

	// Chat options
	opts := a.opts
	if a.toolkit.Len() > 0 {
		opts = append(append([]ollama.Opt{}, opts...), ollama.WithToolkit(a.toolkit))
	}

	// Run the loop, collecting the messages of this turn
	turn := []ollama.Message{ollama.UserMessage(question)}
	for step := 0; step < a.maxSteps; step++ {
		response, err := a.chat(ctx, step, a.messages(history, turn), opts...)
		if err != nil {
			return "", err
		}
		turn = append(turn, response.Message)

		// Answered
		calls := response.Message.ToolCalls
		if len(calls) == 0 {
			if err := a.save(ctx, thread, turn); err != nil {
				return "", err
			}
			return strings.TrimSpace(response.Message.Content), nil
		}

		// Run the tools and send the results back
		turn = append(turn, a.runTools(ctx, calls)...)
	}

	return "", llm.ErrInternalServerError.Withf("no answer after %d steps", a.maxSteps)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (a *Agent) history(ctx context.Context, thread string) ([]ollama.Message, error) {
	if thread == "" || a.store == nil {
		return nil, nil
	}
	t, err := a.store.Get(ctx, thread)
	if errors.Is(err, llm.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return t.Messages, nil
}

func (a *Agent) save(ctx context.Context, thread string, turn []ollama.Message) error {
	if thread == "" || a.store == nil {
		return nil
	}
	_, err := a.store.Append(ctx, thread, turn...)
	return err
}

// messages returns the system prompt, the trimmed history and every message
// of the current turn
func (a *Agent) messages(history, turn []ollama.Message) []ollama.Message {
	history = session.Trim(history)
	result := make([]ollama.Message, 0, len(history)+len(turn)+1)
	if a.prompt != "" {
		result = append(result, ollama.SystemMessage(a.prompt))
	}
	result = append(result, history...)
	return append(result, turn...)
}

func (a *Agent) chat(ctx context.Context, step int, messages []ollama.Message, opts ...ollama.Opt) (response *ollama.Response, err error) {
	ctx, endSpan := otel.StartSpan(a.tracer, ctx, "Chat",
		attribute.Int("step", step),
		attribute.Int("messages", len(messages)),
	)
	defer func() { endSpan(err) }()

	response, err = a.client.Chat(ctx, a.model, messages, opts...)
	if err != nil {
		return nil, err
	}
	a.log.Debugw("chat", "model", a.model, "step", step, "tool_calls", len(response.Message.ToolCalls), "eval_count", response.EvalCount)
	return response, nil
}

// runTools runs the tool calls in parallel and returns one tool message per
// call, in call order
func (a *Agent) runTools(ctx context.Context, calls []ollama.ToolCall) []ollama.Message {
	results := make([]ollama.Message, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call ollama.ToolCall) {
			defer wg.Done()
			var result tool.Result
			if a.toolkit == nil {
				result = tool.NewError(tool.KindNotFound, llm.ErrNotFound.Withf("tool not found: %q", call.Function.Name))
			} else {
				result = a.toolkit.Invoke(ctx, tool.Request{Name: call.Function.Name, Arguments: call.Arguments()})
			}
			if result.OK() {
				a.log.Infow("tool call", "tool", call.Function.Name)
			} else {
				a.log.Warnw("tool call", "tool", call.Function.Name, "error", result.Err.Kind, "message", result.Err.Message)
			}
			results[i] = ollama.ToolMessage(call.Function.Name, content(result))
		}(i, call)
	}
	wg.Wait()
	return results
}

// content returns the text sent to the model for a tool result
func content(result tool.Result) string {
	if s, ok := result.Payload.(string); ok && result.OK() {
		return s
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err.Error()
	}
	return string(data)
}
