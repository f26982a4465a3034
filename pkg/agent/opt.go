package agent

import (
	// Packages
	llm "github.com/mutablelogic/go-llmservice"
	log "github.com/mutablelogic/go-llmservice/pkg/log"
	ollama "github.com/mutablelogic/go-llmservice/pkg/ollama"
	session "github.com/mutablelogic/go-llmservice/pkg/session"
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Opt is a functional option for configuring an agent
type Opt func(*Agent) error

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithSystemPrompt sets the system prompt. An empty prompt sends no system message.
func WithSystemPrompt(prompt string) Opt {
	return func(a *Agent) error {
		a.prompt = prompt
		return nil
	}
}

// WithToolkit sets the tools the model may call
func WithToolkit(toolkit *tool.Toolkit) Opt {
	return func(a *Agent) error {
		if toolkit == nil {
			return llm.ErrBadParameter.With("toolkit is required")
		}
		a.toolkit = toolkit
		return nil
	}
}

// WithStore sets the store for conversation threads
func WithStore(store session.Store) Opt {
	return func(a *Agent) error {
		if store == nil {
			return llm.ErrBadParameter.With("store is required")
		}
		a.store = store
		return nil
	}
}

// WithMaxSteps sets the maximum number of model calls for one question
func WithMaxSteps(n int) Opt {
	return func(a *Agent) error {
		if n <= 0 {
			return llm.ErrBadParameter.With("max steps must be positive")
		}
		a.maxSteps = n
		return nil
	}
}

// WithChatOpts sets options sent with every model call
func WithChatOpts(opts ...ollama.Opt) Opt {
	return func(a *Agent) error {
		a.opts = append(a.opts, opts...)
		return nil
	}
}

func WithTracer(tracer trace.Tracer) Opt {
	return func(a *Agent) error {
		if tracer != nil {
			a.tracer = tracer
		}
		return nil
	}
}

func WithLogger(logger *log.Logger) Opt {
	return func(a *Agent) error {
		if logger != nil {
			a.log = logger
		}
		return nil
	}
}
