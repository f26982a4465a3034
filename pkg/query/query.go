// Package query forwards natural language questions to an agent and returns
// the answer.
package query

import (
	"context"
	"strings"

	// Packages
	otel "github.com/mutablelogic/go-client/pkg/otel"
	llm "github.com/mutablelogic/go-llmservice"
	log "github.com/mutablelogic/go-llmservice/pkg/log"
	attribute "go.opentelemetry.io/otel/attribute"
	trace "go.opentelemetry.io/otel/trace"
	noop "go.opentelemetry.io/otel/trace/noop"
)

///////////////////////////////////////////////////////////////////////////////
// INTERFACE

// Asker answers a question, with the history of a thread when the thread
// is not empty
type Asker interface {
	Ask(ctx context.Context, thread, question string) (string, error)
}

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Service struct {
	delegate Asker
	tracer   trace.Tracer
	log      *log.Logger
}

type Request struct {
	Question string `json:"question"`
	Thread   string `json:"thread,omitempty"`
}

type Response struct {
	Response string `json:"response"`
}

type Opt func(*Service) error

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func New(delegate Asker, opts ...Opt) (*Service, error) {
	if delegate == nil {
		return nil, llm.ErrBadParameter.With("missing delegate")
	}
	self := &Service{
		delegate: delegate,
		tracer:   noop.NewTracerProvider().Tracer("query"),
		log:      log.Nop(),
	}
	for _, opt := range opts {
		if err := opt(self); err != nil {
			return nil, err
		}
	}
	return self, nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

func WithTracer(tracer trace.Tracer) Opt {
	return func(s *Service) error {
		if tracer != nil {
			s.tracer = tracer
		}
		return nil
	}
}

func WithLogger(logger *log.Logger) Opt {
	return func(s *Service) error {
		if logger != nil {
			s.log = logger
		}
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Process forwards the question, unmodified, to the delegate. An empty
// question is ErrBadParameter, and a blank answer is ErrNoResponse. Other
// errors from the delegate are returned as they are.
func (s *Service) Process(ctx context.Context, req Request) (response *Response, err error) {
	ctx, endSpan := otel.StartSpan(s.tracer, ctx, "Process",
		attribute.String("thread", req.Thread),
	)
	defer func() { endSpan(err) }()

	if req.Question == "" {
		return nil, llm.ErrBadParameter.With("No question provided")
	}

	answer, err := s.delegate.Ask(ctx, req.Thread, req.Question)
	if err != nil {
		s.log.Errorw("query", "thread", req.Thread, "error", err)
		return nil, err
	}
	if strings.TrimSpace(answer) == "" {
		return nil, llm.ErrNoResponse.With("the delegate returned no answer")
	}

	s.log.Infow("query", "thread", req.Thread, "question", req.Question, "length", len(answer))
	return &Response{Response: answer}, nil
}
