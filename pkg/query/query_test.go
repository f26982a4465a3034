package query_test

import (
	"context"
	"errors"
	"testing"

	// Packages
	llm "github.com/mutablelogic/go-llmservice"
	query "github.com/mutablelogic/go-llmservice/pkg/query"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	tracetest "go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// delegate returns a fixed answer and records the question
type delegate struct {
	answer   string
	err      error
	question string
	thread   string
}

func (d *delegate) Ask(_ context.Context, thread, question string) (string, error) {
	d.thread, d.question = thread, question
	return d.answer, d.err
}

func Test_query_001(t *testing.T) {
	assert := assert.New(t)
	_, err := query.New(nil)
	assert.ErrorIs(err, llm.ErrBadParameter)
}

func Test_query_002(t *testing.T) {
	// The question is forwarded unmodified
	assert := assert.New(t)
	d := &delegate{answer: "共有 10 条外特性数据"}
	service, err := query.New(d)
	require.NoError(t, err)

	response, err := service.Process(context.TODO(), query.Request{Question: "  表里有多少条数据？ ", Thread: "t"})
	require.NoError(t, err)
	assert.Equal("共有 10 条外特性数据", response.Response)
	assert.Equal("  表里有多少条数据？ ", d.question)
	assert.Equal("t", d.thread)
}

func Test_query_003(t *testing.T) {
	assert := assert.New(t)
	d := &delegate{answer: "x"}
	service, err := query.New(d)
	require.NoError(t, err)

	_, err = service.Process(context.TODO(), query.Request{})
	assert.ErrorIs(err, llm.ErrBadParameter)
	assert.Empty(d.question)

	// Whitespace is forwarded as it is
	response, err := service.Process(context.TODO(), query.Request{Question: " \n"})
	require.NoError(t, err)
	assert.Equal(" \n", d.question)
	assert.Equal("x", response.Response)
}

func Test_query_004(t *testing.T) {
	// No answer, and delegate failures
	assert := assert.New(t)
	d := &delegate{answer: "  "}
	service, err := query.New(d)
	require.NoError(t, err)

	_, err = service.Process(context.TODO(), query.Request{Question: "q"})
	assert.ErrorIs(err, llm.ErrNoResponse)

	cause := errors.New("database is locked")
	d.err = cause
	_, err = service.Process(context.TODO(), query.Request{Question: "q"})
	assert.ErrorIs(err, cause)
}

func Test_query_005(t *testing.T) {
	// Each call has a span
	assert := assert.New(t)
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	d := &delegate{answer: "ok"}
	service, err := query.New(d, query.WithTracer(provider.Tracer("test")))
	require.NoError(t, err)

	_, err = service.Process(context.TODO(), query.Request{Question: "q"})
	require.NoError(t, err)
	d.err = errors.New("failed")
	_, err = service.Process(context.TODO(), query.Request{Question: "q"})
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal("Process", spans[0].Name())
	assert.Equal("Process", spans[1].Name())
}
