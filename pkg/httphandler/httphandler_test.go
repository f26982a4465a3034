package httphandler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	// Packages
	llm "github.com/mutablelogic/go-llmservice"
	httphandler "github.com/mutablelogic/go-llmservice/pkg/httphandler"
	query "github.com/mutablelogic/go-llmservice/pkg/query"
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
	weather "github.com/mutablelogic/go-llmservice/pkg/weather"
	httprequest "github.com/mutablelogic/go-server/pkg/httprequest"
	jsonschema "github.com/mutablelogic/go-server/pkg/jsonschema"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

///////////////////////////////////////////////////////////////////////////////
// TEST SET-UP

type delegate struct {
	answer string
	err    error
}

func (d *delegate) Ask(_ context.Context, _, question string) (string, error) {
	if d.answer == "echo" {
		return "you asked: " + question, nil
	}
	return d.answer, d.err
}

func serveMux(t *testing.T, d *delegate) *http.ServeMux {
	t.Helper()
	service, err := query.New(d)
	require.NoError(t, err)
	toolkit, err := tool.NewToolkit(weather.NewTool(nil))
	require.NoError(t, err)

	mux := http.NewServeMux()
	require.NoError(t, httphandler.RegisterHandlers(service, toolkit, router{mux}))
	return mux
}

// router registers path items on a ServeMux at the root
type router struct {
	*http.ServeMux
}

func (r router) RegisterPath(path string, _ *jsonschema.Schema, item httprequest.PathItem) error {
	r.Handle("/"+path, item.Handler())
	return nil
}

func post(mux http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/query", bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	mux.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_query_001(t *testing.T) {
	// A missing question is a bad request
	assert := assert.New(t)
	mux := serveMux(t, &delegate{answer: "echo"})

	for _, body := range []string{`{}`, `{"question":""}`, `not json`} {
		w := post(mux, body)
		assert.Equal(http.StatusBadRequest, w.Code, body)
		assert.Equal(map[string]any{"error": "No question provided"}, decode(t, w), body)
	}
}

func Test_query_002(t *testing.T) {
	// A valid question is answered
	assert := assert.New(t)
	mux := serveMux(t, &delegate{answer: "echo"})

	w := post(mux, `{"question":"外特性表有多少行？"}`)
	assert.Equal(http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal("you asked: 外特性表有多少行？", body["response"])
	assert.Len(body, 1)
}

func Test_query_003(t *testing.T) {
	// No answer, and a failing delegate, are server errors
	assert := assert.New(t)

	w := post(serveMux(t, &delegate{answer: ""}), `{"question":"q"}`)
	assert.Equal(http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal("no_response", body["error"])
	assert.NotEmpty(body["message"])

	w = post(serveMux(t, &delegate{err: llm.ErrNotFound.With("database")}), `{"question":"q"}`)
	assert.Equal(http.StatusInternalServerError, w.Code)
	assert.Equal("not_found", decode(t, w)["error"])

	w = post(serveMux(t, &delegate{err: errors.New("connection refused")}), `{"question":"q"}`)
	assert.Equal(http.StatusInternalServerError, w.Code)
	assert.Equal("internal_error", decode(t, w)["error"])
}

func Test_query_004(t *testing.T) {
	// Only POST
	assert := assert.New(t)
	mux := serveMux(t, &delegate{answer: "echo"})
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/query", nil))
	assert.Equal(http.StatusMethodNotAllowed, w.Code)
}

func Test_query_005(t *testing.T) {
	// A question of spaces is still a question
	assert := assert.New(t)
	mux := serveMux(t, &delegate{answer: "echo"})

	w := post(mux, `{"question":"   "}`)
	assert.Equal(http.StatusOK, w.Code)
	assert.Equal("you asked:    ", decode(t, w)["response"])
}

func Test_tool_001(t *testing.T) {
	assert := assert.New(t)
	mux := serveMux(t, &delegate{})

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tools", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var tools []map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&tools))
	require.Len(t, tools, 1)
	assert.Equal("get_weather", tools[0]["name"])
	assert.Contains(tools[0], "args_schema")

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tools/get_weather", nil))
	assert.Equal(http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tools/missing", nil))
	assert.Equal(http.StatusNotFound, w.Code)
}
