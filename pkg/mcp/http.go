package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	// Packages
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	llm "github.com/mutablelogic/go-llmservice"
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
	httprequest "github.com/mutablelogic/go-server/pkg/httprequest"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	cors "github.com/rs/cors"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	PathSSE        = "/sse"
	PathStreamable = "/mcp"
	PathTools      = "/tools"

	// Maximum size of a plain JSON invocation body
	maxArgumentsSize = 1 << 20
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Handler returns the HTTP handler for the server:
//
//	GET  /sse            MCP over server-sent events, with POST /sse?sessionid= for messages
//	     /mcp            MCP over streamable HTTP
//	GET  /tools          tool discovery as JSON
//	GET  /tools/{name}   a single tool as JSON
//	POST /tools/{name}   tool invocation as JSON
func (server *Server) Handler() http.Handler {
	getServer := func(*http.Request) *sdk.Server {
		return server.server
	}

	mux := http.NewServeMux()
	mux.Handle(PathSSE, sdk.NewSSEHandler(getServer, nil))
	mux.Handle(PathStreamable, sdk.NewStreamableHTTPHandler(getServer, nil))
	mux.HandleFunc("GET "+PathTools, server.listTools)
	mux.HandleFunc("GET "+PathTools+"/{name}", server.getTool)
	mux.HandleFunc("POST "+PathTools+"/{name}", server.callTool)

	return cors.AllowAll().Handler(mux)
}

// ListenAndServe binds to the address (or 0.0.0.0:8000 when empty) and
// serves until the context is done, when the listener is closed
func (server *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return server.Serve(ctx, listener)
}

// Serve accepts connections on the listener until the context is done
func (server *Server) Serve(ctx context.Context, listener net.Listener) error {
	// Event streams are long-lived, so there is no write timeout
	srv := &http.Server{
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	// Close the listener when the context is done
	stop := context.AfterFunc(ctx, func() {
		server.log.Infow("closing listener", "addr", listener.Addr().String())
		srv.Close()
	})
	defer stop()

	server.log.Infow("serving tools", "name", server.name, "addr", listener.Addr().String(), "tools", server.toolkit.Len())
	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (server *Server) listTools(w http.ResponseWriter, r *http.Request) {
	tools, err := server.toolkit.Describe()
	if err != nil {
		_ = httpresponse.Error(w, httpresponse.ErrInternalError.With(err))
		return
	}
	_ = httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), tools)
}

func (server *Server) getTool(w http.ResponseWriter, r *http.Request) {
	t, err := server.toolkit.Resolve(r.PathValue("name"))
	if err != nil {
		_ = httpresponse.Error(w, httpresponse.ErrNotFound.With(err))
		return
	}
	desc, err := tool.Describe(t)
	if err != nil {
		_ = httpresponse.Error(w, httpresponse.ErrInternalError.With(err))
		return
	}
	_ = httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), desc)
}

func (server *Server) callTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	// Read the arguments, which may be empty
	args, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxArgumentsSize))
	if err != nil {
		_ = httpresponse.JSON(w, http.StatusBadRequest, httprequest.Indent(r), tool.ErrorRecord{
			Kind:    tool.KindInvalidArguments,
			Message: err.Error(),
		})
		return
	}

	// Invoke the tool
	result := server.toolkit.Invoke(r.Context(), tool.Request{Name: name, Arguments: json.RawMessage(args)})
	if result.OK() {
		server.log.Infow("call tool", "tool", name)
	} else {
		server.log.Warnw("call tool", "tool", name, "error", result.Err.Kind, "message", result.Err.Message)
	}
	_ = httpresponse.JSON(w, statusFor(result), httprequest.Indent(r), result)
}

// statusFor returns the HTTP status for a dispatcher result
func statusFor(result tool.Result) int {
	if result.OK() {
		return http.StatusOK
	}
	switch result.Err.Code() {
	case llm.ErrNotFound:
		return http.StatusNotFound
	case llm.ErrBadParameter:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
