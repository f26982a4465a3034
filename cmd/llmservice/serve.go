package main

import (
	"crypto/tls"
	"fmt"
	"os"
	"path/filepath"

	// Packages
	agent "github.com/mutablelogic/go-llmservice/pkg/agent"
	fstool "github.com/mutablelogic/go-llmservice/pkg/fstool"
	httphandler "github.com/mutablelogic/go-llmservice/pkg/httphandler"
	mcp "github.com/mutablelogic/go-llmservice/pkg/mcp"
	query "github.com/mutablelogic/go-llmservice/pkg/query"
	session "github.com/mutablelogic/go-llmservice/pkg/session"
	sqldb "github.com/mutablelogic/go-llmservice/pkg/sqldb"
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
	version "github.com/mutablelogic/go-llmservice/pkg/version"
	weather "github.com/mutablelogic/go-llmservice/pkg/weather"
	httprouter "github.com/mutablelogic/go-server/pkg/httprouter"
	httpserver "github.com/mutablelogic/go-server/pkg/httpserver"
	errgroup "golang.org/x/sync/errgroup"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// ToolServer are the options for the MCP tool server
type ToolServer struct {
	ToolsAddr  string `name:"tools-addr" env:"TOOLS_ADDR" default:"0.0.0.0:8000" help:"Tool server listen address"`
	ServerName string `name:"server-name" default:"WeatherServerSSE" help:"Name the tool server reports to clients"`
	WritePath  string `name:"write-path" env:"WRITE_PATH" default:"res.txt" help:"File written by the write_file tool"`
}

// QueryServer are the options for the query service
type QueryServer struct {
	Sessions string `name:"sessions" env:"SESSIONS_PATH" help:"Directory for conversation threads (defaults to the user cache directory)"`
	MaxSteps int    `name:"max-steps" default:"10" help:"Maximum number of model calls for each question"`
}

// TLS server options
type TLS struct {
	ServerName string `name:"name" help:"TLS server name"`
	CertFile   string `name:"cert" help:"TLS certificate file"`
	KeyFile    string `name:"key" help:"TLS key file"`
}

type ServeToolsCmd struct {
	ToolServer `embed:""`
	Stdio      bool `name:"stdio" help:"Serve over stdin and stdout rather than HTTP"`
}

type ServeQueryCmd struct {
	QueryServer `embed:""`
	TLS         TLS `embed:"" prefix:"tls."`
}

type ServeCmd struct {
	ToolServer  `embed:""`
	QueryServer `embed:""`
	TLS         TLS `embed:"" prefix:"tls."`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *ServeToolsCmd) Run(ctx *Globals) error {
	server, err := cmd.Server(ctx)
	if err != nil {
		return err
	}
	if cmd.Stdio {
		return server.RunStdio(ctx.ctx)
	}
	return server.ListenAndServe(ctx.ctx, cmd.ToolsAddr)
}

func (cmd *ServeQueryCmd) Run(ctx *Globals) error {
	service, toolkit, err := cmd.Service(ctx)
	if err != nil {
		return err
	}
	return cmd.Serve(ctx, cmd.TLS, service, toolkit)
}

func (cmd *ServeCmd) Run(ctx *Globals) error {
	server, err := cmd.Server(ctx)
	if err != nil {
		return err
	}
	service, toolkit, err := cmd.Service(ctx)
	if err != nil {
		return err
	}

	// Run both until one fails or the context is done
	group, groupctx := errgroup.WithContext(ctx.ctx)
	group.Go(func() error {
		return server.ListenAndServe(groupctx, cmd.ToolsAddr)
	})
	group.Go(func() error {
		g := *ctx
		g.ctx = groupctx
		return cmd.Serve(&g, cmd.TLS, service, toolkit)
	})
	return group.Wait()
}

///////////////////////////////////////////////////////////////////////////////
// TOOL SERVER

// Toolkit returns the weather and file tools
func (cmd *ToolServer) Toolkit(ctx *Globals) (*tool.Toolkit, error) {
	files, err := fstool.NewTools(cmd.WritePath, ctx.logger)
	if err != nil {
		return nil, err
	}
	return tool.NewToolkit(append([]tool.Tool{weather.NewTool(ctx.logger)}, files...)...)
}

// Server returns the MCP server for the toolkit
func (cmd *ToolServer) Server(ctx *Globals) (*mcp.Server, error) {
	toolkit, err := cmd.Toolkit(ctx)
	if err != nil {
		return nil, err
	}
	return mcp.New(toolkit,
		mcp.WithName(cmd.ServerName),
		mcp.WithVersion(version.Version()),
		mcp.WithLogger(ctx.logger),
	)
}

///////////////////////////////////////////////////////////////////////////////
// QUERY SERVER

// Agent returns the database agent and the database tools it uses
func (cmd *QueryServer) Agent(ctx *Globals) (*agent.Agent, *tool.Toolkit, error) {
	db, err := sqldb.New(ctx.DBPath, sqldb.WithLogger(ctx.logger))
	if err != nil {
		return nil, nil, err
	}
	toolkit, err := tool.NewToolkit(sqldb.NewTools(db)...)
	if err != nil {
		return nil, nil, err
	}
	store, err := cmd.Store(ctx.execName)
	if err != nil {
		return nil, nil, err
	}
	client, err := ctx.Client()
	if err != nil {
		return nil, nil, err
	}
	agent, err := agent.New(client, ctx.ModelName(),
		agent.WithToolkit(toolkit),
		agent.WithStore(store),
		agent.WithMaxSteps(cmd.MaxSteps),
		agent.WithTracer(ctx.tracer),
		agent.WithLogger(ctx.logger),
	)
	if err != nil {
		return nil, nil, err
	}
	return agent, toolkit, nil
}

// Service returns the query service and the database tools
func (cmd *QueryServer) Service(ctx *Globals) (*query.Service, *tool.Toolkit, error) {
	agent, toolkit, err := cmd.Agent(ctx)
	if err != nil {
		return nil, nil, err
	}
	service, err := query.New(agent, query.WithTracer(ctx.tracer), query.WithLogger(ctx.logger))
	if err != nil {
		return nil, nil, err
	}
	return service, toolkit, nil
}

// Store returns the thread store. Threads are stored in the user's cache
// directory unless another directory is given.
func (cmd *QueryServer) Store(execName string) (session.Store, error) {
	dir := cmd.Sessions
	if dir == "" {
		cache, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine cache directory: %w", err)
		}
		dir = filepath.Join(cache, execName)
	}
	store, err := session.NewFileStore(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}
	return store, nil
}

// Serve creates the httpserver instance and blocks until the context is
// done
func (cmd *QueryServer) Serve(ctx *Globals, opts TLS, service *query.Service, toolkit *tool.Toolkit) error {
	versionTag := version.Version()

	// Create the TLS config if TLS options are provided
	var tlsConfig *tls.Config
	if opts.CertFile != "" || opts.KeyFile != "" {
		var pemData [][]byte
		if opts.CertFile != "" {
			certData, err := os.ReadFile(opts.CertFile)
			if err != nil {
				return fmt.Errorf("failed to read TLS certificate: %w", err)
			}
			pemData = append(pemData, certData)
		}
		if opts.KeyFile != "" {
			keyData, err := os.ReadFile(opts.KeyFile)
			if err != nil {
				return fmt.Errorf("failed to read TLS key: %w", err)
			}
			pemData = append(pemData, keyData)
		}
		var err error
		tlsConfig, err = httpserver.TLSConfig(opts.ServerName, false, pemData...)
		if err != nil {
			return fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	// Create the server, which serves its own mux
	server, err := httpserver.New(ctx.HTTP.Addr, tlsConfig,
		httpserver.WithReadTimeout(ctx.HTTP.Timeout),
		httpserver.WithWriteTimeout(ctx.HTTP.Timeout),
	)
	if err != nil {
		return fmt.Errorf("httpserver: %w", err)
	}

	// Create the HTTP router on the server mux, and register the handlers
	router, err := httprouter.NewRouter(ctx.ctx, server.Router(), ctx.HTTP.Prefix, ctx.HTTP.Origin, "LLM Query Service", versionTag)
	if err != nil {
		return fmt.Errorf("router: %w", err)
	} else if err := httphandler.RegisterHandlers(service, toolkit, router); err != nil {
		return fmt.Errorf("register: %w", err)
	}

	// Bind to the address
	if err := server.Listen(); err != nil {
		return err
	}

	// Run the server
	ctx.logger.Infow("query service started", "name", ctx.execName, "version", versionTag, "addr", server.Addr(), "db", ctx.DBPath, "model", ctx.ModelName())
	if err := server.Run(ctx.ctx); err != nil {
		return err
	}

	// Return success
	ctx.logger.Infow("query service stopped", "name", ctx.execName)
	return nil
}
