package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	// Packages
	kong "github.com/alecthomas/kong"
	godotenv "github.com/joho/godotenv"
	client "github.com/mutablelogic/go-client"
	agent "github.com/mutablelogic/go-llmservice/pkg/agent"
	log "github.com/mutablelogic/go-llmservice/pkg/log"
	ollama "github.com/mutablelogic/go-llmservice/pkg/ollama"
	trace "go.opentelemetry.io/otel/trace"
	noop "go.opentelemetry.io/otel/trace/noop"
	term "golang.org/x/term"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type Globals struct {
	// Debugging
	Debug    bool   `name:"debug" help:"Enable debug output"`
	Verbose  bool   `name:"verbose" help:"Enable verbose output"`
	LogLevel string `name:"log-level" env:"LOG_LEVEL" default:"info" help:"Log level (debug, info, warn, error)"`

	// Model and database
	Ollama `embed:"" help:"Ollama configuration"`
	DBPath string `name:"db-path" env:"DB_PATH" default:"LData.db" help:"SQLite database which the query service answers questions about"`

	// HTTP client and server
	HTTP struct {
		Addr    string        `name:"addr" env:"QUERY_ADDR" default:"localhost:5000" help:"Query service listen address"`
		Prefix  string        `name:"prefix" default:"" help:"Query service path prefix"`
		Origin  string        `name:"origin" default:"" help:"Trusted cross-origin (CORS and CSRF) origin. Empty string allows same-origin requests only, '*' allows all cross-origin requests"`
		Timeout time.Duration `name:"timeout" env:"HTTP_TIMEOUT" default:"5m" help:"Timeout for requests to the model"`
	} `embed:"" prefix:"http."`

	// Context
	ctx      context.Context
	execName string
	logger   *log.Logger
	tracer   trace.Tracer
	client   *ollama.Client
}

type Ollama struct {
	BaseURL string `name:"base-url" env:"BASE_URL" default:"http://localhost:12356" help:"Ollama base URL, the /api path is appended"`
	Model   string `name:"model" env:"MODEL_NAME" default:"llama3.1:8b" help:"Chat model name"`
}

type CLI struct {
	Globals

	// Services
	ServeTools ServeToolsCmd `cmd:"" name:"serve-tools" help:"Serve the weather and file tools over MCP" group:"SERVER"`
	ServeQuery ServeQueryCmd `cmd:"" name:"serve-query" help:"Serve the database query service over HTTP" group:"SERVER"`
	Serve      ServeCmd      `cmd:"" name:"serve" help:"Serve the tools and the query service" group:"SERVER"`

	// Agent
	Chat     ChatCmd     `cmd:"" help:"Chat with an agent which uses tools from MCP servers" group:"AGENT"`
	Ask      AskCmd      `cmd:"" help:"Ask the query service a question" group:"AGENT"`
	Generate GenerateCmd `cmd:"" help:"Generate a JSON object from a question" group:"AGENT"`

	// Tools, models and documents
	Tools  ToolsCmd  `cmd:"" help:"List tools" group:"TOOLS"`
	Call   CallCmd   `cmd:"" help:"Call a tool with JSON arguments" group:"TOOLS"`
	Models ModelsCmd `cmd:"" help:"List models" group:"TOOLS"`
	Index  IndexCmd  `cmd:"" help:"Add and search documents by embedding similarity" group:"TOOLS"`

	// Version
	Version VersionCmd `cmd:"" help:"Print version information"`
}

////////////////////////////////////////////////////////////////////////////////
// MAIN

func main() {
	// Environment from .env, which does not override the process environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(-1)
	}

	// Create a cli parser
	cli := CLI{}
	cmd := kong.Parse(&cli,
		kong.Name(execName()),
		kong.Description("LLM tool and query service command line interface"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	// Create a context
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	cli.Globals.ctx = ctx
	cli.Globals.execName = execName()

	// Create a logger
	level := cli.LogLevel
	if cli.Debug {
		level = "debug"
	}
	cli.Globals.logger = log.New(os.Stderr, level)
	defer cli.Globals.logger.Sync()

	// Tracing is disabled unless a provider is configured
	cli.Globals.tracer = noop.NewTracerProvider().Tracer(cli.Globals.execName)

	// Run the command
	if err := cmd.Run(&cli.Globals); err != nil && !errors.Is(err, context.Canceled) {
		cmd.FatalIfErrorf(err)
		return
	}
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Client returns the Ollama client, creating it on first use
func (g *Globals) Client() (*ollama.Client, error) {
	if g.client != nil {
		return g.client, nil
	}

	client, err := ollama.New(ollama.Endpoint(g.BaseURL), g.clientOpts()...)
	if err != nil {
		return nil, err
	}
	g.client = client
	return client, nil
}

// ModelName returns the chat model
func (g *Globals) ModelName() string {
	if g.Model == "" {
		return agent.DefaultModel
	}
	return g.Model
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// clientOpts returns the options for HTTP clients from the global flags
func (g *Globals) clientOpts() []client.ClientOpt {
	opts := []client.ClientOpt{}
	if g.Debug || g.Verbose {
		opts = append(opts, client.OptTrace(os.Stderr, g.Verbose))
	}
	if g.tracer != nil {
		opts = append(opts, client.OptTracer(g.tracer))
	}
	if g.HTTP.Timeout > 0 {
		opts = append(opts, client.OptTimeout(g.HTTP.Timeout))
	}
	return opts
}

// termWidth returns the width of the terminal on stdout, or zero
func termWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 0
}

func execName() string {
	// The name of the executable
	name, err := os.Executable()
	if err != nil {
		panic(err)
	} else {
		return filepath.Base(name)
	}
}
