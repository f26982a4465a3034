package main

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"

	// Packages
	client "github.com/mutablelogic/go-client"
	llm "github.com/mutablelogic/go-llmservice"
	mcp "github.com/mutablelogic/go-llmservice/pkg/mcp"
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
	table "github.com/mutablelogic/go-llmservice/pkg/ui/table"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type ToolsCmd struct {
	ToolServer `embed:""`
	Remote     bool `name:"remote" help:"List the tools of a running tool server at the tools address"`
}

type CallCmd struct {
	ToolServer `embed:""`
	Remote     bool   `name:"remote" help:"Call the tool on a running tool server at the tools address"`
	Name       string `arg:"" help:"Tool name"`
	Args       string `arg:"" optional:"" default:"{}" help:"Tool arguments as a JSON object"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

var (
	toolsPath = strings.TrimPrefix(mcp.PathTools, "/")
)

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *ToolsCmd) Run(ctx *Globals) error {
	var descriptors []tool.Descriptor
	if cmd.Remote {
		c, err := cmd.Client(ctx)
		if err != nil {
			return err
		}
		if err := c.DoWithContext(ctx.ctx, nil, &descriptors, client.OptPath(toolsPath)); err != nil {
			return err
		}
	} else {
		toolkit, err := cmd.Toolkit(ctx)
		if err != nil {
			return err
		}
		if descriptors, err = toolkit.Describe(); err != nil {
			return err
		}
	}
	fmt.Println(table.Render(table.Tools(descriptors), termWidth()))
	return nil
}

func (cmd *CallCmd) Run(ctx *Globals) error {
	if !json.Valid([]byte(cmd.Args)) {
		return llm.ErrBadParameter.Withf("arguments are not valid JSON: %q", cmd.Args)
	}

	// Call the tool on a running server
	if cmd.Remote {
		var result any
		c, err := cmd.Client(ctx)
		if err != nil {
			return err
		}
		req, err := client.NewJSONRequest(json.RawMessage(cmd.Args))
		if err != nil {
			return err
		}
		if err := c.DoWithContext(ctx.ctx, req, &result, client.OptPath(toolsPath, cmd.Name)); err != nil {
			return err
		}
		return printJSON(result)
	}

	// Call the tool locally
	toolkit, err := cmd.Toolkit(ctx)
	if err != nil {
		return err
	}
	result := toolkit.Invoke(ctx.ctx, tool.Request{Name: cmd.Name, Arguments: json.RawMessage(cmd.Args)})
	if err := printJSON(result); err != nil {
		return err
	}
	return result.Error()
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// Client returns a client for the tool server at the tools address. An
// unspecified host is replaced by localhost.
func (cmd *ToolServer) Client(ctx *Globals) (*client.Client, error) {
	host, port, err := net.SplitHostPort(cmd.ToolsAddr)
	if err != nil {
		return nil, err
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return nil, llm.ErrBadParameter.Withf("invalid port: %q", port)
	}
	endpoint := "http://" + net.JoinHostPort(host, port)
	return client.New(append(ctx.clientOpts(), client.OptEndpoint(endpoint))...)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
