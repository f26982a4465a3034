package main

import (
	"encoding/json"
	"fmt"

	// Packages
	agent "github.com/mutablelogic/go-llmservice/pkg/agent"
	query "github.com/mutablelogic/go-llmservice/pkg/query"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type AskCmd struct {
	QueryServer `embed:""`
	Question    string `arg:"" help:"Question about the database"`
	Thread      string `name:"thread" help:"Conversation thread, for follow-up questions"`
}

type GenerateCmd struct {
	Question string `arg:"" optional:"" default:"告诉我一个笑话。" help:"Question to answer with a JSON object"`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *AskCmd) Run(ctx *Globals) error {
	service, _, err := cmd.Service(ctx)
	if err != nil {
		return err
	}
	response, err := service.Process(ctx.ctx, query.Request{
		Question: cmd.Question,
		Thread:   cmd.Thread,
	})
	if err != nil {
		return err
	}
	fmt.Println(response.Response)
	return nil
}

func (cmd *GenerateCmd) Run(ctx *Globals) error {
	client, err := ctx.Client()
	if err != nil {
		return err
	}
	agent, err := agent.New(client, ctx.ModelName(),
		agent.WithTracer(ctx.tracer),
		agent.WithLogger(ctx.logger),
	)
	if err != nil {
		return err
	}
	result, err := agent.GenerateJSON(ctx.ctx, cmd.Question)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(result.Value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("调用耗时：%.2f秒\n", result.Duration.Seconds())
	fmt.Println(string(data))
	return nil
}
