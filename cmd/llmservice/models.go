package main

import (
	"fmt"

	// Packages
	ollama "github.com/mutablelogic/go-llmservice/pkg/ollama"
	table "github.com/mutablelogic/go-llmservice/pkg/ui/table"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type ModelsCmd struct {
	Running bool `name:"running" help:"List the models which are loaded"`
}

type models []ollama.Model

var _ table.Data = models(nil)

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *ModelsCmd) Run(ctx *Globals) error {
	client, err := ctx.Client()
	if err != nil {
		return err
	}

	var result []ollama.Model
	if cmd.Running {
		result, err = client.ListRunningModels(ctx.ctx)
	} else {
		result, err = client.ListModels(ctx.ctx)
	}
	if err != nil {
		return err
	}

	fmt.Println(table.Render(models(result), termWidth()))
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// TABLE

func (m models) Header() []string {
	return []string{"Name", "Family", "Parameters", "Quantization", "Size", "Modified"}
}

func (m models) Len() int {
	return len(m)
}

func (m models) Row(i int) []any {
	model := m[i]
	var size string
	if model.Size > 0 {
		size = fmt.Sprintf("%.1f GB", float64(model.Size)/(1<<30))
	}
	return []any{
		table.Bold{Value: model.Name},
		model.Details.Family,
		model.Details.ParameterSize,
		model.Details.QuantizationLevel,
		size,
		model.ModifiedAt,
	}
}
