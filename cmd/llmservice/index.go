package main

import (
	"fmt"

	// Packages
	index "github.com/mutablelogic/go-llmservice/pkg/index"
	table "github.com/mutablelogic/go-llmservice/pkg/ui/table"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type IndexCmd struct {
	Add    IndexAddCmd    `cmd:"" help:"Embed and store documents"`
	Search IndexSearchCmd `cmd:"" help:"Return the documents most similar to a query"`
	Delete IndexDeleteCmd `cmd:"" help:"Delete documents"`
}

// IndexOpts are the options for the document index
type IndexOpts struct {
	Path       string `name:"index" env:"INDEX_PATH" default:"index.db" help:"SQLite file for the document index"`
	EmbedModel string `name:"embed-model" env:"EMBED_MODEL" default:"nomic-embed-text" help:"Embedding model"`
	Workers    int    `name:"workers" default:"4" help:"Number of documents to embed concurrently"`
}

type IndexAddCmd struct {
	IndexOpts `embed:""`
	Texts     []string `arg:"" optional:"" help:"Documents to add (sample documents when none are given)"`
}

type IndexSearchCmd struct {
	IndexOpts `embed:""`
	Query     string `arg:"" optional:"" default:"What is Ollama?" help:"Query text"`
	Limit     int    `name:"limit" default:"3" help:"Maximum number of documents to return"`
}

type IndexDeleteCmd struct {
	IndexOpts `embed:""`
	IDs       []uint `arg:"" help:"Document identifiers"`
}

type documents []index.Document

var _ table.Data = documents(nil)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

var sampleDocuments = []string{
	"Ollama is a framework for large language models.",
	"LangChain integrates with different LLMs for various NLP tasks.",
	"FAISS is a library for efficient similarity search and clustering of dense vectors.",
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *IndexAddCmd) Run(ctx *Globals) error {
	return cmd.With(ctx, func(idx *index.Index) error {
		texts := cmd.Texts
		if len(texts) == 0 {
			texts = sampleDocuments
		}
		result, err := idx.Add(ctx.ctx, texts...)
		if err != nil {
			return err
		}
		fmt.Println(table.Render(documents(result), termWidth()))
		return nil
	})
}

func (cmd *IndexSearchCmd) Run(ctx *Globals) error {
	return cmd.With(ctx, func(idx *index.Index) error {
		result, err := idx.Search(ctx.ctx, cmd.Query, cmd.Limit)
		if err != nil {
			return err
		}
		fmt.Println(table.Render(documents(result), termWidth()))
		return nil
	})
}

func (cmd *IndexDeleteCmd) Run(ctx *Globals) error {
	return cmd.With(ctx, func(idx *index.Index) error {
		return idx.Delete(ctx.ctx, cmd.IDs...)
	})
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// With opens the index, invokes fn, then closes the index
func (cmd *IndexOpts) With(ctx *Globals, fn func(*index.Index) error) (err error) {
	client, err := ctx.Client()
	if err != nil {
		return err
	}
	embedder, err := index.NewEmbedder(client, cmd.EmbedModel)
	if err != nil {
		return err
	}
	idx, err := index.New(cmd.Path, embedder, index.WithWorkers(cmd.Workers), index.WithLogger(ctx.logger))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := idx.Close(); err == nil {
			err = closeErr
		}
	}()
	return fn(idx)
}

///////////////////////////////////////////////////////////////////////////////
// TABLE

func (d documents) Header() []string {
	return []string{"ID", "Score", "Text"}
}

func (d documents) Len() int {
	return len(d)
}

func (d documents) Row(i int) []any {
	var score string
	if d[i].Score != 0 {
		score = fmt.Sprintf("%.4f", d[i].Score)
	}
	return []any{d[i].ID, score, d[i].Text}
}
