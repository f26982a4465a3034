package index

import (
	"context"

	// Packages
	llm "github.com/mutablelogic/go-llmservice"
	ollama "github.com/mutablelogic/go-llmservice/pkg/ollama"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type embedder struct {
	client *ollama.Client
	model  string
	opts   []ollama.Opt
}

var _ Embedder = (*embedder)(nil)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultModel = "nomic-embed-text"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewEmbedder returns an embedder which calls an ollama model
func NewEmbedder(client *ollama.Client, model string, opts ...ollama.Opt) (Embedder, error) {
	if client == nil {
		return nil, llm.ErrBadParameter.With("missing client")
	}
	if model == "" {
		model = DefaultModel
	}
	return &embedder{client: client, model: model, opts: opts}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (e *embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.client.Embedding(ctx, e.model, text, e.opts...)
	if err != nil {
		return nil, err
	}
	result := make([]float32, len(vector))
	for i, v := range vector {
		result[i] = float32(v)
	}
	return result, nil
}
