package ollama

import (
	"context"
	"encoding/json"

	// Packages
	client "github.com/mutablelogic/go-client"
	llm "github.com/mutablelogic/go-llmservice"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Embeddings are the vectors generated for a set of inputs, in input order
type Embeddings struct {
	Model      string      `json:"model"`
	Embeddings [][]float64 `json:"embeddings"`
	Metrics
}

type reqEmbedding struct {
	Model     string         `json:"model"`
	Input     []string       `json:"input"`
	KeepAlive string         `json:"keep_alive,omitempty"`
	Truncate  *bool          `json:"truncate,omitempty"`
	Options   map[string]any `json:"options,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (m Embeddings) String() string {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Embed generates one embedding vector for each input
func (ollama *Client) Embed(ctx context.Context, model string, input []string, opts ...Opt) (*Embeddings, error) {
	if model == "" {
		return nil, llm.ErrBadParameter.With("missing model")
	} else if len(input) == 0 {
		return nil, llm.ErrBadParameter.With("missing input")
	}

	// Apply options
	opt, err := apply(opts...)
	if err != nil {
		return nil, err
	}
	options, err := opt.options()
	if err != nil {
		return nil, err
	}

	// Request
	req, err := client.NewJSONRequest(reqEmbedding{
		Model:     model,
		Input:     input,
		Truncate:  opt.truncate,
		KeepAlive: keepAlive(opt.keepalive),
		Options:   options,
	})
	if err != nil {
		return nil, err
	}

	// Response
	var response Embeddings
	if err := ollama.DoWithContext(ctx, req, &response, client.OptPath("embed")); err != nil {
		return nil, err
	}
	if len(response.Embeddings) != len(input) {
		return nil, llm.ErrInternalServerError.Withf("expected %d embeddings, got %d", len(input), len(response.Embeddings))
	}

	// Return success
	return &response, nil
}

// Embedding generates the embedding vector for a single input
func (ollama *Client) Embedding(ctx context.Context, model, input string, opts ...Opt) ([]float64, error) {
	response, err := ollama.Embed(ctx, model, []string{input}, opts...)
	if err != nil {
		return nil, err
	}
	return response.Embeddings[0], nil
}
