package ollama

import (
	"context"
	"time"

	// Packages
	client "github.com/mutablelogic/go-client"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Model is a model available to the ollama server
type Model struct {
	Name       string       `json:"name"`
	Model      string       `json:"model,omitempty"`
	ModifiedAt time.Time    `json:"modified_at"`
	Size       int64        `json:"size,omitempty"`
	Digest     string       `json:"digest,omitempty"`
	Details    ModelDetails `json:"details"`
}

// ModelDetails are the details of the model
type ModelDetails struct {
	ParentModel       string   `json:"parent_model,omitempty"`
	Format            string   `json:"format"`
	Family            string   `json:"family"`
	Families          []string `json:"families"`
	ParameterSize     string   `json:"parameter_size"`
	QuantizationLevel string   `json:"quantization_level"`
}

// listModelsResponse represents the API response for listing models
type listModelsResponse struct {
	Data []Model `json:"models"`
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// List all models available locally
func (ollama *Client) ListModels(ctx context.Context) ([]Model, error) {
	var response listModelsResponse
	if err := ollama.DoWithContext(ctx, nil, &response, client.OptPath("tags")); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// List running models
func (ollama *Client) ListRunningModels(ctx context.Context) ([]Model, error) {
	var response listModelsResponse
	if err := ollama.DoWithContext(ctx, nil, &response, client.OptPath("ps")); err != nil {
		return nil, err
	}
	return response.Data, nil
}
