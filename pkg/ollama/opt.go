package ollama

import (
	"encoding/json"
	"time"

	// Packages
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	llm "github.com/mutablelogic/go-llmservice"
	opt "github.com/mutablelogic/go-llmservice/pkg/opt"
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type Opt func(*opts) error

type opts struct {
	params    []opt.Opt // model parameters
	tools     []Tool
	format    json.RawMessage
	stream    func(*Response)
	keepalive *time.Duration
	truncate  *bool
}

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

// Model parameter names
const (
	paramTemperature = "temperature"
	paramTopK        = "top_k"
	paramTopP        = "top_p"
	paramSeed        = "seed"
	paramNumCtx      = "num_ctx"
)

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func apply(o ...Opt) (*opts, error) {
	result := new(opts)
	for _, fn := range o {
		if fn == nil {
			continue
		}
		if err := fn(result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// options returns the model parameters with their numeric types
func (o *opts) options() (map[string]any, error) {
	params, err := opt.Apply(o.params...)
	if err != nil {
		return nil, err
	}
	result := make(map[string]any, len(params.Values))
	for _, key := range params.Keys() {
		switch key {
		case paramTemperature, paramTopP:
			result[key] = params.GetFloat64(key)
		case paramTopK, paramSeed, paramNumCtx:
			result[key] = params.GetInt(key)
		default:
			result[key] = params.GetString(key)
		}
	}
	if len(result) == 0 {
		return nil, nil
	}
	return result, nil
}

////////////////////////////////////////////////////////////////////////////////
// OPTIONS

// Chat: sampling temperature, between 0 and 2
func WithTemperature(v float64) Opt {
	return func(o *opts) error {
		if v < 0 || v > 2 {
			return llm.ErrBadParameter.With("temperature must be between 0 and 2")
		}
		o.params = append(o.params, opt.WithFloat64(paramTemperature, v))
		return nil
	}
}

// Chat: sample from the top K tokens
func WithTopK(v uint) Opt {
	return func(o *opts) error {
		o.params = append(o.params, opt.WithUint(paramTopK, v))
		return nil
	}
}

// Chat: nucleus sampling, between 0 and 1
func WithTopP(v float64) Opt {
	return func(o *opts) error {
		if v < 0 || v > 1 {
			return llm.ErrBadParameter.With("top_p must be between 0 and 1")
		}
		o.params = append(o.params, opt.WithFloat64(paramTopP, v))
		return nil
	}
}

// Chat: random seed for reproducible output
func WithSeed(v int) Opt {
	return func(o *opts) error {
		o.params = append(o.params, opt.WithInt(paramSeed, v))
		return nil
	}
}

// Chat & Embeddings: context window size
func WithNumCtx(v uint) Opt {
	return func(o *opts) error {
		o.params = append(o.params, opt.WithUint(paramNumCtx, v))
		return nil
	}
}

// Chat: functions the model may call
func WithTools(v ...Tool) Opt {
	return func(o *opts) error {
		o.tools = append(o.tools, v...)
		return nil
	}
}

// Chat: functions for every tool in a toolkit
func WithToolkit(tk *tool.Toolkit) Opt {
	return func(o *opts) error {
		tools, err := NewTools(tk)
		if err != nil {
			return err
		}
		o.tools = append(o.tools, tools...)
		return nil
	}
}

// Chat: respond with a JSON value
func WithJSONFormat() Opt {
	return func(o *opts) error {
		o.format = json.RawMessage(`"json"`)
		return nil
	}
}

// Chat: respond with JSON matching a schema
func WithSchemaFormat(schema *jsonschema.Schema) Opt {
	return func(o *opts) error {
		if schema == nil {
			return llm.ErrBadParameter.With("schema is required")
		}
		data, err := json.Marshal(schema)
		if err != nil {
			return err
		}
		o.format = data
		return nil
	}
}

// Chat: stream the response as it is received
func WithStream(fn func(*Response)) Opt {
	return func(o *opts) error {
		if fn == nil {
			return llm.ErrBadParameter.With("callback required")
		}
		o.stream = fn
		return nil
	}
}

// Embeddings & Chat: how long the model stays loaded following the request
func WithKeepAlive(v time.Duration) Opt {
	return func(o *opts) error {
		o.keepalive = &v
		return nil
	}
}

// Embeddings: truncate each input to fit within the context length
func WithTruncate(v bool) Opt {
	return func(o *opts) error {
		o.truncate = &v
		return nil
	}
}
