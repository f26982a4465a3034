package ollama

import (
	"context"
	"encoding/json"
	"time"

	// Packages
	client "github.com/mutablelogic/go-client"
	llm "github.com/mutablelogic/go-llmservice"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Chat Response
type Response struct {
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	Message   Message   `json:"message"`
	Done      bool      `json:"done"`
	Reason    string    `json:"done_reason,omitempty"`
	Metrics
}

// Metrics
type Metrics struct {
	TotalDuration      time.Duration `json:"total_duration,omitempty"`
	LoadDuration       time.Duration `json:"load_duration,omitempty"`
	PromptEvalCount    int           `json:"prompt_eval_count,omitempty"`
	PromptEvalDuration time.Duration `json:"prompt_eval_duration,omitempty"`
	EvalCount          int           `json:"eval_count,omitempty"`
	EvalDuration       time.Duration `json:"eval_duration,omitempty"`
}

type reqChat struct {
	Model     string          `json:"model"`
	Messages  []Message       `json:"messages"`
	Tools     []Tool          `json:"tools,omitempty"`
	Format    json.RawMessage `json:"format,omitempty"`
	Options   map[string]any  `json:"options,omitempty"`
	Stream    bool            `json:"stream"`
	KeepAlive string          `json:"keep_alive,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (r Response) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Chat sends the messages to a model and returns the response. With the
// WithStream option, the callback is called with the accumulated response
// as each part is received.
func (ollama *Client) Chat(ctx context.Context, model string, messages []Message, opts ...Opt) (*Response, error) {
	if model == "" {
		return nil, llm.ErrBadParameter.With("missing model")
	} else if len(messages) == 0 {
		return nil, llm.ErrBadParameter.With("missing messages")
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
	req, err := client.NewJSONRequest(reqChat{
		Model:     model,
		Messages:  messages,
		Tools:     opt.tools,
		Format:    opt.format,
		Options:   options,
		Stream:    opt.stream != nil,
		KeepAlive: keepAlive(opt.keepalive),
	})
	if err != nil {
		return nil, err
	}

	// Response
	var response, delta Response
	reqopts := []client.RequestOpt{
		client.OptPath("chat"),
	}
	if opt.stream != nil {
		reqopts = append(reqopts, client.OptJsonStreamCallback(func(v any) error {
			if v, ok := v.(*Response); !ok || v == nil {
				return llm.ErrConflict.Withf("Invalid stream response: %v", v)
			} else {
				streamEvent(&response, v)
			}
			opt.stream(&response)
			return nil
		}))
	}
	if err := ollama.DoWithContext(ctx, req, &delta, reqopts...); err != nil {
		return nil, err
	}

	// We return the delta or the response
	if opt.stream != nil {
		return &response, nil
	} else {
		return &delta, nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// streamEvent accumulates a streamed part into the response
func streamEvent(response, delta *Response) {
	if delta.Model != "" {
		response.Model = delta.Model
	}
	if !delta.CreatedAt.IsZero() {
		response.CreatedAt = delta.CreatedAt
	}
	if delta.Message.Role != "" {
		response.Message.Role = delta.Message.Role
	}
	response.Message.Content += delta.Message.Content
	response.Message.ToolCalls = append(response.Message.ToolCalls, delta.Message.ToolCalls...)
	if delta.Done {
		response.Done = delta.Done
		response.Metrics = delta.Metrics
		response.Reason = delta.Reason
	}
}

func keepAlive(v *time.Duration) string {
	if v == nil {
		return ""
	}
	return v.String()
}
