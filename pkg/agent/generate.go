package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	// Packages
	otel "github.com/mutablelogic/go-client/pkg/otel"
	llm "github.com/mutablelogic/go-llmservice"
	ollama "github.com/mutablelogic/go-llmservice/pkg/ollama"
	attribute "go.opentelemetry.io/otel/attribute"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Generated is a JSON object generated by the model
type Generated struct {
	Value    map[string]any `json:"value"`
	Duration time.Duration  `json:"duration"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	formatInstructions = "Return a JSON object."
	generatePrompt     = "回答用户的查询\n 满足的格式为%s\n 问题为%s\n"
)

var (
	reThink = regexp.MustCompile(`(?s)<think>.*?</think>`)
	reFence = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// GenerateJSON asks the model to answer the question with a JSON object,
// without tools or history, and returns the parsed object and the time taken
func (a *Agent) GenerateJSON(ctx context.Context, question string) (result *Generated, err error) {
	ctx, endSpan := otel.StartSpan(a.tracer, ctx, "GenerateJSON",
		attribute.String("model", a.model),
	)
	defer func() { endSpan(err) }()

	if strings.TrimSpace(question) == "" {
		return nil, llm.ErrBadParameter.With("missing question")
	}

	start := time.Now()
	opts := append(append([]ollama.Opt{}, a.opts...), ollama.WithJSONFormat())
	response, err := a.client.Chat(ctx, a.model, []ollama.Message{
		ollama.UserMessage(fmt.Sprintf(generatePrompt, formatInstructions, question)),
	}, opts...)
	if err != nil {
		return nil, err
	}

	value, err := ParseJSON(response.Message.Content)
	if err != nil {
		return nil, err
	}
	return &Generated{Value: value, Duration: time.Since(start)}, nil
}

// ParseJSON returns the JSON object in a model answer, ignoring any
// reasoning in <think> tags and any code fence around the object
func ParseJSON(text string) (map[string]any, error) {
	text = strings.TrimSpace(reThink.ReplaceAllString(text, ""))
	if m := reFence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	if text == "" {
		return nil, llm.ErrNoResponse.With("empty answer")
	}
	var value map[string]any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, llm.ErrInternalServerError.Withf("answer is not a JSON object: %v", err)
	} else if value == nil {
		return nil, llm.ErrInternalServerError.With("answer is not a JSON object")
	}
	return value, nil
}
