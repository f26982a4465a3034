package weather

import (
	"context"
	"encoding/json"

	// Packages
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	llm "github.com/mutablelogic/go-llmservice"
	log "github.com/mutablelogic/go-llmservice/pkg/log"
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type getWeather struct {
	log *log.Logger
}

var _ tool.Tool = (*getWeather)(nil)

// Request is the input for the get_weather tool
type Request struct {
	City string `json:"city" jsonschema:"城市名称"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ToolName = "get_weather"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewTool returns the weather lookup tool. The logger may be nil.
func NewTool(logger *log.Logger) tool.Tool {
	if logger == nil {
		logger = log.Nop()
	}
	return &getWeather{log: logger}
}

///////////////////////////////////////////////////////////////////////////////
// TOOL INTERFACE

func (*getWeather) Name() string { return ToolName }

func (*getWeather) Description() string {
	return "查询指定城市的即时天气信息。中国城市需使用其英文名称，如 \"Beijing\" 表示北京。" +
		"返回 OpenWeather 格式的天气数据，包含坐标、天气状况、温度、湿度、风速以及日出日落时间。"
}

func (*getWeather) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[Request](nil)
}

func (t *getWeather) Run(_ context.Context, input json.RawMessage) (any, error) {
	var req Request
	if len(input) > 0 {
		if err := json.Unmarshal(input, &req); err != nil {
			return nil, llm.ErrBadParameter.Withf("failed to unmarshal input: %v", err)
		}
	}

	result := Current(req.City)
	if _, ok := result.(NotFound); ok {
		t.log.Infow("weather lookup", "city", req.City, "found", false)
	} else {
		t.log.Debugw("weather lookup", "city", req.City, "found", true)
	}
	return result, nil
}
