package weather_test

import (
	"context"
	"encoding/json"
	"testing"

	// Packages
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
	weather "github.com/mutablelogic/go-llmservice/pkg/weather"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

func Test_weather_001(t *testing.T) {
	// Known cities match without regard to case
	assert := assert.New(t)
	for _, city := range []string{"beijing", "Beijing", "BEIJING", "bEiJiNg"} {
		record, ok := weather.Lookup(city)
		if assert.True(ok, city) {
			assert.Equal("Beijing", record.Name)
			assert.Equal(200, record.Cod)
			assert.Equal("CN", record.Sys.Country)
			assert.Equal(116.4074, record.Coord.Lon)
			assert.Equal(52, record.Main.Humidity)
		}
	}
	record, ok := weather.Lookup("Shanghai")
	if assert.True(ok) {
		assert.Equal("Shanghai", record.Name)
		assert.Equal(1796236, record.Id)
		assert.Equal("scattered clouds", record.Conditions[0].Description)
	}
}

func Test_weather_002(t *testing.T) {
	// Unknown cities return the not found record
	assert := assert.New(t)
	for _, city := range []string{"", "London", "beijing ", "bei jing", "北京"} {
		_, ok := weather.Lookup(city)
		assert.False(ok, city)

		result := weather.Current(city)
		assert.Equal(weather.NotFound{Error: "city_not_found", Message: "城市未找到，请输入有效城市名称"}, result)
	}
}

func Test_weather_003(t *testing.T) {
	// Records returned by Lookup are copies
	assert := assert.New(t)
	a, _ := weather.Lookup("beijing")
	a.Conditions[0].Main = "Rain"
	a.Name = "Peking"

	b, _ := weather.Lookup("beijing")
	assert.Equal("Clouds", b.Conditions[0].Main)
	assert.Equal("Beijing", b.Name)
	assert.Equal([]string{"Beijing", "Shanghai"}, weather.Cities())
}

func Test_weather_004(t *testing.T) {
	// The tool declares a single required string parameter
	assert := assert.New(t)
	tk, err := tool.NewToolkit(weather.NewTool(nil))
	require.NoError(t, err)

	desc, err := tk.Describe()
	require.NoError(t, err)
	require.Len(t, desc, 1)
	assert.Equal("get_weather", desc[0].Name)
	assert.Equal([]string{"city"}, desc[0].ArgsSchema.Required)
	assert.Len(desc[0].ArgsSchema.Properties, 1)
	assert.Equal("string", desc[0].ArgsSchema.Properties["city"].Type)
}

func Test_weather_005(t *testing.T) {
	assert := assert.New(t)
	tk, err := tool.NewToolkit(weather.NewTool(nil))
	require.NoError(t, err)

	result := tk.Invoke(context.Background(), tool.Request{Name: "get_weather", Arguments: json.RawMessage(`{"city":"BeiJing"}`)})
	require.True(t, result.OK())
	data, err := json.Marshal(result)
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Equal("Beijing", record["name"])
	assert.Equal(float64(200), record["cod"])
	assert.Equal(float64(1671650426), record["sys"].(map[string]any)["sunrise"])

	// Unknown city is a successful payload carrying an error
	result = tk.Invoke(context.Background(), tool.Request{Name: "get_weather", Arguments: json.RawMessage(`{"city":"Paris"}`)})
	assert.True(result.OK())
	data, err = json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(`{"error":"city_not_found","message":"城市未找到，请输入有效城市名称"}`, string(data))

	// Missing city never reaches the handler
	result = tk.Invoke(context.Background(), tool.Request{Name: "get_weather"})
	assert.Equal(tool.KindInvalidArguments, result.Err.Kind)
}
