package llmservice_test

import (
	"errors"
	"fmt"
	"testing"

	// Packages
	llm "github.com/mutablelogic/go-llmservice"
	assert "github.com/stretchr/testify/assert"
)

func Test_error_001(t *testing.T) {
	assert := assert.New(t)
	err := llm.ErrNotFound.Withf("tool %q", "get_weather")
	assert.ErrorIs(err, llm.ErrNotFound)
	assert.Equal(`not found: tool "get_weather"`, err.Error())
}

func Test_error_002(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("not_found", llm.ErrNotFound.Code())
	assert.Equal("no_response", llm.ErrNoResponse.Code())
	assert.Equal("internal_error", llm.ErrInternalServerError.Code())
	assert.Equal("error_99", llm.Err(99).Code())
}

func Test_error_003(t *testing.T) {
	// No causes returns nil
	assert := assert.New(t)
	assert.NoError(llm.Join(llm.ErrInternalServerError, "connect", nil, nil))
}

func Test_error_004(t *testing.T) {
	assert := assert.New(t)
	first := fmt.Errorf("weather: %w", llm.ErrNotFound)
	second := errors.New("database: connection refused")
	err := llm.Join(llm.ErrInternalServerError, "connect", first, nil, second)
	assert.Error(err)

	// Ordered causes, nil dropped
	var joined *llm.Error
	if assert.ErrorAs(err, &joined) {
		assert.Equal(llm.ErrInternalServerError, joined.Code)
		assert.Equal([]error{first, second}, joined.Causes)
	}

	// Code and causes are visible to errors.Is
	assert.ErrorIs(err, llm.ErrInternalServerError)
	assert.ErrorIs(err, llm.ErrNotFound)
	assert.ErrorIs(err, second)
	assert.Equal("connect\n  [1] weather: not found\n  [2] database: connection refused", err.Error())
}

func Test_error_005(t *testing.T) {
	assert := assert.New(t)
	err := llm.Join(llm.ErrBadParameter, "", errors.New("missing city"))
	assert.Equal("bad parameter: missing city", err.Error())

	var code llm.Err
	assert.ErrorAs(err, &code)
	assert.Equal(llm.ErrBadParameter, code)
}
