package opt_test

import (
	"errors"
	"testing"
	"time"

	// Packages
	opt "github.com/mutablelogic/go-llmservice/pkg/opt"
	assert "github.com/stretchr/testify/assert"
)

func TestApplyEmpty(t *testing.T) {
	assert := assert.New(t)
	opts, err := opt.Apply()
	assert.NoError(err)
	assert.NotNil(opts)
	assert.False(opts.Has("missing"))
	assert.Empty(opts.Keys())
}

func TestStringOptions(t *testing.T) {
	assert := assert.New(t)
	opts, err := opt.Apply(opt.AddString("key", "value1", " value2 "), opt.WithString("other", "a"), opt.WithString("other", "b"))
	assert.NoError(err)
	assert.Equal([]string{"value1", "value2"}, opts.GetStringArray("key"))
	assert.Equal("value1", opts.GetString("key"))
	assert.Equal([]string{"b"}, opts.GetStringArray("other"))
	assert.Equal([]string{"key", "other"}, opts.Keys())
}

func TestNumberOptions(t *testing.T) {
	assert := assert.New(t)
	opts, err := opt.Apply(
		opt.WithFloat64("temperature", 0.7),
		opt.WithInt("seed", -1),
		opt.WithUint("num_ctx", 4096),
		opt.WithDuration("keep_alive", 5*time.Minute),
	)
	assert.NoError(err)
	assert.InDelta(0.7, opts.GetFloat64("temperature"), 1e-9)
	assert.Equal(-1, opts.GetInt("seed"))
	assert.Equal(uint(4096), opts.GetUint("num_ctx"))
	assert.Equal(5*time.Minute, opts.GetDuration("keep_alive"))
	assert.Equal(0, opts.GetInt("temperature"))
	assert.Equal(float64(0), opts.GetFloat64("missing"))
}

func TestBoolOptions(t *testing.T) {
	assert := assert.New(t)
	opts, err := opt.Apply(opt.WithBool("stream", true), opt.WithBool("raw", false))
	assert.NoError(err)
	assert.True(opts.GetBool("stream"))
	assert.False(opts.GetBool("raw"))
	assert.True(opts.Has("raw"))
}

func TestErrorOptions(t *testing.T) {
	assert := assert.New(t)
	failed := errors.New("failed")
	_, err := opt.Apply(opt.WithOpts(opt.WithBool("a", true), opt.Error(failed)))
	assert.ErrorIs(err, failed)
}
