package fstool_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	// Packages
	llm "github.com/mutablelogic/go-llmservice"
	fstool "github.com/mutablelogic/go-llmservice/pkg/fstool"
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

// Helper to create a toolkit with the file tools writing into a temporary directory
func newToolkit(t *testing.T) (*tool.Toolkit, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "res.txt")
	tools, err := fstool.NewTools(path, nil)
	require.NoError(t, err)
	tk, err := tool.NewToolkit(tools...)
	require.NoError(t, err)
	return tk, path
}

// Helper to write content with the write_file tool
func write(t *testing.T, tk *tool.Toolkit, content string) tool.Result {
	t.Helper()
	args, err := json.Marshal(fstool.WriteFileRequest{Content: content})
	require.NoError(t, err)
	return tk.Invoke(context.TODO(), tool.Request{Name: fstool.WriteFileName, Arguments: args})
}

func Test_fstool_001(t *testing.T) {
	// Each write replaces the content
	assert := assert.New(t)
	tk, path := newToolkit(t)

	result := write(t, tk, "hello")
	assert.True(result.OK())
	assert.Equal("已成功写入本地文件。", result.Payload)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal("hello", string(data))

	result = write(t, tk, "world")
	assert.True(result.OK())
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal("world", string(data))
}

func Test_fstool_002(t *testing.T) {
	// UTF-8 content is written unchanged, and a shorter write truncates
	assert := assert.New(t)
	tk, path := newToolkit(t)

	write(t, tk, "北京今天多云，气温12.5度")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal("北京今天多云，气温12.5度", string(data))

	write(t, tk, "")
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(data)
}

func Test_fstool_003(t *testing.T) {
	// Missing content is invalid and nothing is written
	assert := assert.New(t)
	tk, path := newToolkit(t)

	result := tk.Invoke(context.TODO(), tool.Request{Name: fstool.WriteFileName, Arguments: json.RawMessage(`{}`)})
	assert.Equal(tool.KindInvalidArguments, result.Err.Kind)
	_, err := os.Stat(path)
	assert.True(os.IsNotExist(err))
}

func Test_fstool_004(t *testing.T) {
	// Concurrent writers: one of them wins, with its content intact
	assert := assert.New(t)
	tk, path := newToolkit(t)

	contents := []string{"alpha", "bravo", "delta", "gamma"}
	var wg sync.WaitGroup
	for _, content := range contents {
		wg.Add(1)
		go func(content string) {
			defer wg.Done()
			write(t, tk, content)
		}(content)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(contents, string(data))
}

func Test_fstool_005(t *testing.T) {
	assert := assert.New(t)

	_, err := fstool.NewTools(filepath.Join(t.TempDir(), "missing", "res.txt"), nil)
	assert.ErrorIs(err, llm.ErrBadParameter)

	_, err = fstool.NewTools(t.TempDir(), nil)
	assert.ErrorIs(err, llm.ErrBadParameter)

	tools, err := fstool.NewTools("", nil)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal("write_file", tools[0].Name())

	schema, err := tools[0].Schema()
	require.NoError(t, err)
	assert.Equal([]string{"content"}, schema.Required)
}
