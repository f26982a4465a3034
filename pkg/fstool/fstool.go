package fstool

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	// Packages
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	llm "github.com/mutablelogic/go-llmservice"
	log "github.com/mutablelogic/go-llmservice/pkg/log"
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// writeFile overwrites a single fixed file with the content it is given.
// There is no locking: when invoked concurrently, the last write wins.
type writeFile struct {
	path string
	log  *log.Logger
}

var _ tool.Tool = (*writeFile)(nil)

// WriteFileRequest defines the input for the write_file tool.
type WriteFileRequest struct {
	Content string `json:"content" jsonschema:"需要写入文档的具体内容"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	WriteFileName = "write_file"
	DefaultPath   = "res.txt"
	WriteFileOK   = "已成功写入本地文件。"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewTools returns the file tools, writing to the given path (or res.txt
// in the working directory when empty). The parent directory must exist.
func NewTools(path string, logger *log.Logger) ([]tool.Tool, error) {
	if path == "" {
		path = DefaultPath
	}
	if logger == nil {
		logger = log.Nop()
	}

	// Resolve to absolute path
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, llm.ErrBadParameter.Withf("invalid path: %v", err)
	}

	// Check that the parent exists and is a directory, and the path is not
	if info, err := os.Stat(filepath.Dir(abs)); err != nil {
		return nil, llm.ErrBadParameter.Withf("parent directory: %v", err)
	} else if !info.IsDir() {
		return nil, llm.ErrBadParameter.Withf("parent is not a directory: %q", filepath.Dir(abs))
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return nil, llm.ErrBadParameter.Withf("path is a directory: %q", abs)
	}

	return []tool.Tool{
		&writeFile{path: abs, log: logger},
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// TOOL INTERFACE

func (*writeFile) Name() string {
	return WriteFileName
}

func (*writeFile) Description() string {
	return "将指定内容写入本地文件。文件内容会被覆盖，返回写入成功的提示信息。"
}

func (*writeFile) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[WriteFileRequest](nil)
}

func (t *writeFile) Run(ctx context.Context, input json.RawMessage) (any, error) {
	var req WriteFileRequest

	// Unmarshal input
	if len(input) > 0 {
		if err := json.Unmarshal(input, &req); err != nil {
			return nil, llm.ErrBadParameter.Withf("failed to unmarshal input: %v", err)
		}
	}

	// Check for cancellation before the side effect
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Truncate and write as UTF-8 text
	if err := os.WriteFile(t.path, []byte(req.Content), 0o644); err != nil {
		return nil, err
	}
	t.log.Infow("wrote file", "path", t.path, "bytes", len(req.Content))

	return WriteFileOK, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Path returns the file written by the tool
func (t *writeFile) Path() string {
	return t.path
}
