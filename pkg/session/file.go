package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	// Packages
	uuid "github.com/google/uuid"
	llm "github.com/mutablelogic/go-llmservice"
	ollama "github.com/mutablelogic/go-llmservice/pkg/ollama"
	opt "github.com/mutablelogic/go-llmservice/pkg/opt"
	types "github.com/mutablelogic/go-llmservice/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	jsonExt              = ".json"
	DirPerm  os.FileMode = 0o700 // Directory permission for the store
	FilePerm os.FileMode = 0o600 // File permission for thread files
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// FileStore is a file-backed implementation of Store.
// Each thread is stored as {id}.json in a directory.
// It is safe for concurrent use.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

var _ Store = (*FileStore)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewFileStore creates a new file-backed store in the given directory.
// The directory is created if it does not exist.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, llm.ErrBadParameter.With("directory is required")
	}
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return nil, llm.ErrInternalServerError.Withf("mkdir: %v", err)
	}
	return &FileStore{dir: dir}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Create creates a new thread with a unique ID, writes it to disk,
// and returns it.
func (f *FileStore) Create(_ context.Context) (*Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	t := &Thread{
		ID:       uuid.New().String(),
		Messages: []ollama.Message{},
		Created:  now,
		Modified: now,
	}
	if err := f.write(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get reads a thread from disk
func (f *FileStore) Get(_ context.Context, id string) (*Thread, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.read(id)
}

// Append messages to a thread, creating the file when it does not exist
func (f *FileStore) Append(_ context.Context, id string, messages ...ollama.Message) (*Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	t, err := f.read(id)
	if errors.Is(err, llm.ErrNotFound) {
		t = &Thread{ID: id, Created: now}
	} else if err != nil {
		return nil, err
	}
	t.Messages = append(t.Messages, messages...)
	t.Modified = now

	if err := f.write(t); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns threads from disk, most recently modified first. Files which
// cannot be read are skipped.
func (f *FileStore) List(_ context.Context, opts ...opt.Opt) ([]*Thread, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, llm.ErrInternalServerError.Withf("readdir: %v", err)
	}

	result := make([]*Thread, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), jsonExt) {
			continue
		}
		t, err := f.read(strings.TrimSuffix(entry.Name(), jsonExt))
		if err != nil {
			continue
		}
		result = append(result, t)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Modified.After(result[j].Modified)
	})
	return limit(result, opts...)
}

// Delete removes a thread file
func (f *FileStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path, err := f.path(id)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return llm.ErrNotFound.Withf("thread %q", id)
	}
	if err := os.Remove(path); err != nil {
		return llm.ErrInternalServerError.Withf("remove: %v", err)
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// path returns the file path for a thread ID, which must be a valid identifier
func (f *FileStore) path(id string) (string, error) {
	if !types.IsIdentifier(id) {
		return "", llm.ErrBadParameter.Withf("invalid thread id %q", id)
	}
	return filepath.Join(f.dir, id+jsonExt), nil
}

func (f *FileStore) write(t *Thread) error {
	path, err := f.path(t.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return llm.ErrInternalServerError.Withf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, FilePerm); err != nil {
		return llm.ErrInternalServerError.Withf("write: %v", err)
	}
	return nil
}

func (f *FileStore) read(id string) (*Thread, error) {
	path, err := f.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, llm.ErrNotFound.Withf("thread %q", id)
		}
		return nil, llm.ErrInternalServerError.Withf("read: %v", err)
	}
	var t Thread
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, llm.ErrInternalServerError.Withf("unmarshal: %v", err)
	}
	return &t, nil
}
