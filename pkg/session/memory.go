package session

import (
	"context"
	"sort"
	"sync"
	"time"

	// Packages
	uuid "github.com/google/uuid"
	llm "github.com/mutablelogic/go-llmservice"
	ollama "github.com/mutablelogic/go-llmservice/pkg/ollama"
	opt "github.com/mutablelogic/go-llmservice/pkg/opt"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// MemoryStore is an in-memory implementation of Store.
// It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	threads map[string]*Thread
}

var _ Store = (*MemoryStore)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewMemoryStore creates a new empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		threads: make(map[string]*Thread),
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Create creates a new thread with a unique ID and returns it.
func (m *MemoryStore) Create(_ context.Context) (*Thread, error) {
	now := time.Now()
	t := &Thread{
		ID:       uuid.New().String(),
		Messages: []ollama.Message{},
		Created:  now,
		Modified: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.threads[t.ID] = t

	return t.clone(), nil
}

// Get returns a copy of a thread
func (m *MemoryStore) Get(_ context.Context, id string) (*Thread, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.threads[id]
	if !ok {
		return nil, llm.ErrNotFound.Withf("thread %q", id)
	}
	return t.clone(), nil
}

// Append messages to a thread, creating the thread when it does not exist
func (m *MemoryStore) Append(_ context.Context, id string, messages ...ollama.Message) (*Thread, error) {
	if id == "" {
		return nil, llm.ErrBadParameter.With("missing thread id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	t, ok := m.threads[id]
	if !ok {
		t = &Thread{ID: id, Created: now}
		m.threads[id] = t
	}
	t.Messages = append(t.Messages, messages...)
	t.Modified = now

	return t.clone(), nil
}

// List returns all threads, most recently modified first
func (m *MemoryStore) List(_ context.Context, opts ...opt.Opt) ([]*Thread, error) {
	m.mu.RLock()
	result := make([]*Thread, 0, len(m.threads))
	for _, t := range m.threads {
		result = append(result, t.clone())
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].Modified.After(result[j].Modified)
	})
	return limit(result, opts...)
}

// Delete removes a thread
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.threads[id]; !ok {
		return llm.ErrNotFound.Withf("thread %q", id)
	}
	delete(m.threads, id)
	return nil
}
