package index

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	// Packages
	llm "github.com/mutablelogic/go-llmservice"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

///////////////////////////////////////////////////////////////////////////////
// TEST SET-UP

// keywords embeds a text as counts of a fixed vocabulary
type keywords struct {
	calls atomic.Int32
	fail  string
}

var vocabulary = []string{"ollama", "model", "python", "language", "weather", "rain"}

func (k *keywords) Embed(_ context.Context, text string) ([]float32, error) {
	k.calls.Add(1)
	if k.fail != "" && strings.Contains(text, k.fail) {
		return nil, errors.New("embedding failed")
	}
	text = strings.ToLower(text)
	vector := make([]float32, len(vocabulary))
	for i, word := range vocabulary {
		vector[i] = float32(strings.Count(text, word))
	}
	return vector, nil
}

var documents = []string{
	"Ollama is a tool for running large language models locally",
	"Python is a popular programming language",
	"The weather today brings rain",
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_index_001(t *testing.T) {
	assert := assert.New(t)

	_, err := New(filepath.Join(t.TempDir(), "index.db"), nil)
	assert.ErrorIs(err, llm.ErrBadParameter)

	_, err = New(filepath.Join(t.TempDir(), "index.db"), &keywords{}, WithWorkers(0))
	assert.ErrorIs(err, llm.ErrBadParameter)
}

func Test_index_002(t *testing.T) {
	// Add then search ranks the closest document first
	assert := assert.New(t)
	embedder := &keywords{}
	index, err := New(filepath.Join(t.TempDir(), "index.db"), embedder, WithWorkers(2))
	require.NoError(t, err)
	defer index.Close()

	docs, err := index.Add(context.TODO(), documents...)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(3, index.Len())
	assert.EqualValues(3, embedder.calls.Load())
	for i, doc := range docs {
		assert.NotZero(doc.ID)
		assert.Equal(documents[i], doc.Text)
	}

	results, err := index.Search(context.TODO(), "What is Ollama?", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(documents[0], results[0].Text)
	assert.Greater(results[0].Score, results[1].Score)

	results, err = index.Search(context.TODO(), "rain", 0)
	require.NoError(t, err)
	assert.Len(results, DefaultLimit)
	assert.Equal(documents[2], results[0].Text)
	assert.InDelta(1/math.Sqrt2, results[0].Score, 1e-6)

	_, err = index.Search(context.TODO(), " ", 1)
	assert.ErrorIs(err, llm.ErrBadParameter)
}

func Test_index_003(t *testing.T) {
	// Vectors are loaded when the index is reopened
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "index.db")

	index, err := New(path, &keywords{})
	require.NoError(t, err)
	docs, err := index.Add(context.TODO(), documents...)
	require.NoError(t, err)
	require.NoError(t, index.Close())

	index, err = New(path, &keywords{})
	require.NoError(t, err)
	defer index.Close()
	assert.Equal(3, index.Len())

	require.NoError(t, index.Delete(context.TODO(), docs[0].ID))
	assert.Equal(2, index.Len())
	results, err := index.Search(context.TODO(), "ollama", 10)
	require.NoError(t, err)
	assert.Len(results, 2)
	for _, result := range results {
		assert.NotEqual(docs[0].ID, result.ID)
	}
}

func Test_index_004(t *testing.T) {
	// A failed embedding stores nothing and names the document
	assert := assert.New(t)
	index, err := New(filepath.Join(t.TempDir(), "index.db"), &keywords{fail: "Python"})
	require.NoError(t, err)
	defer index.Close()

	_, err = index.Add(context.TODO(), documents...)
	assert.ErrorIs(err, llm.ErrInternalServerError)
	var e *llm.Error
	require.True(t, errors.As(err, &e))
	require.Len(t, e.Causes, 1)
	assert.Contains(e.Causes[0].Error(), "document 1")
	assert.Equal(0, index.Len())

	_, err = index.Add(context.TODO(), "ok", "")
	assert.ErrorIs(err, llm.ErrBadParameter)
}

func Test_similarity_001(t *testing.T) {
	assert := assert.New(t)
	assert.InDelta(1.0, similarity([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-9)
	assert.InDelta(0.0, similarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(-1.0, similarity([]float32{1, 1}, []float32{-1, -1}), 1e-9)
	assert.Zero(similarity([]float32{1, 2}, []float32{1, 2, 3}))
	assert.Zero(similarity([]float32{0, 0}, []float32{1, 1}))
	assert.Zero(similarity(nil, nil))
}
