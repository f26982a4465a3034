// Package index is a document store with embedding similarity search. Documents
// are kept in SQLite, and their vectors are cached in memory for ranking.
package index

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	// Packages
	gormlite "github.com/ncruces/go-sqlite3/gormlite"
	ants "github.com/panjf2000/ants/v2"
	llm "github.com/mutablelogic/go-llmservice"
	log "github.com/mutablelogic/go-llmservice/pkg/log"
	datatypes "gorm.io/datatypes"
	gorm "gorm.io/gorm"
	clause "gorm.io/gorm/clause"
	logger "gorm.io/gorm/logger"

	// Embedded SQLite
	_ "github.com/ncruces/go-sqlite3/embed"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Index struct {
	sync.RWMutex
	db       *gorm.DB
	vectors  map[uint][]float32
	embedder Embedder
	workers  int
	log      *log.Logger
}

// Embedder returns the embedding vector for a text
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Document is a stored text, with a score when returned from a search
type Document struct {
	ID       uint           `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Score    float64        `json:"score,omitempty"`
}

type RecordModel struct {
	gorm.Model

	Text     string
	Vector   datatypes.JSONSlice[float32]
	Metadata datatypes.JSONMap
}

type Opt func(*Index) error

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultPath    = "index.db"
	DefaultWorkers = 4
	DefaultLimit   = 3
	batchSize      = 100
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New opens or creates the index at path and loads the stored vectors
func New(path string, embedder Embedder, opts ...Opt) (*Index, error) {
	if embedder == nil {
		return nil, llm.ErrBadParameter.With("missing embedder")
	}
	if path == "" {
		path = DefaultPath
	}

	self := &Index{
		vectors:  make(map[uint][]float32),
		embedder: embedder,
		workers:  DefaultWorkers,
		log:      log.Nop(),
	}
	for _, opt := range opts {
		if err := opt(self); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(gormlite.Open(path), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		return nil, err
	}
	self.db = db

	if err := db.AutoMigrate(&RecordModel{}); err != nil {
		self.Close()
		return nil, err
	}
	if err := self.load(); err != nil {
		self.Close()
		return nil, err
	}

	// Return success
	return self, nil
}

// Close the database
func (i *Index) Close() error {
	sqlDB, err := i.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithWorkers sets the number of documents embedded concurrently
func WithWorkers(n int) Opt {
	return func(i *Index) error {
		if n <= 0 {
			return llm.ErrBadParameter.With("workers must be positive")
		}
		i.workers = n
		return nil
	}
}

func WithLogger(v *log.Logger) Opt {
	return func(i *Index) error {
		if v != nil {
			i.log = v
		}
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (d Document) String() string {
	if d.Score != 0 {
		return fmt.Sprintf("[%d %.4f] %s", d.ID, d.Score, d.Text)
	}
	return fmt.Sprintf("[%d] %s", d.ID, d.Text)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Len returns the number of documents with a vector
func (i *Index) Len() int {
	i.RLock()
	defer i.RUnlock()
	return len(i.vectors)
}

// Add embeds and stores documents, returning them with their identifiers.
// Embedding runs on a worker pool; if any document fails nothing is stored.
func (i *Index) Add(ctx context.Context, texts ...string) ([]Document, error) {
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, llm.ErrBadParameter.With("empty document")
		}
	}
	if len(texts) == 0 {
		return []Document{}, nil
	}

	// Embed concurrently
	vectors, err := i.embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	// Store in a single transaction
	models := make([]RecordModel, len(texts))
	for n, text := range texts {
		models[n] = RecordModel{
			Text:   text,
			Vector: datatypes.NewJSONSlice(vectors[n]),
		}
	}
	if err := i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&models).Error
	}); err != nil {
		return nil, err
	}

	// Cache the vectors
	i.Lock()
	defer i.Unlock()
	result := make([]Document, 0, len(models))
	for _, m := range models {
		i.vectors[m.ID] = m.Vector
		result = append(result, document(m, 0))
	}
	i.log.Debugw("index add", "documents", len(result), "total", len(i.vectors))

	// Return success
	return result, nil
}

// Search returns at most limit documents ranked by cosine similarity to the
// query, most similar first
func (i *Index) Search(ctx context.Context, query string, limit int) ([]Document, error) {
	if strings.TrimSpace(query) == "" {
		return nil, llm.ErrBadParameter.With("empty query")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	vector, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	type scoredID struct {
		ID    uint
		score float64
	}

	// Score every cached vector
	i.RLock()
	scores := make([]scoredID, 0, len(i.vectors))
	for id, v := range i.vectors {
		scores = append(scores, scoredID{ID: id, score: similarity(vector, v)})
	}
	i.RUnlock()

	slices.SortFunc(scores, func(a, b scoredID) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if len(scores) > limit {
		scores = scores[:limit]
	}
	if len(scores) == 0 {
		return []Document{}, nil
	}

	// Fetch the documents
	conds := make([]uint, 0, len(scores))
	for _, s := range scores {
		conds = append(conds, s.ID)
	}
	var models []RecordModel
	if err := i.db.WithContext(ctx).Find(&models, conds).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]RecordModel, len(models))
	for _, m := range models {
		byID[m.ID] = m
	}

	// Return in score order
	result := make([]Document, 0, len(scores))
	for _, s := range scores {
		if m, exists := byID[s.ID]; exists {
			result = append(result, document(m, s.score))
		}
	}
	return result, nil
}

// Delete removes documents by identifier
func (i *Index) Delete(ctx context.Context, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := i.db.WithContext(ctx).Unscoped().Delete(&RecordModel{}, ids).Error; err != nil {
		return err
	}
	i.Lock()
	defer i.Unlock()
	for _, id := range ids {
		delete(i.vectors, id)
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (i *Index) load() error {
	var models []RecordModel
	return i.db.Model(&RecordModel{}).FindInBatches(&models, batchSize, func(tx *gorm.DB, batch int) error {
		for _, m := range models {
			if m.Vector != nil {
				i.vectors[m.ID] = m.Vector
			}
		}
		return nil
	}).Error
}

func (i *Index) embed(ctx context.Context, texts []string) ([][]float32, error) {
	pool, err := ants.NewPool(i.workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	vectors := make([][]float32, len(texts))
	errs := make([]error, len(texts))
	for n, text := range texts {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			vector, err := i.embedder.Embed(ctx, text)
			if err != nil {
				errs[n] = fmt.Errorf("document %d: %w", n, err)
			} else if len(vector) == 0 {
				errs[n] = fmt.Errorf("document %d: empty embedding", n)
			} else {
				vectors[n] = vector
			}
		}); err != nil {
			wg.Done()
			errs[n] = err
		}
	}
	wg.Wait()

	if err := llm.Join(llm.ErrInternalServerError, "failed to embed documents", errs...); err != nil {
		return nil, err
	}
	return vectors, nil
}

func document(m RecordModel, score float64) Document {
	doc := Document{
		ID:    m.ID,
		Text:  m.Text,
		Score: score,
	}
	if len(m.Metadata) > 0 {
		doc.Metadata = map[string]any(m.Metadata)
	}
	return doc
}
