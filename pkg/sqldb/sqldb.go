// Package sqldb queries a SQLite database which is owned elsewhere. Each
// call opens a fresh read-only connection and closes it afterwards, so a
// Database can be shared between concurrent callers.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	// Packages
	gormlite "github.com/ncruces/go-sqlite3/gormlite"
	llm "github.com/mutablelogic/go-llmservice"
	log "github.com/mutablelogic/go-llmservice/pkg/log"
	gorm "gorm.io/gorm"
	logger "gorm.io/gorm/logger"

	// Embedded SQLite
	_ "github.com/ncruces/go-sqlite3/embed"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Database struct {
	path       string
	maxRows    int
	sampleRows int
	log        *log.Logger
}

// Rows is the result of a query
type Rows struct {
	Columns   []string `json:"columns"`
	Values    [][]any  `json:"rows"`
	Truncated bool     `json:"truncated,omitempty"`
}

type Opt func(*Database) error

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultPath       = "LData.db"
	DefaultMaxRows    = 100
	DefaultSampleRows = 3
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a database for the SQLite file at path, which must exist
func New(path string, opts ...Opt) (*Database, error) {
	if path == "" {
		path = DefaultPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, llm.ErrBadParameter.Withf("invalid path: %v", err)
	}

	self := &Database{
		path:       abs,
		maxRows:    DefaultMaxRows,
		sampleRows: DefaultSampleRows,
		log:        log.Nop(),
	}
	for _, opt := range opts {
		if err := opt(self); err != nil {
			return nil, err
		}
	}
	if err := self.exists(); err != nil {
		return nil, err
	}

	// Return success
	return self, nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithMaxRows sets the maximum number of rows returned by a query
func WithMaxRows(v int) Opt {
	return func(db *Database) error {
		if v <= 0 {
			return llm.ErrBadParameter.With("max rows must be positive")
		}
		db.maxRows = v
		return nil
	}
}

// WithSampleRows sets the number of rows returned with each table schema
func WithSampleRows(v int) Opt {
	return func(db *Database) error {
		if v < 0 {
			return llm.ErrBadParameter.With("sample rows cannot be negative")
		}
		db.sampleRows = v
		return nil
	}
}

func WithLogger(v *log.Logger) Opt {
	return func(db *Database) error {
		if v != nil {
			db.log = v
		}
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (db *Database) String() string {
	return fmt.Sprintf("<sqldb %q>", db.path)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Path returns the absolute path of the database file
func (db *Database) Path() string {
	return db.path
}

// Tables returns the names of the tables in the database, sorted
func (db *Database) Tables(ctx context.Context) ([]string, error) {
	var result []string
	err := db.do(ctx, func(tx *gorm.DB) error {
		var err error
		result, err = tables(tx)
		return err
	})
	return result, err
}

// Schema returns the DDL and sample rows for each of the named tables, or
// for all tables when none are named. Returns ErrNotFound if a table does
// not exist.
func (db *Database) Schema(ctx context.Context, names ...string) (string, error) {
	var result strings.Builder
	err := db.do(ctx, func(tx *gorm.DB) error {
		all, err := tables(tx)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			names = all
		}
		for i, name := range names {
			name = strings.TrimSpace(name)
			if !slices.Contains(all, name) {
				return llm.ErrNotFound.Withf("table %q", name)
			}
			if i > 0 {
				result.WriteString("\n\n")
			}
			if err := db.tableSchema(tx, &result, name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return result.String(), nil
}

// Query executes a SQL statement and returns at most the maximum number of
// rows. The connection is read-only, so statements which modify the
// database fail.
func (db *Database) Query(ctx context.Context, query string) (*Rows, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, llm.ErrBadParameter.With("missing query")
	}

	var result *Rows
	err := db.do(ctx, func(tx *gorm.DB) error {
		rows, err := tx.Raw(query).Rows()
		if err != nil {
			return llm.ErrBadParameter.With(err)
		}
		defer rows.Close()
		result, err = scan(rows, db.maxRows)
		return err
	})
	if err != nil {
		return nil, err
	}
	db.log.Debugw("query", "sql", query, "rows", len(result.Values), "truncated", result.Truncated)
	return result, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (db *Database) exists() error {
	info, err := os.Stat(db.path)
	if errors.Is(err, os.ErrNotExist) {
		return llm.ErrNotFound.Withf("database %q", db.path)
	} else if err != nil {
		return err
	} else if info.IsDir() {
		return llm.ErrBadParameter.Withf("database is a directory: %q", db.path)
	}
	return nil
}

// do opens a read-only connection, calls fn and closes the connection
func (db *Database) do(ctx context.Context, fn func(*gorm.DB) error) error {
	if err := db.exists(); err != nil {
		return err
	}

	dsn := url.URL{Scheme: "file", Path: filepath.ToSlash(db.path), RawQuery: "mode=ro"}
	conn, err := gorm.Open(gormlite.Open(dsn.String()), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	return fn(conn.WithContext(ctx))
}

// tableSchema writes the DDL and sample rows for a table
func (db *Database) tableSchema(tx *gorm.DB, w *strings.Builder, name string) error {
	var ddl string
	if err := tx.Raw("SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&ddl).Error; err != nil {
		return err
	}
	w.WriteString(strings.TrimSpace(ddl))
	if db.sampleRows == 0 {
		return nil
	}

	rows, err := tx.Raw(fmt.Sprintf("SELECT * FROM %s LIMIT %d", quote(name), db.sampleRows)).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()
	sample, err := scan(rows, db.sampleRows)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n\n/*\n%d rows from %s table:\n", db.sampleRows, name)
	w.WriteString(strings.Join(sample.Columns, "\t"))
	w.WriteString("\n")
	for _, row := range sample.Values {
		for i, value := range row {
			if i > 0 {
				w.WriteString("\t")
			}
			if value == nil {
				w.WriteString("None")
			} else {
				fmt.Fprint(w, value)
			}
		}
		w.WriteString("\n")
	}
	w.WriteString("*/")
	return nil
}

// tables returns the user tables, sorted
func tables(tx *gorm.DB) ([]string, error) {
	var result []string
	if err := tx.Raw("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name").Scan(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// scan reads at most max rows
func scan(rows *sql.Rows, max int) (*Rows, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	result := &Rows{Columns: columns, Values: [][]any{}}
	for rows.Next() {
		if len(result.Values) >= max {
			result.Truncated = true
			break
		}
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Values = append(result.Values, values)
	}
	return result, rows.Err()
}

// quote returns a quoted SQL identifier
func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
