package sqldb

import (
	"context"
	"encoding/json"
	"strings"

	// Packages
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	llm "github.com/mutablelogic/go-llmservice"
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type listTables struct {
	*Database
}

type schema struct {
	*Database
}

type query struct {
	*Database
}

var _ tool.Tool = (*listTables)(nil)
var _ tool.Tool = (*schema)(nil)
var _ tool.Tool = (*query)(nil)

type ListTablesRequest struct{}

type SchemaRequest struct {
	Tables string `json:"table_names" jsonschema:"A comma-separated list of the table names for which to return the schema"`
}

type QueryRequest struct {
	Query string `json:"query" jsonschema:"A detailed and correct SQL query"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ListTablesName = "sql_db_list_tables"
	SchemaName     = "sql_db_schema"
	QueryName      = "sql_db_query"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewTools returns the tools which list tables, describe tables and run
// queries against the database
func NewTools(db *Database) []tool.Tool {
	return []tool.Tool{
		&listTables{db}, &schema{db}, &query{db},
	}
}

///////////////////////////////////////////////////////////////////////////////
// sql_db_list_tables

func (*listTables) Name() string { return ListTablesName }

func (*listTables) Description() string {
	return "Input is an empty string, output is a comma-separated list of tables in the database."
}

func (*listTables) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[ListTablesRequest](nil)
}

func (t *listTables) Run(ctx context.Context, _ json.RawMessage) (any, error) {
	tables, err := t.Tables(ctx)
	if err != nil {
		return nil, err
	}
	return strings.Join(tables, ", "), nil
}

///////////////////////////////////////////////////////////////////////////////
// sql_db_schema

func (*schema) Name() string { return SchemaName }

func (*schema) Description() string {
	return "Input to this tool is a comma-separated list of tables, output is the schema and sample rows for those tables. " +
		"Be sure that the tables actually exist by calling " + ListTablesName + " first! " +
		"Example Input: table1, table2, table3"
}

func (*schema) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[SchemaRequest](nil)
}

func (t *schema) Run(ctx context.Context, input json.RawMessage) (any, error) {
	var req SchemaRequest
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, llm.ErrBadParameter.Withf("failed to unmarshal input: %v", err)
	}
	var names []string
	for _, name := range strings.Split(req.Tables, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, llm.ErrBadParameter.With("missing table names")
	}
	return t.Database.Schema(ctx, names...)
}

///////////////////////////////////////////////////////////////////////////////
// sql_db_query

func (*query) Name() string { return QueryName }

func (*query) Description() string {
	return "Input to this tool is a detailed and correct SQL query, output is a result from the database. " +
		"If the query is not correct, an error message will be returned. " +
		"If an error is returned, rewrite the query, check the query, and try again. " +
		"If you encounter an issue with unknown column, use " + SchemaName + " to query the correct table fields."
}

func (*query) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[QueryRequest](nil)
}

func (t *query) Run(ctx context.Context, input json.RawMessage) (any, error) {
	var req QueryRequest
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, llm.ErrBadParameter.Withf("failed to unmarshal input: %v", err)
	}
	return t.Query(ctx, req.Query)
}
