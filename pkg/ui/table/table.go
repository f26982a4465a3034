// Package table renders tools and query results as terminal tables, backed
// by lipgloss. Consumers supply data via the Data interface.
package table

import (
	"fmt"
	"slices"
	"strings"
	"time"

	// Packages
	lipgloss "github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	sqldb "github.com/mutablelogic/go-llmservice/pkg/sqldb"
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Data is the interface that data sources implement to be rendered
// as a terminal table.
type Data interface {
	// Header returns the column header labels.
	Header() []string

	// Len returns the number of rows.
	Len() int

	// Row returns the cell values for row i. Return nil to skip a row.
	// Wrap a value in Bold{} to render it in bold.
	Row(i int) []any
}

// Bold wraps a cell value so that FormatCell renders it in bold.
type Bold struct{ Value any }

type tools []tool.Descriptor

type rows struct {
	*sqldb.Rows
}

var _ Data = tools(nil)
var _ Data = rows{}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	descriptionWidth = 80
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	boldStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cellStyle   = lipgloss.NewStyle()
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// Tools returns table data for tool descriptors, one row per tool
func Tools(descriptors []tool.Descriptor) Data {
	return tools(descriptors)
}

// Rows returns table data for the result of a query
func Rows(r *sqldb.Rows) Data {
	if r == nil {
		r = &sqldb.Rows{}
	}
	return rows{r}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Render renders the table as a string suitable for terminal output. When
// width is positive and the natural render is wider, columns are wrapped
// to fit.
func Render(data Data, width int) string {
	t := lgtable.New().
		Headers(data.Header()...).
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Wrap(true).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for i := range data.Len() {
		row := data.Row(i)
		if row == nil {
			continue
		}
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = FormatCell(v)
		}
		t.Row(cells...)
	}

	result := t.Render()
	if width > 0 && lipgloss.Width(result) > width {
		t.Width(width)
		result = t.Render()
	}
	return result
}

///////////////////////////////////////////////////////////////////////////////
// TOOLS

func (t tools) Header() []string {
	return []string{"Name", "Description", "Arguments"}
}

func (t tools) Len() int {
	return len(t)
}

func (t tools) Row(i int) []any {
	var args []string
	if schema := t[i].ArgsSchema; schema != nil {
		for name := range schema.Properties {
			if slices.Contains(schema.Required, name) {
				name += "*"
			}
			args = append(args, name)
		}
		slices.Sort(args)
	}
	return []any{Bold{t[i].Name}, Truncate(t[i].Description, descriptionWidth), strings.Join(args, ", ")}
}

///////////////////////////////////////////////////////////////////////////////
// ROWS

func (r rows) Header() []string {
	return r.Columns
}

func (r rows) Len() int {
	return len(r.Values)
}

func (r rows) Row(i int) []any {
	return r.Values[i]
}

///////////////////////////////////////////////////////////////////////////////
// HELPERS

// Truncate shortens s to max runes, collapsing newlines and appending "…"
// if truncated.
func Truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// FormatCell converts a value to a display string for a table cell.
// Missing values are rendered as "-".
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case Bold:
		return boldStyle.Render(FormatCell(val.Value))
	case string:
		if val == "" {
			return "-"
		}
		return val
	case []byte:
		return FormatCell(string(val))
	case time.Time:
		if val.IsZero() {
			return "-"
		}
		return val.Format("2006-01-02 15:04")
	default:
		return fmt.Sprint(val)
	}
}
