// Package table builds display tables from any row type. It knows nothing
// about market data; callers describe columns as functions of a row.
package table

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Trend marks a cell that moved up or down
type Trend int

const (
	TrendNone Trend = iota
	TrendUp
	TrendDown
)

func (t Trend) String() string {
	switch t {
	case TrendUp:
		return "up"
	case TrendDown:
		return "down"
	default:
		return ""
	}
}

// Cell is one rendered value with optional link, image and trend affordances
type Cell struct {
	Text  string
	Href  string
	Image string
	Trend Trend
	Class string
}

// Column describes how to render one column for rows of type T
type Column[T any] struct {
	Header    string
	CellClass string
	Cell      func(T) Cell
}

// Row is one rendered row
type Row struct {
	Key   string
	Cells []Cell
}

// Table is the rendered result handed to templates and text output
type Table struct {
	Class   string
	Headers []string
	Rows    []Row
}

// Build renders rows with cols; key extracts the row identity
func Build[T any](rows []T, cols []Column[T], key func(T) string) Table {
	t := Table{
		Headers: make([]string, len(cols)),
		Rows:    make([]Row, 0, len(rows)),
	}
	for i, c := range cols {
		t.Headers[i] = c.Header
	}

	for _, r := range rows {
		row := Row{Key: key(r), Cells: make([]Cell, len(cols))}
		for i, c := range cols {
			cell := c.Cell(r)
			if cell.Class == "" {
				cell.Class = c.CellClass
			}
			row.Cells[i] = cell
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Empty reports whether the table has no rows
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// WriteText writes the table as aligned plain text
func (t Table) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	for _, r := range t.Rows {
		texts := make([]string, len(r.Cells))
		for i, c := range r.Cells {
			texts[i] = c.Text
			switch c.Trend {
			case TrendUp:
				texts[i] += " ▲"
			case TrendDown:
				texts[i] += " ▼"
			}
		}
		fmt.Fprintln(tw, strings.Join(texts, "\t"))
	}
	return tw.Flush()
}
