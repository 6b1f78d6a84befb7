package dashboard

import (
	"unicode"
	"unicode/utf8"
)

// Column is a table column derived from the first record of a dataset.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Cell is a formatted table cell. Missing marks a field absent from a ragged record.
type Cell struct {
	Text    string `json:"text"`
	Class   string `json:"class,omitempty"`
	Missing bool   `json:"missing,omitempty"`
}

// TableView is the rendered table for a dataset.
type TableView struct {
	Columns []Column `json:"columns"`
	Rows    [][]Cell `json:"rows"`
}

// Headers returns the column labels in order.
func (t TableView) Headers() []string {
	out := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		out[i] = col.Label
	}
	return out
}

// CellFormatter renders a single value for a column.
type CellFormatter func(Value) Cell

const (
	classPositive = "positive"
	classNegative = "negative"
)

// cellFormatters holds per-column formatting. Columns not listed render raw.
var cellFormatters = map[string]CellFormatter{
	"change": formatSignedChange,
}

// formatSignedChange prefixes non-negative numbers with "+"; negatives keep their own sign.
func formatSignedChange(v Value) Cell {
	if !v.IsNumber() {
		return formatRaw(v)
	}
	if v.Num >= 0 {
		return Cell{Text: "+" + v.String(), Class: classPositive}
	}
	return Cell{Text: v.String(), Class: classNegative}
}

func formatRaw(v Value) Cell {
	return Cell{Text: v.String()}
}

// ColumnsOf derives columns from a record's fields, in field order.
func ColumnsOf(record Record) []Column {
	cols := make([]Column, len(record.Fields))
	for i, f := range record.Fields {
		cols[i] = Column{Key: f.Name, Label: headerLabel(f.Name)}
	}
	return cols
}

// BuildTable renders a dataset as a table. The schema comes from the first record only;
// later records missing a column get blank cells and extra fields are ignored.
func BuildTable(ds Dataset) TableView {
	view := TableView{Columns: []Column{}, Rows: [][]Cell{}}
	if len(ds.Records) == 0 {
		return view
	}
	view.Columns = ColumnsOf(ds.Records[0])
	view.Rows = make([][]Cell, 0, len(ds.Records))
	for _, rec := range ds.Records {
		row := make([]Cell, len(view.Columns))
		for i, col := range view.Columns {
			value, ok := rec.Get(col.Key)
			if !ok {
				row[i] = Cell{Missing: true}
				continue
			}
			row[i] = FormatCell(col.Key, value)
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

// FormatCell applies the column's formatter, falling back to raw rendering.
func FormatCell(column string, v Value) Cell {
	if format, ok := cellFormatters[column]; ok {
		return format(v)
	}
	return formatRaw(v)
}

// headerLabel upper-cases the first letter of a field name.
func headerLabel(name string) string {
	if name == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}
