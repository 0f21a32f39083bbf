// Package dataset holds the in-memory tabular model and the loaders that
// produce it from uploaded CSV and spreadsheet files.
package dataset

import (
	"strconv"
	"strings"
	"time"
)

// Kind is the stored type of a column, decided once at load time.
type Kind string

const (
	KindInt      Kind = "int"
	KindFloat    Kind = "float"
	KindText     Kind = "text"
	KindDatetime Kind = "datetime"
	KindBool     Kind = "bool"
)

// IsNumeric reports whether the kind holds integer or floating point values.
func (k Kind) IsNumeric() bool { return k == KindInt || k == KindFloat }

// Value is a single cell. Exactly one payload field is meaningful, selected by Kind.
type Value struct {
	Kind  Kind
	Null  bool
	Int   int64
	Float float64
	Text  string
	Time  time.Time
	Bool  bool
}

// Number returns the cell as float64 for numeric kinds.
func (v Value) Number() (float64, bool) {
	if v.Null {
		return 0, false
	}
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

// String formats the cell the way it is written to CSV. Null cells are empty.
func (v Value) String() string {
	if v.Null {
		return ""
	}
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return formatFloat(v.Float)
	case KindDatetime:
		return formatTime(v.Time)
	case KindBool:
		if v.Bool {
			return "True"
		}
		return "False"
	default:
		return v.Text
	}
}

// formatFloat keeps a decimal point on integral values so a reload infers float again.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func formatTime(t time.Time) string {
	if t.Location() == time.UTC && t.Nanosecond() == 0 {
		return t.Format("2006-01-02 15:04:05")
	}
	return t.Format(time.RFC3339Nano)
}

// Column is a named, single-kind sequence of cells.
type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// Missing counts null cells in the column.
func (c *Column) Missing() int {
	n := 0
	for _, v := range c.Values {
		if v.Null {
			n++
		}
	}
	return n
}

// Numbers returns the non-null numeric values in row order.
func (c *Column) Numbers() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if x, ok := v.Number(); ok {
			out = append(out, x)
		}
	}
	return out
}

// Dataset is the full in-memory table for the current session.
type Dataset struct {
	ID       string
	Name     string
	LoadedAt time.Time
	Columns  []*Column
}

// NumRows returns the number of rows; all columns share the same length.
func (d *Dataset) NumRows() int {
	if d == nil || len(d.Columns) == 0 {
		return 0
	}
	return len(d.Columns[0].Values)
}

// NumCols returns the number of columns.
func (d *Dataset) NumCols() int {
	if d == nil {
		return 0
	}
	return len(d.Columns)
}

// Names returns column names in dataset order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by exact name.
func (d *Dataset) Column(name string) (*Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Row returns the formatted cells of row i.
func (d *Dataset) Row(i int) []string {
	row := make([]string, len(d.Columns))
	for j, c := range d.Columns {
		row[j] = c.Values[i].String()
	}
	return row
}
