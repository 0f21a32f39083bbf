package chart

import (
	"fmt"

	"github.com/KaramelBytes/datadash/internal/dataset"
)

// EmptySelectionError reports that a required selection has no valid options,
// such as a heatmap over fewer than two numeric columns.
type EmptySelectionError struct {
	What string
}

func (e *EmptySelectionError) Error() string { return "empty selection: " + e.What }

// UnknownColumnError reports a column name absent from the dataset.
type UnknownColumnError struct{ Column string }

func (e *UnknownColumnError) Error() string { return fmt.Sprintf("unknown column %q", e.Column) }

// ColumnKindError reports a column whose kind does not fit the chart role.
type ColumnKindError struct {
	Column string
	Kind   dataset.Kind
	Want   string
}

func (e *ColumnKindError) Error() string {
	return fmt.Sprintf("column %q is %s, want %s", e.Column, e.Kind, e.Want)
}

func column(ds *dataset.Dataset, name string) (*dataset.Column, error) {
	if name == "" {
		return nil, &EmptySelectionError{What: "no column selected"}
	}
	c, ok := ds.Column(name)
	if !ok {
		return nil, &UnknownColumnError{Column: name}
	}
	return c, nil
}

func numericColumn(ds *dataset.Dataset, name string) (*dataset.Column, error) {
	c, err := column(ds, name)
	if err != nil {
		return nil, err
	}
	if !c.Kind.IsNumeric() {
		return nil, &ColumnKindError{Column: name, Kind: c.Kind, Want: "numeric"}
	}
	return c, nil
}
