// Package schema partitions a dataset's columns into the numeric, categorical
// and datetime groups the dashboard offers in its selectors.
package schema

import "github.com/KaramelBytes/datadash/internal/dataset"

// Group names as reported by ColumnGroup.Group.
const (
	Numeric     = "numeric"
	Categorical = "categorical"
	Datetime    = "datetime"
)

// ColumnGroup lists column names per group, in dataset order.
type ColumnGroup struct {
	Numeric     []string `json:"numeric"`
	Categorical []string `json:"categorical"`
	Datetime    []string `json:"datetime"`
}

// Classify partitions columns by their stored kind. Content is never sniffed:
// a text column holding date-like strings stays categorical. Columns of other
// kinds (bool) belong to no group.
func Classify(ds *dataset.Dataset) ColumnGroup {
	g := ColumnGroup{Numeric: []string{}, Categorical: []string{}, Datetime: []string{}}
	if ds == nil {
		return g
	}
	for _, c := range ds.Columns {
		switch {
		case c.Kind.IsNumeric():
			g.Numeric = append(g.Numeric, c.Name)
		case c.Kind == dataset.KindText:
			g.Categorical = append(g.Categorical, c.Name)
		case c.Kind == dataset.KindDatetime:
			g.Datetime = append(g.Datetime, c.Name)
		}
	}
	return g
}

// Group reports which group holds the column, or "" for none.
func (g ColumnGroup) Group(name string) string {
	switch {
	case contains(g.Numeric, name):
		return Numeric
	case contains(g.Categorical, name):
		return Categorical
	case contains(g.Datetime, name):
		return Datetime
	}
	return ""
}

// IsNumeric reports whether name is in the numeric group.
func (g ColumnGroup) IsNumeric(name string) bool { return contains(g.Numeric, name) }

// IsCategorical reports whether name is in the categorical group.
func (g ColumnGroup) IsCategorical(name string) bool { return contains(g.Categorical, name) }

// IsDatetime reports whether name is in the datetime group.
func (g ColumnGroup) IsDatetime(name string) bool { return contains(g.Datetime, name) }

func contains(list []string, name string) bool {
	for _, s := range list {
		if s == name {
			return true
		}
	}
	return false
}
