// Package summary computes the overview metrics and per-column descriptive
// statistics shown alongside the charts.
package summary

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/datadash/internal/dataset"
	"github.com/KaramelBytes/datadash/internal/utils"
	"gonum.org/v1/gonum/stat"
)

// Overview is the headline panel for a loaded dataset.
type Overview struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
	Missing int `json:"missing"`
}

// Stats describes one numeric column. Std is the sample standard deviation
// and is NaN for a single value.
type Stats struct {
	Column string      `json:"column"`
	Count  int         `json:"count"`
	Mean   utils.Float `json:"mean"`
	Std    utils.Float `json:"std"`
	Min    utils.Float `json:"min"`
	P25    utils.Float `json:"p25"`
	P50    utils.Float `json:"p50"`
	P75    utils.Float `json:"p75"`
	Max    utils.Float `json:"max"`
}

// StatNames are the row labels of a describe table, in display order.
var StatNames = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Values returns the statistics in StatNames order.
func (s Stats) Values() []float64 {
	return []float64{float64(s.Count), float64(s.Mean), float64(s.Std), float64(s.Min),
		float64(s.P25), float64(s.P50), float64(s.P75), float64(s.Max)}
}

// UnknownColumnError reports a column name absent from the dataset.
type UnknownColumnError struct{ Column string }

func (e *UnknownColumnError) Error() string { return fmt.Sprintf("unknown column %q", e.Column) }

// NonNumericError reports a describe request on a column that is not numeric.
type NonNumericError struct {
	Column string
	Kind   dataset.Kind
}

func (e *NonNumericError) Error() string {
	return fmt.Sprintf("column %q is %s, not numeric", e.Column, e.Kind)
}

// OverviewOf counts rows, columns and null cells.
func OverviewOf(ds *dataset.Dataset) Overview {
	o := Overview{Rows: ds.NumRows(), Columns: ds.NumCols()}
	if ds == nil {
		return o
	}
	for _, c := range ds.Columns {
		o.Missing += c.Missing()
	}
	return o
}

// Describe computes count, mean, std, min, quartiles and max over the
// column's non-null values. An all-null column reports count 0 and NaN
// elsewhere.
func Describe(ds *dataset.Dataset, column string) (Stats, error) {
	c, ok := ds.Column(column)
	if !ok {
		return Stats{}, &UnknownColumnError{Column: column}
	}
	if !c.Kind.IsNumeric() {
		return Stats{}, &NonNumericError{Column: column, Kind: c.Kind}
	}
	vals := c.Numbers()
	s := Stats{Column: column, Count: len(vals)}
	nan := utils.Float(math.NaN())
	if len(vals) == 0 {
		s.Mean, s.Std, s.Min, s.P25, s.P50, s.P75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s, nil
	}
	mean, std := stat.MeanStdDev(vals, nil)
	if len(vals) == 1 {
		std = math.NaN()
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	s.Mean = utils.Float(mean)
	s.Std = utils.Float(std)
	s.Min = utils.Float(sorted[0])
	s.P25 = utils.Float(Quantile(sorted, 0.25))
	s.P50 = utils.Float(Quantile(sorted, 0.5))
	s.P75 = utils.Float(Quantile(sorted, 0.75))
	s.Max = utils.Float(sorted[len(sorted)-1])
	return s, nil
}

// DescribeAll describes every numeric column in dataset order.
func DescribeAll(ds *dataset.Dataset) []Stats {
	var out []Stats
	for _, c := range ds.Columns {
		if !c.Kind.IsNumeric() {
			continue
		}
		s, err := Describe(ds, c.Name)
		if err != nil {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Preview returns the first n rows as formatted cells.
func Preview(ds *dataset.Dataset, n int) [][]string {
	if n > ds.NumRows() {
		n = ds.NumRows()
	}
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, ds.Row(i))
	}
	return rows
}

// Quantile interpolates linearly between closest ranks of sorted values.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
