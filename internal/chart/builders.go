package chart

import (
	"math"
	"sort"

	"github.com/KaramelBytes/datadash/internal/dataset"
	"github.com/KaramelBytes/datadash/internal/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// missingGroup names the scatter group of rows whose colour cell is null.
const missingGroup = "(missing)"

// Histogram bins a numeric column into equal-width buckets over its observed
// range. Nulls and infinities are skipped. When every value is equal, or the
// range is too small to split, a single bin of width 1 centred on the value is
// returned.
func Histogram(ds *dataset.Dataset, name string, bins int) (Artifact, error) {
	c, err := numericColumn(ds, name)
	if err != nil {
		return Artifact{}, err
	}
	if bins <= 0 {
		bins = DefaultBins
	}
	a := Artifact{Kind: KindHistogram, Title: "Distribution of " + name, XLabel: name, YLabel: "count"}
	vals := finite(c.Numbers())
	if len(vals) == 0 {
		return a, nil
	}
	lo, hi := floats.Min(vals), floats.Max(vals)
	// Halves keep the span finite for ranges near ±MaxFloat64.
	half := (hi/2 - lo/2) / float64(bins)
	if lo == hi || half == 0 || math.IsInf(half, 0) || math.IsNaN(half) {
		a.Bins = []Bin{{Lo: lo - 0.5, Hi: hi + 0.5, Count: len(vals)}}
		return a, nil
	}
	a.Bins = make([]Bin, bins)
	for i := range a.Bins {
		a.Bins[i].Lo = 2 * (lo/2 + float64(i)*half)
		a.Bins[i].Hi = 2 * (lo/2 + float64(i+1)*half)
	}
	a.Bins[bins-1].Hi = hi
	for _, v := range vals {
		i := binIndex(v/2-lo/2, half, bins)
		a.Bins[i].Count++
	}
	return a, nil
}

// binIndex maps an offset from the low edge (in half units) to a bin, clamped
// to [0, bins-1].
func binIndex(offset, half float64, bins int) int {
	f := offset / half
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f >= float64(bins):
		return bins - 1
	}
	return int(f)
}

func finite(vals []float64) []float64 {
	out := vals[:0:0]
	for _, v := range vals {
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// CategoricalBars counts each distinct non-null value, most frequent first.
// Ties keep first-appearance order.
func CategoricalBars(ds *dataset.Dataset, name string) (Artifact, error) {
	c, err := column(ds, name)
	if err != nil {
		return Artifact{}, err
	}
	index := map[string]int{}
	var bars []Bar
	for _, v := range c.Values {
		if v.Null {
			continue
		}
		label := v.String()
		i, ok := index[label]
		if !ok {
			i = len(bars)
			index[label] = i
			bars = append(bars, Bar{Label: label})
		}
		bars[i].Count++
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Count > bars[j].Count })
	return Artifact{Kind: KindBars, Title: "Value counts of " + name, XLabel: name, YLabel: "Count", Bars: bars}, nil
}

// CorrelationHeatmap computes the Pearson correlation matrix over the given
// numeric columns. Each pair uses the rows where both cells are present.
// The diagonal is 1 and pairs without variance are NaN.
func CorrelationHeatmap(ds *dataset.Dataset, names []string) (Artifact, error) {
	if len(names) < 2 {
		return Artifact{}, &EmptySelectionError{What: "correlation needs at least 2 numeric columns"}
	}
	cols := make([]*dataset.Column, len(names))
	for i, n := range names {
		c, err := numericColumn(ds, n)
		if err != nil {
			return Artifact{}, err
		}
		cols[i] = c
	}
	n := len(cols)
	m := &Matrix{Labels: append([]string(nil), names...), Values: make([][]utils.Float, n)}
	for i := range m.Values {
		m.Values[i] = make([]utils.Float, n)
		m.Values[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			r := utils.Float(pearson(cols[i], cols[j]))
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return Artifact{Kind: KindHeatmap, Title: "Correlation Matrix", Matrix: m}, nil
}

// pearson correlates two columns over their pairwise-complete rows.
func pearson(a, b *dataset.Column) float64 {
	xs := make([]float64, 0, len(a.Values))
	ys := make([]float64, 0, len(a.Values))
	for k := range a.Values {
		x, okx := a.Values[k].Number()
		y, oky := b.Values[k].Number()
		if okx && oky {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	switch {
	case r > 1:
		r = 1
	case r < -1:
		r = -1
	}
	return r
}

// Scatter plots one point per row with both x and y present. An empty color
// yields a single unnamed group; a numeric colour column shades points on a
// continuous scale, any other kind splits them into groups by value in order
// of first appearance.
func Scatter(ds *dataset.Dataset, x, y, color string) (Artifact, error) {
	xc, err := numericColumn(ds, x)
	if err != nil {
		return Artifact{}, err
	}
	yc, err := numericColumn(ds, y)
	if err != nil {
		return Artifact{}, err
	}
	var cc *dataset.Column
	if color != "" {
		if cc, err = column(ds, color); err != nil {
			return Artifact{}, err
		}
	}
	a := Artifact{Kind: KindScatter, Title: y + " vs " + x, XLabel: x, YLabel: y}
	sd := &ScatterData{ColorColumn: color}
	a.Scatter = sd

	nan := utils.Float(math.NaN())
	switch {
	case cc == nil:
		g := Group{}
		for k := range xc.Values {
			if p, ok := point(xc, yc, k); ok {
				p.Shade = nan
				g.Points = append(g.Points, p)
			}
		}
		sd.Groups = []Group{g}
	case cc.Kind.IsNumeric():
		sd.Continuous = true
		g := Group{Name: color}
		lo, hi := math.Inf(1), math.Inf(-1)
		for k := range xc.Values {
			p, ok := point(xc, yc, k)
			if !ok {
				continue
			}
			p.Shade = nan
			if s, ok := cc.Values[k].Number(); ok {
				p.Shade = utils.Float(s)
				lo, hi = math.Min(lo, s), math.Max(hi, s)
			}
			g.Points = append(g.Points, p)
		}
		if math.IsInf(lo, 1) {
			lo, hi = math.NaN(), math.NaN()
		}
		sd.ShadeMin, sd.ShadeMax = utils.Float(lo), utils.Float(hi)
		sd.Groups = []Group{g}
	default:
		index := map[string]int{}
		for k := range xc.Values {
			p, ok := point(xc, yc, k)
			if !ok {
				continue
			}
			p.Shade = nan
			name := missingGroup
			if v := cc.Values[k]; !v.Null {
				name = v.String()
			}
			i, seen := index[name]
			if !seen {
				i = len(sd.Groups)
				index[name] = i
				sd.Groups = append(sd.Groups, Group{Name: name})
			}
			sd.Groups[i].Points = append(sd.Groups[i].Points, p)
		}
	}
	return a, nil
}

func point(xc, yc *dataset.Column, k int) (Point, bool) {
	x, okx := xc.Values[k].Number()
	y, oky := yc.Values[k].Number()
	return Point{X: x, Y: y}, okx && oky
}

// TimeSeries plots value over date in dataset row order. Rows with a null date
// or value are skipped; nothing is re-sorted.
func TimeSeries(ds *dataset.Dataset, date, value string) (Artifact, error) {
	dc, err := column(ds, date)
	if err != nil {
		return Artifact{}, err
	}
	if dc.Kind != dataset.KindDatetime {
		return Artifact{}, &ColumnKindError{Column: date, Kind: dc.Kind, Want: "datetime"}
	}
	vc, err := numericColumn(ds, value)
	if err != nil {
		return Artifact{}, err
	}
	a := Artifact{Kind: KindTimeSeries, Title: value + " over " + date, XLabel: date, YLabel: value}
	for k, dv := range dc.Values {
		y, ok := vc.Values[k].Number()
		if dv.Null || !ok {
			continue
		}
		a.Series = append(a.Series, TimePoint{T: dv.Time, Y: y})
	}
	return a, nil
}
