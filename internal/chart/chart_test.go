package chart

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/datadash/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, content string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Load("t.csv", strings.NewReader(content), dataset.DefaultOptions())
	require.NoError(t, err)
	return ds
}

func sample(t *testing.T) *dataset.Dataset {
	t.Helper()
	var b strings.Builder
	b.WriteString("id,name,price,qty,ts,flag\n")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, "%d,%s,%.1f,%d,%s,%t\n", i, []string{"a", "b", "b", "c"}[i%4], float64(i)*2+1, 100-i*3%7, base.AddDate(0, 0, i).Format("2006-01-02"), i%2 == 0)
	}
	return load(t, b.String())
}

func TestHistogram(t *testing.T) {
	ds := sample(t)
	a, err := Histogram(ds, "price", 0)
	require.NoError(t, err)
	require.Len(t, a.Bins, DefaultBins)

	total := 0
	for i, b := range a.Bins {
		total += b.Count
		assert.Less(t, b.Lo, b.Hi)
		if i > 0 {
			assert.InDelta(t, a.Bins[i-1].Hi, b.Lo, 1e-9)
		}
	}
	assert.Equal(t, 50, total)
	assert.Equal(t, 1.0, a.Bins[0].Lo)
	assert.Equal(t, 99.0, a.Bins[DefaultBins-1].Hi)
}

func TestHistogram_SkipsInfinities(t *testing.T) {
	a, err := Histogram(load(t, "v\n1\ninf\n3\n-inf\n"), "v", 2)
	require.NoError(t, err)
	require.Len(t, a.Bins, 2)
	assert.Equal(t, 1.0, a.Bins[0].Lo)
	assert.Equal(t, 3.0, a.Bins[1].Hi)
	assert.Equal(t, 2, a.Bins[0].Count+a.Bins[1].Count)
}

func TestHistogram_ExtremeRanges(t *testing.T) {
	t.Run("span overflows float64", func(t *testing.T) {
		var a Artifact
		require.NotPanics(t, func() {
			var err error
			a, err = Histogram(load(t, "v\n-1.7e308\n1.7e308\n"), "v", 30)
			require.NoError(t, err)
		})
		require.Len(t, a.Bins, 30)
		assert.Equal(t, 1, a.Bins[0].Count)
		assert.Equal(t, 1, a.Bins[29].Count)
		assert.Equal(t, 1.7e308, a.Bins[29].Hi)
		for _, b := range a.Bins {
			assert.False(t, math.IsInf(b.Lo, 0) || math.IsInf(b.Hi, 0))
		}
	})
	t.Run("denormal span", func(t *testing.T) {
		var a Artifact
		require.NotPanics(t, func() {
			var err error
			a, err = Histogram(load(t, "v\n0\n5e-324\n"), "v", 30)
			require.NoError(t, err)
		})
		require.Len(t, a.Bins, 1)
		assert.Equal(t, 2, a.Bins[0].Count)
	})
}

func TestBinIndexClamps(t *testing.T) {
	assert.Equal(t, 0, binIndex(-1, 1, 4))
	assert.Equal(t, 0, binIndex(math.NaN(), 1, 4))
	assert.Equal(t, 3, binIndex(math.Inf(1), 1, 4))
	assert.Equal(t, 2, binIndex(2.5, 1, 4))
}

func TestHistogram_MaxLandsInLastBin(t *testing.T) {
	a, err := Histogram(load(t, "v\n0\n1\n2\n3\n4\n"), "v", 4)
	require.NoError(t, err)
	counts := []int{}
	for _, b := range a.Bins {
		counts = append(counts, b.Count)
	}
	assert.Equal(t, []int{1, 1, 1, 2}, counts)
}

func TestHistogram_ConstantAndEmpty(t *testing.T) {
	a, err := Histogram(load(t, "v,w\n5,\n5,\n5,\n"), "v", 10)
	require.NoError(t, err)
	assert.Equal(t, []Bin{{Lo: 4.5, Hi: 5.5, Count: 3}}, a.Bins)

	a, err = Histogram(load(t, "v,w\n5,\n5,\n5,\n"), "w", 10)
	require.NoError(t, err)
	assert.Empty(t, a.Bins)
}

func TestHistogram_RejectsText(t *testing.T) {
	_, err := Histogram(sample(t), "name", 10)
	var ke *ColumnKindError
	require.True(t, errors.As(err, &ke))
	assert.Equal(t, "numeric", ke.Want)
}

func TestCategoricalBars(t *testing.T) {
	a, err := CategoricalBars(load(t, "c\nx\ny\ny\nz\n\nx\nw\n"), "c")
	require.NoError(t, err)
	assert.Equal(t, []Bar{{Label: "x", Count: 2}, {Label: "y", Count: 2}, {Label: "z", Count: 1}, {Label: "w", Count: 1}}, a.Bars)
	assert.Equal(t, "Count", a.YLabel)
}

func TestCorrelationHeatmap_SymmetricUnitDiagonal(t *testing.T) {
	ds := sample(t)
	names := []string{"qty", "id", "price"}
	a, err := CorrelationHeatmap(ds, names)
	require.NoError(t, err)
	m := a.Matrix
	require.NotNil(t, m)
	assert.Equal(t, names, m.Labels)
	for i := range names {
		assert.Equal(t, 1.0, m.At(i, i))
		for j := range names {
			assert.Equal(t, m.At(i, j), m.At(j, i))
			assert.LessOrEqual(t, math.Abs(m.At(i, j)), 1.0)
		}
	}
	assert.InDelta(t, 1.0, m.At(1, 2), 1e-12, "price is linear in id")
}

func TestCorrelationHeatmap_PairwiseComplete(t *testing.T) {
	ds := load(t, "a,b,c\n1,2,5\n2,4,\n3,6,1\n4,,9\n5,10,2\n")
	a, err := CorrelationHeatmap(ds, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, a.Matrix.At(0, 1), 1e-12)
}

func TestCorrelationHeatmap_ZeroVarianceIsNaN(t *testing.T) {
	ds := load(t, "a,b\n1,3\n2,3\n3,3\n")
	a, err := CorrelationHeatmap(ds, []string{"a", "b"})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(a.Matrix.At(0, 1)))
	assert.Equal(t, 1.0, a.Matrix.At(1, 1))

	b, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(b), "null")
}

func TestCorrelationHeatmap_NeedsTwoColumns(t *testing.T) {
	_, err := CorrelationHeatmap(sample(t), []string{"price"})
	var es *EmptySelectionError
	assert.True(t, errors.As(err, &es))
}

func TestScatter(t *testing.T) {
	ds := sample(t)

	a, err := Scatter(ds, "id", "price", "")
	require.NoError(t, err)
	require.Len(t, a.Scatter.Groups, 1)
	assert.Equal(t, 50, a.Scatter.Len())
	assert.False(t, a.Scatter.Continuous)

	a, err = Scatter(ds, "id", "id", "")
	require.NoError(t, err, "same column on both axes")
	assert.Equal(t, a.Scatter.Groups[0].Points[3].X, a.Scatter.Groups[0].Points[3].Y)

	a, err = Scatter(ds, "id", "price", "name")
	require.NoError(t, err)
	var names []string
	for _, g := range a.Scatter.Groups {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Equal(t, 50, a.Scatter.Len())

	a, err = Scatter(ds, "id", "price", "flag")
	require.NoError(t, err)
	assert.Len(t, a.Scatter.Groups, 2)

	a, err = Scatter(ds, "id", "price", "qty")
	require.NoError(t, err)
	assert.True(t, a.Scatter.Continuous)
	assert.LessOrEqual(t, float64(a.Scatter.ShadeMin), float64(a.Scatter.ShadeMax))
	assert.False(t, math.IsNaN(float64(a.Scatter.Groups[0].Points[0].Shade)))
}

func TestScatter_SkipsIncompleteRowsAndGroupsMissingColor(t *testing.T) {
	ds := load(t, "x,y,c\n1,2,a\n2,,a\n3,4,\n")
	a, err := Scatter(ds, "x", "y", "c")
	require.NoError(t, err)
	assert.Equal(t, 2, a.Scatter.Len())
	assert.Equal(t, "a", a.Scatter.Groups[0].Name)
	assert.Equal(t, missingGroup, a.Scatter.Groups[1].Name)
}

func TestTimeSeries_DatasetOrder(t *testing.T) {
	ds := load(t, "d,v\n2024-01-03,3\n2024-01-01,1\n,9\n2024-01-02,\n2024-01-02,2\n")
	a, err := TimeSeries(ds, "d", "v")
	require.NoError(t, err)
	var ys []float64
	for _, p := range a.Series {
		ys = append(ys, p.Y)
	}
	assert.Equal(t, []float64{3, 1, 2}, ys)
	assert.True(t, a.Series[0].T.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)))
}

func TestTimeSeries_RequiresDatetime(t *testing.T) {
	_, err := TimeSeries(sample(t), "name", "price")
	var ke *ColumnKindError
	require.True(t, errors.As(err, &ke))
	assert.Equal(t, "datetime", ke.Want)
}

func TestBuild(t *testing.T) {
	ds := sample(t)
	cases := []struct {
		spec Spec
		kind Kind
	}{
		{Spec{Kind: KindHistogram, Column: "price", Bins: 5}, KindHistogram},
		{Spec{Kind: KindBars, Column: "name"}, KindBars},
		{Spec{Kind: KindHeatmap}, KindHeatmap},
		{Spec{Kind: KindScatter, X: "id", Y: "qty", Color: "name"}, KindScatter},
		{Spec{Kind: KindTimeSeries, Date: "ts", Value: "price"}, KindTimeSeries},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			a, err := Build(ds, tc.spec)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, a.Kind)
		})
	}

	a, err := Build(ds, Spec{Kind: KindHeatmap})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "price", "qty"}, a.Matrix.Labels)

	_, err = Build(ds, Spec{Kind: KindHistogram, Column: "nope"})
	var uc *UnknownColumnError
	assert.True(t, errors.As(err, &uc))
}

func TestParseModeAndKind(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeDistribution, m)
	m, err = ParseMode("Time Series Analysis")
	require.NoError(t, err)
	assert.Equal(t, ModeTimeSeries, m)
	_, err = ParseMode("Pie Analysis")
	assert.Error(t, err)
	assert.Len(t, Modes, 3)

	k, err := ParseKind("HeatMap")
	require.NoError(t, err)
	assert.Equal(t, KindHeatmap, k)
	_, err = ParseKind("pie")
	assert.Error(t, err)
}

func TestRequestFromQuery(t *testing.T) {
	q := map[string]string{"mode": "Relationship Analysis", "x": "a", "y": "b", "color": "None", "bins": "12"}
	r, err := RequestFromQuery(func(k string) string { return q[k] })
	require.NoError(t, err)
	assert.Equal(t, Request{Mode: ModeRelationship, X: "a", Y: "b", Bins: 12}, r)

	q["bins"] = "-1"
	_, err = RequestFromQuery(func(k string) string { return q[k] })
	assert.Error(t, err)
}
