// Package chart builds declarative chart artifacts from a dataset. Builders
// are pure: they read the dataset, never mutate it, and keep no state between
// calls. Rendering an artifact to an image lives in package render.
package chart

import (
	"time"

	"github.com/KaramelBytes/datadash/internal/utils"
)

// Kind identifies a chart type.
type Kind string

const (
	KindHistogram  Kind = "histogram"
	KindBars       Kind = "bars"
	KindHeatmap    Kind = "heatmap"
	KindScatter    Kind = "scatter"
	KindTimeSeries Kind = "timeseries"
)

// Kinds lists every chart kind.
var Kinds = []Kind{KindHistogram, KindBars, KindHeatmap, KindScatter, KindTimeSeries}

// DefaultBins is the histogram bin count used when none is requested.
const DefaultBins = 30

// Artifact is an opaque, renderable chart. Exactly one payload is set,
// selected by Kind.
type Artifact struct {
	Kind   Kind   `json:"kind"`
	Title  string `json:"title"`
	XLabel string `json:"x_label"`
	YLabel string `json:"y_label"`

	Bins    []Bin        `json:"bins,omitempty"`
	Bars    []Bar        `json:"bars,omitempty"`
	Matrix  *Matrix      `json:"matrix,omitempty"`
	Scatter *ScatterData `json:"scatter,omitempty"`
	Series  []TimePoint  `json:"series,omitempty"`
}

// Bin is one histogram bucket covering [Lo, Hi); the last bin also holds Hi.
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Bar is one categorical bucket.
type Bar struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Matrix is a square correlation grid; Values[i][j] pairs Labels[i] and Labels[j].
type Matrix struct {
	Labels []string        `json:"labels"`
	Values [][]utils.Float `json:"values"`
}

// At returns the cell as float64.
func (m *Matrix) At(i, j int) float64 { return float64(m.Values[i][j]) }

// Point is one scatter marker. Shade is NaN unless the colour column is numeric.
type Point struct {
	X     float64     `json:"x"`
	Y     float64     `json:"y"`
	Shade utils.Float `json:"shade"`
}

// Group is a set of points sharing one discrete colour.
type Group struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// ScatterData holds scatter points. Without a colour column there is a single
// unnamed group. A numeric colour column yields a single group whose points
// carry Shade in [ShadeMin, ShadeMax].
type ScatterData struct {
	ColorColumn string      `json:"color_column,omitempty"`
	Continuous  bool        `json:"continuous"`
	ShadeMin    utils.Float `json:"shade_min"`
	ShadeMax    utils.Float `json:"shade_max"`
	Groups      []Group     `json:"groups"`
}

// Len counts points across all groups.
func (s *ScatterData) Len() int {
	n := 0
	for _, g := range s.Groups {
		n += len(g.Points)
	}
	return n
}

// TimePoint is one time series sample.
type TimePoint struct {
	T time.Time `json:"t"`
	Y float64   `json:"y"`
}
