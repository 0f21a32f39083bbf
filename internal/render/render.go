// Package render draws chart artifacts to SVG or PNG with gonum/plot.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/datadash/internal/chart"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Format is an output image format understood by plot.WriterTo.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Size is the output size in points.
type Size struct {
	Width, Height int
}

// DefaultSize matches the dashboard panel size.
var DefaultSize = Size{Width: 640, Height: 420}

var (
	barColor   = color.RGBA{R: 99, G: 110, B: 250, A: 255}
	nanColor   = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	heatLevels = 255
)

// Render draws the artifact in the given format. A panic inside the plotting
// library is returned as an error.
func Render(a chart.Artifact, f Format, size Size) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("render %s: %v", f, r)
		}
	}()
	p, err := Plot(a)
	if err != nil {
		return nil, err
	}
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultSize
	}
	wt, err := p.WriterTo(vg.Points(float64(size.Width)), vg.Points(float64(size.Height)), string(f))
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", f, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write %s: %w", f, err)
	}
	return buf.Bytes(), nil
}

// RenderSVG draws the artifact as SVG.
func RenderSVG(a chart.Artifact, size Size) ([]byte, error) { return Render(a, SVG, size) }

// Plot builds the gonum plot for an artifact without encoding it.
func Plot(a chart.Artifact) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = a.Title
	p.X.Label.Text = a.XLabel
	p.Y.Label.Text = a.YLabel

	var err error
	switch a.Kind {
	case chart.KindHistogram:
		err = histogram(p, a)
	case chart.KindBars:
		err = bars(p, a)
	case chart.KindHeatmap:
		err = heatmap(p, a)
	case chart.KindScatter:
		err = scatter(p, a)
	case chart.KindTimeSeries:
		err = timeSeries(p, a)
	default:
		err = fmt.Errorf("unknown chart kind %q", a.Kind)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func histogram(p *plot.Plot, a chart.Artifact) error {
	p.Add(plotter.NewGrid())
	if len(a.Bins) == 0 {
		return nil
	}
	h := &plotter.Histogram{
		Bins:      make([]plotter.HistogramBin, len(a.Bins)),
		Width:     a.Bins[len(a.Bins)-1].Hi - a.Bins[0].Lo,
		FillColor: barColor,
		LineStyle: plotter.DefaultLineStyle,
	}
	for i, b := range a.Bins {
		h.Bins[i] = plotter.HistogramBin{Min: b.Lo, Max: b.Hi, Weight: float64(b.Count)}
	}
	p.Add(h)
	return nil
}

func bars(p *plot.Plot, a chart.Artifact) error {
	if len(a.Bars) == 0 {
		return nil
	}
	vals := make(plotter.Values, len(a.Bars))
	labels := make([]string, len(a.Bars))
	for i, b := range a.Bars {
		vals[i] = float64(b.Count)
		labels[i] = b.Label
	}
	bc, err := plotter.NewBarChart(vals, vg.Points(barWidth(len(vals))))
	if err != nil {
		return fmt.Errorf("bar chart: %w", err)
	}
	bc.Color = barColor
	bc.LineStyle.Width = 0
	p.Add(plotter.NewGrid(), bc)
	p.NominalX(labels...)
	if len(labels) > 12 {
		p.X.Tick.Label.Rotation = math.Pi / 2.5
		p.X.Tick.Label.XAlign = draw.XRight
	}
	return nil
}

func barWidth(n int) float64 {
	w := 400 / float64(n)
	return math.Max(2, math.Min(w, 40))
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ. Row 0 is drawn
// at the top so the grid reads like the table.
type corrGrid struct{ m *chart.Matrix }

func (g corrGrid) Dims() (c, r int)   { n := len(g.m.Labels); return n, n }
func (g corrGrid) Z(c, r int) float64 { return g.m.At(len(g.m.Labels)-1-r, c) }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }

func heatmap(p *plot.Plot, a chart.Artifact) error {
	if a.Matrix == nil || len(a.Matrix.Labels) == 0 {
		return fmt.Errorf("heatmap without matrix")
	}
	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	pal := cm.Palette(heatLevels)

	h := plotter.NewHeatMap(corrGrid{a.Matrix}, pal)
	h.Min, h.Max = -1, 1
	h.NaN = nanColor
	p.Add(h)

	n := len(a.Matrix.Labels)
	rev := make([]string, n)
	for i, l := range a.Matrix.Labels {
		rev[n-1-i] = l
	}
	p.NominalX(a.Matrix.Labels...)
	p.NominalY(rev...)

	labels, err := cellLabels(a.Matrix)
	if err != nil {
		return err
	}
	p.Add(labels)

	thumbs := plotter.PaletteThumbnailers(pal)
	for i := len(thumbs) - 1; i >= 0; i -= heatLevels / 4 {
		p.Legend.Add(fmt.Sprintf("%.1f", -1+2*float64(i)/float64(heatLevels-1)), thumbs[i])
	}
	p.Legend.Top = true
	p.Legend.XOffs = vg.Points(60)
	return nil
}

func cellLabels(m *chart.Matrix) (*plotter.Labels, error) {
	n := len(m.Labels)
	xys := make(plotter.XYs, 0, n*n)
	text := make([]string, 0, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(n - 1 - r)})
			v := m.At(r, c)
			if math.IsNaN(v) {
				text = append(text, "NaN")
				continue
			}
			text = append(text, fmt.Sprintf("%.2f", v))
		}
	}
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: text})
	if err != nil {
		return nil, fmt.Errorf("heatmap labels: %w", err)
	}
	for i := range l.TextStyle {
		l.TextStyle[i].XAlign = draw.XCenter
		l.TextStyle[i].YAlign = draw.YCenter
	}
	return l, nil
}

func scatter(p *plot.Plot, a chart.Artifact) error {
	sd := a.Scatter
	if sd == nil {
		return fmt.Errorf("scatter without points")
	}
	p.Add(plotter.NewGrid())
	if sd.Continuous {
		return shadedScatter(p, sd)
	}
	for i, g := range sd.Groups {
		if len(g.Points) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(g.Points))
		for k, pt := range g.Points {
			xys[k] = plotter.XY{X: pt.X, Y: pt.Y}
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("scatter group %q: %w", g.Name, err)
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(s)
		if g.Name != "" {
			p.Legend.Add(g.Name, s)
		}
	}
	if sd.ColorColumn != "" {
		p.Legend.Top = true
	}
	return nil
}

func shadedScatter(p *plot.Plot, sd *chart.ScatterData) error {
	if len(sd.Groups) == 0 || len(sd.Groups[0].Points) == 0 {
		return nil
	}
	pts := sd.Groups[0].Points
	xys := make(plotter.XYs, len(pts))
	for k, pt := range pts {
		xys[k] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("scatter: %w", err)
	}
	lo, hi := float64(sd.ShadeMin), float64(sd.ShadeMax)
	cm := moreland.ExtendedBlackBody()
	if hi > lo {
		cm.SetMin(lo)
		cm.SetMax(hi)
	} else {
		cm.SetMin(lo - 0.5)
		cm.SetMax(lo + 0.5)
	}
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		gs := draw.GlyphStyle{Shape: draw.CircleGlyph{}, Radius: vg.Points(2.5), Color: nanColor}
		v := float64(pts[i].Shade)
		if math.IsNaN(v) {
			return gs
		}
		if c, err := cm.At(v); err == nil {
			gs.Color = c
		}
		return gs
	}
	p.Add(s)
	legend(p, sd.ColorColumn, cm)
	return nil
}

// legend adds min and max swatches for a continuous colour map.
func legend(p *plot.Plot, title string, cm palette.ColorMap) {
	for _, v := range []float64{cm.Max(), cm.Min()} {
		c, err := cm.At(v)
		if err != nil {
			continue
		}
		p.Legend.Add(fmt.Sprintf("%s %.3g", title, v), swatch{c})
	}
	p.Legend.Top = true
}

type swatch struct{ c color.Color }

func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y}, {X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y}, {X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.c, c.ClipPolygonY(pts))
}

func timeSeries(p *plot.Plot, a chart.Artifact) error {
	p.Add(plotter.NewGrid())
	p.X.Tick.Marker = plot.TimeTicks{Format: timeFormat(a.Series)}
	if len(a.Series) == 0 {
		return nil
	}
	xys := make(plotter.XYs, len(a.Series))
	for i, tp := range a.Series {
		xys[i] = plotter.XY{X: float64(tp.T.UnixNano()) / 1e9, Y: tp.Y}
	}
	l, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("time series: %w", err)
	}
	l.LineStyle.Width = vg.Points(1.5)
	l.LineStyle.Color = barColor
	p.Add(l)
	return nil
}

// timeFormat picks a tick format from the series span.
func timeFormat(s []chart.TimePoint) string {
	if len(s) < 2 {
		return "2006-01-02"
	}
	lo, hi := s[0].T, s[0].T
	for _, tp := range s[1:] {
		if tp.T.Before(lo) {
			lo = tp.T
		}
		if tp.T.After(hi) {
			hi = tp.T
		}
	}
	switch span := hi.Sub(lo); {
	case span < 48*time.Hour:
		return "01-02 15:04"
	case span > 3*365*24*time.Hour:
		return "2006-01"
	default:
		return "2006-01-02"
	}
}

// FormatFor picks the format from an output file name.
func FormatFor(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".svg", "":
		return SVG, nil
	case ".png":
		return PNG, nil
	default:
		return "", fmt.Errorf("unsupported image format %q (want .svg or .png)", filepath.Ext(name))
	}
}
