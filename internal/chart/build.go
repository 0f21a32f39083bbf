package chart

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/datadash/internal/dataset"
)

// Mode is an analysis mode offered by the dashboard.
type Mode string

const (
	ModeDistribution Mode = "Distribution Analysis"
	ModeRelationship Mode = "Relationship Analysis"
	ModeTimeSeries   Mode = "Time Series Analysis"
)

// Modes lists the analysis modes in menu order.
var Modes = []Mode{ModeDistribution, ModeRelationship, ModeTimeSeries}

// ParseMode matches a mode by its label. An empty label selects the first mode.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return Modes[0], nil
	}
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown analysis mode %q", s)
}

// Request is the dashboard selection for one render pass. Blank columns fall
// back to the first column of the matching group.
type Request struct {
	Mode        Mode
	Numeric     string
	Categorical string
	X           string
	Y           string
	Color       string
	Date        string
	Value       string
	Bins        int
}

// NoColor is the colour selector label meaning "no colour column".
const NoColor = "None"

// RequestFromQuery builds a Request from URL-style parameters.
func RequestFromQuery(get func(string) string) (Request, error) {
	mode, err := ParseMode(get("mode"))
	if err != nil {
		return Request{}, err
	}
	r := Request{
		Mode:        mode,
		Numeric:     get("num"),
		Categorical: get("cat"),
		X:           get("x"),
		Y:           get("y"),
		Color:       get("color"),
		Date:        get("date"),
		Value:       get("value"),
	}
	if r.Color == NoColor {
		r.Color = ""
	}
	if b := get("bins"); b != "" {
		n, err := strconv.Atoi(b)
		if err != nil || n <= 0 {
			return Request{}, fmt.Errorf("invalid bins %q", b)
		}
		r.Bins = n
	}
	return r, nil
}

// Spec selects a single chart by kind, used by the CLI and direct chart links.
type Spec struct {
	Kind    Kind
	Column  string
	Columns []string
	X       string
	Y       string
	Color   string
	Date    string
	Value   string
	Bins    int
}

// ParseKind matches a chart kind by name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown chart kind %q (want one of %v)", s, Kinds)
}

// Build dispatches to the builder for spec.Kind. A heatmap with no columns
// listed uses every numeric column.
func Build(ds *dataset.Dataset, spec Spec) (Artifact, error) {
	switch spec.Kind {
	case KindHistogram:
		return Histogram(ds, spec.Column, spec.Bins)
	case KindBars:
		return CategoricalBars(ds, spec.Column)
	case KindHeatmap:
		cols := spec.Columns
		if len(cols) == 0 {
			for _, c := range ds.Columns {
				if c.Kind.IsNumeric() {
					cols = append(cols, c.Name)
				}
			}
		}
		return CorrelationHeatmap(ds, cols)
	case KindScatter:
		return Scatter(ds, spec.X, spec.Y, spec.Color)
	case KindTimeSeries:
		return TimeSeries(ds, spec.Date, spec.Value)
	default:
		return Artifact{}, fmt.Errorf("unknown chart kind %q", spec.Kind)
	}
}
