// Package dashboard is the interactive shell: it owns the single in-memory
// dataset, its column groups, and the render pass that turns a selection into
// panels. Every error from loading or charting is turned into a notice here.
package dashboard

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/KaramelBytes/datadash/internal/chart"
	"github.com/KaramelBytes/datadash/internal/dataset"
	"github.com/KaramelBytes/datadash/internal/logging"
	"github.com/KaramelBytes/datadash/internal/schema"
	"github.com/KaramelBytes/datadash/internal/summary"
)

// State is the shell lifecycle state.
type State int

const (
	NoFileLoaded State = iota
	FileLoaded
)

func (s State) String() string {
	if s == FileLoaded {
		return "FileLoaded"
	}
	return "NoFileLoaded"
}

// ErrNoDataset is returned by actions that need a loaded file.
var ErrNoDataset = errors.New("no file loaded")

// Options tunes loading and rendering.
type Options struct {
	Load        dataset.Options
	Bins        int
	PreviewRows int
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{Load: dataset.DefaultOptions(), Bins: chart.DefaultBins, PreviewRows: 5}
}

// Shell holds the session. It is safe for concurrent use; there is still only
// one dataset.
type Shell struct {
	mu     sync.Mutex
	opt    Options
	ds     *dataset.Dataset
	groups schema.ColumnGroup
	// errMsg is the last load failure, shown until the next load attempt.
	errMsg string
}

// New returns a shell in the NoFileLoaded state.
func New(opt Options) *Shell {
	if opt.Bins <= 0 {
		opt.Bins = chart.DefaultBins
	}
	return &Shell{opt: opt, groups: schema.Classify(nil)}
}

// State reports the current lifecycle state.
func (s *Shell) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

func (s *Shell) state() State {
	if s.ds == nil {
		return NoFileLoaded
	}
	return FileLoaded
}

// Dataset returns the current dataset, or nil.
func (s *Shell) Dataset() *dataset.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ds
}

// Load replaces the dataset from an uploaded stream. On failure the previous
// state is kept and the error is shown on the next render.
func (s *Shell) Load(name string, r io.Reader) error {
	ds, err := dataset.Load(name, r, s.opt.Load)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.errMsg = "Error: " + err.Error()
		logging.Warnf("load %s: %v", name, err)
		return err
	}
	s.ds = ds
	s.groups = schema.Classify(ds)
	s.errMsg = ""
	logging.Infof("loaded %s: %d rows, %d columns (dataset %s)", name, ds.NumRows(), ds.NumCols(), ds.ID)
	return nil
}

// RecordError surfaces a failure that happened before Load could run, such as
// a rejected upload. State is unchanged.
func (s *Shell) RecordError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = "Error: " + err.Error()
}

// Export serializes the current dataset as CSV.
func (s *Shell) Export() (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ds == nil {
		return "", nil, ErrNoDataset
	}
	b, err := dataset.CSV(s.ds)
	if err != nil {
		return "", nil, fmt.Errorf("export csv: %w", err)
	}
	return dataset.ExportFileName, b, nil
}

// ExportParquet serializes the current dataset as Parquet.
func (s *Shell) ExportParquet() (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ds == nil {
		return "", nil, ErrNoDataset
	}
	b, err := dataset.Parquet(s.ds)
	if err != nil {
		return "", nil, fmt.Errorf("export parquet: %w", err)
	}
	return dataset.ParquetFileName, b, nil
}

// Chart builds a single chart from the current dataset.
func (s *Shell) Chart(spec chart.Spec) (chart.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ds == nil {
		return chart.Artifact{}, ErrNoDataset
	}
	if spec.Kind == chart.KindHistogram && spec.Bins <= 0 {
		spec.Bins = s.opt.Bins
	}
	return chart.Build(s.ds, spec)
}

// Render runs one full render pass for the selection.
func (s *Shell) Render(req chart.Request) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		State:  s.state().String(),
		Groups: s.groups,
		Modes:  chart.Modes,
		Mode:   req.Mode,
	}
	if v.Mode == "" {
		v.Mode = chart.Modes[0]
	}
	if s.errMsg != "" {
		v.Errors = append(v.Errors, Notice{Level: LevelError, Text: s.errMsg}, Notice{Level: LevelInfo, Text: MsgCheckInput})
	}
	if s.ds == nil {
		v.Panels = []Panel{{ID: "welcome", Notice: &Notice{Level: LevelInfo, Text: MsgUpload}}}
		return v
	}

	ov := summary.OverviewOf(s.ds)
	v.FileName = s.ds.Name
	v.DatasetID = s.ds.ID
	v.Overview = &ov
	v.Columns = s.ds.Names()
	v.Preview = summary.Preview(s.ds, s.opt.PreviewRows)

	if req.Bins <= 0 {
		req.Bins = s.opt.Bins
	}
	switch v.Mode {
	case chart.ModeRelationship:
		s.relationship(&v, req)
	case chart.ModeTimeSeries:
		s.timeSeries(&v, req)
	default:
		s.distribution(&v, req)
	}
	return v
}

func (s *Shell) distribution(v *View, req chart.Request) {
	g := s.groups
	if len(g.Numeric) == 0 {
		v.Panels = append(v.Panels, notice("numeric", "Numeric Distribution", LevelInfo, MsgNoNumeric))
	} else {
		col := pick(req.Numeric, g.IsNumeric, g.Numeric, 0)
		v.Selectors = append(v.Selectors, Selector{Param: "num", Label: "Select Numeric Column", Options: g.Numeric, Selected: col})
		p := s.build("numeric", "Numeric Distribution", chart.Spec{Kind: chart.KindHistogram, Column: col, Bins: req.Bins})
		if st, err := summary.Describe(s.ds, col); err == nil {
			p.Stats = &st
		}
		v.Panels = append(v.Panels, p)
	}

	if len(g.Categorical) == 0 {
		v.Panels = append(v.Panels, notice("categorical", "Categorical Distribution", LevelInfo, MsgNoCategorical))
		return
	}
	col := pick(req.Categorical, g.IsCategorical, g.Categorical, 0)
	v.Selectors = append(v.Selectors, Selector{Param: "cat", Label: "Select Categorical Column", Options: g.Categorical, Selected: col})
	v.Panels = append(v.Panels, s.build("categorical", "Categorical Distribution", chart.Spec{Kind: chart.KindBars, Column: col}))
}

func (s *Shell) relationship(v *View, req chart.Request) {
	g := s.groups
	if len(g.Numeric) < 2 {
		v.Panels = append(v.Panels, notice("correlation", "Correlation Analysis", LevelInfo, MsgHeatmapNeeds2))
	} else {
		v.Panels = append(v.Panels, s.build("correlation", "Correlation Analysis", chart.Spec{Kind: chart.KindHeatmap, Columns: g.Numeric}))
	}

	if len(g.Numeric) == 0 {
		v.Panels = append(v.Panels, notice("scatter", "Scatter Plot", LevelInfo, MsgNoNumeric))
		return
	}
	x := pick(req.X, g.IsNumeric, g.Numeric, 0)
	y := pick(req.Y, g.IsNumeric, g.Numeric, 1)
	colors := append([]string{chart.NoColor}, s.ds.Names()...)
	_, known := s.ds.Column(req.Color)
	color := pick(req.Color, func(string) bool { return known }, colors, 0)
	v.Selectors = append(v.Selectors,
		Selector{Param: "x", Label: "Select X-axis", Options: g.Numeric, Selected: x},
		Selector{Param: "y", Label: "Select Y-axis", Options: g.Numeric, Selected: y},
		Selector{Param: "color", Label: "Select Color Variable (optional)", Options: colors, Selected: color},
	)
	if color == chart.NoColor {
		color = ""
	}
	v.Panels = append(v.Panels, s.build("scatter", "Scatter Plot", chart.Spec{Kind: chart.KindScatter, X: x, Y: y, Color: color}))
}

func (s *Shell) timeSeries(v *View, req chart.Request) {
	g := s.groups
	if len(g.Datetime) == 0 {
		v.Panels = append(v.Panels, notice("timeseries", "Time Series Plot", LevelWarning, MsgNoDatetime))
		return
	}
	date := pick(req.Date, g.IsDatetime, g.Datetime, 0)
	v.Selectors = append(v.Selectors, Selector{Param: "date", Label: "Select Date Column", Options: g.Datetime, Selected: date})
	if len(g.Numeric) == 0 {
		v.Panels = append(v.Panels, notice("timeseries", "Time Series Plot", LevelInfo, MsgNoNumeric))
		return
	}
	value := pick(req.Value, g.IsNumeric, g.Numeric, 0)
	v.Selectors = append(v.Selectors, Selector{Param: "value", Label: "Select Value Column", Options: g.Numeric, Selected: value})
	v.Panels = append(v.Panels, s.build("timeseries", "Time Series Plot", chart.Spec{Kind: chart.KindTimeSeries, Date: date, Value: value}))
}

// build runs one builder and converts a failure into an error notice.
func (s *Shell) build(id, heading string, spec chart.Spec) Panel {
	p := Panel{ID: id, Heading: heading, Spec: &spec}
	a, err := chart.Build(s.ds, spec)
	if err != nil {
		logging.Debugf("panel %s: %v", id, err)
		p.Notice = &Notice{Level: LevelError, Text: "Error: " + err.Error()}
		return p
	}
	p.Artifact = &a
	return p
}

func notice(id, heading, level, text string) Panel {
	return Panel{ID: id, Heading: heading, Notice: &Notice{Level: level, Text: text}}
}

// pick returns want when valid accepts it, otherwise options[def] (or the
// last option when def is out of range).
func pick(want string, valid func(string) bool, options []string, def int) string {
	if want != "" && valid(want) {
		return want
	}
	if def >= len(options) {
		def = len(options) - 1
	}
	return options[def]
}
