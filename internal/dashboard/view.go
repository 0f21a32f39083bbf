package dashboard

import (
	"github.com/KaramelBytes/datadash/internal/chart"
	"github.com/KaramelBytes/datadash/internal/schema"
	"github.com/KaramelBytes/datadash/internal/summary"
)

// Notice levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// User-visible notices.
const (
	MsgNoNumeric     = "No numeric columns found."
	MsgNoCategorical = "No categorical columns found."
	MsgNoDatetime    = "No datetime columns found. Please make sure your date columns are in datetime format."
	MsgHeatmapNeeds2 = "Correlation matrix needs at least two numeric columns."
	MsgUpload        = "Upload a CSV or Excel file to begin."
	MsgCheckInput    = "Please check your input data and try again."
)

// Notice replaces or accompanies a chart.
type Notice struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Selector is one column dropdown scoped to a column group.
type Selector struct {
	Param    string   `json:"param"`
	Label    string   `json:"label"`
	Options  []string `json:"options"`
	Selected string   `json:"selected"`
}

// Panel is one output slot: a chart, optionally with statistics, or a notice.
type Panel struct {
	ID       string          `json:"id"`
	Heading  string          `json:"heading"`
	Spec     *chart.Spec     `json:"-"`
	Artifact *chart.Artifact `json:"artifact,omitempty"`
	Stats    *summary.Stats  `json:"stats,omitempty"`
	Notice   *Notice         `json:"notice,omitempty"`
}

// View is the full page state produced by one render pass.
type View struct {
	State     string             `json:"state"`
	FileName  string             `json:"file_name,omitempty"`
	DatasetID string             `json:"dataset_id,omitempty"`
	Errors    []Notice           `json:"errors,omitempty"`
	Overview  *summary.Overview  `json:"overview,omitempty"`
	Columns   []string           `json:"columns,omitempty"`
	Preview   [][]string         `json:"preview,omitempty"`
	Groups    schema.ColumnGroup `json:"groups"`
	Modes     []chart.Mode       `json:"modes"`
	Mode      chart.Mode         `json:"mode"`
	Selectors []Selector         `json:"selectors,omitempty"`
	Panels    []Panel            `json:"panels,omitempty"`
}

// Loaded reports whether the view carries a dataset.
func (v View) Loaded() bool { return v.State == FileLoaded.String() }
