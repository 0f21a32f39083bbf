// Package outwriter formats inspection reports for the terminal, JSON, CSV
// and Markdown.
package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/KaramelBytes/datadash/internal/chart"
	"github.com/KaramelBytes/datadash/internal/dataset"
	"github.com/KaramelBytes/datadash/internal/schema"
	"github.com/KaramelBytes/datadash/internal/summary"
	"github.com/KaramelBytes/datadash/internal/utils"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"
)

// Format selects the report encoding.
type Format string

const (
	TextOut Format = "text"
	JSONOut Format = "json"
	CSVOut  Format = "csv"
	MDOut   Format = "markdown"
)

// topValues is how many categories the Markdown schema lists per column.
const topValues = 5

// ParseFormat validates an --output value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case TextOut, JSONOut, CSVOut, MDOut:
		return f, nil
	case "md":
		return MDOut, nil
	case "":
		return TextOut, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use text|json|csv|markdown)", s)
	}
}

// Report is everything inspect prints about a dataset.
type Report struct {
	File     string                 `json:"file"`
	Overview summary.Overview       `json:"overview"`
	Kinds    map[string]string      `json:"kinds"`
	Groups   schema.ColumnGroup     `json:"groups"`
	Stats    []summary.Stats        `json:"stats"`
	Columns  []string               `json:"columns"`
	Missing  map[string]int         `json:"missing"`
	Top      map[string][]chart.Bar `json:"top,omitempty"`
	Preview  [][]string             `json:"preview"`
}

// NewReport collects the report for a loaded dataset.
func NewReport(ds *dataset.Dataset, previewRows int) Report {
	r := Report{
		File:     ds.Name,
		Overview: summary.OverviewOf(ds),
		Kinds:    make(map[string]string, ds.NumCols()),
		Missing:  make(map[string]int, ds.NumCols()),
		Top:      map[string][]chart.Bar{},
		Groups:   schema.Classify(ds),
		Stats:    summary.DescribeAll(ds),
		Columns:  ds.Names(),
		Preview:  summary.Preview(ds, previewRows),
	}
	for _, c := range ds.Columns {
		r.Kinds[c.Name] = string(c.Kind)
		r.Missing[c.Name] = c.Missing()
	}
	for _, name := range r.Groups.Categorical {
		a, err := chart.CategoricalBars(ds, name)
		if err != nil {
			continue
		}
		bars := a.Bars
		if len(bars) > topValues {
			bars = bars[:topValues]
		}
		r.Top[name] = bars
	}
	if r.Stats == nil {
		r.Stats = []summary.Stats{}
	}
	return r
}

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	labelColor = color.New(color.FgHiBlack)
	warnColor  = color.New(color.FgYellow)
)

// Write encodes the report in the chosen format.
func Write(w io.Writer, r Report, f Format, width int) error {
	switch f {
	case JSONOut:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	case CSVOut:
		return writeStatsCSV(w, r.Stats)
	case MDOut:
		_, err := io.WriteString(w, Markdown(r))
		return err
	default:
		return writeText(w, r, width)
	}
}

func writeText(w io.Writer, r Report, width int) error {
	if _, err := titleColor.Fprintf(w, "Dataset Overview: %s\n", r.File); err != nil {
		return err
	}
	ov := tablewriter.NewWriter(w)
	ov.Header([]string{"Rows", "Columns", "Missing Values"})
	ov.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := ov.Bulk([][]string{{strconv.Itoa(r.Overview.Rows), strconv.Itoa(r.Overview.Columns), strconv.Itoa(r.Overview.Missing)}}); err != nil {
		return err
	}
	if err := ov.Render(); err != nil {
		return err
	}

	groups := []struct {
		name string
		cols []string
	}{
		{"numeric", r.Groups.Numeric},
		{"categorical", r.Groups.Categorical},
		{"datetime", r.Groups.Datetime},
	}
	for _, g := range groups {
		_, _ = labelColor.Fprintf(w, "%-12s ", g.name+":")
		if len(g.cols) == 0 {
			_, _ = warnColor.Fprintln(w, "(none)")
			continue
		}
		fmt.Fprintln(w, strings.Join(g.cols, ", "))
	}

	if len(r.Stats) > 0 {
		fmt.Fprintln(w)
		_, _ = titleColor.Fprintln(w, "Summary Statistics")
		st := tablewriter.NewWriter(w)
		st.Header(append([]string{"Column"}, summary.StatNames...))
		st.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})
		var data [][]string
		for _, s := range r.Stats {
			row := []string{s.Column}
			for _, v := range s.Values() {
				row = append(row, utils.FormatStat(v))
			}
			data = append(data, row)
		}
		if err := st.Bulk(data); err != nil {
			return err
		}
		if err := st.Render(); err != nil {
			return err
		}
	}

	if len(r.Preview) > 0 {
		fmt.Fprintln(w)
		_, _ = titleColor.Fprintln(w, "Preview")
		cell := cellWidth(width, len(r.Columns))
		pv := tablewriter.NewWriter(w)
		pv.Header(truncateAll(r.Columns, cell))
		var data [][]string
		for _, row := range r.Preview {
			data = append(data, truncateAll(row, cell))
		}
		if err := pv.Bulk(data); err != nil {
			return err
		}
		if err := pv.Render(); err != nil {
			return err
		}
	}
	return nil
}

func writeStatsCSV(w io.Writer, stats []summary.Stats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"column"}, summary.StatNames...)); err != nil {
		return err
	}
	for _, s := range stats {
		row := []string{s.Column}
		for _, v := range s.Values() {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// TerminalWidth returns override when positive, else the stdout width, else 80.
func TerminalWidth(override int) int {
	if override > 0 {
		return override
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// cellWidth splits the terminal width across columns, leaving room for borders.
func cellWidth(width, cols int) int {
	if cols == 0 {
		return width
	}
	w := (width - 3*cols - 1) / cols
	if w < 6 {
		return 6
	}
	return w
}

func truncateAll(cells []string, max int) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = truncate(c, max)
	}
	return out
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}

// Markdown renders a compact report suitable for pasting into notes or docs.
func Markdown(r Report) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.File != "" {
		fmt.Fprintf(&b, "File: %s\n", r.File)
	}
	fmt.Fprintf(&b, "Rows: %d\n", r.Overview.Rows)
	fmt.Fprintf(&b, "Columns: %d\n", r.Overview.Columns)
	fmt.Fprintf(&b, "Missing values: %d\n\n", r.Overview.Missing)

	stats := make(map[string]summary.Stats, len(r.Stats))
	for _, s := range r.Stats {
		stats[s.Column] = s
	}

	b.WriteString("[SCHEMA]\n")
	for _, name := range r.Columns {
		missing := r.Missing[name]
		pct := 0.0
		if r.Overview.Rows > 0 {
			pct = float64(missing) * 100.0 / float64(r.Overview.Rows)
		}
		group := r.Groups.Group(name)
		if group == "" {
			group = r.Kinds[name]
		}
		fmt.Fprintf(&b, "- %s: %s (non-null %d, missing %.1f%%)", safeName(name), group, r.Overview.Rows-missing, pct)
		if s, ok := stats[name]; ok {
			fmt.Fprintf(&b, "; min %s, max %s, mean %s, std %s",
				utils.FormatStat(float64(s.Min)), utils.FormatStat(float64(s.Max)),
				utils.FormatStat(float64(s.Mean)), utils.FormatStat(float64(s.Std)))
		}
		if top := r.Top[name]; len(top) > 0 {
			b.WriteString("; top: ")
			for i, bar := range top {
				if i > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(&b, "%s(%d)", safeVal(bar.Label), bar.Count)
			}
		}
		b.WriteString("\n")
	}

	if len(r.Stats) > 0 {
		b.WriteString("\n[SUMMARY STATISTICS]\n")
		b.WriteString("| column | " + strings.Join(summary.StatNames, " | ") + " |\n")
		b.WriteString("|---" + strings.Repeat("|---", len(summary.StatNames)) + "|\n")
		for _, s := range r.Stats {
			cells := []string{safeName(s.Column)}
			for _, v := range s.Values() {
				cells = append(cells, utils.FormatStat(v))
			}
			b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "|", "/")
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
