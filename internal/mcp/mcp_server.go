// Package mcp exposes dataset inspection as Model Context Protocol tools.
package mcp

import (
	"github.com/KaramelBytes/datadash/internal/dataset"
	"github.com/KaramelBytes/datadash/internal/render"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Options carries the loader and chart settings shared by every tool.
type Options struct {
	Load      dataset.Options
	Bins      int
	ChartSize render.Size
	Version   string
}

// NewMCPServer initializes and configures the server without starting it.
func NewMCPServer(opt Options) *server.MCPServer {
	if opt.Version == "" {
		opt.Version = "dev"
	}
	s := server.NewMCPServer(
		"datadash",
		opt.Version,
		server.WithLogging(),
	)
	h := &toolHandler{opt: opt}

	s.AddTool(mcp.NewTool("describe_dataset",
		mcp.WithDescription("Load a CSV or Excel file and report its overview, column groups and summary statistics."),
		mcp.WithString("path", mcp.Description("Path to a .csv, .xls or .xlsx file."), mcp.Required()),
		mcp.WithString("sheet", mcp.Description("Worksheet name for spreadsheets (defaults to the first sheet).")),
		mcp.WithNumber("preview", mcp.Description("Number of leading rows to include (default 5).")),
	), h.handleDescribeDataset)

	s.AddTool(mcp.NewTool("describe_column",
		mcp.WithDescription("Descriptive statistics (count, mean, std, min, quartiles, max) for one numeric column."),
		mcp.WithString("path", mcp.Description("Path to the data file."), mcp.Required()),
		mcp.WithString("column", mcp.Description("Numeric column name."), mcp.Required()),
	), h.handleDescribeColumn)

	s.AddTool(mcp.NewTool("correlation_matrix",
		mcp.WithDescription("Pearson correlation matrix across numeric columns."),
		mcp.WithString("path", mcp.Description("Path to the data file."), mcp.Required()),
		mcp.WithString("columns", mcp.Description("Comma-separated numeric columns (defaults to all numeric columns).")),
	), h.handleCorrelationMatrix)

	s.AddTool(mcp.NewTool("value_counts",
		mcp.WithDescription("Occurrence count of each distinct value in a column, most frequent first."),
		mcp.WithString("path", mcp.Description("Path to the data file."), mcp.Required()),
		mcp.WithString("column", mcp.Description("Column name."), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Return at most this many values.")),
	), h.handleValueCounts)

	s.AddTool(mcp.NewTool("render_chart",
		mcp.WithDescription("Render a chart of the data file as SVG."),
		mcp.WithString("path", mcp.Description("Path to the data file."), mcp.Required()),
		mcp.WithString("kind", mcp.Description("Chart kind."), mcp.Required(), mcp.Enum("histogram", "bars", "heatmap", "scatter", "timeseries")),
		mcp.WithString("column", mcp.Description("Column for histogram or bars.")),
		mcp.WithString("x", mcp.Description("Scatter x column.")),
		mcp.WithString("y", mcp.Description("Scatter y column.")),
		mcp.WithString("color", mcp.Description("Optional scatter colour column.")),
		mcp.WithString("date", mcp.Description("Time series date column.")),
		mcp.WithString("value", mcp.Description("Time series value column.")),
		mcp.WithNumber("bins", mcp.Description("Histogram bin count (default 30).")),
	), h.handleRenderChart)

	return s
}

// StartMCPServer serves the tools over stdio until stdin closes.
func StartMCPServer(opt Options) error {
	return server.ServeStdio(NewMCPServer(opt))
}
