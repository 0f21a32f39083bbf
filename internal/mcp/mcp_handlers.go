package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/KaramelBytes/datadash/internal/chart"
	"github.com/KaramelBytes/datadash/internal/dataset"
	"github.com/KaramelBytes/datadash/internal/outwriter"
	"github.com/KaramelBytes/datadash/internal/render"
	"github.com/KaramelBytes/datadash/internal/summary"
	"github.com/KaramelBytes/datadash/internal/utils"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	opt Options
}

func (h *toolHandler) load(request mcp.CallToolRequest) (*dataset.Dataset, *mcp.CallToolResult) {
	path := request.GetString("path", "")
	if path == "" {
		return nil, mcp.NewToolResultError("path is required")
	}
	opt := h.opt.Load
	if sheet := request.GetString("sheet", ""); sheet != "" {
		opt.Sheet = sheet
	}
	ds, err := dataset.LoadFile(path, opt)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err))
	}
	return ds, nil
}

func jsonResult(v any) *mcp.CallToolResult {
	b, err := utils.PrettyJSON(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(b))
}

func (h *toolHandler) handleDescribeDataset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ds, res := h.load(request)
	if res != nil {
		return res, nil
	}
	preview := request.GetInt("preview", 5)
	if preview < 0 {
		return mcp.NewToolResultError("preview must not be negative"), nil
	}
	return jsonResult(outwriter.NewReport(ds, preview)), nil
}

func (h *toolHandler) handleDescribeColumn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	column := request.GetString("column", "")
	if column == "" {
		return mcp.NewToolResultError("column is required"), nil
	}
	ds, res := h.load(request)
	if res != nil {
		return res, nil
	}
	st, err := summary.Describe(ds, column)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("describe failed: %v", err)), nil
	}
	return jsonResult(st), nil
}

func (h *toolHandler) handleCorrelationMatrix(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ds, res := h.load(request)
	if res != nil {
		return res, nil
	}
	spec := chart.Spec{Kind: chart.KindHeatmap}
	if cols := request.GetString("columns", ""); cols != "" {
		for _, c := range strings.Split(cols, ",") {
			spec.Columns = append(spec.Columns, strings.TrimSpace(c))
		}
	}
	a, err := chart.Build(ds, spec)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("correlation failed: %v", err)), nil
	}
	return jsonResult(a.Matrix), nil
}

func (h *toolHandler) handleValueCounts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	column := request.GetString("column", "")
	if column == "" {
		return mcp.NewToolResultError("column is required"), nil
	}
	ds, res := h.load(request)
	if res != nil {
		return res, nil
	}
	a, err := chart.CategoricalBars(ds, column)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("value counts failed: %v", err)), nil
	}
	bars := a.Bars
	if limit := request.GetInt("limit", 0); limit > 0 && limit < len(bars) {
		bars = bars[:limit]
	}
	if bars == nil {
		bars = []chart.Bar{}
	}
	return jsonResult(bars), nil
}

func (h *toolHandler) handleRenderChart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := chart.ParseKind(request.GetString("kind", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ds, res := h.load(request)
	if res != nil {
		return res, nil
	}
	spec := chart.Spec{
		Kind:   kind,
		Column: request.GetString("column", ""),
		X:      request.GetString("x", ""),
		Y:      request.GetString("y", ""),
		Color:  request.GetString("color", ""),
		Date:   request.GetString("date", ""),
		Value:  request.GetString("value", ""),
		Bins:   request.GetInt("bins", h.opt.Bins),
	}
	a, err := chart.Build(ds, spec)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chart failed: %v", err)), nil
	}
	svg, err := render.RenderSVG(a, h.opt.ChartSize)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(svg)), nil
}
