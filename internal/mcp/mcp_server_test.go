package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/datadash/internal/dataset"
	mcp_internal "github.com/KaramelBytes/datadash/internal/mcp"
	"github.com/KaramelBytes/datadash/internal/render"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "id,city,price,sold\n" +
	"1,Oslo,10.5,2024-01-01\n" +
	"2,Rome,12.0,2024-01-02\n" +
	"3,Oslo,14.5,2024-01-03\n" +
	"4,Lima,,2024-01-04\n"

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	return path
}

func call(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(mcp_internal.Options{
		Load:      dataset.DefaultOptions(),
		Bins:      30,
		ChartSize: render.DefaultSize,
	})
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "tool failures are reported in the result, not as errors")
	require.NotNil(t, res)
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	path := writeSample(t)

	t.Run("describe_dataset missing path", func(t *testing.T) {
		res := call(t, "describe_dataset", map[string]any{})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "path is required")
	})

	t.Run("describe_dataset unsupported file", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(bad, []byte("x"), 0o644))
		res := call(t, "describe_dataset", map[string]any{"path": bad})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "load failed")
	})

	t.Run("describe_column non numeric", func(t *testing.T) {
		res := call(t, "describe_column", map[string]any{"path": path, "column": "city"})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "describe failed")
	})

	t.Run("value_counts missing column", func(t *testing.T) {
		res := call(t, "value_counts", map[string]any{"path": path})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "column is required")
	})

	t.Run("correlation_matrix single column", func(t *testing.T) {
		res := call(t, "correlation_matrix", map[string]any{"path": path, "columns": "price"})
		assert.True(t, res.IsError)
	})

	t.Run("render_chart unknown kind", func(t *testing.T) {
		res := call(t, "render_chart", map[string]any{"path": path, "kind": "pie"})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "unknown chart kind")
	})
}

func TestDescribeDataset(t *testing.T) {
	res := call(t, "describe_dataset", map[string]any{"path": writeSample(t), "preview": 2.0})
	require.False(t, res.IsError, text(res))

	var got struct {
		Overview struct {
			Rows, Columns, Missing int
		} `json:"overview"`
		Groups struct {
			Numeric     []string `json:"numeric"`
			Categorical []string `json:"categorical"`
			Datetime    []string `json:"datetime"`
		} `json:"groups"`
		Preview [][]string `json:"preview"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(res)), &got))
	assert.Equal(t, 4, got.Overview.Rows)
	assert.Equal(t, 4, got.Overview.Columns)
	assert.Equal(t, 1, got.Overview.Missing)
	assert.Equal(t, []string{"id", "price"}, got.Groups.Numeric)
	assert.Equal(t, []string{"city"}, got.Groups.Categorical)
	assert.Equal(t, []string{"sold"}, got.Groups.Datetime)
	assert.Len(t, got.Preview, 2)
}

func TestDescribeColumn(t *testing.T) {
	res := call(t, "describe_column", map[string]any{"path": writeSample(t), "column": "price"})
	require.False(t, res.IsError, text(res))

	var st struct {
		Count int     `json:"count"`
		Mean  float64 `json:"mean"`
		Min   float64 `json:"min"`
		Max   float64 `json:"max"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(res)), &st))
	assert.Equal(t, 3, st.Count)
	assert.InDelta(t, 12.333333, st.Mean, 1e-5)
	assert.Equal(t, 10.5, st.Min)
	assert.Equal(t, 14.5, st.Max)
}

func TestCorrelationMatrix(t *testing.T) {
	res := call(t, "correlation_matrix", map[string]any{"path": writeSample(t)})
	require.False(t, res.IsError, text(res))

	var m struct {
		Labels []string     `json:"labels"`
		Values [][]*float64 `json:"values"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(res)), &m))
	assert.Equal(t, []string{"id", "price"}, m.Labels)
	require.Len(t, m.Values, 2)
	require.NotNil(t, m.Values[0][0])
	assert.InDelta(t, 1.0, *m.Values[0][0], 1e-9)
	// The row with a missing price is dropped pairwise.
	require.NotNil(t, m.Values[0][1])
	assert.InDelta(t, 0.9897, *m.Values[0][1], 1e-3)
}

func TestValueCounts(t *testing.T) {
	res := call(t, "value_counts", map[string]any{"path": writeSample(t), "column": "city", "limit": 1.0})
	require.False(t, res.IsError, text(res))

	var bars []struct {
		Label string `json:"label"`
		Count int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(res)), &bars))
	require.Len(t, bars, 1)
	assert.Equal(t, "Oslo", bars[0].Label)
	assert.Equal(t, 2, bars[0].Count)
}

func TestRenderChart(t *testing.T) {
	res := call(t, "render_chart", map[string]any{"path": writeSample(t), "kind": "histogram", "column": "price"})
	require.False(t, res.IsError, text(res))
	assert.True(t, strings.Contains(text(res), "<svg"))
}
