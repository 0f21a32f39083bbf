package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/datadash/internal/chart"
	"github.com/KaramelBytes/datadash/internal/dashboard"
	"github.com/KaramelBytes/datadash/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*Server, *dashboard.Shell) {
	t.Helper()
	prev := logging.SetOutput(io.Discard)
	t.Cleanup(func() { logging.SetOutput(prev) })
	shell := dashboard.New(dashboard.DefaultOptions())
	return New(shell, DefaultOptions()), shell
}

func sampleCSV(n int) string {
	var b strings.Builder
	b.WriteString("id,name,price,ts\n")
	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d,%s,%.2f,%s\n", i, []string{"a", "b"}[i%2], float64(i)*1.25+2, base.AddDate(0, 0, i).Format("2006-01-02"))
	}
	return b.String()
}

func uploadRequest(t *testing.T, name, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndex_NoFile(t *testing.T) {
	s, _ := newServer(t)
	rec := do(s.Handler(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Interactive Data Visualization Dashboard")
	assert.Contains(t, body, dashboard.MsgUpload)
	assert.NotContains(t, body, "/download/csv")
}

func TestUploadThenRender(t *testing.T) {
	s, shell := newServer(t)
	h := s.Handler()

	rec := do(h, uploadRequest(t, "sales.csv", sampleCSV(20)))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, dashboard.FileLoaded, shell.State())

	rec = do(h, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Number of Rows")
	assert.Contains(t, body, "<svg")
	assert.NotContains(t, body, "<?xml")
	assert.Contains(t, body, "Summary Statistics:")
	assert.Contains(t, body, "Distribution Analysis")

	q := url.Values{"mode": {"Time Series Analysis"}, "value": {"price"}}
	rec = do(h, httptest.NewRequest(http.MethodGet, "/?"+q.Encode(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Time Series Plot")
}

func TestUpload_UnsupportedFormatShowsError(t *testing.T) {
	s, shell := newServer(t)
	h := s.Handler()
	rec := do(h, uploadRequest(t, "notes.txt", "hello"))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, dashboard.NoFileLoaded, shell.State())

	rec = do(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rec.Body.String(), "notes.txt")
	assert.Contains(t, rec.Body.String(), dashboard.MsgCheckInput)
}

func TestUpload_TooLarge(t *testing.T) {
	prev := logging.SetOutput(io.Discard)
	t.Cleanup(func() { logging.SetOutput(prev) })
	shell := dashboard.New(dashboard.DefaultOptions())
	opt := DefaultOptions()
	opt.MaxUploadBytes = 64
	h := New(shell, opt).Handler()

	rec := do(h, uploadRequest(t, "big.csv", sampleCSV(50)))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, dashboard.NoFileLoaded, shell.State())
	v := shell.Render(chart.Request{})
	require.NotEmpty(t, v.Errors)
}

func TestUpload_MissingField(t *testing.T) {
	s, shell := newServer(t)
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(s.Handler(), req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, dashboard.NoFileLoaded, shell.State())
}

func TestDownloads(t *testing.T) {
	s, shell := newServer(t)
	h := s.Handler()

	rec := do(h, httptest.NewRequest(http.MethodGet, "/download/csv", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, shell.Load("sales.csv", strings.NewReader(sampleCSV(5))))
	rec = do(h, httptest.NewRequest(http.MethodGet, "/download/csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="processed_data.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "id,name,price,ts\n0,a,2.0,2024-02-01 00:00:00\n"))

	rec = do(h, httptest.NewRequest(http.MethodGet, "/download/parquet", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "processed_data.parquet")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PAR1")))
}

func TestChartEndpoint(t *testing.T) {
	s, shell := newServer(t)
	h := s.Handler()

	rec := do(h, httptest.NewRequest(http.MethodGet, "/chart.svg?kind=histogram&column=price", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, shell.Load("sales.csv", strings.NewReader(sampleCSV(30))))
	rec = do(h, httptest.NewRequest(http.MethodGet, "/chart.svg?kind=histogram&column=price&bins=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = do(h, httptest.NewRequest(http.MethodGet, "/chart.png?kind=scatter&x=id&y=price&color=name", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = do(h, httptest.NewRequest(http.MethodGet, "/chart.svg?kind=heatmap&columns=price", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, httptest.NewRequest(http.MethodGet, "/chart.svg?kind=pie", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIView(t *testing.T) {
	s, shell := newServer(t)
	require.NoError(t, shell.Load("sales.csv", strings.NewReader(sampleCSV(12))))

	rec := do(s.Handler(), httptest.NewRequest(http.MethodGet, "/api/view?mode=Relationship+Analysis", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var v struct {
		State    string `json:"state"`
		Mode     string `json:"mode"`
		Overview struct {
			Rows int `json:"rows"`
		} `json:"overview"`
		Panels []struct {
			ID       string         `json:"id"`
			Artifact map[string]any `json:"artifact"`
		} `json:"panels"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.Equal(t, "FileLoaded", v.State)
	assert.Equal(t, "Relationship Analysis", v.Mode)
	assert.Equal(t, 12, v.Overview.Rows)
	require.Len(t, v.Panels, 2)
	assert.Equal(t, "heatmap", v.Panels[0].Artifact["kind"])

	rec = do(s.Handler(), httptest.NewRequest(http.MethodGet, "/api/view?mode=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	s, _ := newServer(t)
	rec := do(s.Handler(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "dev", body["version"])
	assert.Equal(t, "NoFileLoaded", body["state"])
}

func TestServe_GracefulShutdown(t *testing.T) {
	s, _ := newServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
