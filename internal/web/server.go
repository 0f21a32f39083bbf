// Package web serves the dashboard page, chart images and downloads over HTTP.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/KaramelBytes/datadash/internal/dashboard"
	"github.com/KaramelBytes/datadash/internal/logging"
	"github.com/KaramelBytes/datadash/internal/render"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Options configures the HTTP server.
type Options struct {
	Addr            string
	MaxUploadBytes  int64
	ChartSize       render.Size
	ShutdownTimeout time.Duration
	Version         string
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Addr:            ":8501",
		MaxUploadBytes:  200 << 20,
		ChartSize:       render.DefaultSize,
		ShutdownTimeout: 10 * time.Second,
		Version:         "dev",
	}
}

// Server wires the shell to HTTP routes.
type Server struct {
	shell *dashboard.Shell
	opt   Options
}

// New returns a server for the shell.
func New(shell *dashboard.Shell, opt Options) *Server {
	if opt.MaxUploadBytes <= 0 {
		opt.MaxUploadBytes = DefaultOptions().MaxUploadBytes
	}
	if opt.ShutdownTimeout <= 0 {
		opt.ShutdownTimeout = DefaultOptions().ShutdownTimeout
	}
	return &Server{shell: shell, opt: opt}
}

// Handler returns the routed, logged handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /chart.svg", s.handleChart(render.SVG))
	mux.HandleFunc("GET /chart.png", s.handleChart(render.PNG))
	mux.HandleFunc("GET /download/csv", s.handleDownload(s.shell.Export, "text/csv"))
	mux.HandleFunc("GET /download/parquet", s.handleDownload(s.shell.ExportParquet, "application/vnd.apache.parquet"))
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return logRequests(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opt.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opt.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logging.Successf("dashboard listening on http://%s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.Infof("shutting down (timeout %s)", s.opt.ShutdownTimeout)
	sctx, cancel := context.WithTimeout(context.Background(), s.opt.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.Debugf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}
