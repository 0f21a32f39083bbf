package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/datadash/internal/chart"
	"github.com/KaramelBytes/datadash/internal/dashboard"
	"github.com/KaramelBytes/datadash/internal/logging"
	"github.com/KaramelBytes/datadash/internal/render"
	"github.com/KaramelBytes/datadash/internal/summary"
	"github.com/KaramelBytes/datadash/internal/utils"
)

type statRow struct {
	Name  string
	Value string
}

type panelView struct {
	dashboard.Panel
	SVG         template.HTML
	StatsColumn string
	StatRows    []statRow
}

type pageData struct {
	View   dashboard.View
	Panels []panelView
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	req, err := chart.RequestFromQuery(r.URL.Query().Get)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	v := s.shell.Render(req)
	data := pageData{View: v, Panels: make([]panelView, 0, len(v.Panels))}
	for _, p := range v.Panels {
		pv := panelView{Panel: p}
		if p.Artifact != nil {
			svg, err := render.RenderSVG(*p.Artifact, s.opt.ChartSize)
			if err != nil {
				logging.Warnf("render %s: %v", p.ID, err)
				pv.Notice = &dashboard.Notice{Level: dashboard.LevelError, Text: "Error: " + err.Error()}
			} else {
				pv.SVG = inlineSVG(svg)
			}
		}
		if p.Stats != nil {
			pv.StatsColumn = p.Stats.Column
			for i, val := range p.Stats.Values() {
				pv.StatRows = append(pv.StatRows, statRow{Name: summary.StatNames[i], Value: utils.FormatStat(val)})
			}
		}
		data.Panels = append(data.Panels, pv)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		logging.Errorf("render page: %v", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// inlineSVG drops the XML prolog so the document can sit inside HTML.
func inlineSVG(b []byte) template.HTML {
	if i := bytes.Index(b, []byte("<svg")); i > 0 {
		b = b[i:]
	}
	return template.HTML(b)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	defer http.Redirect(w, r, "/", http.StatusSeeOther)

	r.Body = http.MaxBytesReader(w, r.Body, s.opt.MaxUploadBytes)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			err = fmt.Errorf("file exceeds the %d MB upload limit", s.opt.MaxUploadBytes>>20)
		} else {
			err = fmt.Errorf("read upload: %w", err)
		}
		logging.Warnf("%v", err)
		s.shell.RecordError(err)
		return
	}
	defer file.Close()
	// Load records its own error for the page.
	_ = s.shell.Load(hdr.Filename, file)
}

func specFromQuery(get func(string) string) (chart.Spec, error) {
	kind, err := chart.ParseKind(get("kind"))
	if err != nil {
		return chart.Spec{}, err
	}
	spec := chart.Spec{
		Kind:   kind,
		Column: get("column"),
		X:      get("x"),
		Y:      get("y"),
		Color:  get("color"),
		Date:   get("date"),
		Value:  get("value"),
	}
	if spec.Color == chart.NoColor {
		spec.Color = ""
	}
	if cols := get("columns"); cols != "" {
		spec.Columns = strings.Split(cols, ",")
	}
	if b := get("bins"); b != "" {
		n, err := strconv.Atoi(b)
		if err != nil || n <= 0 {
			return chart.Spec{}, fmt.Errorf("invalid bins %q", b)
		}
		spec.Bins = n
	}
	return spec, nil
}

func (s *Server) handleChart(f render.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spec, err := specFromQuery(r.URL.Query().Get)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a, err := s.shell.Chart(spec)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, dashboard.ErrNoDataset) {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}
		img, err := render.Render(a, f, s.opt.ChartSize)
		if err != nil {
			logging.Errorf("render chart: %v", err)
			http.Error(w, "failed to render chart", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", f.ContentType())
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(img)
	}
}

func (s *Server) handleDownload(export func() (string, []byte, error), contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, data, err := export()
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, dashboard.ErrNoDataset) {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		_, _ = w.Write(data)
	}
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	req, err := chart.RequestFromQuery(r.URL.Query().Get)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.shell.Render(req))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   s.opt.Version,
		"state":     s.shell.State().String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logging.Errorf("encode json: %v", err)
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
