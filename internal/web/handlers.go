package web

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/booksdash/internal/core"
	"github.com/JonMunkholm/booksdash/internal/logging"
	"github.com/JonMunkholm/booksdash/internal/web/templates"
)

// parseSelection reads country, year and age from the query string.
// Absent or empty parameters stay unset so Render picks the first option.
func parseSelection(q url.Values) (core.Selection, error) {
	sel := core.Selection{Country: strings.TrimSpace(q.Get("country"))}

	if v := strings.TrimSpace(q.Get("year")); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return sel, fmt.Errorf("%w: year %q is not a whole number", core.ErrInvalidSelection, v)
		}
		sel.Year = &year
	}

	if v := strings.TrimSpace(q.Get("age")); v != "" {
		age, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(age) || math.IsInf(age, 0) {
			return sel, fmt.Errorf("%w: age %q is not a number", core.ErrInvalidSelection, v)
		}
		sel.Age = &age
	}

	return sel, nil
}

// render parses the request's selection and builds its views.
func (s *Server) render(r *http.Request) (core.ViewSet, error) {
	sel, err := parseSelection(r.URL.Query())
	if err != nil {
		return core.ViewSet{}, err
	}
	return s.dataset.Render(sel), nil
}

// handleDashboard renders the dashboard page for the requested selection.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	vs, err := s.render(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	data := templates.DashboardData{
		DatasetID: s.dataset.ID.String(),
		Views:     vs,
		Frames:    s.frames,
	}

	var buf bytes.Buffer
	if err := templates.Dashboard(data).Render(r.Context(), &buf); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// handleChart draws one view as an SVG image.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	view := chi.URLParam(r, "view")

	vs, err := s.render(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if _, err := vs.View(view); err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	if err := s.renders.Acquire(r.Context()); err != nil {
		if errors.Is(err, ErrTooManyRenders) {
			w.Header().Set("Retry-After", "5")
			s.respondError(w, r, err, http.StatusServiceUnavailable)
			return
		}
		s.respondError(w, r, err, http.StatusRequestTimeout)
		return
	}
	defer s.renders.Release()

	logging.WithFields(r.Context(), "view", view, "country", vs.Selection.Country).Debug("rendering chart")

	var buf bytes.Buffer
	if err := renderChart(r.Context(), &buf, view, vs, s.frames); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = buf.WriteTo(w)
}

// handleViews returns every view for the selection as JSON.
func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	vs, err := s.render(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, vs)
}

// handleView returns a single named view as JSON.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	vs, err := s.render(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	view, err := vs.View(chi.URLParam(r, "view"))
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	writeJSON(w, view)
}

// OptionsResponse is the body of GET /api/options.
type OptionsResponse struct {
	Selection core.Selection `json:"selection"`
	Options   core.Options   `json:"options"`
}

// handleOptions returns the resolved selection and the selector options.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r.URL.Query())
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	resolved, opts := core.Resolve(sel, s.dataset.Working())
	writeJSON(w, OptionsResponse{Selection: resolved, Options: opts})
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status      string              `json:"status"`
	DatasetID   string              `json:"dataset_id"`
	Source      string              `json:"source"`
	LoadedAt    string              `json:"loaded_at"`
	RawRows     int                 `json:"raw_rows"`
	WorkingRows int                 `json:"working_rows"`
	Countries   int                 `json:"countries"`
	Renders     RenderLimiterStatus `json:"renders"`
}

// handleHealth reports the loaded dataset and render capacity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	working := s.dataset.Working()

	resp := HealthResponse{
		Status:      "ok",
		DatasetID:   s.dataset.ID.String(),
		Source:      s.dataset.Source,
		LoadedAt:    s.dataset.LoadedAt.Format(time.RFC3339),
		RawRows:     s.dataset.RawRows(),
		WorkingRows: len(working),
		Countries:   len(working.Countries()),
		Renders:     s.renders.Status(),
	}
	if resp.WorkingRows == 0 {
		slog.Warn("health check: working dataset is empty", "source", resp.Source)
	}
	writeJSON(w, resp)
}
