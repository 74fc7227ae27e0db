package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/KaramelBytes/survivorlens/internal/analysis"
	"github.com/KaramelBytes/survivorlens/internal/loader"
	"github.com/KaramelBytes/survivorlens/internal/manifest"
	"github.com/KaramelBytes/survivorlens/internal/query"
)

// DownloadName is the attachment name of the filtered CSV.
const DownloadName = "titanic_filtered.csv"

type summaryResponse struct {
	LoadID   string           `json:"load_id"`
	Source   string           `json:"source"`
	LoadedAt time.Time        `json:"loaded_at"`
	Total    int              `json:"total"`
	Metrics  analysis.Metrics `json:"metrics"`
}

type estimateResponse struct {
	Query       query.Query  `json:"query"`
	Window      query.Window `json:"window"`
	Match       bool         `json:"match"`
	Probability float64      `json:"probability"`
	Support     int          `json:"support"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	full, view, ok := s.filtered(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		LoadID:   full.ID(),
		Source:   full.Source(),
		LoadedAt: full.LoadedAt(),
		Total:    full.Len(),
		Metrics:  analysis.Summarize(view),
	})
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	by := listParam(r.URL.Query(), "by")
	if len(by) == 0 {
		writeError(w, http.StatusBadRequest, "by is required (one or two of "+strings.Join(query.GroupableColumns(), ", ")+")")
		return
	}
	_, view, ok := s.filtered(w, r)
	if !ok {
		return
	}
	agg, err := query.AggregateMean(view, by...)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

func (s *Server) handleFareBuckets(w http.ResponseWriter, r *http.Request) {
	_, view, ok := s.filtered(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, query.SurvivalByFareBucket(view))
}

func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	bins, err := intParam(r.URL.Query(), "bins", s.bins)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	_, view, ok := s.filtered(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analysis.AgeHistograms(view, bins))
}

func (s *Server) handleCorrelations(w http.ResponseWriter, r *http.Request) {
	_, view, ok := s.filtered(w, r)
	if !ok {
		return
	}
	m := analysis.Correlations(view)
	if m == nil {
		m = &analysis.CorrMatrix{Columns: []string{}, Values: [][]float64{}}
	}
	writeJSON(w, http.StatusOK, m)
}

// handleEstimate compares against the filtered passengers only.
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	_, view, ok := s.filtered(w, r)
	if !ok {
		return
	}
	resp := estimateResponse{Query: q, Window: s.window}
	if est, found := query.EstimateSurvivalWithin(view, q, s.window); found {
		resp.Match = true
		resp.Probability = est.Probability
		resp.Support = est.Support
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	_, view, ok := s.filtered(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := view.WriteCSV(&buf); err != nil {
		s.logger.Error("export failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+DownloadName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// dataset loads (or reuses) the dataset and maps loader failures to status
// codes. It reports false after writing an error response.
func (s *Server) dataset(w http.ResponseWriter, r *http.Request) (*manifest.Dataset, bool) {
	d, err := s.cache.Get(r.Context(), s.source)
	if err == nil {
		return d, true
	}
	s.logger.Warn("dataset unavailable", slog.String("source", s.source), slog.Any("error", err))
	switch {
	case errors.Is(err, loader.ErrInvalidSchema):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
	return nil, false
}

// filtered returns the full dataset and the view selected by the request's
// filter parameters.
func (s *Server) filtered(w http.ResponseWriter, r *http.Request) (*manifest.Dataset, *manifest.Dataset, bool) {
	sel, err := parseSelection(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}
	d, ok := s.dataset(w, r)
	if !ok {
		return nil, nil, false
	}
	spec, err := sel.Spec(d)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}
	return d, query.Filter(d, spec), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
