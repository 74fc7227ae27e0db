// Package api serves the dashboard queries over HTTP as JSON, plus the
// filtered CSV download.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/KaramelBytes/survivorlens/internal/analysis"
	"github.com/KaramelBytes/survivorlens/internal/loader"
	"github.com/KaramelBytes/survivorlens/internal/query"
)

// Options configures a Server.
type Options struct {
	Source        string
	Window        query.Window
	HistogramBins int
	Logger        *slog.Logger
}

// Server answers queries against one dataset source through a shared cache.
type Server struct {
	cache  *loader.Cache
	source string
	window query.Window
	bins   int
	logger *slog.Logger
}

// New creates a Server. Zero-valued options fall back to the package defaults.
func New(cache *loader.Cache, opt Options) *Server {
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Window == (query.Window{}) {
		opt.Window = query.DefaultWindow
	}
	if opt.HistogramBins <= 0 {
		opt.HistogramBins = analysis.DefaultBins
	}
	return &Server{
		cache:  cache,
		source: opt.Source,
		window: opt.Window,
		bins:   opt.HistogramBins,
		logger: opt.Logger.With(slog.String("component", "api")),
	}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/summary", s.handleSummary)
		r.Get("/aggregate", s.handleAggregate)
		r.Get("/fare-buckets", s.handleFareBuckets)
		r.Get("/histogram", s.handleHistogram)
		r.Get("/correlations", s.handleCorrelations)
		r.Get("/estimate", s.handleEstimate)
		r.Get("/passengers.csv", s.handleDownload)
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
