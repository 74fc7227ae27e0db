package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/KaramelBytes/survivorlens/internal/manifest"
)

// DefaultSource is the cleaned Titanic training set the dashboard was built on.
const DefaultSource = "https://raw.githubusercontent.com/Rehmi-1/titanic-eda-app/main/train_cleaned.csv"

// Loader fetches and parses passenger CSVs. Each Load is a single attempt;
// failures are returned to the caller and never retried.
type Loader struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewLoader returns a Loader whose HTTP fetches are bounded by httpTimeout.
func NewLoader(httpTimeout time.Duration, logger *slog.Logger) *Loader {
	if httpTimeout <= 0 {
		httpTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		httpClient: &http.Client{Timeout: httpTimeout},
		logger:     logger.With(slog.String("component", "loader")),
	}
}

// Load reads source (an http(s) URL or a local path) and returns the parsed
// Dataset.
func (l *Loader) Load(ctx context.Context, source string) (*manifest.Dataset, error) {
	start := time.Now()
	rc, err := l.open(ctx, source)
	if err != nil {
		return nil, &SourceUnavailableError{Source: source, Err: err}
	}
	defer rc.Close()

	ds, err := Parse(source, rc)
	if err != nil {
		l.logger.Debug("dataset load failed", slog.String("source", source), slog.String("error", err.Error()))
		return nil, err
	}
	l.logger.Debug("dataset loaded",
		slog.String("source", source),
		slog.String("load_id", ds.ID()),
		slog.Int("rows", ds.Len()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return ds, nil
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if source == "" {
		return nil, fmt.Errorf("empty source")
	}
	if !isURL(source) {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open csv: %w", err)
		}
		return f, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("fetch: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	return resp.Body, nil
}

func isURL(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
