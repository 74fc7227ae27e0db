package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/survivorlens/internal/config"
	"github.com/KaramelBytes/survivorlens/internal/loader"
	"github.com/KaramelBytes/survivorlens/internal/manifest"
)

var (
	// Global flags
	cfgFile            string
	debug              bool
	flagSource         string
	flagHTTPTimeoutSec int

	// Loaded configuration
	cfg *cfgpkg.Global

	logger    = slog.Default()
	dataCache *loader.Cache
)

var rootCmd = &cobra.Command{
	Use:   "survivorlens",
	Short: "SurvivorLens: explore Titanic passenger survival from the command line",
	Long: `SurvivorLens loads the Titanic passenger table from a local file or URL and answers
the questions of the survival dashboard: headline metrics, survival rates by group,
fare buckets, age distributions, correlations, a lookup-based survival estimate and
a filtered CSV export. The same queries can be served over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.survivorlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagSource, "source", "", "dataset path or http(s) URL (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
}

func loadConfig() {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{Source: loader.DefaultSource, HTTPTimeoutSec: 30}
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("source") && strings.TrimSpace(flagSource) != "" {
		cfg.Source = strings.TrimSpace(flagSource)
	}
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}

	timeout := time.Duration(cfg.HTTPTimeoutSec) * time.Second
	dataCache = loader.NewCache(loader.NewLoader(timeout, logger), logger)
}

// loadDataset returns the configured dataset through the process cache.
func loadDataset(cmd *cobra.Command) (*manifest.Dataset, error) {
	d, err := dataCache.Get(cmd.Context(), cfg.Source)
	if err != nil {
		return nil, err
	}
	logger.Debug("dataset ready", slog.String("source", d.Source()), slog.String("load_id", d.ID()), slog.Int("rows", d.Len()))
	return d, nil
}
