package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/survivorlens/internal/api"
	"github.com/KaramelBytes/survivorlens/internal/query"
)

var (
	srvAddr    string
	srvPreload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard queries over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := srvAddr
		if addr == "" && cfg != nil {
			addr = cfg.ServeAddr
		}
		if addr == "" {
			addr = "127.0.0.1:8080"
		}
		opt := api.Options{Source: cfg.Source, Window: query.DefaultWindow, HistogramBins: cfg.HistogramBins, Logger: logger}
		if cfg.AgeWindow > 0 {
			opt.Window.Age = cfg.AgeWindow
		}
		if cfg.FareWindow > 0 {
			opt.Window.Fare = cfg.FareWindow
		}
		if srvPreload {
			if _, err := loadDataset(cmd); err != nil {
				return err
			}
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           api.New(dataCache, opt).Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.ListenAndServe()
		}()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving %s on http://%s/api/v1\n", cfg.Source, addr)

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("serve: %w", err)
		case <-ctx.Done():
		}
		logger.Info("shutting down", slog.String("addr", addr))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&srvPreload, "preload", false, "load the dataset before accepting requests")
}
