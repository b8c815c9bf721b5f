package main

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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dshills/airsearch-mcp/internal/cache"
	"github.com/dshills/airsearch-mcp/internal/mcp"
	"github.com/dshills/airsearch-mcp/internal/searcher"
)

var serveMetricsAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.Metrics.Addr = serveMetricsAddr
	}

	logger.Info("airsearch MCP server starting", "version", version)

	store, err := openStorage(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records := cache.New(store, cache.WithTTL(cfg.Cache.TTL), cache.WithLogger(logger))
	srch := searcher.NewSearcher(store,
		searcher.WithCache(records),
		searcher.WithLookupCache(cfg.Cache.LookupSize, cfg.Cache.LookupTTL),
		searcher.WithLogger(logger),
	)

	server, err := mcp.NewServer(store, mcp.WithSearcher(srch), mcp.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	// Set up graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Addr != "" {
		metrics := startMetrics(cfg.Metrics.Addr, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metrics.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("MCP server ready, listening on stdio")
	if err := server.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// startMetrics serves /metrics in the background
func startMetrics(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics listener started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics listener failed", "addr", addr, "error", err)
		}
	}()
	return srv
}
