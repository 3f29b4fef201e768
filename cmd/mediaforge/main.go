// Command mediaforge runs the ingestion pipeline and/or the preview HTTP
// server, per whichever subsystems are enabled in Settings.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/doist/mediaforge"
	"github.com/doist/mediaforge/internal/useragent"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	downloadTimeout = 30 * time.Second
	userAgent       = "mediaforge-ingest/1.0"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mediaforge:", err)
		os.Exit(1)
	}
}

func run() error {
	configDir := flag.String("config-dir", envOr("RUN_CONFIG_DIR", "./config"), "directory containing default.toml and {env}.toml")
	env := flag.String("env", envOr("RUN_ENV", "local"), "configuration profile name")
	flag.Parse()

	settings, err := mediaforge.LoadSettings(*configDir, *env)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	logger, err := mediaforge.NewLogger(settings.Env)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting mediaforge",
		zap.String("env", settings.Env),
		zap.Object("object_store", settings.ObjectStore),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := mediaforge.NewMetrics()

	store, err := mediaforge.NewObjectStore(ctx, settings.ObjectStore)
	if err != nil {
		return fmt.Errorf("building object store: %w", err)
	}

	group, ctx := errgroup.WithContext(ctx)

	if settings.Coordinator.Enabled {
		httpClient := &http.Client{
			Timeout:   downloadTimeout,
			Transport: useragent.Set(http.DefaultTransport, userAgent),
		}
		downloader := mediaforge.NewDownloader(httpClient, settings.AssetProcessor.FileMaxSizeBytes, metrics, logger)
		coordinator := mediaforge.NewRPCCoordinatorClient(settings.Coordinator.Address, downloadTimeout)

		pipeline := mediaforge.NewPipeline(
			coordinator,
			downloader,
			store,
			metrics,
			settings.Coordinator.NumberOfWorkers,
			settings.Coordinator.FetchBatchSize,
			settings.AssetProcessor.ResizeTo,
			logger,
		)
		group.Go(func() error { return pipeline.Run(ctx) })
	}

	if settings.HTTPServer.Enabled {
		var serverMetrics *mediaforge.Metrics
		if settings.Metrics.Enabled {
			serverMetrics = metrics
		}
		handler := mediaforge.NewPreviewServer(store, serverMetrics, logger)
		addr := net.JoinHostPort("", fmt.Sprintf("%d", settings.HTTPServer.Port))
		srv := &http.Server{Addr: addr, Handler: handler}

		group.Go(func() error {
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()
			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			case err := <-errCh:
				if err != nil && err != http.ErrServerClosed {
					return err
				}
				return nil
			}
		})
	}

	return group.Wait()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
