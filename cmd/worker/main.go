package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finsolve/knowledge-assistant/internal/bootstrap"
	"github.com/finsolve/knowledge-assistant/internal/config"
	"github.com/finsolve/knowledge-assistant/internal/observability/logging"
	"github.com/finsolve/knowledge-assistant/internal/observability/metrics"
)

const reindexTimeout = 15 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	ingestMetrics := metrics.NewIngestMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: ingestMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeReindexRequested(ctx, func(handlerCtx context.Context, reason string) error {
		runCtx, cancel := context.WithTimeout(handlerCtx, reindexTimeout)
		defer cancel()

		start := time.Now()
		report, runErr := app.IngestUC.Run(runCtx)
		ingestMetrics.RecordRun("worker", report, time.Since(start), runErr)
		if runErr != nil {
			logger.Error("reindex_failed", "reason", reason, "error", runErr)
			return runErr
		}
		logger.Info("reindex_completed",
			"reason", reason,
			"files_loaded", report.FilesLoaded,
			"chunks", report.Chunks,
		)
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
