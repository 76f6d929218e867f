package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/bootstrap"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/config"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/observability/logging"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/observability/metrics"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logging.NewJSONLogger("worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	log.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocumentIngested(ctx, func(handlerCtx context.Context, documentID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		if doc, lookupErr := app.Documents.GetByID(processCtx, documentID); lookupErr == nil {
			workerMetrics.ObserveQueueLag("worker", time.Since(doc.CreatedAt))
		}

		workerMetrics.StartDocument()
		started := time.Now()
		processErr := app.ProcessUC.ProcessByID(processCtx, documentID)
		workerMetrics.FinishDocument("worker", time.Since(started), processErr)
		if processErr != nil {
			log.Error("document_processing_failed", "document_id", documentID, "error", processErr)
			return processErr
		}

		if doc, lookupErr := app.Documents.GetByID(processCtx, documentID); lookupErr == nil {
			workerMetrics.ObserveChunksIndexed("worker", doc.ChunkCount)
		}
		log.Info("document_processed", "document_id", documentID)
		return nil
	})
	if err != nil {
		log.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
