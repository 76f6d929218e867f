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

	httpadapter "github.com/rathodrutvik-dotcom/Chat-With-Data/internal/adapters/http"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/bootstrap"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/config"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/observability/logging"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/observability/metrics"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logging.NewJSONLogger("api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	serverMetrics := metrics.NewHTTPServerMetrics("api")
	router := httpadapter.NewRouter(
		app.SessionUC,
		app.IngestUC,
		app.AskUC,
		app.Documents,
		app.Sessions,
		serverMetrics,
		httpadapter.RouterOptions{
			HistoryLimit:   cfg.HistoryMessages,
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
		},
	)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("api_shutdown_failed", "error", err)
	}
	log.Info("api_stopped")
}
