package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/guidexml/internal/api"
	"github.com/dgallion1/guidexml/internal/config"
	"github.com/dgallion1/guidexml/internal/guidexml"
	"github.com/dgallion1/guidexml/internal/metrics"
	"github.com/dgallion1/guidexml/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("could not read .env", "error", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize metrics.
	prom := metrics.NewPrometheusRecorder(nil)
	stats := metrics.NewLatencyStats(cfg.StatsTTL)

	// Initialize pipeline.
	tr := guidexml.NewTranslator(guidexml.WithLogger(log))
	conv := pipeline.NewConverter(tr, cfg.GuideVersion, cfg.PDFFallbackPdftotext)
	orch := pipeline.NewOrchestrator(cfg, conv, metrics.Multi(prom, stats), log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, prom, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting guidexml", "port", cfg.Port, "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
