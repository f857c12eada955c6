package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/splatform/playback-engine/internal/config"
	"github.com/splatform/playback-engine/internal/handlers"
	"github.com/splatform/playback-engine/internal/logger"
	"github.com/splatform/playback-engine/internal/middleware"
	"github.com/splatform/playback-engine/internal/results"
	"github.com/splatform/playback-engine/internal/session"
	"github.com/splatform/playback-engine/internal/storage"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting Playback Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir,
		"tick_rate", cfg.TickRate)

	store, err := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	if err != nil {
		log.Error("Failed to configure storage", "error", err)
		os.Exit(1)
	}

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	var recorder results.Recorder
	if cfg.ResultsDB != "" {
		recorder, err = results.OpenSQLite(cfg.ResultsDB, log)
		if err != nil {
			log.Error("Failed to open results database", "error", err, "path", cfg.ResultsDB)
			os.Exit(1)
		}
		log.Info("Results database ready", "path", cfg.ResultsDB)
	}

	manager := session.NewManager(store, recorder, log, cfg.TickInterval())
	tickCtx, tickCancel := context.WithCancel(context.Background())
	go manager.Run(tickCtx)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	experienceHandler := handlers.NewExperienceHandler(store, log)
	mux.Handle("/v1/experiences", experienceHandler)
	mux.Handle("/v1/experiences/", experienceHandler)

	eventsHandler := handlers.NewEventsHandler(log)
	sessionHandler := handlers.NewSessionHandler(manager, eventsHandler, log)
	mux.Handle("/v1/sessions", sessionHandler)
	mux.Handle("/v1/sessions/", sessionHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout stays unset so websocket event streams are not cut off
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	tickCancel()

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}
	if recorder != nil {
		if err := recorder.Close(); err != nil {
			log.Error("Error closing results database", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
