package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/growthlab/sitescope/internal/analysis"
	"github.com/growthlab/sitescope/internal/config"
	"github.com/growthlab/sitescope/internal/notifications"
	"github.com/growthlab/sitescope/internal/outbox"
	"github.com/growthlab/sitescope/internal/storage"
	"github.com/growthlab/sitescope/internal/store"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting SiteScope analysis service")

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logrus.Fatalf("Failed to open store: %v", err)
	}

	// Report archival is optional; without a storage account the rendered
	// report only lives in the request database.
	var artifacts storage.ArtifactStore
	if cfg.StorageAccount != "" {
		azure, err := storage.NewAzureArtifactStore(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Fatalf("Failed to initialize artifact storage: %v", err)
		}
		artifacts = azure
	} else {
		logrus.Info("No storage account configured, report archival disabled")
	}

	analysisService := analysis.NewService(cfg, st, artifacts)

	// Notification outbox: transitions enqueue durable rows, the dispatcher
	// delivers them with retries.
	sender := notifications.NewSMTPSender(cfg)
	dispatcher := outbox.NewDispatcher(st, sender, cfg.OutboxSchedule, cfg.OutboxMaxAttempts)
	if cfg.SMTPHost != "" {
		if err := dispatcher.Start(); err != nil {
			logrus.Fatalf("Failed to start outbox dispatcher: %v", err)
		}
		defer dispatcher.Stop()
	} else {
		logrus.Warn("SMTP not configured, notification emails will stay queued")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      newRouter(analysisService, st),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // analysis runs synchronously within a request
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

func newRouter(analysisService *analysis.Service, st *store.Store) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.HandleFunc("/metrics", metricsHandler(analysisService)).Methods("GET")

	router.HandleFunc("/analyze", analyzeHandler(analysisService)).Methods("POST")

	router.HandleFunc("/api/requests", submitHandler(analysisService)).Methods("POST")
	router.HandleFunc("/api/requests", listRequestsHandler(st)).Methods("GET")
	router.HandleFunc("/api/requests/{id}", getRequestHandler(st)).Methods("GET")
	router.HandleFunc("/api/requests/{id}/approve", operatorActionHandler(analysisService.Approve)).Methods("POST")
	router.HandleFunc("/api/requests/{id}/reject", operatorActionHandler(analysisService.Reject)).Methods("POST")

	return router
}
