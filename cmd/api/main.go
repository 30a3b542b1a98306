package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sweethome-care/voice-entry-service/internal/adapters/providers/speech"
	"github.com/sweethome-care/voice-entry-service/internal/adapters/storage"
	"github.com/sweethome-care/voice-entry-service/internal/api/handlers"
	"github.com/sweethome-care/voice-entry-service/internal/api/routes"
	"github.com/sweethome-care/voice-entry-service/internal/application/services"
	"github.com/sweethome-care/voice-entry-service/internal/infrastructure/observability"
	"github.com/sweethome-care/voice-entry-service/pkg/config"
)

func main() {
	// .env is optional; the environment wins
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	observability.InitLogger("voice-entry-service", cfg.Log.Environment)
	logger := observability.GetLogger()

	// Initialize storage
	entryStore, err := storage.NewEntrySnapshotStore(cfg.Storage.SnapshotPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open entry store")
	}
	defer entryStore.Close()
	logger.Info().Int("entries", entryStore.Len()).Str("path", cfg.Storage.SnapshotPath).Msg("entry store loaded")

	blobStore, err := storage.NewBlobStore(cfg.Storage.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open blob store")
	}

	// Initialize speech provider; demo-mode entries always use the mock
	speechProvider := speech.NewSpeechProvider(cfg.Speech)

	// Initialize services
	entryService := services.NewEntryService(
		entryStore,
		blobStore,
		speechProvider,
		speech.NewMockProvider(),
		cfg.Speech.Language,
	)

	// Initialize handlers and router
	entryHandler := handlers.NewEntryHandler(entryService)
	router := routes.NewRouter(entryHandler)
	handler := router.SetupRoutes()

	// Create HTTP server. The write timeout stays generous: the process
	// endpoint holds the connection through the provider calls.
	server := &http.Server{
		Addr:         cfg.Server.ListenAddr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}

	logger.Info().Msg("server stopped")
}
