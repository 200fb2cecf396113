package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/causeconnect/backend/internal/router"
	"github.com/causeconnect/backend/pkg/config"
	"github.com/causeconnect/backend/pkg/firebase"
	"github.com/causeconnect/backend/pkg/logger"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	appLogger := logger.Init(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	// Initialize database connections
	stores, err := config.OpenStores(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize databases")
	}
	defer stores.Close()

	deps := router.Dependencies{
		Config:   cfg,
		Postgres: stores.Postgres,
		Mongo:    stores.Chat,
		Logger:   appLogger,
	}

	// Initialize Firebase
	if cfg.FirebaseEnabled() {
		clients, err := firebase.Connect(context.Background(), firebase.Settings{
			CredentialsPath: cfg.FirebaseCredentialsPath,
			ProjectID:       cfg.FirebaseProjectID,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Firebase")
		}
		deps.FirebaseAuth = clients.Auth
		deps.Messaging = clients.Messaging
	} else {
		log.Warn().Msg("FIREBASE_CREDENTIALS_PATH not set, Firebase login and push are disabled")
	}

	e, err := router.New(deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure routes")
	}

	// Start server
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
