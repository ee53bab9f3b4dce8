package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hadirot/functions/internal/config"
	"github.com/hadirot/functions/internal/database"
	"github.com/hadirot/functions/internal/email"
	"github.com/hadirot/functions/internal/handler"
	"github.com/hadirot/functions/internal/logger"
	"github.com/hadirot/functions/internal/middleware"
	"github.com/hadirot/functions/internal/pkg/httpretry"
	"github.com/hadirot/functions/internal/repository"
	"github.com/hadirot/functions/internal/router"
	"github.com/hadirot/functions/internal/supabase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("version", handler.Version).Msg("starting HaDirot functions server")

	// Outbound HTTP client shared by the identity and email providers
	httpClient := httpretry.New(cfg.HTTP.Timeout, cfg.HTTP.MaxRetries, httpretry.WithLogger(log))

	// Identity provider clients
	sessions, err := supabase.NewSessionClient(cfg.Supabase.URL, cfg.Supabase.AnonKey, cfg.Profiles.Table, httpClient)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize session client")
	}
	admin, err := supabase.NewAdminClient(cfg.Supabase.URL, cfg.Supabase.ServiceRoleKey, httpClient)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize admin client")
	}
	log.Info().Str("url", cfg.Supabase.URL).Msg("identity provider clients initialized")

	deps := handler.Deps{
		Sessions: sessions,
		Profiles: sessions,
		Admin:    admin,
		Checks:   map[string]handler.HealthChecker{},
	}

	// Admin flags can be read straight from Postgres instead of over REST
	if cfg.Profiles.Source == "postgres" {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()
		log.Info().Msg("connected to PostgreSQL")

		deps.Profiles = repository.NewProfileRepository(db, cfg.Profiles.Table)
		deps.Checks["postgres"] = db
	}

	// Email sender; the server still starts without one so deletion keeps working
	sender, err := email.NewSender(context.Background(), cfg.Email, httpClient)
	if err != nil {
		log.Warn().Err(err).Str("provider", cfg.Email.Provider).Msg("email sender not configured")
	} else {
		deps.Sender = sender
		log.Info().Str("provider", cfg.Email.Provider).Msg("email sender initialized")
	}

	// Initialize handlers
	h := handler.New(cfg, log, deps)

	// Initialize middleware
	mw := middleware.New(log)

	// Set up router
	r := router.New(h, mw)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
