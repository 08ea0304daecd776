// Command server boots the product verification API.
//
// Startup order:
//  1. Load .env (best effort) and environment config
//  2. Configure global zerolog level/output
//  3. Open SQLite and run schema migrations
//  4. Configure OpenTelemetry tracing (no-op unless enabled)
//  5. Build the Gin engine, register middleware and routes
//  6. Serve until SIGINT/SIGTERM, then drain gracefully
//
// @title       Product Verification API
// @version     1.0
// @description Verification and trust decision engine for printed product authentication codes.
// @BasePath    /api/v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/truescan/go-verify-backend/internal/config"
	httpapi "github.com/truescan/go-verify-backend/internal/http"
	"github.com/truescan/go-verify-backend/internal/observability"
	"github.com/truescan/go-verify-backend/internal/repo"
	"github.com/truescan/go-verify-backend/internal/services"
	"github.com/truescan/go-verify-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Local development convenience; production injects real env vars.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	gin.SetMode(cfg.GinMode)

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db_path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	shutdownOTel, err := observability.SetupOTel(context.Background(), cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup opentelemetry")
	}

	// Risk and guide providers: OpenAI when a key is configured, otherwise
	// the deterministic heuristics (identical pipeline, no network calls).
	var (
		risk  services.RiskAssessor   = services.HeuristicRiskAssessor{}
		guide services.GuideGenerator = services.FallbackGuideGenerator{}
	)
	if cfg.OpenAIAPIKey != "" {
		risk = services.NewOpenAIRiskAssessor(cfg.OpenAIAPIKey)
		guide = services.NewOpenAIGuideGenerator(cfg.OpenAIAPIKey)
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, db, risk, guide, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("version", version).
			Str("base_path", cfg.APIBasePath).
			Bool("openai", cfg.OpenAIAPIKey != "").
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := shutdownOTel(ctx); err != nil {
		log.Warn().Err(err).Msg("otel shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server stopped")
}
