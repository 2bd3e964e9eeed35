package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coursecatalog/internal/api/v1/router"
	"coursecatalog/internal/config"
	"coursecatalog/internal/db"
	"coursecatalog/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load configuration
	envErr := godotenv.Load()
	logger := logger.New(os.Getenv("ENV"))
	if envErr != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}
	logger.Info().Str("environment", cfg.Environment).Msg("App environment loaded")

	// 2. Open the connection pool
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()
	pool, err := db.NewPool(startCtx, cfg.DBConnectionString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatal().Msgf("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	logger.Info().Msg("Database connection successful")

	if cfg.DBMigrate {
		if err := db.RunMigrations(startCtx, pool); err != nil {
			logger.Fatal().Msgf("Failed to run migrations: %v", err)
		}
		logger.Info().Msg("Migrations applied")
	}

	// 3. Build router
	r, cleanup, err := router.Build(startCtx, cfg, logger, pool)
	if err != nil {
		logger.Fatal().Msgf("Failed to build router: %v", err)
	}
	defer cleanup()

	// 4. Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Start server in a goroutine
	go func() {
		logger.Info().Msgf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Msgf("Listen: %s", err)
		}
	}()

	// 6. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutdown signal received, exiting...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Msgf("Server forced to shutdown: %v", err)
		return
	}
	logger.Info().Msg("Server shut down gracefully")
}
