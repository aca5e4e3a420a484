package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/jwalitptl/hospital-api/internal/app"
	"github.com/jwalitptl/hospital-api/internal/config"
	"github.com/jwalitptl/hospital-api/internal/handler/health"
	promHandler "github.com/jwalitptl/hospital-api/internal/handler/prometheus"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/worker"
	"github.com/jwalitptl/hospital-api/pkg/logger"
)

func setupHealthCheck(a *app.App, port int) *http.Server {
	engine := gin.New()
	engine.Use(middleware.RequestID(a.Logger), middleware.Recovery())

	health.NewHandler(a.Stores.Pinger).RegisterRoutes(&engine.RouterGroup)
	promHandler.New(a.Registry).RegisterRoutes(&engine.RouterGroup)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: engine,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health check server failed")
		}
	}()
	return srv
}

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	l := logger.Init(logger.Config{
		Level:   cfg.Log.Level,
		Pretty:  cfg.Log.Pretty,
		Service: "hms-worker",
	})
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, l, afero.NewOsFs())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize worker")
	}

	srv := setupHealthCheck(a, cfg.Worker.Port)

	janitor := worker.NewBlobJanitor(a.Blobs, a.Stores.Patients, cfg.Worker.JanitorInterval, cfg.Worker.JanitorGrace, a.Metrics)
	janitor.Start(ctx)

	log.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health check server forced to shutdown")
	}
	if err := a.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to release resources")
	}
}
