// Package main runs the trade signals HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"trade-signals/config"
	"trade-signals/internal/api"
	"trade-signals/internal/app"
	"trade-signals/internal/jobs"
	"trade-signals/observability"

	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		observability.Fatal("invalid configuration", "error", err)
	}

	observability.InitLoggerWithLevel(cfg.Log.Production, observability.ParseLevel(cfg.Log.Level))
	observability.InitMetrics()
	if envErr != nil {
		observability.Debug("no .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	components, err := app.BuildComponents(ctx, cfg)
	if err != nil {
		observability.Fatal("failed to initialize components", "error", err)
	}

	application, err := app.New(ctx, cfg, components)
	if err != nil {
		observability.Fatal("failed to initialize app", "error", err)
	}

	scheduler := jobs.NewScheduler(ctx, application)
	if err := scheduler.Register(cfg.Jobs.CachePruneSchedule); err != nil {
		observability.Fatal("failed to register jobs", "error", err)
	}
	scheduler.Start()

	handler := api.NewHandler(application, cfg)
	router := api.NewRouter(handler, cfg)

	requestTimeout := time.Duration(cfg.HTTP.RequestTimeoutSec) * time.Second
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      requestTimeout + 10*time.Second,
	}

	go func() {
		observability.Info("starting server", "port", cfg.HTTP.Port, "store", cfg.Store.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	observability.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Error("server forced to shutdown", "error", err)
	}
	scheduler.Stop()

	if err := application.Close(); err != nil {
		observability.Error("failed to close store", "error", err)
	}
	observability.Info("server stopped")
}
