package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"inkwell/internal/platform/config"
	"inkwell/internal/platform/httpserver"
	"inkwell/internal/platform/logger"
)

// main loads configuration, wires stores and services, and serves until
// SIGINT or SIGTERM. Business logic lives in internal service packages.
func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New(cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := build(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close()

	log.Info("starting inkwell",
		"addr", cfg.Addr,
		"env", cfg.Environment,
		"postgres", app.infra.db != nil,
		"redis", app.infra.redis != nil,
		"kafka", app.infra.producer != nil,
	)
	if err := httpserver.Run(ctx, httpserver.New(cfg.Addr, app.router), log); err != nil {
		log.Error("server error", "error", err)
		app.close()
		os.Exit(1)
	}
}
