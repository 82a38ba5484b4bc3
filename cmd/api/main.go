package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/commissioner/pkg/api"
	"github.com/urmzd/commissioner/pkg/app"
	"github.com/urmzd/commissioner/pkg/config"
	"github.com/urmzd/commissioner/pkg/logger"

	_ "github.com/urmzd/commissioner/docs"
)

// @title           Commissioner API
// @version         1.0
// @description     REST API for discovering and commissioning short-range radio devices

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http

const shutdownTimeout = 10 * time.Second

func main() {
	exitCode := 0
	defer func() { os.Exit(exitCode) }()

	configPath := flag.String("config", "", "Path to config file (default: search ./config.yaml and ~/.commissioner)")
	dbPath := flag.String("db", "", "Path to identity registry (overrides storage.path)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}

	lg, closer, err := logger.Init(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise logging")
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	services, err := app.Build(ctx, cfg, nil, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("Failed to start services")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := services.Close(shutdownCtx); err != nil {
			lg.Error().Err(err).Msg("Shutdown incomplete")
		}
	}()

	if err := services.StartBridge(ctx); err != nil {
		lg.Warn().Err(err).Str("broker", cfg.MQTT.Broker).Msg("MQTT bridge unavailable, continuing without it")
	}

	router := api.NewRouter(api.Deps{
		Scanner:      services.Scanner,
		Commissioner: services.Orchestrator,
		Tracker:      services.Tracker,
		Events:       services.Events,
		Validator:    services.Validator,
		Dongles:      services.Dongles,
		Identities:   services.Identities(),
		ScanDuration: cfg.Bluetooth.ScanDuration,
		CORSOrigins:  cfg.Server.CORSOrigins,
		Logger:       lg,
	})

	addr := cfg.Addr()
	lg.Info().
		Str("address", addr).
		Str("scanner", cfg.Bluetooth.Tool).
		Str("pairing_tool", cfg.Matter.Tool).
		Msg("Starting API server")

	if err := router.Run(ctx, addr); err != nil {
		lg.Error().Err(err).Msg("Server failed")
		exitCode = 1
		return
	}
	lg.Info().Msg("Shutting down")
}
