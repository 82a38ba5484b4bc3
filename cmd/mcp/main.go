package main

import (
	"context"
	"flag"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/commissioner/pkg/app"
	"github.com/urmzd/commissioner/pkg/config"
	"github.com/urmzd/commissioner/pkg/logger"
	commissionermcp "github.com/urmzd/commissioner/pkg/mcp"
)

func main() {
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

	// Logging must go to stderr, stdout is the MCP transport
	lg, closer, err := logger.Init(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise logging")
	}
	defer closer.Close()

	ctx := context.Background()
	services, err := app.Build(ctx, cfg, nil, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("Failed to start services")
	}
	defer func() {
		if err := services.Close(ctx); err != nil {
			lg.Error().Err(err).Msg("Shutdown incomplete")
		}
	}()

	if err := services.StartBridge(ctx); err != nil {
		lg.Warn().Err(err).Str("broker", cfg.MQTT.Broker).Msg("MQTT bridge unavailable, continuing without it")
	}

	mcpServer := commissionermcp.NewServer(services.Scanner, services.Orchestrator, services.Validator, commissionermcp.Options{
		Dongles:      services.Dongles,
		ScanDuration: cfg.Bluetooth.ScanDuration,
	}, lg)

	lg.Info().Msg("Starting MCP server on stdio")

	if err := mcpServer.ServeStdio(); err != nil {
		lg.Error().Err(err).Msg("MCP server failed")
	}
}
