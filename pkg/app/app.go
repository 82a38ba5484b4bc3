// Package app wires configuration into the running services shared by the
// API and MCP entrypoints.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/urmzd/commissioner/pkg/bluetooth"
	"github.com/urmzd/commissioner/pkg/commission"
	"github.com/urmzd/commissioner/pkg/config"
	"github.com/urmzd/commissioner/pkg/db"
	"github.com/urmzd/commissioner/pkg/device/schema"
	"github.com/urmzd/commissioner/pkg/dongle"
	"github.com/urmzd/commissioner/pkg/events"
	"github.com/urmzd/commissioner/pkg/mqttbridge"
	"github.com/urmzd/commissioner/pkg/runner"
)

// eventBuffer is the per-subscriber channel depth.
const eventBuffer = 64

// Services holds every long-lived component built from a Config.
type Services struct {
	Config       *config.Config
	Runner       runner.Runner
	Events       *events.Broker
	Scanner      *bluetooth.Scanner
	Orchestrator *commission.Orchestrator
	Tracker      *commission.Tracker
	Validator    *schema.Validator
	Dongles      *dongle.Detector
	DB           *db.DB // nil when storage is disabled

	logger  zerolog.Logger
	closers []func() error
}

// Build constructs the services. A nil runner selects the exec runner.
func Build(ctx context.Context, cfg *config.Config, r runner.Runner, logger zerolog.Logger) (*Services, error) {
	if r == nil {
		r = runner.NewExecRunner(cfg.Runner.Timeout, logger)
	}

	s := &Services{
		Config:    cfg,
		Runner:    r,
		Events:    events.NewBroker(eventBuffer, logger),
		Validator: schema.NewValidator(),
		Dongles:   dongle.NewDetector(nil, logger),
		logger:    logger,
	}

	s.Scanner = bluetooth.NewScanner(r, s.Events, logger, bluetooth.WithTool(cfg.Bluetooth.Tool))

	var opts []commission.Option
	if !cfg.Storage.Disabled {
		database, err := db.OpenAndMigrate(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open identity registry: %w", err)
		}
		logger.Info().Str("path", database.Path()).Msg("Identity registry opened")
		s.DB = database
		s.closers = append(s.closers, database.Close)
		opts = append(opts, commission.WithRegistry(database.Identities()))
	}

	s.Orchestrator = commission.NewOrchestrator(r, s.Events, commission.Config{
		Tool:           cfg.Matter.Tool,
		SSHTool:        cfg.Controller.SSHTool,
		SSHKeyPath:     cfg.Controller.SSHKeyPath,
		Endpoint:       cfg.Matter.Endpoint,
		PairingTimeout: cfg.Runner.PairingTimeout,
		ConnectTimeout: cfg.Controller.ConnectTimeout,
		ControllerHost: cfg.Controller.Host,
		ControllerUser: cfg.Controller.User,
	}, logger, opts...)
	s.Tracker = commission.NewTracker(s.Orchestrator, logger)

	return s, nil
}

// StartBridge connects the MQTT bridge when a broker is configured and
// forwards events until ctx is done. It is a no-op otherwise.
func (s *Services) StartBridge(ctx context.Context) error {
	m := s.Config.MQTT
	if m.Broker == "" {
		return nil
	}

	client, err := mqttbridge.Connect(mqttbridge.Config{
		Broker:      m.Broker,
		ClientID:    m.ClientID,
		Username:    m.Username,
		Password:    m.Password,
		TopicPrefix: m.TopicPrefix,
	}, s.logger)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, func() error {
		client.Disconnect(250)
		return nil
	})

	go mqttbridge.NewBridge(client, m.TopicPrefix, s.logger).Run(ctx, s.Events)
	return nil
}

// Close stops running sessions and releases storage and broker connections.
func (s *Services) Close(ctx context.Context) error {
	errs := []error{s.Tracker.Shutdown(ctx)}
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

// Identities returns the registry store, or nil when storage is disabled.
func (s *Services) Identities() db.IdentityStore {
	if s.DB == nil {
		return nil
	}
	return s.DB.Identities()
}
