// Package bluetooth discovers short-range radio devices by driving the
// adapter's command-line tool and parsing its text output.
package bluetooth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/urmzd/commissioner/pkg/device"
	"github.com/urmzd/commissioner/pkg/runner"
)

// DefaultTool is the adapter command-line tool.
const DefaultTool = "bluetoothctl"

// Scanner implements device.Scanner on top of an adapter tool.
type Scanner struct {
	runner runner.Runner
	events device.EventPublisher
	tool   string
	logger zerolog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

var _ device.Scanner = (*Scanner)(nil)

// Option configures a Scanner.
type Option func(*Scanner)

// WithTool overrides the adapter tool name or path.
func WithTool(tool string) Option {
	return func(s *Scanner) {
		if tool != "" {
			s.tool = tool
		}
	}
}

// WithSleep replaces the dwell wait, for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Scanner) {
		s.sleep = fn
	}
}

// NewScanner creates a Scanner. A nil publisher discards events.
func NewScanner(r runner.Runner, events device.EventPublisher, logger zerolog.Logger, opts ...Option) *Scanner {
	if events == nil {
		events = discard{}
	}
	s := &Scanner{
		runner: r,
		events: events,
		tool:   DefaultTool,
		logger: logger.With().Str("component", "scanner").Logger(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsAdapterAvailable runs the capability and controller-listing probes.
// Any probe failure means unavailable.
func (s *Scanner) IsAdapterAvailable(ctx context.Context) bool {
	res := s.runner.Run(ctx, runner.Cmd(s.tool, "--version"))
	if !res.Succeeded {
		s.logger.Warn().Str("tool", s.tool).Str("error", res.Diagnostic()).Msg("Adapter tool not found")
		return false
	}

	res = s.runner.Run(ctx, runner.Cmd(s.tool, "list"))
	if !res.Succeeded {
		s.logger.Warn().Str("error", res.Diagnostic()).Msg("Failed to list adapters")
		return false
	}

	if !strings.Contains(res.Stdout, "Controller") {
		s.logger.Warn().Msg("No adapter controllers found")
		return false
	}

	s.logger.Debug().Msg("Adapter is available")
	return true
}

// Scan turns discovery on, dwells for exactly durationSeconds, turns it
// off, then lists and parses the devices seen. Each device is published as
// it is parsed. Failures are also published as scan errors.
func (s *Scanner) Scan(ctx context.Context, durationSeconds int) ([]device.DiscoveredDevice, error) {
	if durationSeconds < 0 {
		durationSeconds = 0
	}

	if !s.IsAdapterAvailable(ctx) {
		return nil, s.scanFailed(device.ErrAdapterUnavailable)
	}

	s.logger.Info().Int("duration_seconds", durationSeconds).Msg("Starting scan")

	res := s.runner.Run(ctx, runner.Cmd(s.tool, "scan", "on"))
	if !res.Succeeded {
		return nil, s.scanFailed(fmt.Errorf("%w: failed to start scanning: %s", device.ErrProbeFailed, res.Diagnostic()))
	}

	dwellErr := s.sleep(ctx, time.Duration(durationSeconds)*time.Second)

	// Stop even when the dwell was cancelled; the adapter must not be left scanning.
	stopCtx := ctx
	if dwellErr != nil {
		stopCtx = context.WithoutCancel(ctx)
	}
	if res := s.runner.Run(stopCtx, runner.Cmd(s.tool, "scan", "off")); !res.Succeeded {
		s.logger.Warn().Str("error", res.Diagnostic()).Msg("Failed to stop scanning")
	}

	if dwellErr != nil {
		return nil, s.scanFailed(fmt.Errorf("scan interrupted: %w", dwellErr))
	}

	res = s.runner.Run(ctx, runner.Cmd(s.tool, "devices"))
	if !res.Succeeded {
		return nil, s.scanFailed(fmt.Errorf("%w: failed to get devices: %s", device.ErrProbeFailed, res.Diagnostic()))
	}

	devices := ParseDevices(res.Stdout, func(d device.DiscoveredDevice) {
		s.events.Publish(device.DeviceDiscovered(d))
	})

	s.logger.Info().Int("count", len(devices)).Msg("Scan complete")
	return devices, nil
}

// DeviceInfo runs the detail probe for one address.
func (s *Scanner) DeviceInfo(ctx context.Context, address string) (*device.DiscoveredDevice, error) {
	res := s.runner.Run(ctx, runner.Cmd(s.tool, "info", address))
	if !res.Succeeded {
		s.logger.Debug().Str("address", address).Str("error", res.Diagnostic()).Msg("Device info probe failed")
		return nil, fmt.Errorf("%w: %s", device.ErrNotFound, address)
	}

	d := ParseDeviceInfo(address, res.Stdout)
	return &d, nil
}

// Connect asks the adapter to connect to address.
func (s *Scanner) Connect(ctx context.Context, address string) bool {
	res := s.runner.Run(ctx, runner.Cmd(s.tool, "connect", address))
	if !res.Succeeded {
		s.logger.Warn().Str("address", address).Str("error", res.Diagnostic()).Msg("Connect failed")
	}
	return res.Succeeded
}

// Disconnect asks the adapter to disconnect from address.
func (s *Scanner) Disconnect(ctx context.Context, address string) bool {
	res := s.runner.Run(ctx, runner.Cmd(s.tool, "disconnect", address))
	if !res.Succeeded {
		s.logger.Warn().Str("address", address).Str("error", res.Diagnostic()).Msg("Disconnect failed")
	}
	return res.Succeeded
}

func (s *Scanner) scanFailed(err error) error {
	s.logger.Error().Err(err).Msg("Scan failed")
	s.events.Publish(device.ScanError(err.Error()))
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type discard struct{}

func (discard) Publish(device.Event) {}
