// Package commission drives the pairing pipeline for one device: tool check,
// identity assignment, pairing, connectivity verification and hand-off to a
// remote controller host.
package commission

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/urmzd/commissioner/pkg/db"
	"github.com/urmzd/commissioner/pkg/device"
	"github.com/urmzd/commissioner/pkg/runner"
)

// Defaults for Config fields left zero.
const (
	DefaultTool           = "chip-tool"
	DefaultSSHTool        = "ssh"
	DefaultEndpoint       = 1
	DefaultPairingTimeout = 180 * time.Second
	DefaultConnectTimeout = 10 * time.Second

	maxIdentityAttempts = 8
	handOffMarker       = "Device transfer test successful"
)

// Config holds the external tools and hand-off defaults.
type Config struct {
	Tool           string        // Pairing tool name or path
	SSHTool        string        // Remote shell used for the hand-off probe
	SSHKeyPath     string        // Optional identity file for the remote shell
	Endpoint       int           // Endpoint read during connectivity verification
	PairingTimeout time.Duration // Bound on the pairing invocation
	ConnectTimeout time.Duration // Remote shell connect timeout
	ControllerHost string        // Used when the request names no host
	ControllerUser string        // Used when the request names no user
}

func (c Config) withDefaults() Config {
	if c.Tool == "" {
		c.Tool = DefaultTool
	}
	if c.SSHTool == "" {
		c.SSHTool = DefaultSSHTool
	}
	if c.Endpoint <= 0 {
		c.Endpoint = DefaultEndpoint
	}
	if c.PairingTimeout <= 0 {
		c.PairingTimeout = DefaultPairingTimeout
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	return c
}

// IdentityRegistry records issued identities so generated ones stay unique
// and a device keeps its identity across attempts. db.IdentityStore
// satisfies it.
type IdentityRegistry interface {
	// Reserve records identity for address. It returns false when the
	// identity was already issued.
	Reserve(ctx context.Context, identity, address string) (bool, error)

	// Get returns the record for identity, or db.ErrIdentityNotFound.
	Get(ctx context.Context, identity string) (*db.IssuedIdentity, error)

	// ByAddress returns the latest identity issued to address, or
	// db.ErrIdentityNotFound.
	ByAddress(ctx context.Context, address string) (*db.IssuedIdentity, error)

	// Release forgets identity.
	Release(ctx context.Context, identity string) error
}

// Orchestrator implements device.Commissioner.
type Orchestrator struct {
	runner      runner.Runner
	events      device.EventPublisher
	registry    IdentityRegistry
	config      Config
	logger      zerolog.Logger
	newIdentity func() string
}

var _ device.Commissioner = (*Orchestrator)(nil)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRegistry enables uniqueness checks against an identity registry.
func WithRegistry(r IdentityRegistry) Option {
	return func(o *Orchestrator) {
		o.registry = r
	}
}

// WithIdentitySource replaces identity generation, for tests.
func WithIdentitySource(fn func() string) Option {
	return func(o *Orchestrator) {
		o.newIdentity = fn
	}
}

// NewOrchestrator creates an Orchestrator. A nil publisher discards events.
func NewOrchestrator(r runner.Runner, events device.EventPublisher, cfg Config, logger zerolog.Logger, opts ...Option) *Orchestrator {
	if events == nil {
		events = discard{}
	}
	o := &Orchestrator{
		runner:      r,
		events:      events,
		config:      cfg.withDefaults(),
		logger:      logger.With().Str("component", "commission").Logger(),
		newIdentity: GenerateIdentity,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// attempt is the state carried through one commissioning run.
type attempt struct {
	req       device.CommissioningRequest
	sessionID string
	identity  string
	reserved  bool // identity was newly recorded by this attempt
	warnings  []string
	logger    zerolog.Logger
}

// outcome is the tagged result of one step. A fatal outcome ends the run;
// a warning records degraded success and the run continues.
type outcome struct {
	fatal   bool
	message string
	detail  string
	warning string
}

func ok() outcome { return outcome{} }

func fatal(message, detail string) outcome {
	return outcome{fatal: true, message: message, detail: detail}
}

func degraded(warning string) outcome {
	return outcome{warning: warning}
}

type step struct {
	name    string
	percent int
	message string
	run     func(ctx context.Context, a *attempt) outcome
}

// steps is the linear pipeline. Percentages are strictly increasing.
func (o *Orchestrator) steps() []step {
	return []step{
		{"tool_check", 10, "Checking pairing tool...", o.checkTool},
		{"identity", 20, "Pairing tool found, preparing device identity...", o.assignIdentity},
		{"pairing", 30, "Identity prepared, starting commissioning...", o.pair},
		{"verification", 80, "Commissioning successful, testing device...", o.verify},
		{"hand_off", 90, "Device tested, handing off to controller...", o.handOff},
	}
}

// Commission runs one attempt. It always returns a terminal result and
// always publishes a final progress snapshot, including when a step panics
// or the context is cancelled between steps.
func (o *Orchestrator) Commission(ctx context.Context, req device.CommissioningRequest, sessionID string) (result device.CommissioningResult) {
	a := &attempt{
		req:       req,
		sessionID: sessionID,
		logger: o.logger.With().
			Str("session", sessionID).
			Str("device", req.DeviceName).
			Logger(),
	}

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error().Interface("panic", r).Msg("Commissioning step panicked")
			result = o.finish(a, fatal("Commissioning failed", fmt.Sprint(r)))
		}
	}()

	a.logger.Info().Str("address", req.DeviceAddress).Msg("Starting commissioning")
	o.emit(a, device.CommissioningProgress{Percent: 0, Message: "Initializing commissioning process..."})

	for _, st := range o.steps() {
		if err := ctx.Err(); err != nil {
			return o.finish(a, fatal("Commissioning cancelled", err.Error()))
		}

		o.emit(a, device.CommissioningProgress{Percent: st.percent, Message: st.message})

		out := st.run(ctx, a)
		if out.fatal {
			a.logger.Error().Str("step", st.name).Str("detail", out.detail).Msg(out.message)
			return o.finish(a, out)
		}
		if out.warning != "" {
			a.logger.Warn().Str("step", st.name).Msg(out.warning)
			a.warnings = append(a.warnings, out.warning)
		}
	}

	return o.finish(a, outcome{message: "Device commissioned successfully"})
}

// finish publishes the final snapshot and builds the result.
func (o *Orchestrator) finish(a *attempt, out outcome) device.CommissioningResult {
	final := device.CommissioningProgress{
		Percent: 100,
		Message: "Commissioning completed successfully!",
		IsFinal: true,
	}
	if out.fatal {
		final.Message = out.message
		final.Failed = true
		final.ErrorMessage = out.detail
	}
	o.emit(a, final)

	res := device.CommissioningResult{
		SessionID:        a.sessionID,
		Succeeded:        !out.fatal,
		Message:          out.message,
		AssignedIdentity: a.identity,
		Warnings:         a.warnings,
		CompletedAt:      time.Now(),
	}
	if out.fatal {
		res.ErrorDetail = out.detail
		o.releaseOrphan(a)
	} else {
		a.logger.Info().Str("identity", a.identity).Int("warnings", len(a.warnings)).Msg("Commissioning completed")
	}
	return res
}

// releaseOrphan drops an identity reserved by a failed attempt that has no
// device address to keep it mapped to. Identities reserved for an address
// stay so a retry of the same device reuses them.
func (o *Orchestrator) releaseOrphan(a *attempt) {
	if o.registry == nil || !a.reserved || a.req.DeviceAddress != "" {
		return
	}
	if err := o.registry.Release(context.Background(), a.identity); err != nil {
		a.logger.Warn().Err(err).Str("identity", a.identity).Msg("Failed to release identity")
	}
}

func (o *Orchestrator) emit(a *attempt, p device.CommissioningProgress) {
	p.SessionID = a.sessionID
	a.logger.Debug().Int("percent", p.Percent).Msg(p.Message)
	o.events.Publish(device.Progress(p))
}

func (o *Orchestrator) checkTool(ctx context.Context, a *attempt) outcome {
	res := o.runner.Run(ctx, runner.Cmd(o.config.Tool, "--version"))
	if !res.Succeeded {
		return fatal(device.ErrToolUnavailable.Error(), fmt.Sprintf("%s --version: %s", o.config.Tool, res.Diagnostic()))
	}
	return ok()
}

func (o *Orchestrator) assignIdentity(ctx context.Context, a *attempt) outcome {
	if a.req.AssignedIdentity != "" {
		id, err := NormalizeIdentity(a.req.AssignedIdentity)
		if err != nil {
			return fatal("Invalid assigned identity", err.Error())
		}
		a.identity = id
		o.recordCallerIdentity(ctx, a)
		return ok()
	}

	if o.registry != nil && a.req.DeviceAddress != "" {
		prev, err := o.registry.ByAddress(ctx, a.req.DeviceAddress)
		switch {
		case err == nil:
			a.identity = prev.Identity
			a.logger.Info().Str("identity", a.identity).Msg("Reusing identity mapped to device")
			return ok()
		case !errors.Is(err, db.ErrIdentityNotFound):
			a.logger.Warn().Err(err).Msg("Identity registry lookup failed")
		}
	}

	for i := 0; i < maxIdentityAttempts; i++ {
		id := o.newIdentity()
		if o.registry == nil {
			a.identity = id
			break
		}
		reserved, err := o.registry.Reserve(ctx, id, a.req.DeviceAddress)
		if err != nil {
			a.logger.Warn().Err(err).Msg("Identity registry unavailable, using unchecked identity")
			a.identity = id
			break
		}
		if reserved {
			a.identity = id
			a.reserved = true
			break
		}
		a.logger.Warn().Str("identity", id).Msg("Generated identity already issued, regenerating")
	}
	if a.identity == "" {
		return fatal("Could not allocate a unique identity", fmt.Sprintf("%d generated identities collided", maxIdentityAttempts))
	}

	a.logger.Info().Str("identity", a.identity).Msg("Generated device identity")
	return ok()
}

// recordCallerIdentity records a caller-supplied identity. Re-commissioning
// the same device is legitimate; an identity on record for another device
// only warns.
func (o *Orchestrator) recordCallerIdentity(ctx context.Context, a *attempt) {
	if o.registry == nil {
		return
	}
	prev, err := o.registry.Get(ctx, a.identity)
	switch {
	case err == nil:
		if prev.DeviceAddress != a.req.DeviceAddress {
			a.logger.Warn().
				Str("identity", a.identity).
				Str("issued_to", prev.DeviceAddress).
				Msg("Caller-supplied identity was issued to a different device")
		}
		return
	case !errors.Is(err, db.ErrIdentityNotFound):
		a.logger.Warn().Err(err).Msg("Identity registry unavailable")
		return
	}

	reserved, err := o.registry.Reserve(ctx, a.identity, a.req.DeviceAddress)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Identity registry unavailable")
		return
	}
	a.reserved = reserved
}

// PairingCommand builds the pairing invocation. Secrets are redacted from logs.
func (o *Orchestrator) PairingCommand(req device.CommissioningRequest, identity string) runner.Command {
	return runner.Command{
		Program: o.config.Tool,
		Args: []string{
			"pairing", "ble-wifi",
			req.Discriminator,
			req.Passcode,
			req.NetworkName,
			req.NetworkSecret,
			"--bypass-attestation-verifier", "true",
			"--node-id", "0x" + identity,
		},
		Timeout: o.config.PairingTimeout,
		Redact:  []string{req.NetworkSecret, req.Passcode},
	}
}

func (o *Orchestrator) pair(ctx context.Context, a *attempt) outcome {
	cmd := o.PairingCommand(a.req, a.identity)
	a.logger.Info().Str("command", cmd.String()).Msg("Executing pairing command")

	res := o.runner.Run(ctx, cmd)
	if !res.Succeeded {
		return fatal("Commissioning failed", res.Diagnostic())
	}
	return ok()
}

func (o *Orchestrator) verify(ctx context.Context, a *attempt) outcome {
	probe := o.TestConnection(ctx, a.identity)
	if !probe.Succeeded {
		return degraded("Device commissioned but connection test failed: " + probe.ErrorDetail)
	}
	return ok()
}

func (o *Orchestrator) handOff(ctx context.Context, a *attempt) outcome {
	host, user := a.req.ControllerHost, a.req.ControllerUser
	if host == "" {
		host = o.config.ControllerHost
	}
	if user == "" {
		user = o.config.ControllerUser
	}
	if host == "" {
		return degraded("No controller host configured, hand-off skipped")
	}
	if !o.TransferToController(ctx, a.identity, host, user) {
		return degraded("Failed to transfer device to controller " + host + ", but commissioning was successful")
	}
	return ok()
}

// IsToolAvailable probes the pairing tool's version command.
func (o *Orchestrator) IsToolAvailable(ctx context.Context) bool {
	return o.runner.Run(ctx, runner.Cmd(o.config.Tool, "--version")).Succeeded
}

// TestConnection reads the on/off attribute of the device with the given
// identity, passed unprefixed. Success is decided by the exit code alone.
func (o *Orchestrator) TestConnection(ctx context.Context, identity string) device.ProbeResult {
	o.logger.Info().Str("identity", identity).Msg("Testing device connection")

	nodeID := identity
	if id, err := NormalizeIdentity(identity); err == nil {
		nodeID = id
	}

	res := o.runner.Run(ctx, runner.Cmd(o.config.Tool, "onoff", "read", "on-off", nodeID, strconv.Itoa(o.config.Endpoint)))
	probe := device.ProbeResult{
		Succeeded:   res.Succeeded,
		Message:     "Device connection test successful",
		CompletedAt: time.Now(),
	}
	if !res.Succeeded {
		probe.Message = "Device connection test failed"
		probe.ErrorDetail = res.Diagnostic()
	}
	return probe
}

// HandOffCommand builds the remote-shell connectivity probe.
func (o *Orchestrator) HandOffCommand(host, user string) runner.Command {
	target := host
	if user != "" {
		target = user + "@" + host
	}
	args := []string{
		"-o", "BatchMode=yes",
		"-o", "ConnectTimeout=" + strconv.Itoa(int(o.config.ConnectTimeout/time.Second)),
	}
	if o.config.SSHKeyPath != "" {
		args = append(args, "-i", o.config.SSHKeyPath)
	}
	args = append(args, target, "echo", handOffMarker)
	return runner.Command{
		Program: o.config.SSHTool,
		Args:    args,
		Timeout: o.config.ConnectTimeout + 5*time.Second,
	}
}

// TransferToController probes the controller host under the given user.
func (o *Orchestrator) TransferToController(ctx context.Context, identity, host, user string) bool {
	o.logger.Info().Str("identity", identity).Str("host", host).Msg("Transferring device to controller")

	res := o.runner.Run(ctx, o.HandOffCommand(host, user))
	if !res.Succeeded {
		o.logger.Warn().Str("host", host).Str("error", res.Diagnostic()).Msg("Controller hand-off probe failed")
	}
	return res.Succeeded
}

type discard struct{}

func (discard) Publish(device.Event) {}
