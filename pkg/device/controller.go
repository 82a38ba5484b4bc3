package device

import "context"

// Scanner discovers nearby radio peers through the local adapter.
// Callers must serialize Scan, Connect and Disconnect against one adapter.
type Scanner interface {
	// IsAdapterAvailable reports whether the adapter tool runs and lists a controller
	IsAdapterAvailable(ctx context.Context) bool

	// Scan dwells for durationSeconds and returns every device the adapter saw
	Scan(ctx context.Context, durationSeconds int) ([]DiscoveredDevice, error)

	// DeviceInfo returns details for one address, or ErrNotFound when the probe fails
	DeviceInfo(ctx context.Context, address string) (*DiscoveredDevice, error)

	// Connect opens a point-to-point link to the device
	Connect(ctx context.Context, address string) bool

	// Disconnect closes the point-to-point link
	Disconnect(ctx context.Context, address string) bool
}

// Commissioner drives the pairing pipeline against a target network.
type Commissioner interface {
	// Commission runs one commissioning attempt to a terminal result
	Commission(ctx context.Context, req CommissioningRequest, sessionID string) CommissioningResult

	// TestConnection reads the on/off attribute of a paired device
	TestConnection(ctx context.Context, identity string) ProbeResult

	// TransferToController probes the remote controller host
	TransferToController(ctx context.Context, identity, host, user string) bool

	// IsToolAvailable reports whether the pairing tool answers its version probe
	IsToolAvailable(ctx context.Context) bool
}

// EventPublisher accepts events for fan-out. Publish never blocks the caller.
type EventPublisher interface {
	Publish(event Event)
}

// EventSubscriber defines the interface for subscribing to events
type EventSubscriber interface {
	// Subscribe returns a channel that receives every event published after the call
	Subscribe() chan Event

	// Unsubscribe removes a subscription and closes its channel
	Unsubscribe(ch chan Event)
}
