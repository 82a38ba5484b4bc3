package device

import (
	"time"
)

// DiscoveredDevice is one radio peer found during a scan pass. Values are
// created fresh per scan and never persisted.
type DiscoveredDevice struct {
	Address    string            `json:"address"`              // Hardware address (MAC), the natural key
	Name       string            `json:"name"`                 // Advertised name, "Unknown" when absent
	RSSI       int               `json:"rssi"`                 // Received signal strength, RSSIUnknown when not reported
	Kind       string            `json:"kind"`                 // Always KindShortRangeRadio today
	Connected  bool              `json:"connected"`            // Last known connection state
	IsTarget   bool              `json:"is_target"`            // Name matched a commissioning keyword
	Attributes map[string]string `json:"attributes,omitempty"` // Adapter fields without a typed home
}

// CommissioningRequest describes one pairing intent. The orchestrator owns it
// for the duration of a single run.
type CommissioningRequest struct {
	DeviceName       string `json:"device_name"`
	DeviceAddress    string `json:"device_address"`
	NetworkName      string `json:"network_name"`
	NetworkSecret    string `json:"network_secret"`
	Passcode         string `json:"passcode"`
	Discriminator    string `json:"discriminator"`
	AssignedIdentity string `json:"assigned_identity,omitempty"` // 16 uppercase hex digits; generated when empty
	ControllerHost   string `json:"controller_host"`
	ControllerUser   string `json:"controller_user"`
}

// CommissioningResult is the terminal outcome of a commissioning run.
type CommissioningResult struct {
	SessionID        string    `json:"session_id,omitempty"`
	Succeeded        bool      `json:"succeeded"`
	Message          string    `json:"message"`
	AssignedIdentity string    `json:"assigned_identity,omitempty"`
	ErrorDetail      string    `json:"error_detail,omitempty"`
	Warnings         []string  `json:"warnings,omitempty"`
	CompletedAt      time.Time `json:"completed_at"`
}

// CommissioningProgress is a point-in-time snapshot emitted once per step.
type CommissioningProgress struct {
	SessionID    string `json:"session_id,omitempty"`
	Percent      int    `json:"percent"`
	Message      string `json:"message"`
	IsFinal      bool   `json:"is_final"`
	Failed       bool   `json:"failed"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// ProbeResult is the outcome of a single standalone probe such as a
// connectivity test or a controller hand-off.
type ProbeResult struct {
	Succeeded   bool      `json:"succeeded"`
	Message     string    `json:"message"`
	ErrorDetail string    `json:"error_detail,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

// EventKind tags the payload carried by an Event.
type EventKind string

// Event kinds
const (
	EventDeviceDiscovered EventKind = "device_discovered"
	EventProgress         EventKind = "progress"
	EventScanError        EventKind = "scan_error"
)

// Event is published on the event channel. Exactly one of Device, Progress
// or Error is set, matching Kind.
type Event struct {
	Kind      EventKind              `json:"kind"`
	Device    *DiscoveredDevice      `json:"device,omitempty"`
	Progress  *CommissioningProgress `json:"progress,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// DeviceDiscovered builds a discovery event.
func DeviceDiscovered(d DiscoveredDevice) Event {
	return Event{Kind: EventDeviceDiscovered, Device: &d, Timestamp: time.Now()}
}

// Progress builds a progress event.
func Progress(p CommissioningProgress) Event {
	return Event{Kind: EventProgress, Progress: &p, Timestamp: time.Now()}
}

// ScanError builds an out-of-band scan error event.
func ScanError(message string) Event {
	return Event{Kind: EventScanError, Error: message, Timestamp: time.Now()}
}

const (
	// KindShortRangeRadio is the only device kind the scanner produces.
	KindShortRangeRadio = "short-range-radio"

	// RSSIUnknown is the sentinel used when the adapter reports no signal strength.
	RSSIUnknown = -100

	// UnknownName is used when the adapter reports no device name.
	UnknownName = "Unknown"
)
