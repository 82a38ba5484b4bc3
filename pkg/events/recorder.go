package events

import (
	"sync"

	"github.com/urmzd/commissioner/pkg/device"
)

// Recorder is an EventPublisher that keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []device.Event
}

// Publish implements device.EventPublisher.
func (r *Recorder) Publish(evt device.Event) {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []device.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]device.Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfKind returns the recorded events with the given kind, in order.
func (r *Recorder) OfKind(kind device.EventKind) []device.Event {
	var out []device.Event
	for _, e := range r.Events() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Progress returns the recorded progress snapshots, in order.
func (r *Recorder) Progress() []device.CommissioningProgress {
	var out []device.CommissioningProgress
	for _, e := range r.OfKind(device.EventProgress) {
		out = append(out, *e.Progress)
	}
	return out
}

// Devices returns the recorded discovered devices, in order.
func (r *Recorder) Devices() []device.DiscoveredDevice {
	var out []device.DiscoveredDevice
	for _, e := range r.OfKind(device.EventDeviceDiscovered) {
		out = append(out, *e.Device)
	}
	return out
}
