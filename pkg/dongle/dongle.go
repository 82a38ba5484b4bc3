// Package dongle finds USB radio dongles attached as serial devices.
package dongle

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Dongle is one recognized USB radio attached to the host.
type Dongle struct {
	Port         string `json:"port"`
	VendorID     string `json:"vendor_id"`
	ProductID    string `json:"product_id"`
	Vendor       string `json:"vendor"`
	Product      string `json:"product,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	Openable     bool   `json:"openable"` // Port opened at 115200 8N1 during detection
}

// knownVendors maps USB vendor ids to radio dongle makers.
var knownVendors = map[string]string{
	"1915": "Nordic Semiconductor",
	"10C4": "Silicon Labs",
	"0451": "Texas Instruments",
	"1A86": "QinHeng Electronics",
	"0BDA": "Realtek",
}

// ListFunc enumerates serial ports.
type ListFunc func() ([]*enumerator.PortDetails, error)

// ProbeFunc checks that a port can be opened.
type ProbeFunc func(portName string) error

// Detector reports attached dongles.
type Detector struct {
	list   ListFunc
	probe  ProbeFunc
	logger zerolog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithProbe replaces the port open check.
func WithProbe(fn ProbeFunc) Option {
	return func(d *Detector) {
		d.probe = fn
	}
}

// NewDetector creates a Detector. A nil list uses the system enumerator.
func NewDetector(list ListFunc, logger zerolog.Logger, opts ...Option) *Detector {
	if list == nil {
		list = enumerator.GetDetailedPortsList
	}
	d := &Detector{
		list:   list,
		probe:  Probe,
		logger: logger.With().Str("component", "dongle").Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect lists recognized dongles sorted by port name and reports whether
// each one can be opened.
func (d *Detector) Detect() ([]Dongle, error) {
	ports, err := d.list()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}
	found := Filter(ports)
	for i := range found {
		if err := d.probe(found[i].Port); err != nil {
			d.logger.Debug().Err(err).Str("port", found[i].Port).Msg("Dongle port not openable")
			continue
		}
		found[i].Openable = true
	}
	d.logger.Debug().Int("ports", len(ports)).Int("dongles", len(found)).Msg("Enumerated serial ports")
	return found, nil
}

// Filter keeps USB ports whose vendor id belongs to a known radio maker.
func Filter(ports []*enumerator.PortDetails) []Dongle {
	var out []Dongle
	for _, p := range ports {
		if p == nil || !p.IsUSB {
			continue
		}
		vid := strings.ToUpper(p.VID)
		vendor, ok := knownVendors[vid]
		if !ok {
			continue
		}
		out = append(out, Dongle{
			Port:         p.Name,
			VendorID:     vid,
			ProductID:    strings.ToUpper(p.PID),
			Vendor:       vendor,
			Product:      p.Product,
			SerialNumber: p.SerialNumber,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Port < out[j].Port })
	return out
}

// Probe opens the port at 115200 8N1 and closes it again.
func Probe(portName string) error {
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return fmt.Errorf("open serial port %s: %w", portName, err)
	}
	return port.Close()
}
