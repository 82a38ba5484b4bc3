package bluetooth

import (
	"strconv"
	"strings"

	"github.com/urmzd/commissioner/pkg/device"
)

// targetKeywords mark a device name as a commissioning candidate. The match
// is permissive on purpose; the operator confirms before commissioning.
var targetKeywords = []string{"matter", "nous", "a8m", "smart", "socket", "bulb", "switch"}

// IsTargetClass reports whether name contains any target keyword,
// ignoring case.
func IsTargetClass(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range targetKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ParseDevices parses the adapter's device listing. Every line beginning
// with "Device" and carrying an address yields one device; onDevice, when
// non-nil, is called for each as it is parsed. Repeated addresses keep their
// first position and take the last parsed values.
func ParseDevices(output string, onDevice func(device.DiscoveredDevice)) []device.DiscoveredDevice {
	var devices []device.DiscoveredDevice
	index := make(map[string]int)

	for _, line := range splitLines(output) {
		if !strings.HasPrefix(line, "Device") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		name := device.UnknownName
		if len(fields) > 2 {
			name = strings.Join(fields[2:], " ")
		}

		d := device.DiscoveredDevice{
			Address:  fields[1],
			Name:     name,
			RSSI:     device.RSSIUnknown,
			Kind:     device.KindShortRangeRadio,
			IsTarget: IsTargetClass(name),
		}

		if i, ok := index[d.Address]; ok {
			devices[i] = d
		} else {
			index[d.Address] = len(devices)
			devices = append(devices, d)
		}

		if onDevice != nil {
			onDevice(d)
		}
	}

	return devices
}

// ParseDeviceInfo parses the adapter's key/value detail output for one
// address. Name, RSSI and Connected are typed; other keys land in
// Attributes. Unparseable values keep their defaults.
func ParseDeviceInfo(address, output string) device.DiscoveredDevice {
	d := device.DiscoveredDevice{
		Address: address,
		Name:    device.UnknownName,
		RSSI:    device.RSSIUnknown,
		Kind:    device.KindShortRangeRadio,
	}

	for _, line := range splitLines(output) {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch strings.ToLower(key) {
		case "name":
			d.Name = value
		case "rssi":
			if rssi, err := strconv.Atoi(value); err == nil {
				d.RSSI = rssi
			}
		case "connected":
			d.Connected = strings.EqualFold(value, "yes")
		default:
			// The header line ("Device AA:BB:... (public)") is not a field.
			if key == "" || strings.HasPrefix(key, "Device ") {
				continue
			}
			if d.Attributes == nil {
				d.Attributes = make(map[string]string)
			}
			d.Attributes[key] = value
		}
	}

	d.IsTarget = IsTargetClass(d.Name)
	return d
}

func splitLines(output string) []string {
	lines := strings.Split(output, "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.TrimRight(l, "\r")
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
