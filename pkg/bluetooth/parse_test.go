package bluetooth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/commissioner/pkg/device"
)

func TestIsTargetClass(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Smart Socket Plug", true},
		{"SMART SOCKET", true},
		{"Kitchen Bulb", true},
		{"NOUS A8M", true},
		{"matter-light", true},
		{"Wall Switch", true},
		{"Random BLE Tag", false},
		{"Unknown", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTargetClass(tt.name))
		})
	}
}

func TestParseDevices(t *testing.T) {
	output := "Device AA:BB:CC:DD:EE:01 Kitchen Bulb\n" +
		"Device AA:BB:CC:DD:EE:02 Unknown Tag\r\n" +
		"Controller 00:11:22:33:44:55 host [default]\n" +
		"Device AA:BB:CC:DD:EE:03\n" +
		"Device\n"

	var emitted []string
	devices := ParseDevices(output, func(d device.DiscoveredDevice) {
		emitted = append(emitted, d.Address)
	})

	require.Len(t, devices, 3)
	assert.Equal(t, []string{"AA:BB:CC:DD:EE:01", "AA:BB:CC:DD:EE:02", "AA:BB:CC:DD:EE:03"}, emitted)

	assert.Equal(t, "Kitchen Bulb", devices[0].Name)
	assert.True(t, devices[0].IsTarget)
	assert.Equal(t, device.RSSIUnknown, devices[0].RSSI)
	assert.Equal(t, device.KindShortRangeRadio, devices[0].Kind)

	assert.Equal(t, "Unknown Tag", devices[1].Name)
	assert.False(t, devices[1].IsTarget)

	assert.Equal(t, device.UnknownName, devices[2].Name)
}

func TestParseDevices_CollapsesWhitespaceInName(t *testing.T) {
	devices := ParseDevices("Device AA:01   Smart    Plug  ", nil)

	require.Len(t, devices, 1)
	assert.Equal(t, "Smart Plug", devices[0].Name)
}

func TestParseDevices_DuplicateAddressLastWins(t *testing.T) {
	output := "Device AA:01 First\nDevice BB:02 Other\nDevice AA:01 Smart Second\n"

	var events int
	devices := ParseDevices(output, func(device.DiscoveredDevice) { events++ })

	require.Len(t, devices, 2)
	assert.Equal(t, "AA:01", devices[0].Address)
	assert.Equal(t, "Smart Second", devices[0].Name)
	assert.True(t, devices[0].IsTarget)
	assert.Equal(t, "BB:02", devices[1].Address)
	assert.Equal(t, 3, events)
}

func TestParseDevices_Empty(t *testing.T) {
	var events int
	devices := ParseDevices("Agent registered\n[bluetooth]# \n", func(device.DiscoveredDevice) { events++ })

	assert.Empty(t, devices)
	assert.Zero(t, events)
}

const infoOutput = `Device AA:BB:CC:DD:EE:01 (public)
	Name: NOUS A8M Socket
	Alias: NOUS A8M Socket
	Paired: no
	Connected: Yes
	RSSI: -58
	UUID: Vendor specific           (0000fff6-0000-1000-8000-00805f9b34fb)
no colon on this line
`

func TestParseDeviceInfo(t *testing.T) {
	d := ParseDeviceInfo("AA:BB:CC:DD:EE:01", infoOutput)

	assert.Equal(t, "AA:BB:CC:DD:EE:01", d.Address)
	assert.Equal(t, "NOUS A8M Socket", d.Name)
	assert.Equal(t, -58, d.RSSI)
	assert.True(t, d.Connected)
	assert.True(t, d.IsTarget)
	assert.Equal(t, "no", d.Attributes["Paired"])
	assert.Equal(t, "NOUS A8M Socket", d.Attributes["Alias"])
	assert.NotContains(t, d.Attributes, "Device AA")
}

func TestParseDeviceInfo_Defaults(t *testing.T) {
	d := ParseDeviceInfo("AA:01", "RSSI: 0xffffffc4 (-60)\nConnected: no\n")

	assert.Equal(t, device.UnknownName, d.Name)
	assert.Equal(t, device.RSSIUnknown, d.RSSI)
	assert.False(t, d.Connected)
	assert.False(t, d.IsTarget)
}

func TestParseDeviceInfo_Idempotent(t *testing.T) {
	first := ParseDeviceInfo("AA:BB:CC:DD:EE:01", infoOutput)
	second := ParseDeviceInfo("AA:BB:CC:DD:EE:01", infoOutput)

	assert.Equal(t, first, second)
}
