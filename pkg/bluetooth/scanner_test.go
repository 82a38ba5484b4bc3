package bluetooth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/commissioner/pkg/device"
	"github.com/urmzd/commissioner/pkg/events"
	"github.com/urmzd/commissioner/pkg/runner"
)

func availableAdapter() *runner.Fake {
	return runner.NewFake().
		Respond(runner.OK("bluetoothctl: 5.66\n"), "bluetoothctl", "--version").
		Respond(runner.OK("Controller 00:1A:7D:DA:71:13 host [default]\n"), "bluetoothctl", "list")
}

type sleepRecorder struct {
	slept []time.Duration
	err   error
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.slept = append(s.slept, d)
	return s.err
}

func newScanner(fake *runner.Fake, rec *events.Recorder, sleeper *sleepRecorder) *Scanner {
	return NewScanner(fake, rec, zerolog.Nop(), WithSleep(sleeper.sleep))
}

func TestIsAdapterAvailable(t *testing.T) {
	tests := []struct {
		name string
		fake *runner.Fake
		want bool
	}{
		{"available", availableAdapter(), true},
		{"tool missing", runner.NewFake(), false},
		{
			"list fails",
			runner.NewFake().
				Respond(runner.OK("5.66"), "bluetoothctl", "--version").
				Respond(runner.Fail(1, "dbus error"), "bluetoothctl", "list"),
			false,
		},
		{
			"no controller in listing",
			runner.NewFake().
				Respond(runner.OK("5.66"), "bluetoothctl", "--version").
				Respond(runner.OK(""), "bluetoothctl", "list"),
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScanner(tt.fake, nil, zerolog.Nop())
			assert.Equal(t, tt.want, s.IsAdapterAvailable(context.Background()))
		})
	}
}

func TestScan_EndToEnd(t *testing.T) {
	fake := availableAdapter().
		Respond(runner.OK(""), "bluetoothctl", "scan", "on").
		Respond(runner.OK(""), "bluetoothctl", "scan", "off").
		Respond(runner.OK("Device AA:BB:CC:DD:EE:01 Kitchen Bulb\nDevice AA:BB:CC:DD:EE:02 Unknown Tag\n"), "bluetoothctl", "devices")
	rec := &events.Recorder{}
	sleeper := &sleepRecorder{}

	devices, err := newScanner(fake, rec, sleeper).Scan(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, devices, 2)
	assert.True(t, devices[0].IsTarget)
	assert.False(t, devices[1].IsTarget)

	discovered := rec.Devices()
	require.Len(t, discovered, 2)
	assert.Equal(t, "AA:BB:CC:DD:EE:01", discovered[0].Address)
	assert.Equal(t, "AA:BB:CC:DD:EE:02", discovered[1].Address)
	assert.Empty(t, rec.OfKind(device.EventScanError))

	assert.Equal(t, []time.Duration{7 * time.Second}, sleeper.slept)
	assert.Equal(t, []string{
		"bluetoothctl --version",
		"bluetoothctl list",
		"bluetoothctl scan on",
		"bluetoothctl scan off",
		"bluetoothctl devices",
	}, fake.Lines())
}

func TestScan_StopFailureIsNotFatal(t *testing.T) {
	fake := availableAdapter().
		Respond(runner.OK(""), "bluetoothctl", "scan", "on").
		Respond(runner.Fail(1, "Failed to stop discovery"), "bluetoothctl", "scan", "off").
		Respond(runner.OK("Device AA:01 Smart Plug\n"), "bluetoothctl", "devices")
	rec := &events.Recorder{}

	devices, err := newScanner(fake, rec, &sleepRecorder{}).Scan(context.Background(), 1)

	require.NoError(t, err)
	assert.Len(t, devices, 1)
}

func TestScan_AdapterUnavailable(t *testing.T) {
	fake := runner.NewFake()
	rec := &events.Recorder{}

	devices, err := newScanner(fake, rec, &sleepRecorder{}).Scan(context.Background(), 5)

	assert.Nil(t, devices)
	assert.True(t, errors.Is(err, device.ErrAdapterUnavailable))
	scanErrs := rec.OfKind(device.EventScanError)
	require.Len(t, scanErrs, 1)
	assert.Contains(t, scanErrs[0].Error, "adapter unavailable")
	assert.NotContains(t, fake.Lines(), "bluetoothctl scan on")
}

func TestScan_StartFailure(t *testing.T) {
	fake := availableAdapter().
		Respond(runner.Fail(1, "org.bluez.Error.NotReady"), "bluetoothctl", "scan", "on")
	rec := &events.Recorder{}

	_, err := newScanner(fake, rec, &sleepRecorder{}).Scan(context.Background(), 5)

	assert.True(t, errors.Is(err, device.ErrProbeFailed))
	assert.Contains(t, err.Error(), "NotReady")
	assert.Len(t, rec.OfKind(device.EventScanError), 1)
}

func TestScan_ListingFailure(t *testing.T) {
	fake := availableAdapter().
		Respond(runner.OK(""), "bluetoothctl", "scan", "on").
		Respond(runner.OK(""), "bluetoothctl", "scan", "off").
		Respond(runner.Fail(1, "boom"), "bluetoothctl", "devices")
	rec := &events.Recorder{}

	_, err := newScanner(fake, rec, &sleepRecorder{}).Scan(context.Background(), 0)

	assert.True(t, errors.Is(err, device.ErrProbeFailed))
	assert.Empty(t, rec.Devices())
}

func TestScan_CancelledDwellStillStopsScan(t *testing.T) {
	fake := availableAdapter().
		Respond(runner.OK(""), "bluetoothctl", "scan", "on").
		Respond(runner.OK(""), "bluetoothctl", "scan", "off")
	rec := &events.Recorder{}
	sleeper := &sleepRecorder{err: context.Canceled}

	_, err := newScanner(fake, rec, sleeper).Scan(context.Background(), 30)

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Contains(t, fake.Lines(), "bluetoothctl scan off")
	assert.NotContains(t, fake.Lines(), "bluetoothctl devices")
}

func TestScan_RealDwellHonorsContext(t *testing.T) {
	fake := availableAdapter().
		Respond(runner.OK(""), "bluetoothctl", "scan", "on").
		Respond(runner.OK(""), "bluetoothctl", "scan", "off")
	s := NewScanner(fake, nil, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := s.Scan(ctx, 30)

	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDeviceInfo(t *testing.T) {
	fake := runner.NewFake().
		Respond(runner.OK("\tName: Smart Socket\n\tRSSI: -42\n\tConnected: no\n"), "bluetoothctl", "info", "AA:01")
	s := NewScanner(fake, nil, zerolog.Nop())

	d, err := s.DeviceInfo(context.Background(), "AA:01")
	require.NoError(t, err)
	assert.Equal(t, "Smart Socket", d.Name)
	assert.Equal(t, -42, d.RSSI)
	assert.True(t, d.IsTarget)

	_, err = s.DeviceInfo(context.Background(), "BB:02")
	assert.True(t, errors.Is(err, device.ErrNotFound))
}

func TestConnectDisconnect(t *testing.T) {
	fake := runner.NewFake().
		Respond(runner.OK("Connection successful"), "bluetoothctl", "connect", "AA:01").
		Respond(runner.Fail(1, "not connected"), "bluetoothctl", "disconnect", "AA:01")
	s := NewScanner(fake, nil, zerolog.Nop(), WithTool(""))

	assert.True(t, s.Connect(context.Background(), "AA:01"))
	assert.False(t, s.Disconnect(context.Background(), "AA:01"))
}

func TestWithTool(t *testing.T) {
	fake := runner.NewFake().
		Respond(runner.OK(""), "/opt/bluez/bin/bluetoothctl", "connect", "AA:01")
	s := NewScanner(fake, nil, zerolog.Nop(), WithTool("/opt/bluez/bin/bluetoothctl"))

	assert.True(t, s.Connect(context.Background(), "AA:01"))
}
