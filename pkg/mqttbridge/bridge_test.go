package mqttbridge

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/commissioner/pkg/device"
	"github.com/urmzd/commissioner/pkg/events"
)

type sent struct {
	topic   string
	payload []byte
}

type capture struct {
	mu   sync.Mutex
	msgs []sent
	err  error
}

func (c *capture) send(topic string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, sent{topic, payload})
	return c.err
}

func (c *capture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func TestTopic(t *testing.T) {
	tests := []struct {
		name string
		evt  device.Event
		want string
		ok   bool
	}{
		{"discovered", device.DeviceDiscovered(device.DiscoveredDevice{Address: "AA:BB:CC:DD:EE:01"}), "c/discovered/AA:BB:CC:DD:EE:01", true},
		{"progress", device.Progress(device.CommissioningProgress{SessionID: "s-1"}), "c/progress/s-1", true},
		{"progress without session", device.Progress(device.CommissioningProgress{}), "c/progress/_", true},
		{"wildcards stripped", device.Progress(device.CommissioningProgress{SessionID: "a/+#"}), "c/progress/a___", true},
		{"scan error", device.ScanError("adapter unavailable"), "c/scan_error", true},
		{"empty discovered", device.Event{Kind: device.EventDeviceDiscovered}, "", false},
		{"unknown kind", device.Event{Kind: "other"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Topic("c", tt.evt)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForward_Payload(t *testing.T) {
	c := &capture{}
	b := NewBridgeFunc(c.send, "commissioner/", zerolog.Nop())

	require.NoError(t, b.Forward(device.ScanError("boom")))

	require.Len(t, c.msgs, 1)
	assert.Equal(t, "commissioner/scan_error", c.msgs[0].topic)
	var evt device.Event
	require.NoError(t, json.Unmarshal(c.msgs[0].payload, &evt))
	assert.Equal(t, device.EventScanError, evt.Kind)
	assert.Equal(t, "boom", evt.Error)
}

func TestRun_ForwardsUntilCancelled(t *testing.T) {
	broker := events.NewBroker(8, zerolog.Nop())
	c := &capture{err: errors.New("broker offline")}
	b := NewBridgeFunc(c.send, "c", zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx, broker)
		close(done)
	}()

	require.Eventually(t, func() bool { return broker.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	broker.Publish(device.Progress(device.CommissioningProgress{SessionID: "s", Percent: 10}))
	broker.Publish(device.ScanError("x"))

	require.Eventually(t, func() bool { return c.count() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, 0, broker.Subscribers(), "Run must unsubscribe on exit")
}
