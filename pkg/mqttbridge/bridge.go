// Package mqttbridge forwards commissioner events to an MQTT broker.
package mqttbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/urmzd/commissioner/pkg/device"
)

// Config holds broker connection settings.
type Config struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

const publishTimeout = 5 * time.Second

// Connect dials the broker with auto-reconnect enabled.
func Connect(cfg Config, logger zerolog.Logger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Info().Str("broker", cfg.Broker).Msg("MQTT connection established")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn().Err(err).Msg("MQTT connection lost")
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return client, nil
}

// SendFunc delivers one payload to a topic.
type SendFunc func(topic string, payload []byte) error

// Bridge drains an event subscription into MQTT topics.
type Bridge struct {
	send   SendFunc
	prefix string
	logger zerolog.Logger
}

// NewBridge creates a Bridge publishing through client at QoS 1.
func NewBridge(client mqtt.Client, prefix string, logger zerolog.Logger) *Bridge {
	return NewBridgeFunc(func(topic string, payload []byte) error {
		token := client.Publish(topic, 1, false, payload)
		if !token.WaitTimeout(publishTimeout) {
			return fmt.Errorf("publish to %s timed out", topic)
		}
		return token.Error()
	}, prefix, logger)
}

// NewBridgeFunc creates a Bridge around an arbitrary sender.
func NewBridgeFunc(send SendFunc, prefix string, logger zerolog.Logger) *Bridge {
	return &Bridge{
		send:   send,
		prefix: strings.TrimSuffix(prefix, "/"),
		logger: logger.With().Str("component", "mqttbridge").Logger(),
	}
}

// Run forwards events until ctx is done or the subscription closes.
func (b *Bridge) Run(ctx context.Context, sub device.EventSubscriber) {
	ch := sub.Subscribe()
	defer sub.Unsubscribe(ch)

	b.logger.Info().Str("prefix", b.prefix).Msg("MQTT bridge started")
	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("MQTT bridge stopped")
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if err := b.Forward(evt); err != nil {
				b.logger.Warn().Err(err).Str("kind", string(evt.Kind)).Msg("Failed to forward event")
			}
		}
	}
}

// Forward publishes one event. Events without a topic are skipped.
func (b *Bridge) Forward(evt device.Event) error {
	topic, ok := Topic(b.prefix, evt)
	if !ok {
		return nil
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return b.send(topic, payload)
}

// Topic returns the topic an event is published on.
func Topic(prefix string, evt device.Event) (string, bool) {
	switch evt.Kind {
	case device.EventDeviceDiscovered:
		if evt.Device == nil {
			return "", false
		}
		return prefix + "/discovered/" + topicSegment(evt.Device.Address), true
	case device.EventProgress:
		if evt.Progress == nil {
			return "", false
		}
		return prefix + "/progress/" + topicSegment(evt.Progress.SessionID), true
	case device.EventScanError:
		return prefix + "/scan_error", true
	}
	return "", false
}

// topicSegment strips MQTT separators and wildcards from one level.
func topicSegment(s string) string {
	if s == "" {
		return "_"
	}
	return strings.NewReplacer("/", "_", "+", "_", "#", "_").Replace(s)
}
