package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "bluetoothctl", cfg.Bluetooth.Tool)
	assert.Equal(t, "chip-tool", cfg.Matter.Tool)
	assert.Equal(t, 30*time.Second, cfg.Runner.Timeout)
	assert.Equal(t, 180*time.Second, cfg.Runner.PairingTimeout)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
bluetooth:
  scan_duration: 15
matter:
  tool: /usr/local/bin/chip-tool
controller:
  host: 192.168.0.107
  user: pi
  ssh_key_path: ~/.ssh/id_ed25519
  connect_timeout: 5s
runner:
  pairing_timeout: 4m
mqtt:
  broker: tcp://localhost:1883
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "unset keys keep defaults")
	assert.Equal(t, 15, cfg.Bluetooth.ScanDuration)
	assert.Equal(t, "/usr/local/bin/chip-tool", cfg.Matter.Tool)
	assert.Equal(t, "192.168.0.107", cfg.Controller.Host)
	assert.Equal(t, 5*time.Second, cfg.Controller.ConnectTimeout)
	assert.Equal(t, 4*time.Minute, cfg.Runner.PairingTimeout)
	assert.Equal(t, 30*time.Second, cfg.Runner.Timeout)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("COMMISSIONER_SERVER_PORT", "7070")
	t.Setenv("COMMISSIONER_CONTROLLER_HOST", "controller.local")
	t.Setenv("COMMISSIONER_RUNNER_TIMEOUT", "45s")
	t.Setenv("COMMISSIONER_STORAGE_DISABLED", "true")
	t.Setenv("COMMISSIONER_SERVER_CORS_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "controller.local", cfg.Controller.Host)
	assert.Equal(t, 45*time.Second, cfg.Runner.Timeout)
	assert.True(t, cfg.Storage.Disabled)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("COMMISSIONER_SERVER_PORT", "eighty")

	_, err := Load(writeConfig(t, ""))
	assert.ErrorContains(t, err, "COMMISSIONER_SERVER_PORT")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unterminated"))
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 0
	cfg.Matter.Tool = ""
	cfg.Runner.PairingTimeout = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "matter.tool")
	assert.Contains(t, err.Error(), "runner.pairing_timeout")
}
