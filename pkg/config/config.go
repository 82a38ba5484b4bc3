// Package config loads commissioner settings from a YAML file, an optional
// .env file and COMMISSIONER_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "COMMISSIONER_"

// Config is the complete commissioner configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Bluetooth  BluetoothConfig  `yaml:"bluetooth"`
	Matter     MatterConfig     `yaml:"matter"`
	Controller ControllerConfig `yaml:"controller"`
	Runner     RunnerConfig     `yaml:"runner"`
	Storage    StorageConfig    `yaml:"storage"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// BluetoothConfig holds scanner settings.
type BluetoothConfig struct {
	Tool         string `yaml:"tool"`
	ScanDuration int    `yaml:"scan_duration"` // seconds
}

// MatterConfig holds pairing tool settings.
type MatterConfig struct {
	Tool     string `yaml:"tool"`
	Endpoint int    `yaml:"endpoint"`
}

// ControllerConfig holds hand-off defaults.
type ControllerConfig struct {
	Host           string        `yaml:"host"`
	User           string        `yaml:"user"`
	SSHTool        string        `yaml:"ssh_tool"`
	SSHKeyPath     string        `yaml:"ssh_key_path"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// RunnerConfig holds subprocess timeouts.
type RunnerConfig struct {
	Timeout        time.Duration `yaml:"timeout"`
	PairingTimeout time.Duration `yaml:"pairing_timeout"`
}

// StorageConfig locates the identity registry.
type StorageConfig struct {
	Path     string `yaml:"path"`
	Disabled bool   `yaml:"disabled"`
}

// MQTTConfig configures the optional event bridge. An empty Broker disables it.
type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // Optional rotating log file
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			CORSOrigins: []string{"*"},
		},
		Bluetooth: BluetoothConfig{
			Tool:         "bluetoothctl",
			ScanDuration: 10,
		},
		Matter: MatterConfig{
			Tool:     "chip-tool",
			Endpoint: 1,
		},
		Controller: ControllerConfig{
			SSHTool:        "ssh",
			ConnectTimeout: 10 * time.Second,
		},
		Runner: RunnerConfig{
			Timeout:        30 * time.Second,
			PairingTimeout: 180 * time.Second,
		},
		MQTT: MQTTConfig{
			ClientID:    "commissioner",
			TopicPrefix: "commissioner",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// SearchPaths lists where Load looks for a config file when none is given.
func SearchPaths() []string {
	paths := []string{"./config.yaml", "./config.yml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".commissioner", "config.yaml"),
			filepath.Join(home, ".commissioner", "config.yml"),
		)
	}
	return paths
}

// Load builds the configuration. An explicit path must exist; without one
// the first file found in SearchPaths is used, and none at all means
// defaults. A .env file in the working directory is loaded before the
// environment overrides are applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		for _, p := range SearchPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	// Missing .env is fine.
	_ = godotenv.Load()

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides fields from COMMISSIONER_<SECTION>_<KEY> variables.
func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"SERVER_HOST":             &cfg.Server.Host,
		"BLUETOOTH_TOOL":          &cfg.Bluetooth.Tool,
		"MATTER_TOOL":             &cfg.Matter.Tool,
		"CONTROLLER_HOST":         &cfg.Controller.Host,
		"CONTROLLER_USER":         &cfg.Controller.User,
		"CONTROLLER_SSH_TOOL":     &cfg.Controller.SSHTool,
		"CONTROLLER_SSH_KEY_PATH": &cfg.Controller.SSHKeyPath,
		"STORAGE_PATH":            &cfg.Storage.Path,
		"MQTT_BROKER":             &cfg.MQTT.Broker,
		"MQTT_CLIENT_ID":          &cfg.MQTT.ClientID,
		"MQTT_USERNAME":           &cfg.MQTT.Username,
		"MQTT_PASSWORD":           &cfg.MQTT.Password,
		"MQTT_TOPIC_PREFIX":       &cfg.MQTT.TopicPrefix,
		"LOG_LEVEL":               &cfg.Log.Level,
		"LOG_FILE":                &cfg.Log.File,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"SERVER_PORT":             &cfg.Server.Port,
		"BLUETOOTH_SCAN_DURATION": &cfg.Bluetooth.ScanDuration,
		"MATTER_ENDPOINT":         &cfg.Matter.Endpoint,
	}
	for key, dst := range ints {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = n
		}
	}

	durations := map[string]*time.Duration{
		"CONTROLLER_CONNECT_TIMEOUT": &cfg.Controller.ConnectTimeout,
		"RUNNER_TIMEOUT":             &cfg.Runner.Timeout,
		"RUNNER_PAIRING_TIMEOUT":     &cfg.Runner.PairingTimeout,
	}
	for key, dst := range durations {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = d
		}
	}

	if v, ok := os.LookupEnv(EnvPrefix + "STORAGE_DISABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sSTORAGE_DISABLED: %w", EnvPrefix, err)
		}
		cfg.Storage.Disabled = b
	}
	if v, ok := os.LookupEnv(EnvPrefix + "SERVER_CORS_ORIGINS"); ok {
		cfg.Server.CORSOrigins = splitList(v)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Bluetooth.Tool == "" {
		errs = append(errs, errors.New("bluetooth.tool is required"))
	}
	if c.Bluetooth.ScanDuration < 1 {
		errs = append(errs, fmt.Errorf("bluetooth.scan_duration must be positive, got %d", c.Bluetooth.ScanDuration))
	}
	if c.Matter.Tool == "" {
		errs = append(errs, errors.New("matter.tool is required"))
	}
	if c.Matter.Endpoint < 0 {
		errs = append(errs, fmt.Errorf("matter.endpoint must not be negative, got %d", c.Matter.Endpoint))
	}
	if c.Runner.Timeout <= 0 {
		errs = append(errs, errors.New("runner.timeout must be positive"))
	}
	if c.Runner.PairingTimeout <= 0 {
		errs = append(errs, errors.New("runner.pairing_timeout must be positive"))
	}
	if c.Controller.ConnectTimeout < 0 {
		errs = append(errs, errors.New("controller.connect_timeout must not be negative"))
	}
	return errors.Join(errs...)
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
