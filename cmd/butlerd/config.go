package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// duration lets TOML carry values like "10ms".
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	*d = duration(v)
	return err
}

// Config drives one butlerd process.
type Config struct {
	Link           string
	Tick           time.Duration
	QueueSize      int
	Heartbeat      time.Duration
	SensorInterval time.Duration
	MQTT           string
	DeviceID       string
}

func defaultConfig() Config {
	return Config{
		Link:           "tcp-listen://:8421",
		Tick:           10 * time.Millisecond,
		QueueSize:      16,
		Heartbeat:      5 * time.Second,
		SensorInterval: time.Second,
	}
}

type fileConfig struct {
	Link           string   `toml:"link"`
	Tick           duration `toml:"tick"`
	QueueSize      int      `toml:"queue_size"`
	Heartbeat      duration `toml:"heartbeat"`
	SensorInterval duration `toml:"sensor_interval"`
	MQTT           string   `toml:"mqtt"`
	DeviceID       string   `toml:"device_id"`
}

// loadFile overlays the values a TOML file defines onto cfg.
func loadFile(path string, cfg *Config) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}
	if meta.IsDefined("link") {
		cfg.Link = strings.TrimSpace(raw.Link)
	}
	if meta.IsDefined("tick") {
		cfg.Tick = time.Duration(raw.Tick)
	}
	if meta.IsDefined("queue_size") {
		cfg.QueueSize = raw.QueueSize
	}
	if meta.IsDefined("heartbeat") {
		cfg.Heartbeat = time.Duration(raw.Heartbeat)
	}
	if meta.IsDefined("sensor_interval") {
		cfg.SensorInterval = time.Duration(raw.SensorInterval)
	}
	if meta.IsDefined("mqtt") {
		cfg.MQTT = strings.TrimSpace(raw.MQTT)
	}
	if meta.IsDefined("device_id") {
		cfg.DeviceID = strings.TrimSpace(raw.DeviceID)
	}
	return nil
}

// applyEnv overlays environment overrides onto cfg.
func applyEnv(cfg *Config) {
	if val := os.Getenv("BUTLER_LINK_URL"); val != "" {
		cfg.Link = val
	}
	if val := os.Getenv("BUTLER_MQTT_URL"); val != "" {
		cfg.MQTT = val
	}
	if val := os.Getenv("BUTLER_DEVICE_ID"); val != "" {
		cfg.DeviceID = val
	}
}
