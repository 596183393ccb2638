package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "butlerd.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileOverlaysDefinedKeys(t *testing.T) {
	cfg := defaultConfig()
	path := writeConfig(t, `
link = "serial:///dev/ttyUSB0?baud=115200"
tick = "20ms"
heartbeat = "10s"
mqtt = "mqtt://broker:1883/lab/"
`)
	require.NoError(t, loadFile(path, &cfg))
	require.Equal(t, "serial:///dev/ttyUSB0?baud=115200", cfg.Link)
	require.Equal(t, 20*time.Millisecond, cfg.Tick)
	require.Equal(t, 10*time.Second, cfg.Heartbeat)
	require.Equal(t, "mqtt://broker:1883/lab/", cfg.MQTT)

	// Keys the file omits keep their defaults.
	require.Equal(t, 16, cfg.QueueSize)
	require.Equal(t, time.Second, cfg.SensorInterval)
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	cfg := defaultConfig()
	path := writeConfig(t, `portname = "/dev/ttyUSB0"`)
	require.Error(t, loadFile(path, &cfg))
}

func TestLoadFileRejectsBadDuration(t *testing.T) {
	cfg := defaultConfig()
	path := writeConfig(t, `tick = "fast"`)
	require.Error(t, loadFile(path, &cfg))
}

func TestApplyEnv(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("BUTLER_LINK_URL", "tcp://robot:8421")
	t.Setenv("BUTLER_MQTT_URL", "mqtt://broker:1883/")
	t.Setenv("BUTLER_DEVICE_ID", "bench-7")
	applyEnv(&cfg)
	require.Equal(t, "tcp://robot:8421", cfg.Link)
	require.Equal(t, "mqtt://broker:1883/", cfg.MQTT)
	require.Equal(t, "bench-7", cfg.DeviceID)
}
