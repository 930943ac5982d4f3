package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, 250*time.Millisecond, cfg.Sampling.Interval)
	assert.Equal(t, 500*time.Millisecond, cfg.Sampling.DisplayInterval)
	assert.Equal(t, 10, cfg.Sampling.Window)
	assert.Equal(t, float32(35.0), cfg.Alarm.Threshold)
	assert.Equal(t, float32(0.5), cfg.Alarm.Step)
	assert.Equal(t, float32(-10.0), cfg.Alarm.Min)
	assert.Equal(t, float32(5.0), cfg.Sensor.VRef)
	assert.Equal(t, 10, cfg.Sensor.Resolution)
	assert.Equal(t, 1800, cfg.Buzzer.AlarmHz)
	assert.Equal(t, 2000, cfg.Buzzer.ConfirmHz)
	assert.Equal(t, 80*time.Millisecond, cfg.Buzzer.Confirm)
	assert.Equal(t, uint16(0x1234), cfg.Storage.Magic)
	assert.False(t, cfg.Display.Enabled)
	assert.Equal(t, 16, cfg.Display.Columns)
	assert.Equal(t, 2, cfg.Display.Rows)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, float32(35.0), cfg.Alarm.Threshold)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
log:
  env: prod
  level: debug

sampling:
  interval: 100ms
  display_interval: 1s
  window: 5

alarm:
  threshold: 28.5
  step: 0.25
  min: -20

sensor:
  vref: 3.3
  resolution: 12

buzzer:
  alarm_hz: 1500
  confirm: 50ms

buttons:
  debounce: 30ms

display:
  enabled: true
  fahrenheit: true

storage:
  path: /var/lib/tempmon/eeprom.bin
  magic: 0xBEEF

serial:
  port: "/dev/ttyACM0"
  baud_rate: 115200
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Log.Env)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 100*time.Millisecond, cfg.Sampling.Interval)
	assert.Equal(t, time.Second, cfg.Sampling.DisplayInterval)
	assert.Equal(t, 5, cfg.Sampling.Window)
	assert.Equal(t, float32(28.5), cfg.Alarm.Threshold)
	assert.Equal(t, float32(0.25), cfg.Alarm.Step)
	assert.Equal(t, float32(-20), cfg.Alarm.Min)
	assert.Equal(t, float32(3.3), cfg.Sensor.VRef)
	assert.Equal(t, 12, cfg.Sensor.Resolution)
	assert.Equal(t, 1500, cfg.Buzzer.AlarmHz)
	assert.Equal(t, 2000, cfg.Buzzer.ConfirmHz) // default
	assert.Equal(t, 50*time.Millisecond, cfg.Buzzer.Confirm)
	assert.Equal(t, 30*time.Millisecond, cfg.Buttons.Debounce)
	assert.True(t, cfg.Display.Enabled)
	assert.True(t, cfg.Display.Fahrenheit)
	assert.Equal(t, 16, cfg.Display.Columns) // default
	assert.Equal(t, "/var/lib/tempmon/eeprom.bin", cfg.Storage.Path)
	assert.Equal(t, uint16(0xBEEF), cfg.Storage.Magic)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
alarm:
  threshold: 0
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	// Zero threshold is a valid setting and must survive ensureDefaults
	assert.Equal(t, float32(0), cfg.Alarm.Threshold)
	assert.Equal(t, float32(-10), cfg.Alarm.Min)                      // default
	assert.Equal(t, 250*time.Millisecond, cfg.Sampling.Interval)      // default
	assert.Equal(t, 10, cfg.Sampling.Window)                          // default
	assert.Equal(t, "tempmon.eeprom", cfg.Storage.Path)               // default
	assert.Equal(t, 80*time.Millisecond, cfg.Buzzer.Confirm)          // default
	assert.Equal(t, time.Duration(0), cfg.Buttons.Debounce)           // default
	assert.Equal(t, "GPIO17", cfg.Hardware.UpPin)                     // default
	assert.Equal(t, 30*time.Second, cfg.Sim.TimeConst)                // default
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Alarm.Threshold = 41.5

	filename := t.TempDir() + "/config.yaml"

	err := cfg.Save(filename)
	require.NoError(t, err)

	loaded, err := Load(filename)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, float32(41.5), loaded.Alarm.Threshold)
	assert.Equal(t, cfg.Sampling, loaded.Sampling)
}
