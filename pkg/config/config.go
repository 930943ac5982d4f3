package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Sampling SamplingConfig `yaml:"sampling"`
	Alarm    AlarmConfig    `yaml:"alarm"`
	Sensor   SensorConfig   `yaml:"sensor"`
	Buzzer   BuzzerConfig   `yaml:"buzzer"`
	Buttons  ButtonsConfig  `yaml:"buttons"`
	Display  DisplayConfig  `yaml:"display"`
	Storage  StorageConfig  `yaml:"storage"`
	Serial   SerialConfig   `yaml:"serial"`
	Hardware HardwareConfig `yaml:"hardware"`
	Sim      SimConfig      `yaml:"sim"`
	History  HistoryConfig  `yaml:"history"`
}

// LogConfig selects the log handler and verbosity.
type LogConfig struct {
	Env   string `yaml:"env"`   // "dev" (tint console) or "prod" (JSON)
	Level string `yaml:"level"` // debug, info, warn, error
}

// SamplingConfig contains loop timing and filter parameters.
type SamplingConfig struct {
	Interval        time.Duration `yaml:"interval"`         // Sample tick
	DisplayInterval time.Duration `yaml:"display_interval"` // Display refresh tick
	Window          int           `yaml:"window"`           // Moving average window
}

// AlarmConfig contains threshold parameters.
type AlarmConfig struct {
	Threshold float32 `yaml:"threshold"` // Compiled-in default when storage is empty (°C)
	Step      float32 `yaml:"step"`      // Button adjustment step (°C)
	Min       float32 `yaml:"min"`       // Lower clamp (°C)
}

// SensorConfig contains the analog front-end transfer function.
type SensorConfig struct {
	VRef           float32 `yaml:"vref"`             // ADC reference voltage (V)
	Resolution     int     `yaml:"resolution"`       // ADC resolution in bits
	MilliVoltsPerC float32 `yaml:"millivolts_per_c"` // LM35: 10 mV/°C
}

// BuzzerConfig contains tone parameters.
type BuzzerConfig struct {
	AlarmHz   int           `yaml:"alarm_hz"`   // Continuous alarm tone
	ConfirmHz int           `yaml:"confirm_hz"` // Button confirmation beep
	Confirm   time.Duration `yaml:"confirm"`    // Confirmation beep length (blocks the loop)
}

// ButtonsConfig contains input parameters.
type ButtonsConfig struct {
	Debounce time.Duration `yaml:"debounce"` // Minimum re-trigger interval (0 = bare edge latch)
}

// DisplayConfig contains the optional display parameters.
type DisplayConfig struct {
	Enabled    bool `yaml:"enabled"`
	Columns    int  `yaml:"columns"`
	Rows       int  `yaml:"rows"`
	Fahrenheit bool `yaml:"fahrenheit"`
}

// StorageConfig contains non-volatile storage parameters.
type StorageConfig struct {
	Path  string `yaml:"path"`  // File backing the EEPROM image on the host
	Magic uint16 `yaml:"magic"` // Validity marker
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// HardwareConfig contains Linux single-board-computer wiring (periph.io names).
type HardwareConfig struct {
	I2CBus     string `yaml:"i2c_bus"`     // "" = default bus
	ADCAddress uint16 `yaml:"adc_address"` // ADS1115 address
	ADCChannel int    `yaml:"adc_channel"` // 0..3, single ended
	BuzzerPin  string `yaml:"buzzer_pin"`
	UpPin      string `yaml:"up_pin"`
	DownPin    string `yaml:"down_pin"`
}

// SimConfig contains simulated sensor configuration.
type SimConfig struct {
	Ambient    float32       `yaml:"ambient"`     // Starting/ambient temperature (°C)
	Target     float32       `yaml:"target"`      // Temperature the sensor drifts towards (°C)
	TimeConst  time.Duration `yaml:"time_const"`  // First-order lag
	NoiseLevel float32       `yaml:"noise_level"` // Peak noise (°C)
}

// HistoryConfig contains the host logger archive configuration.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Env:   "dev",
			Level: "info",
		},
		Sampling: SamplingConfig{
			Interval:        250 * time.Millisecond,
			DisplayInterval: 500 * time.Millisecond,
			Window:          10,
		},
		Alarm: AlarmConfig{
			Threshold: 35.0,
			Step:      0.5,
			Min:       -10.0,
		},
		Sensor: SensorConfig{
			VRef:           5.0,
			Resolution:     10,
			MilliVoltsPerC: 10,
		},
		Buzzer: BuzzerConfig{
			AlarmHz:   1800,
			ConfirmHz: 2000,
			Confirm:   80 * time.Millisecond,
		},
		Buttons: ButtonsConfig{
			Debounce: 0,
		},
		Display: DisplayConfig{
			Enabled: false,
			Columns: 16,
			Rows:    2,
		},
		Storage: StorageConfig{
			Path:  "tempmon.eeprom",
			Magic: 0x1234,
		},
		Serial: SerialConfig{
			Port:     "", // No serial mirror by default; "/dev/ttyACM0" or "COM3"
			BaudRate: 9600,
		},
		Hardware: HardwareConfig{
			I2CBus:     "",
			ADCAddress: 0x48,
			ADCChannel: 0,
			BuzzerPin:  "GPIO18",
			UpPin:      "GPIO17",
			DownPin:    "GPIO27",
		},
		Sim: SimConfig{
			Ambient:    22.0,
			Target:     40.0,
			TimeConst:  30 * time.Second,
			NoiseLevel: 0.2,
		},
		History: HistoryConfig{
			Path: "tempmon.db",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
// Threshold, Min and Debounce are left alone: zero is a meaningful value for them.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Log.Env == "" {
		c.Log.Env = def.Log.Env
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}

	if c.Sampling.Interval <= 0 {
		c.Sampling.Interval = def.Sampling.Interval
	}
	if c.Sampling.DisplayInterval <= 0 {
		c.Sampling.DisplayInterval = def.Sampling.DisplayInterval
	}
	if c.Sampling.Window <= 0 {
		c.Sampling.Window = def.Sampling.Window
	}

	if c.Alarm.Step <= 0 {
		c.Alarm.Step = def.Alarm.Step
	}

	if c.Sensor.VRef <= 0 {
		c.Sensor.VRef = def.Sensor.VRef
	}
	if c.Sensor.Resolution <= 0 {
		c.Sensor.Resolution = def.Sensor.Resolution
	}
	if c.Sensor.MilliVoltsPerC <= 0 {
		c.Sensor.MilliVoltsPerC = def.Sensor.MilliVoltsPerC
	}

	if c.Buzzer.AlarmHz <= 0 {
		c.Buzzer.AlarmHz = def.Buzzer.AlarmHz
	}
	if c.Buzzer.ConfirmHz <= 0 {
		c.Buzzer.ConfirmHz = def.Buzzer.ConfirmHz
	}
	if c.Buzzer.Confirm <= 0 {
		c.Buzzer.Confirm = def.Buzzer.Confirm
	}

	if c.Display.Columns <= 0 {
		c.Display.Columns = def.Display.Columns
	}
	if c.Display.Rows <= 0 {
		c.Display.Rows = def.Display.Rows
	}

	if c.Storage.Path == "" {
		c.Storage.Path = def.Storage.Path
	}
	if c.Storage.Magic == 0 {
		c.Storage.Magic = def.Storage.Magic
	}

	if c.Serial.BaudRate <= 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Hardware.ADCAddress == 0 {
		c.Hardware.ADCAddress = def.Hardware.ADCAddress
	}
	if c.Hardware.BuzzerPin == "" {
		c.Hardware.BuzzerPin = def.Hardware.BuzzerPin
	}
	if c.Hardware.UpPin == "" {
		c.Hardware.UpPin = def.Hardware.UpPin
	}
	if c.Hardware.DownPin == "" {
		c.Hardware.DownPin = def.Hardware.DownPin
	}

	if c.Sim.TimeConst <= 0 {
		c.Sim.TimeConst = def.Sim.TimeConst
	}

	if c.History.Path == "" {
		c.History.Path = def.History.Path
	}
}
