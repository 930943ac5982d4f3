// Package hw wires the monitor to a Linux single-board computer through
// periph.io: an ADS1115 for the LM35, a GPIO PWM buzzer and two GPIO buttons.
package hw

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"

	"github.com/itohio/tempmon/pkg/config"
	"github.com/itohio/tempmon/pkg/sensor"
)

// edgePoll bounds how long a button watcher waits before rechecking ctx.
const edgePoll = 100 * time.Millisecond

// Board holds the opened peripherals.
type Board struct {
	bus    i2c.BusCloser
	adc    ads1x15.PinADC
	Sensor *ADS1115Sensor
	Buzzer *Buzzer
	Up     gpio.PinIO
	Down   gpio.PinIO
}

// Open initialises the host drivers and opens the peripherals named in cfg.
func Open(cfg *config.Config, log *slog.Logger) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialise host drivers: %w", err)
	}

	bus, err := i2creg.Open(cfg.Hardware.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("failed to open i2c bus %q: %w", cfg.Hardware.I2CBus, err)
	}

	dev, err := ads1x15.NewADS1115(bus, &ads1x15.Opts{I2cAddress: cfg.Hardware.ADCAddress})
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("failed to open ADS1115 at 0x%02x: %w", cfg.Hardware.ADCAddress, err)
	}

	// The LM35 never exceeds ~1.5 V; 4.096 V full scale keeps headroom.
	adc, err := dev.PinForChannel(ads1x15.Channel0+ads1x15.Channel(cfg.Hardware.ADCChannel), 4096*physic.MilliVolt, 8*physic.Hertz, ads1x15.BestQuality)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("failed to open ADC channel %d: %w", cfg.Hardware.ADCChannel, err)
	}

	b := &Board{
		bus:    bus,
		adc:    adc,
		Sensor: NewADS1115Sensor(adc, cfg.Sensor.MilliVoltsPerC, log),
	}

	pins := []struct {
		name string
		dst  *gpio.PinIO
	}{
		{cfg.Hardware.UpPin, &b.Up},
		{cfg.Hardware.DownPin, &b.Down},
	}
	for _, p := range pins {
		pin := gpioreg.ByName(p.name)
		if pin == nil {
			b.Close()
			return nil, fmt.Errorf("unknown gpio pin %q", p.name)
		}
		*p.dst = pin
	}

	buzzerPin := gpioreg.ByName(cfg.Hardware.BuzzerPin)
	if buzzerPin == nil {
		b.Close()
		return nil, fmt.Errorf("unknown gpio pin %q", cfg.Hardware.BuzzerPin)
	}
	b.Buzzer = NewBuzzer(buzzerPin, log)

	return b, nil
}

// Close silences the buzzer and releases the peripherals.
func (b *Board) Close() error {
	if b.Buzzer != nil {
		b.Buzzer.Silence()
	}
	if b.adc != nil {
		if err := b.adc.Halt(); err != nil {
			slog.Warn("failed to halt adc", "error", err)
		}
	}
	return b.bus.Close()
}

// ADS1115Sensor reads an LM35 through one ADS1115 channel.
type ADS1115Sensor struct {
	pin   ads1x15.PinADC
	slope float32 // mV/°C
	log   *slog.Logger
}

// NewADS1115Sensor creates a sensor on an opened ADC channel.
func NewADS1115Sensor(pin ads1x15.PinADC, milliVoltsPerC float32, log *slog.Logger) *ADS1115Sensor {
	if log == nil {
		log = slog.Default()
	}
	return &ADS1115Sensor{pin: pin, slope: milliVoltsPerC, log: log}
}

// ReadCelsius returns NaN when the conversion fails so the engine skips the tick.
func (s *ADS1115Sensor) ReadCelsius() float32 {
	sample, err := s.pin.Read()
	if err != nil {
		s.log.Warn("adc read failed", "error", err)
		return float32(math.NaN())
	}
	volts := float64(sample.V) / float64(physic.Volt)
	return sensor.LM35{MilliVoltsPerC: s.slope}.VoltsToCelsius(float32(volts))
}

// Buzzer drives a passive buzzer with hardware PWM.
type Buzzer struct {
	pin gpio.PinOut
	log *slog.Logger

	mu sync.Mutex
	hz int // current tone, 0 = silent
}

// NewBuzzer creates a buzzer on pin.
func NewBuzzer(pin gpio.PinOut, log *slog.Logger) *Buzzer {
	if log == nil {
		log = slog.Default()
	}
	return &Buzzer{pin: pin, log: log}
}

// Tone starts a continuous tone.
func (b *Buzzer) Tone(hz int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tone(hz)
}

// Beep plays hz for d, blocking, then silences the buzzer.
func (b *Buzzer) Beep(hz int, d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tone(hz)
	time.Sleep(d)
	b.silence()
}

// Silence stops the tone.
func (b *Buzzer) Silence() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.silence()
}

func (b *Buzzer) tone(hz int) {
	if b.hz == hz {
		return
	}
	if err := b.pin.PWM(gpio.DutyHalf, physic.Frequency(hz)*physic.Hertz); err != nil {
		b.log.Warn("buzzer pwm failed", "hz", hz, "error", err)
		return
	}
	b.hz = hz
}

func (b *Buzzer) silence() {
	if err := b.pin.Out(gpio.Low); err != nil {
		b.log.Warn("buzzer off failed", "error", err)
	}
	b.hz = 0
}

// WatchButton configures pin as an active-low input and calls press on every
// falling edge until ctx is done. The watcher goroutine plays the role of the
// pin interrupt: press must only set a latch.
func WatchButton(ctx context.Context, pin gpio.PinIn, press func()) error {
	if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return fmt.Errorf("failed to configure %s: %w", pin, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if pin.WaitForEdge(edgePoll) {
				press()
			}
		}
	}()

	return nil
}
