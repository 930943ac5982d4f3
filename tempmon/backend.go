package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/itohio/tempmon/pkg/button"
	"github.com/itohio/tempmon/pkg/config"
	"github.com/itohio/tempmon/pkg/hw"
	"github.com/itohio/tempmon/pkg/monitor"
	"github.com/itohio/tempmon/pkg/sensor"
)

// backend is the sensor, buzzer and button set the engine runs on.
type backend struct {
	sensor  monitor.Sensor
	buzzer  monitor.Buzzer
	buttons *button.Buttons

	// sim is set in mock mode so the window can move the target temperature.
	sim *sensor.Sim

	close func() error
}

// Close releases the backend.
func (b *backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// openHardware opens the ADS1115, buzzer and GPIO buttons through periph.io.
func openHardware(ctx context.Context, cfg *config.Config, log *slog.Logger) (*backend, error) {
	board, err := hw.Open(cfg, log)
	if err != nil {
		return nil, err
	}

	buttons := button.New(cfg.Buttons.Debounce, nil)
	if err := hw.WatchButton(ctx, board.Up, buttons.PressUp); err != nil {
		board.Close()
		return nil, err
	}
	if err := hw.WatchButton(ctx, board.Down, buttons.PressDown); err != nil {
		board.Close()
		return nil, err
	}

	return &backend{
		sensor:  board.Sensor,
		buzzer:  board.Buzzer,
		buttons: buttons,
		close:   board.Close,
	}, nil
}

// openMock runs on a simulated sensor with a logging buzzer. The buttons are
// pressed from the window or with SIGUSR1 (up) and SIGUSR2 (down).
func openMock(ctx context.Context, cfg *config.Config, log *slog.Logger) (*backend, error) {
	sim := sensor.NewSim(sensor.SimConfig{
		Ambient:    cfg.Sim.Ambient,
		Target:     cfg.Sim.Target,
		TimeConst:  cfg.Sim.TimeConst,
		NoiseLevel: cfg.Sim.NoiseLevel,
	}, nil)

	buttons := button.New(cfg.Buttons.Debounce, nil)
	watchSignals(ctx, buttons, log)

	log.Info("using simulated sensor",
		"ambient", cfg.Sim.Ambient,
		"target", cfg.Sim.Target,
		"time_const", cfg.Sim.TimeConst,
	)

	// The simulated LM35 is read through a simulated ADC so readings carry
	// the converter's quantization.
	tf := sensor.LM35{
		VRef:           cfg.Sensor.VRef,
		Resolution:     cfg.Sensor.Resolution,
		MilliVoltsPerC: cfg.Sensor.MilliVoltsPerC,
	}

	return &backend{
		sensor:  sensor.NewAnalog(sensor.NewADCFrom(sim, tf), tf),
		buzzer:  newLogBuzzer(log),
		buttons: buttons,
		sim:     sim,
	}, nil
}

// logBuzzer stands in for the buzzer by logging tone changes.
type logBuzzer struct {
	log   *slog.Logger
	sleep func(time.Duration)

	mu sync.Mutex
	hz int
}

func newLogBuzzer(log *slog.Logger) *logBuzzer {
	return &logBuzzer{log: log, sleep: time.Sleep}
}

func (b *logBuzzer) Tone(hz int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.hz == hz {
		return
	}
	b.hz = hz
	b.log.Info("buzzer on", "hz", hz)
}

func (b *logBuzzer) Beep(hz int, d time.Duration) {
	b.log.Debug("beep", "hz", hz, "duration", d)
	b.Tone(hz)
	b.sleep(d)
	b.Silence()
}

func (b *logBuzzer) Silence() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.hz == 0 {
		return
	}
	b.hz = 0
	b.log.Info("buzzer off")
}

// Hz returns the tone currently sounding, 0 when silent.
func (b *logBuzzer) Hz() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hz
}
