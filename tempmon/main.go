package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itohio/tempmon/pkg/config"
	"github.com/itohio/tempmon/pkg/lcd"
	"github.com/itohio/tempmon/pkg/link"
	"github.com/itohio/tempmon/pkg/logging"
	"github.com/itohio/tempmon/pkg/monitor"
	"github.com/itohio/tempmon/pkg/nvstore"
	"github.com/itohio/tempmon/pkg/report"
)

func main() {
	var (
		configFlag  = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag    = flag.Bool("mock", false, "Use a simulated sensor instead of the ADS1115")
		portFlag    = flag.String("p", "", "Serial port to copy the log stream to (e.g., COM3 or /dev/ttyUSB0)")
		displayFlag = flag.Bool("display", false, "Show the virtual LCD window (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *displayFlag {
		cfg.Display.Enabled = true
	}

	log, err := logging.New(cfg.Log, os.Stderr, "tempmon")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *configFlag, *mockFlag, log); err != nil {
		log.Error("tempmon stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, configPath string, mock bool, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		be  *backend
		err error
	)
	if mock {
		be, err = openMock(ctx, cfg, log)
	} else {
		be, err = openHardware(ctx, cfg, log)
	}
	if err != nil {
		return err
	}
	defer be.Close()

	dev, err := nvstore.OpenFile(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer dev.Close()

	out, closeOut, err := logStream(cfg, os.Stdout, log)
	if err != nil {
		return err
	}
	defer closeOut()

	deps := monitor.Deps{
		Sensor:     be.sensor,
		Buzzer:     be.buzzer,
		Intents:    be.buttons,
		Store:      nvstore.New(dev, cfg.Storage.Magic),
		Sink:       report.NewCSV(out),
		Logger:     log,
		Fahrenheit: cfg.Display.Fahrenheit,
	}

	var win *window
	if cfg.Display.Enabled {
		buf := lcd.NewBuffer(cfg.Display.Columns, cfg.Display.Rows)
		deps.Display = buf
		win = newWindow(cfg, configPath, buf, be, log)
	}

	engine := monitor.New(optionsFromConfig(cfg), deps)
	log.Info("monitor started",
		"mock", mock,
		"threshold", engine.Threshold(),
		"interval", cfg.Sampling.Interval,
		"window", cfg.Sampling.Window,
	)

	if win == nil {
		return ignoreCanceled(engine.Run(ctx))
	}

	// Fyne owns the main goroutine; closing the window stops the engine.
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- engine.Run(ctx)
		win.Quit()
	}()
	win.ShowAndRun()
	cancel()
	return ignoreCanceled(<-done)
}

// optionsFromConfig maps the configuration onto the engine options.
func optionsFromConfig(cfg *config.Config) monitor.Options {
	return monitor.Options{
		SampleInterval:  cfg.Sampling.Interval,
		DisplayInterval: cfg.Sampling.DisplayInterval,
		PollInterval:    time.Millisecond,
		Window:          cfg.Sampling.Window,
		Threshold:       cfg.Alarm.Threshold,
		Step:            cfg.Alarm.Step,
		MinThreshold:    cfg.Alarm.Min,
		AlarmHz:         cfg.Buzzer.AlarmHz,
		ConfirmHz:       cfg.Buzzer.ConfirmHz,
		Confirm:         cfg.Buzzer.Confirm,
	}
}

// logStream returns the writer for the CSV log stream: stdout, plus the
// serial port when one is configured.
func logStream(cfg *config.Config, stdout io.Writer, log *slog.Logger) (io.Writer, func(), error) {
	if cfg.Serial.Port == "" {
		return stdout, func() {}, nil
	}

	port, err := link.Open(cfg.Serial.Port, cfg.Serial.BaudRate)
	if err != nil {
		return nil, nil, err
	}
	log.Info("copying log stream to serial port", "port", cfg.Serial.Port, "baud", cfg.Serial.BaudRate)

	return io.MultiWriter(stdout, port), func() {
		if err := port.Close(); err != nil {
			log.Warn("failed to close serial port", "error", err)
		}
	}, nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
