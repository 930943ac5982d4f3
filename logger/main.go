package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itohio/tempmon/pkg/config"
	"github.com/itohio/tempmon/pkg/history"
	"github.com/itohio/tempmon/pkg/link"
	"github.com/itohio/tempmon/pkg/logging"
	"github.com/itohio/tempmon/pkg/report"
)

func main() {
	var (
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		portFlag   = flag.String("p", "", "Serial port of the monitor (e.g., COM3 or /dev/ttyACM0)")
		dbFlag     = flag.String("db", "", "SQLite archive path (overrides config)")
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
	if *dbFlag != "" {
		cfg.History.Path = *dbFlag
	}

	log, err := logging.New(cfg.Log, os.Stderr, "tempmon-logger")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("logger stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	if cfg.Serial.Port == "" {
		return errors.New("no serial port configured (use -p)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	reader := link.NewReader(cfg.Serial.Port, cfg.Serial.BaudRate, link.DefaultBufferSize, log)
	if err := reader.Connect(); err != nil {
		return err
	}
	defer reader.Close()

	session := time.Now().UTC().Format("20060102T150405Z")
	log.Info("recording",
		"port", cfg.Serial.Port,
		"db", cfg.History.Path,
		"session", session,
	)

	rec := &recorder{db: db, session: session, now: time.Now, log: log}
	err = rec.Run(ctx, reader.Records())
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	if n, cerr := db.Alarms(context.Background(), session); cerr == nil {
		log.Info("session finished", "session", session, "records", rec.count, "alarm_records", n)
	}
	return err
}

// recorder stores incoming records and logs alarm transitions.
type recorder struct {
	db      *history.DB
	session string
	now     func() time.Time
	log     *slog.Logger

	count int
	alarm bool
}

// Run consumes records until the channel closes or ctx is done. A closed
// channel means the device went away and is reported as an error.
func (r *recorder) Run(ctx context.Context, records <-chan report.Record) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rec, ok := <-records:
			if !ok {
				return errors.New("serial stream closed")
			}
			if err := r.handle(ctx, rec); err != nil {
				return err
			}
		}
	}
}

func (r *recorder) handle(ctx context.Context, rec report.Record) error {
	if err := r.db.Insert(ctx, r.session, r.now(), rec); err != nil {
		return err
	}
	r.count++

	if rec.Alarm != r.alarm {
		r.alarm = rec.Alarm
		if rec.Alarm {
			r.log.Warn("alarm raised", "avg", rec.Avg, "threshold", rec.Threshold, "elapsed", rec.Elapsed)
		} else {
			r.log.Info("alarm cleared", "avg", rec.Avg, "threshold", rec.Threshold, "elapsed", rec.Elapsed)
		}
	}
	return nil
}
