package main

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/tempmon/pkg/config"
)

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Sampling.Interval = 100 * time.Millisecond
	cfg.Alarm.Threshold = 40
	cfg.Alarm.Min = -20

	opts := optionsFromConfig(cfg)
	assert.Equal(t, 100*time.Millisecond, opts.SampleInterval)
	assert.Equal(t, 500*time.Millisecond, opts.DisplayInterval)
	assert.Equal(t, 10, opts.Window)
	assert.Equal(t, float32(40), opts.Threshold)
	assert.Equal(t, float32(0.5), opts.Step)
	assert.Equal(t, float32(-20), opts.MinThreshold)
	assert.Equal(t, 1800, opts.AlarmHz)
	assert.Equal(t, 2000, opts.ConfirmHz)
	assert.Equal(t, 80*time.Millisecond, opts.Confirm)
}

func TestLogStream_StdoutOnly(t *testing.T) {
	cfg := config.Default()
	var stdout bytes.Buffer

	w, closeFn, err := logStream(cfg, &stdout, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer closeFn()

	_, err = w.Write([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "x", stdout.String())
}

func TestLogStream_BadPort(t *testing.T) {
	cfg := config.Default()
	cfg.Serial.Port = "/nonexistent/tty"

	_, _, err := logStream(cfg, &bytes.Buffer{}, slog.New(slog.DiscardHandler))
	assert.Error(t, err)
}

func TestLogBuzzer(t *testing.T) {
	var logs bytes.Buffer
	b := newLogBuzzer(slog.New(slog.NewTextHandler(&logs, nil)))
	var slept time.Duration
	b.sleep = func(d time.Duration) { slept += d }

	b.Tone(1800)
	b.Tone(1800)
	assert.Equal(t, 1800, b.Hz())
	assert.Equal(t, 1, bytes.Count(logs.Bytes(), []byte("buzzer on")), "repeated tone is not logged again")

	b.Beep(2000, 80*time.Millisecond)
	assert.Equal(t, 80*time.Millisecond, slept)
	assert.Equal(t, 0, b.Hz())

	b.Silence()
	assert.Equal(t, 1, bytes.Count(logs.Bytes(), []byte("buzzer off")))
}
