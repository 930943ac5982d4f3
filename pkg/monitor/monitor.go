// Package monitor runs the sample → filter → alarm → report loop and applies
// threshold adjustments from the buttons.
//
// The engine is single-threaded and cooperative: Tick is called repeatedly
// with the elapsed time and does whatever is due. The only state shared with
// interrupt context lives behind the Intents interface.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/tempmon/pkg/button"
	"github.com/itohio/tempmon/pkg/filter"
	"github.com/itohio/tempmon/pkg/report"
)

// Sensor reads the current scaled temperature in °C.
type Sensor interface {
	ReadCelsius() float32
}

// Buzzer drives the single buzzer resource.
type Buzzer interface {
	// Tone starts a continuous tone. Calling it again with the same
	// frequency keeps the tone going.
	Tone(hz int)
	// Beep plays a tone for d and silences the buzzer. It blocks for d.
	Beep(hz int, d time.Duration)
	// Silence stops any tone.
	Silence()
}

// Intents yields button intents, each exactly once.
type Intents interface {
	PollAndClear() button.Intent
}

// ThresholdStore persists the alarm threshold.
type ThresholdStore interface {
	Load() (float32, bool)
	Save(threshold float32)
}

// Options holds the loop timing and alarm parameters.
type Options struct {
	SampleInterval  time.Duration
	DisplayInterval time.Duration
	PollInterval    time.Duration // Run only
	Window          int

	Threshold    float32 // default when the store is empty (°C)
	Step         float32 // button step (°C)
	MinThreshold float32 // lower clamp (°C); there is no upper clamp

	AlarmHz   int
	ConfirmHz int
	Confirm   time.Duration
}

// DefaultOptions returns the stock firmware settings.
func DefaultOptions() Options {
	return Options{
		SampleInterval:  250 * time.Millisecond,
		DisplayInterval: 500 * time.Millisecond,
		PollInterval:    time.Millisecond,
		Window:          filter.DefaultWindow,
		Threshold:       35.0,
		Step:            0.5,
		MinThreshold:    -10.0,
		AlarmHz:         1800,
		ConfirmHz:       2000,
		Confirm:         80 * time.Millisecond,
	}
}

// Deps are the engine collaborators. Display and Logger may be nil.
type Deps struct {
	Sensor  Sensor
	Buzzer  Buzzer
	Intents Intents
	Store   ThresholdStore
	Sink    report.Sink
	Display report.Display
	Logger  *slog.Logger

	// Fahrenheit shows the display temperature in °F.
	Fahrenheit bool
}

// Engine is the sampling and alarm state machine.
type Engine struct {
	opts    Options
	sensor  Sensor
	buzzer  Buzzer
	intents Intents
	store   ThresholdStore
	sink    report.Sink
	panel   *report.Panel
	log     *slog.Logger

	filter    *filter.MovingAverage
	threshold float32
	alarm     bool
	last      report.Record

	lastSample  time.Duration
	lastDisplay time.Duration
}

// New creates an engine and restores the threshold from the store. An empty or
// invalid store silently leaves opts.Threshold in place.
func New(opts Options, deps Deps) *Engine {
	def := DefaultOptions()
	if opts.SampleInterval <= 0 {
		opts.SampleInterval = def.SampleInterval
	}
	if opts.DisplayInterval <= 0 {
		opts.DisplayInterval = def.DisplayInterval
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = def.PollInterval
	}
	if opts.Window <= 0 {
		opts.Window = def.Window
	}
	if opts.Step <= 0 {
		opts.Step = def.Step
	}

	log := deps.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	e := &Engine{
		opts:      opts,
		sensor:    deps.Sensor,
		buzzer:    deps.Buzzer,
		intents:   deps.Intents,
		store:     deps.Store,
		sink:      deps.Sink,
		log:       log,
		filter:    filter.New(opts.Window),
		threshold: opts.Threshold,
	}
	if deps.Display != nil {
		e.panel = report.NewPanel(deps.Display, deps.Fahrenheit)
	}

	if v, ok := e.store.Load(); ok {
		e.threshold = v
		log.Info("threshold restored", "threshold", v)
	} else {
		log.Info("storage not initialised, using default threshold", "threshold", e.threshold)
	}

	return e
}

// Start emits the log stream header. It is safe to call more than once.
func (e *Engine) Start() {
	if h, ok := e.sink.(interface{ Header() }); ok {
		h.Header()
	}
}

// Tick runs one loop iteration at elapsed time now: pending intents first,
// then the sample tick and the display tick if they are due.
func (e *Engine) Tick(now time.Duration) {
	// At most one intent per latch per iteration.
	for i := 0; i < 2; i++ {
		intent := e.intents.PollAndClear()
		if intent == button.None {
			break
		}
		e.apply(intent)
	}

	if now-e.lastSample >= e.opts.SampleInterval {
		e.lastSample = now
		e.sample(now)
	}

	if e.panel != nil && now-e.lastDisplay >= e.opts.DisplayInterval {
		e.lastDisplay = now
		e.panel.Render(e.last.Avg, e.threshold)
	}
}

// Run calls Tick until ctx is done, then silences the buzzer.
func (e *Engine) Run(ctx context.Context) error {
	start := time.Now()
	e.Start()

	ticker := time.NewTicker(e.opts.PollInterval)
	defer ticker.Stop()

	for {
		e.Tick(time.Since(start))

		select {
		case <-ctx.Done():
			e.buzzer.Silence()
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Increase raises the threshold by one step, persists it and beeps.
func (e *Engine) Increase() {
	e.setThreshold(e.threshold + e.opts.Step)
}

// Decrease lowers the threshold by one step, not below the minimum, persists
// it and beeps.
func (e *Engine) Decrease() {
	e.setThreshold(math32.Max(e.threshold-e.opts.Step, e.opts.MinThreshold))
}

// Threshold returns the current alarm threshold.
func (e *Engine) Threshold() float32 {
	return e.threshold
}

// Alarm reports the alarm level from the last sample tick.
func (e *Engine) Alarm() bool {
	return e.alarm
}

// Last returns the last emitted record.
func (e *Engine) Last() report.Record {
	return e.last
}

func (e *Engine) apply(intent button.Intent) {
	switch intent {
	case button.Increase:
		e.Increase()
	case button.Decrease:
		e.Decrease()
	}
}

func (e *Engine) setThreshold(v float32) {
	e.threshold = v
	e.store.Save(v)
	e.log.Info("threshold changed", "threshold", v)

	// Blocks the loop; sampling resumes after the beep.
	e.buzzer.Beep(e.opts.ConfirmHz, e.opts.Confirm)
}

func (e *Engine) sample(now time.Duration) {
	raw := e.sensor.ReadCelsius()
	if math32.IsNaN(raw) || math32.IsInf(raw, 0) {
		e.log.Warn("discarding non-finite reading", "raw", raw, "elapsed", now)
		return
	}

	avg := e.filter.Push(raw)

	// Level, not edge: re-evaluated on every tick without hysteresis.
	alarm := avg >= e.threshold
	if alarm {
		e.buzzer.Tone(e.opts.AlarmHz)
	} else {
		e.buzzer.Silence()
	}
	if alarm != e.alarm {
		e.log.Debug("alarm level changed", "alarm", alarm, "avg", avg, "threshold", e.threshold)
	}
	e.alarm = alarm

	e.last = report.Record{
		Elapsed:   now,
		Raw:       raw,
		Avg:       avg,
		Threshold: e.threshold,
		Alarm:     alarm,
	}
	e.sink.Emit(e.last)
}
