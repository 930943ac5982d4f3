package sensor

import (
	"math"
	"sync"
	"time"
)

// SimConfig describes the simulated thermal environment.
type SimConfig struct {
	Ambient    float32       // starting temperature (°C)
	Target     float32       // temperature the sensor drifts towards (°C)
	TimeConst  time.Duration // first-order lag
	NoiseLevel float32       // peak noise (°C)
}

// Sim simulates a sensor with thermal lag and deterministic noise.
type Sim struct {
	cfg SimConfig
	now func() time.Time

	mu          sync.Mutex
	start       time.Time
	last        time.Time
	temperature float64
	target      float64
}

// NewSim creates a simulated sensor. now may be nil to use the wall clock.
func NewSim(cfg SimConfig, now func() time.Time) *Sim {
	if cfg.TimeConst <= 0 {
		cfg.TimeConst = 30 * time.Second
	}
	if now == nil {
		now = time.Now
	}
	t := now()
	return &Sim{
		cfg:         cfg,
		now:         now,
		start:       t,
		last:        t,
		temperature: float64(cfg.Ambient),
		target:      float64(cfg.Target),
	}
}

// SetTarget changes the temperature the simulation drifts towards.
func (s *Sim) SetTarget(c float32) {
	s.mu.Lock()
	s.target = float64(c)
	s.mu.Unlock()
}

// ReadCelsius advances the simulation to now and returns a reading.
func (s *Sim) ReadCelsius() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	dt := now.Sub(s.last).Seconds()
	s.last = now

	// Exact step response of a first-order lag over dt.
	alpha := 1 - math.Exp(-dt/s.cfg.TimeConst.Seconds())
	s.temperature += alpha * (s.target - s.temperature)

	elapsed := now.Sub(s.start).Seconds()
	noise := (math.Sin(elapsed*7.3) + math.Cos(elapsed*11.9)) * 0.5 * float64(s.cfg.NoiseLevel)

	return float32(s.temperature + noise)
}

// Script replays fixed readings, holding the last one once exhausted.
type Script struct {
	mu     sync.Mutex
	values []float32
	next   int
}

// NewScript creates a scripted sensor. It panics on an empty script.
func NewScript(values ...float32) *Script {
	if len(values) == 0 {
		panic("sensor: empty script")
	}
	return &Script{values: values}
}

// ReadCelsius returns the next scripted reading.
func (s *Script) ReadCelsius() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.values[s.next]
	if s.next < len(s.values)-1 {
		s.next++
	}
	return v
}
