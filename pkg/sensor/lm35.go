// Package sensor converts analog front-end readings to °C and provides
// simulated sensors for running without hardware.
package sensor

import "math"

// ADC reads raw conversion counts.
type ADC interface {
	Get() uint16
}

// LM35 is the linear transfer function of an LM35-style sensor behind an ADC.
type LM35 struct {
	VRef           float32 // ADC reference voltage (V)
	Resolution     int     // ADC resolution in bits
	MilliVoltsPerC float32 // sensor slope
}

// DefaultLM35 is an LM35 on a 10-bit ADC with a 5 V reference.
var DefaultLM35 = LM35{VRef: 5.0, Resolution: 10, MilliVoltsPerC: 10}

// Celsius converts counts to °C. Counts are not range-checked.
func (l LM35) Celsius(counts uint16) float32 {
	return l.VoltsToCelsius(l.Volts(counts))
}

// Volts converts counts to the voltage at the ADC pin.
func (l LM35) Volts(counts uint16) float32 {
	full := float32(uint32(1)<<uint(l.Resolution) - 1)
	return float32(counts) * l.VRef / full
}

// VoltsToCelsius applies the sensor slope.
func (l LM35) VoltsToCelsius(v float32) float32 {
	return v * 1000 / l.MilliVoltsPerC
}

// Analog is a Sensor reading an LM35 through an ADC.
type Analog struct {
	adc ADC
	tf  LM35
}

// NewAnalog creates an analog sensor.
func NewAnalog(adc ADC, tf LM35) *Analog {
	return &Analog{adc: adc, tf: tf}
}

// ReadCelsius reads one sample.
func (a *Analog) ReadCelsius() float32 {
	return a.tf.Celsius(a.adc.Get())
}

// Counts is the inverse of Celsius: the ADC reading for c, rounded and
// clamped to the converter range.
func (l LM35) Counts(c float32) uint16 {
	full := float64(uint32(1)<<uint(l.Resolution) - 1)
	v := math.Round(float64(c) * float64(l.MilliVoltsPerC) / 1000 / float64(l.VRef) * full)
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > full:
		return uint16(full)
	}
	return uint16(v)
}

// ADCFrom simulates an ADC sampling an LM35 that sees src's temperature.
type ADCFrom struct {
	src interface{ ReadCelsius() float32 }
	tf  LM35
}

// NewADCFrom creates a simulated converter over src.
func NewADCFrom(src interface{ ReadCelsius() float32 }, tf LM35) *ADCFrom {
	return &ADCFrom{src: src, tf: tf}
}

// Get converts the current source temperature to counts.
func (a *ADCFrom) Get() uint16 {
	return a.tf.Counts(a.src.ReadCelsius())
}
