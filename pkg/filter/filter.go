// Package filter implements the fixed-window moving average used to smooth
// raw sensor readings.
package filter

// DefaultWindow is the number of readings averaged when no window is configured.
const DefaultWindow = 10

// MovingAverage is a ring buffer of the last W readings and their running mean.
// The buffer is allocated once; it is never resized.
type MovingAverage struct {
	buf   []float32
	head  int // next write position
	count int // valid entries, saturates at len(buf)
}

// New creates a moving average over the given window. Window sizes below 1 are
// treated as 1 (no averaging).
func New(window int) *MovingAverage {
	if window <= 0 {
		window = 1
	}
	return &MovingAverage{
		buf: make([]float32, window),
	}
}

// Push stores v, overwriting the oldest reading once the window is full, and
// returns the mean of the valid readings. During warm-up the mean is taken over
// fewer than W points, never over unwritten slots.
func (m *MovingAverage) Push(v float32) float32 {
	m.buf[m.head] = v
	m.head++
	if m.head == len(m.buf) {
		m.head = 0
	}
	if m.count < len(m.buf) {
		m.count++
	}
	return m.Mean()
}

// Mean returns the current mean without adding a reading. It is 0 when empty.
func (m *MovingAverage) Mean() float32 {
	if m.count == 0 {
		return 0
	}
	// Until the buffer wraps the valid entries are buf[0:count]; after that
	// every slot is valid, so summing the prefix is always correct.
	var sum float64
	for _, v := range m.buf[:m.count] {
		sum += float64(v)
	}
	return float32(sum / float64(m.count))
}

// Len returns the number of valid readings.
func (m *MovingAverage) Len() int {
	return m.count
}

// Cap returns the window size.
func (m *MovingAverage) Cap() int {
	return len(m.buf)
}

// Reset discards all readings.
func (m *MovingAverage) Reset() {
	m.head = 0
	m.count = 0
}
