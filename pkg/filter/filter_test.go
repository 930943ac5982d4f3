package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func mean(values []float32) float32 {
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	return float32(sum / float64(len(values)))
}

func TestNew_InvalidWindow(t *testing.T) {
	for _, w := range []int{0, -1, -10} {
		m := New(w)
		assert.Equal(t, 1, m.Cap())
		assert.Equal(t, float32(3), m.Push(3))
		assert.Equal(t, float32(7), m.Push(7))
	}
}

func TestMovingAverage_WarmUp(t *testing.T) {
	values := []float32{20, 22.5, 19, 31, 25.25, 18, 40, 33, 21, 27}
	m := New(len(values))

	for i, v := range values {
		got := m.Push(v)
		assert.InDelta(t, mean(values[:i+1]), got, 1e-5, "after %d pushes", i+1)
		assert.Equal(t, i+1, m.Len())
	}
}

func TestMovingAverage_SlidingWindow(t *testing.T) {
	m := New(4)

	// Early values are huge so any leak into the window is obvious.
	for _, v := range []float32{1000, 1000, 1000, 1000} {
		m.Push(v)
	}

	tests := []struct {
		name string
		push float32
		want float32
	}{
		{name: "one replaced", push: 0, want: 750},
		{name: "two replaced", push: 0, want: 500},
		{name: "three replaced", push: 0, want: 250},
		{name: "all replaced", push: 4, want: 1},
		{name: "wrapped", push: 8, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, m.Push(tt.push), 1e-5)
			assert.Equal(t, 4, m.Len())
		})
	}
}

func TestMovingAverage_LongSequence(t *testing.T) {
	const window = 10
	m := New(window)

	var seen []float32
	for i := 0; i < 35; i++ {
		v := float32(i * 3)
		seen = append(seen, v)
		got := m.Push(v)

		start := 0
		if len(seen) > window {
			start = len(seen) - window
		}
		assert.InDelta(t, mean(seen[start:]), got, 1e-4, "push %d", i)
		assert.LessOrEqual(t, m.Len(), m.Cap())
	}
}

func TestMovingAverage_MeanAndReset(t *testing.T) {
	m := New(3)
	assert.Equal(t, float32(0), m.Mean())

	m.Push(10)
	m.Push(20)
	assert.InDelta(t, 15, m.Mean(), 1e-6)
	assert.Equal(t, 2, m.Len())

	m.Reset()
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, float32(0), m.Mean())
	assert.Equal(t, float32(5), m.Push(5))
}

func TestMovingAverage_Precision(t *testing.T) {
	// A float32 accumulator drifts here; the float64 one must not.
	m := New(10)
	var got float32
	for i := 0; i < 1000; i++ {
		got = m.Push(35.1)
	}
	assert.InDelta(t, 35.1, got, 1e-5)
}
