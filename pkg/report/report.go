// Package report formats sample cycles for the CSV log stream and the
// optional character display.
package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Header is the first line of every log stream.
const Header = "time_ms,rawC,avgC,alarmC,alarm"

// ErrHeader is returned by ParseLine for the header line.
var ErrHeader = errors.New("report: header line")

// Record is the outcome of one sampling tick.
type Record struct {
	Elapsed   time.Duration // since start
	Raw       float32       // unfiltered reading (°C)
	Avg       float32       // moving average (°C)
	Threshold float32       // alarm threshold at the time of the tick (°C)
	Alarm     bool
}

// Sink consumes records.
type Sink interface {
	Emit(rec Record)
}

// CSV writes records as comma-separated lines.
type CSV struct {
	w      io.Writer
	buf    []byte
	header bool
}

// NewCSV creates a CSV sink writing to w.
func NewCSV(w io.Writer) *CSV {
	return &CSV{w: w, buf: make([]byte, 0, 64)}
}

// Header writes the header line. Only the first call writes.
func (c *CSV) Header() {
	if c.header {
		return
	}
	c.header = true
	c.buf = append(c.buf[:0], Header...)
	c.buf = append(c.buf, '\n')
	c.w.Write(c.buf)
}

// Emit writes one record, preceded by the header if it was not written yet.
// Write errors are dropped: the stream is fire-and-forget.
func (c *CSV) Emit(rec Record) {
	c.Header()
	c.buf = AppendRecord(c.buf[:0], rec)
	c.w.Write(c.buf)
}

// AppendRecord appends the CSV form of rec, newline included, to dst.
func AppendRecord(dst []byte, rec Record) []byte {
	dst = strconv.AppendInt(dst, rec.Elapsed.Milliseconds(), 10)
	dst = append(dst, ',')
	dst = strconv.AppendFloat(dst, float64(rec.Raw), 'f', 2, 32)
	dst = append(dst, ',')
	dst = strconv.AppendFloat(dst, float64(rec.Avg), 'f', 2, 32)
	dst = append(dst, ',')
	dst = strconv.AppendFloat(dst, float64(rec.Threshold), 'f', 2, 32)
	dst = append(dst, ',')
	if rec.Alarm {
		dst = append(dst, '1')
	} else {
		dst = append(dst, '0')
	}
	return append(dst, '\n')
}

// ParseLine parses a line produced by Emit.
// Format: time_ms,rawC,avgC,alarmC,alarm
// Example: 2750,36.00,29.50,35.00,0
func ParseLine(line string) (Record, error) {
	line = strings.TrimSpace(line)
	if line == Header {
		return Record{}, ErrHeader
	}

	parts := strings.Split(line, ",")
	if len(parts) != 5 {
		return Record{}, fmt.Errorf("invalid line format: expected 5 comma-separated values, got %d", len(parts))
	}

	ms, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid timestamp: %w", err)
	}
	if ms < 0 {
		return Record{}, fmt.Errorf("negative timestamp: %d", ms)
	}

	var vals [3]float32
	for i, name := range [3]string{"raw", "avg", "threshold"} {
		v, err := strconv.ParseFloat(parts[i+1], 32)
		if err != nil {
			return Record{}, fmt.Errorf("invalid %s: %w", name, err)
		}
		vals[i] = float32(v)
	}

	var alarm bool
	switch parts[4] {
	case "0":
	case "1":
		alarm = true
	default:
		return Record{}, fmt.Errorf("invalid alarm flag: %q", parts[4])
	}

	return Record{
		Elapsed:   time.Duration(ms) * time.Millisecond,
		Raw:       vals[0],
		Avg:       vals[1],
		Threshold: vals[2],
		Alarm:     alarm,
	}, nil
}

// CelsiusToFahrenheit converts a temperature.
func CelsiusToFahrenheit(c float32) float32 {
	return c*9/5 + 32
}
