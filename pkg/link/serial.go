// Package link carries the CSV log stream over a serial port: the host runner
// writes it, the logger reads it back.
package link

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"go.bug.st/serial"

	"github.com/itohio/tempmon/pkg/report"
)

const (
	// DefaultBaudRate matches the firmware's Serial.begin.
	DefaultBaudRate = 9600
	// DefaultBufferSize is the default size for the records channel buffer.
	DefaultBufferSize = 100
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Open opens a serial port for writing the log stream.
func Open(port string, baudRate int) (io.WriteCloser, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	p, err := serial.Open(port, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", port, err)
	}
	return p, nil
}

// Reader receives records from a monitor's serial log stream.
type Reader struct {
	port     string
	baudRate int
	log      *slog.Logger

	open func(port string, baudRate int) (io.ReadCloser, error)

	mu        sync.Mutex
	conn      io.ReadCloser
	records   chan report.Record
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	done      chan struct{}
}

// NewReader creates a reader for the given port.
func NewReader(port string, baudRate, bufSize int, log *slog.Logger) *Reader {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}
	if log == nil {
		log = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Reader{
		port:     port,
		baudRate: baudRate,
		log:      log,
		open: func(port string, baudRate int) (io.ReadCloser, error) {
			return serial.Open(port, &serial.Mode{BaudRate: baudRate})
		},
		records: make(chan report.Record, bufSize),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Connect opens the port and starts reading records.
func (r *Reader) Connect() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connected {
		return errors.New("already connected")
	}

	conn, err := r.open(r.port, r.baudRate)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", r.port, err)
	}

	r.conn = conn
	r.connected = true

	go r.readRecords()

	return nil
}

// Close stops reading and closes the port. The records channel is closed
// once the reading goroutine has exited.
func (r *Reader) Close() error {
	r.mu.Lock()
	if !r.connected {
		r.mu.Unlock()
		return nil
	}
	r.cancel()
	err := r.conn.Close()
	r.connected = false
	r.mu.Unlock()

	<-r.done
	return err
}

// Records returns the channel of received records.
func (r *Reader) Records() <-chan report.Record {
	return r.records
}

// IsConnected returns whether the port is open.
func (r *Reader) IsConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connected
}

func (r *Reader) readRecords() {
	defer close(r.done)
	defer close(r.records)

	scanner := bufio.NewScanner(r.conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		rec, err := report.ParseLine(line)
		if errors.Is(err, report.ErrHeader) {
			r.log.Info("log stream started", "port", r.port)
			continue
		}
		if err != nil {
			r.log.Warn("failed to parse line", "line", line, "error", err)
			continue
		}

		select {
		case r.records <- rec:
		case <-r.ctx.Done():
			return
		default:
			r.log.Warn("records channel full, dropping record", "elapsed", rec.Elapsed)
		}
	}

	select {
	case <-r.ctx.Done():
	default:
		if err := scanner.Err(); err != nil {
			r.log.Error("error reading from serial port", "port", r.port, "error", err)
		}
	}
}
