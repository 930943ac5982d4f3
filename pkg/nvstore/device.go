package nvstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// ErrOutOfRange is returned for accesses past the end of a MemDevice.
var ErrOutOfRange = errors.New("nvstore: access out of range")

// MemDevice is an in-memory EEPROM. A fresh device reads as erased (0xFF).
type MemDevice struct {
	mu   sync.Mutex
	data []byte
}

// NewMemDevice creates an erased device of the given size.
func NewMemDevice(size int) *MemDevice {
	data := make([]byte, size)
	for i := range data {
		data[i] = 0xFF
	}
	return &MemDevice{data: data}
}

// ReadAt implements io.ReaderAt.
func (d *MemDevice) ReadAt(p []byte, off int64) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if off < 0 || off >= int64(len(d.data)) {
		return 0, io.EOF
	}
	n := copy(p, d.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt.
func (d *MemDevice) WriteAt(p []byte, off int64) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if off < 0 || off+int64(len(p)) > int64(len(d.data)) {
		return 0, ErrOutOfRange
	}
	return copy(d.data[off:], p), nil
}

// Bytes returns a copy of the device contents.
func (d *MemDevice) Bytes() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]byte, len(d.data))
	copy(out, d.data)
	return out
}

// FileDevice is an EEPROM image kept in a file. Every write is synced so a
// power cut after Save leaves the record on disk.
type FileDevice struct {
	f *os.File
}

// OpenFile opens or creates the image at path.
func OpenFile(path string) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage file %s: %w", path, err)
	}
	return &FileDevice{f: f}, nil
}

// ReadAt implements io.ReaderAt.
func (d *FileDevice) ReadAt(p []byte, off int64) (int, error) {
	return d.f.ReadAt(p, off)
}

// WriteAt implements io.WriterAt.
func (d *FileDevice) WriteAt(p []byte, off int64) (int, error) {
	n, err := d.f.WriteAt(p, off)
	if err != nil {
		return n, err
	}
	return n, d.f.Sync()
}

// Close closes the underlying file.
func (d *FileDevice) Close() error {
	return d.f.Close()
}
