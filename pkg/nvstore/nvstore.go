// Package nvstore persists the alarm threshold in a small non-volatile region.
//
// Layout, little-endian:
//
//	offset 0: uint16 validity marker
//	offset 2: float32 threshold
//
// Anything other than the exact marker at offset 0 means "never written" and
// the threshold bytes are ignored.
package nvstore

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	// DefaultMagic marks an initialised store.
	DefaultMagic uint16 = 0x1234

	// MagicOffset and ThresholdOffset are fixed by the on-device layout.
	MagicOffset     = 0
	ThresholdOffset = 2

	// Size is the number of bytes the store occupies.
	Size = ThresholdOffset + 4
)

// Device is a byte-addressable non-volatile region (EEPROM, a flash page, a file).
type Device interface {
	io.ReaderAt
	io.WriterAt
}

// Store reads and writes the threshold record on a Device.
type Store struct {
	dev   Device
	magic uint16
}

// New creates a store on dev using the given validity marker (0 = DefaultMagic).
func New(dev Device, magic uint16) *Store {
	if magic == 0 {
		magic = DefaultMagic
	}
	return &Store{dev: dev, magic: magic}
}

// Load returns the saved threshold if the validity marker matches.
// A read failure is indistinguishable from an uninitialised store.
func (s *Store) Load() (float32, bool) {
	var buf [Size]byte
	n, err := s.dev.ReadAt(buf[:], 0)
	if n < Size {
		return 0, false
	}
	if err != nil && err != io.EOF {
		return 0, false
	}

	if binary.LittleEndian.Uint16(buf[MagicOffset:]) != s.magic {
		return 0, false
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[ThresholdOffset:])), true
}

// Save writes the marker and the threshold as one record. Write failures are
// dropped; use SaveErr to observe them.
func (s *Store) Save(threshold float32) {
	_ = s.SaveErr(threshold)
}

// SaveErr is Save with the device error returned.
func (s *Store) SaveErr(threshold float32) error {
	var buf [Size]byte
	binary.LittleEndian.PutUint16(buf[MagicOffset:], s.magic)
	binary.LittleEndian.PutUint32(buf[ThresholdOffset:], math.Float32bits(threshold))

	n, err := s.dev.WriteAt(buf[:], 0)
	if err != nil {
		return fmt.Errorf("failed to write threshold record: %w", err)
	}
	if n != Size {
		return fmt.Errorf("short write: %d of %d bytes", n, Size)
	}
	return nil
}
