package nvstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingDevice struct{}

func (failingDevice) ReadAt(p []byte, off int64) (int, error)  { return 0, errors.New("bus error") }
func (failingDevice) WriteAt(p []byte, off int64) (int, error) { return 0, errors.New("bus error") }

func TestLoad_NeverWritten(t *testing.T) {
	s := New(NewMemDevice(64), 0)

	_, ok := s.Load()
	assert.False(t, ok)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	tests := []float32{35.0, -10.0, 0, 0.5, 123.25, -9.5, 37.7}

	for _, want := range tests {
		s := New(NewMemDevice(64), DefaultMagic)
		s.Save(want)

		got, ok := s.Load()
		require.True(t, ok)
		assert.InDelta(t, want, got, 1e-6)
	}
}

func TestSave_Layout(t *testing.T) {
	dev := NewMemDevice(8)
	s := New(dev, 0x1234)
	require.NoError(t, s.SaveErr(35.0))

	b := dev.Bytes()
	// 0x1234 little-endian, then 35.0f = 0x420C0000 little-endian
	assert.Equal(t, []byte{0x34, 0x12, 0x00, 0x00, 0x0C, 0x42}, b[:Size])
	// Bytes past the record are untouched
	assert.Equal(t, []byte{0xFF, 0xFF}, b[Size:])
}

func TestLoad_WrongMagic(t *testing.T) {
	dev := NewMemDevice(16)
	New(dev, 0xBEEF).Save(42)

	// Same bytes, different expected marker: the stale threshold is ignored.
	s := New(dev, 0x1234)
	_, ok := s.Load()
	assert.False(t, ok)

	// First save overwrites the garbage.
	s.Save(30)
	got, ok := s.Load()
	require.True(t, ok)
	assert.Equal(t, float32(30), got)
}

func TestLoad_GarbageThresholdIgnored(t *testing.T) {
	dev := NewMemDevice(16)
	_, err := dev.WriteAt([]byte{0x00, 0x00, 0xDE, 0xAD, 0xBE, 0xEF}, 0)
	require.NoError(t, err)

	_, ok := New(dev, 0).Load()
	assert.False(t, ok)
}

func TestLoad_DeviceTooSmall(t *testing.T) {
	s := New(NewMemDevice(3), 0)
	assert.Error(t, s.SaveErr(10))

	_, ok := s.Load()
	assert.False(t, ok)
}

func TestFailingDevice(t *testing.T) {
	s := New(failingDevice{}, 0)

	assert.NotPanics(t, func() { s.Save(12) })
	assert.Error(t, s.SaveErr(12))

	_, ok := s.Load()
	assert.False(t, ok)
}

func TestFileDevice_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eeprom.bin")

	dev, err := OpenFile(path)
	require.NoError(t, err)

	_, ok := New(dev, 0).Load()
	assert.False(t, ok, "empty file must read as uninitialised")

	New(dev, 0).Save(28.5)
	require.NoError(t, dev.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(Size), info.Size())

	// Reopen, as after a power cycle.
	dev, err = OpenFile(path)
	require.NoError(t, err)
	defer dev.Close()

	got, ok := New(dev, 0).Load()
	require.True(t, ok)
	assert.Equal(t, float32(28.5), got)
}
