// Package lcd is a virtual character display for the host runner.
package lcd

import "sync"

// Buffer is a cols×rows character buffer with HD44780-style cursor
// semantics: Print writes from the cursor and drops what runs past the
// end of the row. It is safe for concurrent use.
type Buffer struct {
	mu       sync.RWMutex
	cols     int
	cells    [][]rune
	col, row int

	onChange func()
}

// NewBuffer creates a blank buffer. Non-positive sizes default to 16×2.
func NewBuffer(cols, rows int) *Buffer {
	if cols <= 0 {
		cols = 16
	}
	if rows <= 0 {
		rows = 2
	}
	b := &Buffer{cols: cols, cells: make([][]rune, rows)}
	for i := range b.cells {
		b.cells[i] = make([]rune, cols)
	}
	b.clear()
	return b
}

// OnChange registers fn to be called after every Print or Clear.
func (b *Buffer) OnChange(fn func()) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

// Clear blanks the buffer and homes the cursor.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.clear()
	fn := b.onChange
	b.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (b *Buffer) clear() {
	for _, row := range b.cells {
		for i := range row {
			row[i] = ' '
		}
	}
	b.col, b.row = 0, 0
}

// SetCursor moves the cursor. Out of range positions are clamped.
func (b *Buffer) SetCursor(col, row int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.col = clamp(col, 0, b.cols)
	b.row = clamp(row, 0, len(b.cells)-1)
}

// Print writes s at the cursor and advances it.
func (b *Buffer) Print(s string) {
	b.mu.Lock()
	row := b.cells[b.row]
	for _, r := range s {
		if b.col >= b.cols {
			break
		}
		row[b.col] = r
		b.col++
	}
	fn := b.onChange
	b.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Rows returns a snapshot of the buffer contents, one string per row.
func (b *Buffer) Rows() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]string, len(b.cells))
	for i, row := range b.cells {
		out[i] = string(row)
	}
	return out
}

// Size returns the buffer dimensions.
func (b *Buffer) Size() (cols, rows int) {
	return b.cols, len(b.cells)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
