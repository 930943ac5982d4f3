package report

import (
	"strconv"

	"github.com/chewxy/math32"
)

// Display is a character display. Only the three primitives the panel needs
// are required.
type Display interface {
	Clear()
	SetCursor(col, row int)
	Print(s string)
}

// Panel renders the current average and threshold on a two-line display.
// It runs on its own cadence and rounds to one decimal place, so it does not
// have to agree with the log stream digit for digit.
type Panel struct {
	d          Display
	fahrenheit bool
	buf        []byte
}

// NewPanel creates a panel on d. With fahrenheit set the temperature row is
// shown in °F; the threshold always stays in °C as it is stored.
func NewPanel(d Display, fahrenheit bool) *Panel {
	return &Panel{d: d, fahrenheit: fahrenheit, buf: make([]byte, 0, 16)}
}

// Render redraws both rows.
func (p *Panel) Render(avg, threshold float32) {
	unit := byte('C')
	if p.fahrenheit {
		avg = CelsiusToFahrenheit(avg)
		unit = 'F'
	}

	p.d.Clear()

	p.d.SetCursor(0, 0)
	p.buf = append(p.buf[:0], "T:"...)
	p.buf = appendTenths(p.buf, avg)
	p.buf = append(p.buf, unit)
	p.d.Print(string(p.buf))

	p.d.SetCursor(0, 1)
	p.buf = append(p.buf[:0], "Alarm:"...)
	p.buf = appendTenths(p.buf, threshold)
	p.buf = append(p.buf, "C "...)
	p.d.Print(string(p.buf))
}

func appendTenths(dst []byte, v float32) []byte {
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		return append(dst, "--.-"...)
	}
	return strconv.AppendFloat(dst, float64(v), 'f', 1, 32)
}
