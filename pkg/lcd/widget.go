package lcd

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

var (
	backgroundColor = color.NRGBA{R: 0x1b, G: 0x3a, B: 0x8c, A: 0xff}
	textColor       = color.NRGBA{R: 0xe8, G: 0xf0, B: 0xff, A: 0xff}
)

const textSize = 28

// Widget shows a Buffer as a backlit character LCD.
type Widget struct {
	widget.BaseWidget

	buf *Buffer
}

// NewWidget creates a widget backed by buf. Buffer changes from any
// goroutine are redrawn on the Fyne main thread.
func NewWidget(buf *Buffer) *Widget {
	w := &Widget{buf: buf}
	w.ExtendBaseWidget(w)
	buf.OnChange(func() {
		fyne.Do(w.Refresh)
	})
	return w
}

// Buffer returns the backing buffer; it implements the display interface
// the monitor renders to.
func (w *Widget) Buffer() *Buffer {
	return w.buf
}

// CreateRenderer implements fyne.Widget.
func (w *Widget) CreateRenderer() fyne.WidgetRenderer {
	r := &lcdRenderer{
		lcd:        w,
		background: canvas.NewRectangle(backgroundColor),
	}
	r.background.CornerRadius = theme.InputRadiusSize()

	_, rows := w.buf.Size()
	r.lines = make([]*canvas.Text, rows)
	r.objects = []fyne.CanvasObject{r.background}
	for i := range r.lines {
		t := canvas.NewText("", textColor)
		t.TextSize = textSize
		t.TextStyle = fyne.TextStyle{Monospace: true}
		r.lines[i] = t
		r.objects = append(r.objects, t)
	}
	r.Refresh()
	return r
}

type lcdRenderer struct {
	lcd        *Widget
	background *canvas.Rectangle
	lines      []*canvas.Text
	objects    []fyne.CanvasObject
}

func (r *lcdRenderer) cell() fyne.Size {
	return fyne.MeasureText("M", textSize, fyne.TextStyle{Monospace: true})
}

func (r *lcdRenderer) MinSize() fyne.Size {
	cols, rows := r.lcd.buf.Size()
	c := r.cell()
	pad := theme.Padding() * 2
	return fyne.NewSize(c.Width*float32(cols)+2*pad, c.Height*float32(rows)+2*pad)
}

func (r *lcdRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	c := r.cell()
	pad := theme.Padding() * 2
	for i, t := range r.lines {
		t.Move(fyne.NewPos(pad, pad+float32(i)*c.Height))
		t.Resize(fyne.NewSize(size.Width-2*pad, c.Height))
	}
}

func (r *lcdRenderer) Refresh() {
	for i, s := range r.lcd.buf.Rows() {
		if i < len(r.lines) {
			r.lines[i].Text = s
		}
	}
	r.background.Refresh()
	for _, t := range r.lines {
		t.Refresh()
	}
}

func (r *lcdRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *lcdRenderer) Destroy() {}
