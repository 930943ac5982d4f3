package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDisplay struct {
	rows [2][]byte
	col  int
	row  int
	ops  []string
}

func (d *fakeDisplay) Clear() {
	d.rows = [2][]byte{}
	d.ops = append(d.ops, "clear")
}

func (d *fakeDisplay) SetCursor(col, row int) {
	d.col, d.row = col, row
	d.ops = append(d.ops, fmt.Sprintf("cursor %d,%d", col, row))
}

func (d *fakeDisplay) Print(s string) {
	d.rows[d.row] = append(d.rows[d.row], s...)
	d.ops = append(d.ops, "print "+s)
}

func TestCSV_HeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	c := NewCSV(&buf)

	c.Header()
	c.Header()
	c.Emit(Record{Elapsed: 250 * time.Millisecond, Raw: 20, Avg: 20, Threshold: 35})
	c.Emit(Record{Elapsed: 500 * time.Millisecond, Raw: 22, Avg: 21, Threshold: 35})

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, Header, lines[0])
	assert.Equal(t, "250,20.00,20.00,35.00,0", lines[1])
	assert.Equal(t, "500,22.00,21.00,35.00,0", lines[2])
	assert.Equal(t, 1, strings.Count(buf.String(), Header))
}

func TestCSV_EmitWritesHeaderFirst(t *testing.T) {
	var buf bytes.Buffer
	c := NewCSV(&buf)

	c.Emit(Record{Elapsed: time.Second, Raw: 36.004, Avg: 35.0, Threshold: 35.0, Alarm: true})

	assert.Equal(t, Header+"\n1000,36.00,35.00,35.00,1\n", buf.String())
}

func TestAppendRecord(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{
			name: "rounding",
			rec:  Record{Elapsed: 1234 * time.Millisecond, Raw: 24.456, Avg: 23.999, Threshold: 35.5},
			want: "1234,24.46,24.00,35.50,0\n",
		},
		{
			name: "negative",
			rec:  Record{Elapsed: 0, Raw: -5.25, Avg: -4.5, Threshold: -10, Alarm: true},
			want: "0,-5.25,-4.50,-10.00,1\n",
		},
		{
			name: "sub-millisecond truncated",
			rec:  Record{Elapsed: 999*time.Microsecond + 250*time.Millisecond, Raw: 1, Avg: 1, Threshold: 1, Alarm: true},
			want: "250,1.00,1.00,1.00,1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(AppendRecord(nil, tt.rec)))
		})
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Record
		wantErr bool
	}{
		{
			name: "valid line - alarm off",
			line: "2750,36.00,29.50,35.00,0",
			want: Record{Elapsed: 2750 * time.Millisecond, Raw: 36, Avg: 29.5, Threshold: 35},
		},
		{
			name: "valid line - alarm on with CRLF",
			line: "3000,38.00,35.25,35.00,1\r\n",
			want: Record{Elapsed: 3 * time.Second, Raw: 38, Avg: 35.25, Threshold: 35, Alarm: true},
		},
		{
			name: "negative temperatures",
			line: "10,-3.50,-2.00,-10.00,0",
			want: Record{Elapsed: 10 * time.Millisecond, Raw: -3.5, Avg: -2, Threshold: -10},
		},
		{name: "too few fields", line: "2750,36.00,29.50,35.00", wantErr: true},
		{name: "too many fields", line: "2750,36.00,29.50,35.00,0,1", wantErr: true},
		{name: "bad timestamp", line: "abc,36.00,29.50,35.00,0", wantErr: true},
		{name: "negative timestamp", line: "-1,36.00,29.50,35.00,0", wantErr: true},
		{name: "bad raw", line: "1,x,29.50,35.00,0", wantErr: true},
		{name: "bad avg", line: "1,1,,35.00,0", wantErr: true},
		{name: "bad threshold", line: "1,1,1,t,0", wantErr: true},
		{name: "bad alarm", line: "1,1,1,1,2", wantErr: true},
		{name: "empty", line: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLine_Header(t *testing.T) {
	_, err := ParseLine(Header)
	assert.ErrorIs(t, err, ErrHeader)
}

func TestParseLine_ReadsEmitOutput(t *testing.T) {
	rec := Record{Elapsed: 7250 * time.Millisecond, Raw: 40, Avg: 35.75, Threshold: 35.5, Alarm: true}
	got, err := ParseLine(string(AppendRecord(nil, rec)))
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestCelsiusToFahrenheit(t *testing.T) {
	assert.InDelta(t, 32, CelsiusToFahrenheit(0), 1e-6)
	assert.InDelta(t, 212, CelsiusToFahrenheit(100), 1e-4)
	assert.InDelta(t, 95, CelsiusToFahrenheit(35), 1e-4)
	assert.InDelta(t, -40, CelsiusToFahrenheit(-40), 1e-4)
}

func TestPanel_Render(t *testing.T) {
	d := &fakeDisplay{}
	p := NewPanel(d, false)

	p.Render(29.46, 35)

	assert.Equal(t, "T:29.5C", string(d.rows[0]))
	assert.Equal(t, "Alarm:35.0C ", string(d.rows[1]))
	assert.Equal(t, []string{"clear", "cursor 0,0", "print T:29.5C", "cursor 0,1", "print Alarm:35.0C "}, d.ops)
}

func TestPanel_RenderFahrenheit(t *testing.T) {
	d := &fakeDisplay{}
	p := NewPanel(d, true)

	p.Render(35, 35)

	assert.Equal(t, "T:95.0F", string(d.rows[0]))
	assert.Equal(t, "Alarm:35.0C ", string(d.rows[1]))
}
