//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/hd44780i2c"
	"tinygo.org/x/drivers/tone"

	"github.com/itohio/tempmon/pkg/button"
	"github.com/itohio/tempmon/pkg/monitor"
	"github.com/itohio/tempmon/pkg/nvstore"
	"github.com/itohio/tempmon/pkg/report"
	"github.com/itohio/tempmon/pkg/sensor"
)

var (
	start   time.Time
	buttons *button.Buttons
)

func main() {
	start = time.Now()

	machine.Serial.Configure(machine.UARTConfig{BaudRate: UART_BAUD_RATE})

	// Sensor
	machine.InitADC()
	adc := machine.ADC{Pin: PIN_LM35}
	adc.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_HW_BITS,
	})
	lm35 := sensor.NewAnalog(adc, sensor.LM35{
		VRef:           ADC_REFERENCE_V,
		Resolution:     ADC_COUNTS_BITS,
		MilliVoltsPerC: LM35_MV_PER_C,
	})

	// Buttons: edge latches set from interrupt context
	buttons = button.New(0, nil)
	configureButton(PIN_UP, buttons.PressUp)
	configureButton(PIN_DOWN, buttons.PressDown)

	// Buzzer
	speaker, err := tone.New(buzzerPWM, PIN_BUZZER)
	if err != nil {
		println("buzzer:", err.Error())
	}

	deps := monitor.Deps{
		Sensor:  lm35,
		Buzzer:  &buzzer{speaker: speaker, ok: err == nil},
		Intents: buttons,
		Store:   nvstore.New(flashDevice{}, STORAGE_MAGIC),
		Sink:    report.NewCSV(machine.Serial),
	}
	if USE_LCD {
		if d, err := newLCD(); err == nil {
			deps.Display = d
		} else {
			println("lcd:", err.Error())
		}
	}

	opts := monitor.Options{
		SampleInterval:  SAMPLE_INTERVAL_MS * time.Millisecond,
		DisplayInterval: DISPLAY_INTERVAL_MS * time.Millisecond,
		Window:          FILTER_WINDOW,
		Threshold:       DEFAULT_THRESHOLD_C,
		Step:            THRESHOLD_STEP_C,
		MinThreshold:    MIN_THRESHOLD_C,
		AlarmHz:         ALARM_HZ,
		ConfirmHz:       CONFIRM_HZ,
		Confirm:         CONFIRM_MS * time.Millisecond,
	}

	engine := monitor.New(opts, deps)
	engine.Start()

	for {
		engine.Tick(time.Since(start))
		time.Sleep(time.Millisecond)
	}
}

func configureButton(pin machine.Pin, press func()) {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	err := pin.SetInterrupt(machine.PinFalling, func(machine.Pin) {
		press()
	})
	if err != nil {
		println("button interrupt:", err.Error())
	}
}

// buzzer drives the passive buzzer through a PWM speaker.
type buzzer struct {
	speaker tone.Speaker
	ok      bool
	hz      int
}

func (b *buzzer) Tone(hz int) {
	if !b.ok || hz <= 0 || b.hz == hz {
		return
	}
	b.speaker.SetPeriod(uint64(time.Second) / uint64(hz))
	b.hz = hz
}

func (b *buzzer) Beep(hz int, d time.Duration) {
	b.Tone(hz)
	time.Sleep(d)
	b.Silence()
}

func (b *buzzer) Silence() {
	if !b.ok {
		return
	}
	b.speaker.Stop()
	b.hz = 0
}

// flashDevice keeps the threshold record at the start of the flash data
// area. Flash must be erased before it is written, so every write rewrites
// the whole record.
type flashDevice struct{}

func (flashDevice) ReadAt(p []byte, off int64) (int, error) {
	return machine.Flash.ReadAt(p, off)
}

func (flashDevice) WriteAt(p []byte, off int64) (int, error) {
	var img [nvstore.Size]byte
	if off < 0 || off+int64(len(p)) > int64(len(img)) {
		return 0, nvstore.ErrOutOfRange
	}
	if _, err := machine.Flash.ReadAt(img[:], 0); err != nil {
		return 0, err
	}
	copy(img[off:], p)

	if err := machine.Flash.EraseBlocks(0, 1); err != nil {
		return 0, err
	}
	if _, err := machine.Flash.WriteAt(img[:], 0); err != nil {
		return 0, err
	}
	return len(p), nil
}

// lcd adapts the HD44780 driver to the panel's display primitives.
type lcd struct {
	dev hd44780i2c.Device
}

func newLCD() (*lcd, error) {
	if err := machine.I2C0.Configure(machine.I2CConfig{}); err != nil {
		return nil, err
	}
	dev := hd44780i2c.New(machine.I2C0, LCD_ADDRESS)
	if err := dev.Configure(hd44780i2c.Config{
		Width:  LCD_COLUMNS,
		Height: LCD_ROWS,
	}); err != nil {
		return nil, err
	}
	dev.BacklightOn(true)
	return &lcd{dev: dev}, nil
}

func (l *lcd) Clear() { l.dev.ClearDisplay() }

func (l *lcd) SetCursor(col, row int) { l.dev.SetCursor(uint8(col), uint8(row)) }

func (l *lcd) Print(s string) { l.dev.Print([]byte(s)) }
