//go:build tinygo

package main

import "machine"

const (
	// Loop timing
	SAMPLE_INTERVAL_MS  = 250 // Sample, filter, alarm and log tick
	DISPLAY_INTERVAL_MS = 500 // LCD refresh tick
	FILTER_WINDOW       = 10  // Moving average length

	// Threshold
	DEFAULT_THRESHOLD_C = 35.0  // Used when flash holds no valid record
	THRESHOLD_STEP_C    = 0.5   // Per button press
	MIN_THRESHOLD_C     = -10.0 // Lower clamp
	STORAGE_MAGIC       = 0x1234

	// Buzzer
	ALARM_HZ   = 1800
	CONFIRM_HZ = 2000
	CONFIRM_MS = 80 // Confirmation beep blocks the loop

	// ADC configuration. machine.ADC.Get scales every conversion to 16 bits,
	// so the transfer function uses 16-bit counts regardless of the hardware
	// resolution.
	ADC_REFERENCE_V  = 3.3
	ADC_COUNTS_BITS  = 16
	LM35_MV_PER_C    = 10
	ADC_HW_BITS      = 12
	ADC_REFERENCE_MV = 3300

	// Pins
	PIN_LM35   = machine.A0
	PIN_UP     = machine.D1
	PIN_DOWN   = machine.D2
	PIN_BUZZER = machine.D8

	// Optional 16x2 HD44780 behind a PCF8574 backpack on the default I2C bus
	USE_LCD     = false
	LCD_ADDRESS = 0x27
	LCD_COLUMNS = 16
	LCD_ROWS    = 2

	// Serial log stream
	UART_BAUD_RATE = 9600
)

// PWM peripheral driving PIN_BUZZER (D8 = PA07 = TCC1/WO[1] on the XIAO).
var buzzerPWM = machine.TCC1
