package main

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/tempmon/pkg/link"
)

// showSettingsDialog displays the settings tabs. Changes are written to the
// config file; only the simulation target applies immediately.
func (w *window) showSettingsDialog() {
	tabs := container.NewAppTabs(
		w.createSerialTab(),
		w.createAlarmTab(),
		w.createDisplayTab(),
	)
	if w.backend.sim != nil {
		tabs.Append(w.createSimTab())
	}

	d := dialog.NewCustom("Settings", "Close", tabs, w.window)
	d.Resize(fyne.NewSize(480, 360))
	d.Show()
}

func (w *window) save() {
	if err := w.cfg.Save(w.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), w.window)
		return
	}
	w.log.Info("configuration saved", "path", w.configPath)
}

// createSerialTab selects the port the log stream is copied to.
func (w *window) createSerialTab() *container.TabItem {
	ports, err := link.Ports()
	portOptions := []string{}
	if err == nil {
		for _, port := range ports {
			portOptions = append(portOptions, port.Name)
		}
	} else {
		w.log.Warn("failed to list serial ports", "error", err)
	}

	current := w.cfg.Serial.Port
	found := false
	for _, opt := range portOptions {
		if opt == current {
			found = true
			break
		}
	}
	if !found && current != "" {
		portOptions = append(portOptions, current)
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if current != "" {
		portSelect.SetSelected(current)
	}
	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(w.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			w.cfg.Serial.Port = portSelect.Selected
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				w.cfg.Serial.BaudRate = baud
			}
			w.save()
		},
	}

	return container.NewTabItem("Serial", form)
}

// createAlarmTab edits the compiled-in default threshold and the step. The
// stored threshold takes precedence at startup.
func (w *window) createAlarmTab() *container.TabItem {
	thresholdEntry := widget.NewEntry()
	thresholdEntry.SetText(fmt.Sprintf("%.1f", w.cfg.Alarm.Threshold))

	stepEntry := widget.NewEntry()
	stepEntry.SetText(fmt.Sprintf("%.1f", w.cfg.Alarm.Step))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Default Threshold (°C)", Widget: thresholdEntry},
			{Text: "Step (°C)", Widget: stepEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseFloat(thresholdEntry.Text, 32); err == nil {
				w.cfg.Alarm.Threshold = float32(v)
			}
			if v, err := strconv.ParseFloat(stepEntry.Text, 32); err == nil && v > 0 {
				w.cfg.Alarm.Step = float32(v)
			}
			w.save()
		},
	}

	return container.NewTabItem("Alarm", form)
}

func (w *window) createDisplayTab() *container.TabItem {
	fahrenheit := widget.NewCheck("Show temperature in °F", nil)
	fahrenheit.SetChecked(w.cfg.Display.Fahrenheit)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Units", Widget: fahrenheit},
		},
		OnSubmit: func() {
			w.cfg.Display.Fahrenheit = fahrenheit.Checked
			w.save()
		},
	}

	return container.NewTabItem("Display", form)
}

// createSimTab moves the simulated temperature target.
func (w *window) createSimTab() *container.TabItem {
	targetEntry := widget.NewEntry()
	targetEntry.SetText(fmt.Sprintf("%.1f", w.cfg.Sim.Target))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Target (°C)", Widget: targetEntry},
		},
		OnSubmit: func() {
			v, err := strconv.ParseFloat(targetEntry.Text, 32)
			if err != nil {
				dialog.ShowError(fmt.Errorf("invalid target %q: %w", targetEntry.Text, err), w.window)
				return
			}
			w.cfg.Sim.Target = float32(v)
			w.backend.sim.SetTarget(float32(v))
			w.log.Info("simulation target changed", "target", v)
			w.save()
		},
	}

	return container.NewTabItem("Simulation", form)
}
