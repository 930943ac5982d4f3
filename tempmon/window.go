package main

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/tempmon/pkg/config"
	"github.com/itohio/tempmon/pkg/lcd"
)

// window is the virtual front panel: the LCD plus the two threshold buttons.
type window struct {
	cfg        *config.Config
	configPath string
	backend    *backend
	log        *slog.Logger

	app    fyne.App
	window fyne.Window
}

func newWindow(cfg *config.Config, configPath string, buf *lcd.Buffer, be *backend, log *slog.Logger) *window {
	application := app.NewWithID("com.itohio.tempmon")

	w := &window{
		cfg:        cfg,
		configPath: configPath,
		backend:    be,
		log:        log,
		app:        application,
		window:     application.NewWindow("Temperature Monitor"),
	}

	content := container.NewBorder(
		w.createToolbar(),
		nil,
		nil,
		nil,
		container.NewPadded(lcd.NewWidget(buf)),
	)
	w.window.SetContent(content)
	w.window.SetFixedSize(true)
	w.window.CenterOnScreen()

	return w
}

// createToolbar creates the Up, Down and Settings buttons. Up and Down press
// the same latches as the physical buttons.
func (w *window) createToolbar() fyne.CanvasObject {
	upBtn := widget.NewButtonWithIcon("", theme.MoveUpIcon(), func() {
		w.backend.buttons.PressUp()
	})
	downBtn := widget.NewButtonWithIcon("", theme.MoveDownIcon(), func() {
		w.backend.buttons.PressDown()
	})
	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		w.showSettingsDialog()
	})

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(upBtn, downBtn),
		settingsBtn,
		nil,
	)
}

// ShowAndRun blocks until the window is closed.
func (w *window) ShowAndRun() {
	w.window.ShowAndRun()
}

// Quit closes the application from any goroutine.
func (w *window) Quit() {
	fyne.Do(w.app.Quit)
}
