//go:build !unix

package main

import (
	"context"
	"log/slog"

	"github.com/itohio/tempmon/pkg/button"
)

// watchSignals is a no-op where SIGUSR1/SIGUSR2 do not exist; use the window buttons.
func watchSignals(_ context.Context, _ *button.Buttons, log *slog.Logger) {
	log.Debug("button signals not supported on this platform")
}
