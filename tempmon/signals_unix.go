//go:build unix

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/itohio/tempmon/pkg/button"
)

// watchSignals presses up on SIGUSR1 and down on SIGUSR2 until ctx is done.
func watchSignals(ctx context.Context, buttons *button.Buttons, log *slog.Logger) {
	sig := make(chan os.Signal, 4)
	signal.Notify(sig, syscall.SIGUSR1, syscall.SIGUSR2)

	go func() {
		defer signal.Stop(sig)
		for {
			select {
			case <-ctx.Done():
				return
			case s := <-sig:
				log.Debug("button signal", "signal", s)
				if s == syscall.SIGUSR1 {
					buttons.PressUp()
				} else {
					buttons.PressDown()
				}
			}
		}
	}()
}
