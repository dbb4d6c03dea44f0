package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// signalContext cancels the returned context on SIGINT or SIGTERM so that
// long sweeps stop at the next run boundary.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
