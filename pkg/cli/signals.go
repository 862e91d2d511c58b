package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler returns a context cancelled on SIGINT or SIGTERM. A
// second signal is not intercepted, so a stuck shutdown can still be killed.
func SetupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		signal.Stop(sigChan)
		cancel()
	}()

	return ctx
}

// WaitForShutdown returns a channel that receives the first SIGINT or
// SIGTERM. Commands that want to report which signal arrived use this
// instead of SetupSignalHandler.
func WaitForShutdown() <-chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	return sigChan
}
