package cli

import (
	"syscall"
	"testing"
	"time"
)

func TestSetupSignalHandlerNotCancelledInitially(t *testing.T) {
	ctx := SetupSignalHandler()

	select {
	case <-ctx.Done():
		t.Error("context cancelled before any signal")
	default:
	}
}

func TestSetupSignalHandlerCancelsOnSignal(t *testing.T) {
	ctx := SetupSignalHandler()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("failed to send signal: %v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled after SIGTERM")
	}
}

func TestWaitForShutdownDelivers(t *testing.T) {
	sigChan := WaitForShutdown()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("failed to send signal: %v", err)
	}

	select {
	case sig := <-sigChan:
		if sig != syscall.SIGTERM {
			t.Errorf("got signal %v, want SIGTERM", sig)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("signal not delivered")
	}
}
