package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// shutdownContext returns a context that cancels on the first
// SIGINT/SIGTERM and force-exits on the second. The first signal lets an
// in-flight request or poll loop unwind cleanly; the second is for when
// something hangs.
func shutdownContext(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)

		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
			return
		}

		select {
		case sig := <-sigCh:
			fmt.Fprintf(os.Stderr, "received %s again, forcing exit\n", sig)
			os.Exit(1)
		case <-parent.Done():
			return
		}
	}()

	return ctx
}
