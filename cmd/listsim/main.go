// Command listsim drives an engine over a synthetic or HTTP-backed catalog,
// scrolling at a fixed pace and printing one JSON frame per step.
// Prometheus metrics can be served while it runs.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
