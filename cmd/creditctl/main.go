// Command creditctl is the operator CLI for the credit analysis service:
// it loads company files, runs assessments, issues API keys and applies
// database migrations.
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

	if err := newRootCmd(newApp()).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
