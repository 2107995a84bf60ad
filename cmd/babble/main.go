// Command babble is the operator CLI: course building, corpus filling,
// migrations and test tokens.
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

	if err := newCLI(os.Stdout, os.Stderr).root().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
