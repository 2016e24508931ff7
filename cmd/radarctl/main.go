// radarctl queries and feeds the scholarship catalog from the command line.
// It opens the catalog directly (SQLite by default) or talks to a running
// server over gRPC with --grpc.
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
