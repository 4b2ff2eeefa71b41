package main

import (
	"context"
	"os"
	"os/signal"
	"promptlib/cmd/internal/cli"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.RootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
