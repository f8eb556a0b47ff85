package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/docaffix/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
