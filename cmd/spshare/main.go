package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if logger != nil {
		_ = logger.Close()
	}
	if err != nil {
		stop()
		os.Exit(1)
	}
}
