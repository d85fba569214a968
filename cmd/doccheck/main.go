package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bryanwahyu/rentdoc/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logger.Log.Error(err)
		stop()
		os.Exit(1)
	}
}
