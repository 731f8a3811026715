package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Clark-Hu/movie-ratings/internal/apiclient"
	"github.com/Clark-Hu/movie-ratings/internal/config"
	"github.com/Clark-Hu/movie-ratings/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	client, err := apiclient.NewHTTPClient(cfg.APIBaseURL, cfg.RequestTimeout(), logger)
	if err != nil {
		logger.Fatal("init api client", zap.Error(err))
	}

	a := newApp(client, cfg.RequestTimeout(), logger)
	if err := a.run(ctx, os.Stdin, os.Stdout); err != nil {
		logger.Error("session ended", zap.Error(err))
		os.Exit(1)
	}
}
