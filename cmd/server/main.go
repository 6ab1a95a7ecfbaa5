package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"duediligence/internal/app"
	"duediligence/internal/platform/config"
	"duediligence/internal/platform/logger"
)

// main loads configuration, builds the application and runs it until an
// interrupt or SIGTERM arrives.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Server.Environment)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer application.Close()

	return application.Run(ctx)
}
