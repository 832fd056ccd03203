package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/infobase-backend/internal/app"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if err := os.MkdirAll(cfg.Files.UploadFolder, 0o755); err != nil {
		return fmt.Errorf("create upload folder: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.NewWithConfig(ctx, log, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	log.Info("Starting infobase", "addr", cfg.Addr(), "version", cfg.ServiceVersion)
	if err := a.Run(ctx); err != nil {
		log.Error("Server stopped with error", "error", err)
		return err
	}
	log.Info("Server stopped")
	return nil
}
