package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/perfura/storefront/internal/config"
	"github.com/perfura/storefront/internal/logging"
	"github.com/urfave/cli/v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	logger := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.App{
		Name:  "perfura",
		Usage: "Perfura storefront service",
		Commands: []*cli.Command{
			serve(cfg, logger),
			migrateCommand(cfg, logger),
			seedCommand(cfg, logger),
			productCommand(cfg, logger),
			pendingCommand(cfg, logger),
		},
	}

	if err := cmd.RunContext(ctx, os.Args); err != nil {
		logger.Fatal().Err(err).Msg("command failed")
	}
}
