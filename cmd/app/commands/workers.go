package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/app"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/config"
)

// RunConsume feeds queue messages to the request handler until SIGINT/SIGTERM.
func RunConsume(ctx context.Context) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	consumer, err := container.QueueConsumer()
	if err != nil {
		return fmt.Errorf("failed to initialize queue consumer: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting queue consumer", slog.String("subscription", cfg.QueueSubscriptionURL))
	return consumer.Run(ctx)
}

// RunOutboxRelay drains pending outbox events to OUTBOX_TARGET_DRIVER until SIGINT/SIGTERM.
func RunOutboxRelay(ctx context.Context) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	relay, err := container.OutboxRelay()
	if err != nil {
		return fmt.Errorf("failed to initialize outbox relay: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("relaying outbox events", slog.String("target", cfg.OutboxTargetDriver))
	if err := relay.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
