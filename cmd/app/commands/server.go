package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/app"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/config"
)

const shutdownTimeout = 30 * time.Second

// service is a long running listener started and stopped by RunServer.
type service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

type namedService struct {
	name string
	service
}

// RunServer serves the API (and the metrics endpoint when enabled) until
// SIGINT/SIGTERM or the first listener failure.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	logger.Info("starting server", slog.String("version", version))

	api, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}
	services := []namedService{{name: "api server", service: api}}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}
	if metricsServer != nil {
		services = append(services, namedService{name: "metrics server", service: metricsServer})
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return runServices(ctx, logger, services)
}

// runServices starts every service and stops them all once ctx is done or
// one of them fails.
func runServices(ctx context.Context, logger *slog.Logger, services []namedService) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, s := range services {
		g.Go(func() error {
			if err := s.Start(gctx); err != nil {
				return fmt.Errorf("%s: %w", s.name, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("stopping services", slog.Int("count", len(services)))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		var errs []error
		for _, s := range services {
			if err := s.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("%s shutdown: %w", s.name, err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
