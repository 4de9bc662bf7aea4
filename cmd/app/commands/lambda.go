package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/app"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/config"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/lambda"
)

// RunLambda starts the handler named by name (or LAMBDA_HANDLER, then
// AWS_LAMBDA_FUNCTION_NAME) under the Lambda runtime. It does not return on success.
func RunLambda(ctx context.Context, name string) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()

	registry, err := container.LambdaRegistry()
	if err != nil {
		closeContainer(container, logger)
		return fmt.Errorf("failed to initialize lambda handlers: %w", err)
	}

	selected, handler, err := resolveHandler(registry, name, cfg.LambdaHandler, cfg.LambdaName)
	if err != nil {
		closeContainer(container, logger)
		return err
	}

	logger.Info("starting lambda runtime", slog.String("handler", selected))
	lambda.Start(handler)
	return nil
}

// RunInvoke runs one handler locally with the event read from in and writes the
// response to out.
func RunInvoke(ctx context.Context, registry *lambda.Registry, name string, in io.Reader, out io.Writer) error {
	_, handler, err := resolveHandler(registry, name)
	if err != nil {
		return err
	}

	event, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read event: %w", err)
	}
	if len(strings.TrimSpace(string(event))) == 0 {
		event = []byte("{}")
	}
	if !json.Valid(event) {
		return fmt.Errorf("event is not valid JSON")
	}

	resp, err := handler.Invoke(ctx, event)
	if err != nil {
		return fmt.Errorf("function %s failed: %w", name, err)
	}

	return writeJSON(out, resp)
}

// resolveHandler returns the handler registered under the first non-empty name.
func resolveHandler(registry *lambda.Registry, names ...string) (string, lambda.Handler, error) {
	for _, name := range names {
		if name == "" {
			continue
		}
		handler, ok := registry.Get(name)
		if !ok {
			return "", nil, fmt.Errorf("unknown handler %q (available: %s)", name, strings.Join(registry.Names(), ", "))
		}
		return name, handler, nil
	}
	return "", nil, fmt.Errorf("no handler selected (available: %s)", strings.Join(registry.Names(), ", "))
}
