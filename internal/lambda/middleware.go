package lambda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/metrics"
)

const metricsDomain = "lambda"

// LoggingMiddleware logs the event before and the response after every
// invocation. Failures are logged and returned unchanged.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, event json.RawMessage) (any, error) {
			log := logger
			if lc, ok := lambdacontext.FromContext(ctx); ok {
				log = logger.With(
					slog.String("aws_request_id", lc.AwsRequestID),
					slog.String("function_arn", lc.InvokedFunctionArn),
				)
			}

			log.Info("lambda invocation", slog.Any("event", event))
			start := time.Now()

			resp, err := next.Invoke(ctx, event)
			if err != nil {
				log.Error("lambda invocation failed",
					slog.Any("error", err),
					slog.Duration("duration", time.Since(start)),
				)
				return nil, err
			}

			log.Info("lambda response",
				slog.Any("response", resp),
				slog.Duration("duration", time.Since(start)),
			)
			return resp, nil
		})
	}
}

// RecoveryMiddleware turns panics into errors.
func RecoveryMiddleware(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, event json.RawMessage) (resp any, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic recovered", slog.Any("error", r))
					resp, err = nil, fmt.Errorf("panic recovered: %v", r)
				}
			}()
			return next.Invoke(ctx, event)
		})
	}
}

// MetricsMiddleware records the count and duration of invocations as operation.
func MetricsMiddleware(m metrics.BusinessMetrics, operation string) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, event json.RawMessage) (any, error) {
			start := time.Now()
			resp, err := next.Invoke(ctx, event)

			status := metrics.StatusFor(err)
			m.RecordOperation(ctx, metricsDomain, operation, status)
			m.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)

			return resp, err
		})
	}
}
