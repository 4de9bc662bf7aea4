package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records use case and handler activity. Domain is "p2p" for
// the transaction use cases and "lambda" for handler invocations.
type BusinessMetrics interface {
	// RecordOperation counts one operation with its status label.
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration observes the latency of one operation in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordSettlement counts a settled transaction by its final status and
	// whether the bus acknowledged its event.
	RecordSettlement(ctx context.Context, status string, acknowledged bool)
}

// Operation status labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// StatusFor returns the status label for an operation result.
func StatusFor(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}

type businessMetrics struct {
	operations  metric.Int64Counter
	durations   metric.Float64Histogram
	settlements metric.Int64Counter
}

// NewBusinessMetrics creates the instruments on meterProvider, named
// "<namespace>_operations_total", "<namespace>_operation_duration_seconds"
// and "<namespace>_settlements_total".
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace + "/business")

	operations, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of business operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durations, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of business operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	settlements, err := meter.Int64Counter(
		fmt.Sprintf("%s_settlements_total", namespace),
		metric.WithDescription("Transactions settled by final status and event acknowledgment"),
		metric.WithUnit("{transaction}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create settlement counter: %w", err)
	}

	return &businessMetrics{
		operations:  operations,
		durations:   durations,
		settlements: settlements,
	}, nil
}

func operationAttributes(domain, operation, status string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operations.Add(ctx, 1, operationAttributes(domain, operation, status))
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durations.Record(ctx, duration.Seconds(), operationAttributes(domain, operation, status))
}

func (b *businessMetrics) RecordSettlement(ctx context.Context, status string, acknowledged bool) {
	b.settlements.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
		attribute.String("eb_status", strconv.FormatBool(acknowledged)),
	))
}

// NoOpBusinessMetrics discards everything. Used when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a NoOpBusinessMetrics.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {}

func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}

func (n *NoOpBusinessMetrics) RecordSettlement(ctx context.Context, status string, acknowledged bool) {}
