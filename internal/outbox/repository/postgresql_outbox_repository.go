// Package repository provides persistence for outbox events.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/database"
	apperrors "github.com/DavidCuy/p2p-solution-sls-backend/internal/errors"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/outbox/domain"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/schema"
)

// TableName is the unqualified name of the outbox table.
const TableName = "outbox_events"

// Descriptor describes the outbox table for the model registry.
func Descriptor(schemaName string) schema.Descriptor {
	return schema.Descriptor{
		Name:   "OutboxEvent",
		Schema: schemaName,
		Table:  TableName,
		Columns: []string{
			"id", "event_type", "payload", "status", "retries",
			"last_error", "processed_at", "created_at", "updated_at",
		},
	}
}

// PostgreSQLOutboxEventRepository handles outbox event persistence for PostgreSQL.
type PostgreSQLOutboxEventRepository struct {
	db    *sql.DB
	table string
}

// NewPostgreSQLOutboxEventRepository creates a repository over schemaName.outbox_events.
func NewPostgreSQLOutboxEventRepository(db *sql.DB, schemaName string) *PostgreSQLOutboxEventRepository {
	return &PostgreSQLOutboxEventRepository{
		db:    db,
		table: pq.QuoteIdentifier(schemaName) + "." + pq.QuoteIdentifier(TableName),
	}
}

// Create inserts a new outbox event.
func (r *PostgreSQLOutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf(`INSERT INTO %s (id, event_type, payload, status, retries, last_error, processed_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`, r.table)

	_, err := querier.ExecContext(ctx, query, event.ID, event.EventType, event.Payload, event.Status,
		event.Retries, event.LastError, event.ProcessedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create outbox event")
	}
	return nil
}

// GetPendingEvents locks up to limit pending events, oldest first. Rows locked
// by another relay are skipped.
func (r *PostgreSQLOutboxEventRepository) GetPendingEvents(
	ctx context.Context,
	limit int,
) ([]*domain.OutboxEvent, error) {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf(`SELECT id, event_type, payload, status, retries, last_error, processed_at, created_at, updated_at
			  FROM %s
			  WHERE status = $1
			  ORDER BY created_at ASC
			  LIMIT $2
			  FOR UPDATE SKIP LOCKED`, r.table)

	rows, err := querier.QueryContext(ctx, query, domain.OutboxEventStatusPending, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get pending outbox events")
	}
	defer rows.Close() //nolint:errcheck

	var events []*domain.OutboxEvent
	for rows.Next() {
		var event domain.OutboxEvent

		err := rows.Scan(&event.ID, &event.EventType, &event.Payload, &event.Status,
			&event.Retries, &event.LastError, &event.ProcessedAt, &event.CreatedAt, &event.UpdatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan outbox event")
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate outbox events")
	}

	return events, nil
}

// Update persists the delivery state of an outbox event.
func (r *PostgreSQLOutboxEventRepository) Update(ctx context.Context, event *domain.OutboxEvent) error {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf(`UPDATE %s
			  SET status = $1, retries = $2, last_error = $3, processed_at = $4, updated_at = NOW()
			  WHERE id = $5`, r.table)

	_, err := querier.ExecContext(ctx, query, event.Status, event.Retries, event.LastError,
		event.ProcessedAt, event.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update outbox event")
	}
	return nil
}
