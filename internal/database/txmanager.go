package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type txContextKey struct{}

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager runs a settlement (row update plus outbox insert or event
// publish) as one database transaction.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type sqlTxManager struct {
	db *sql.DB
}

// NewTxManager returns a TxManager backed by db.
func NewTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

func txFrom(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txContextKey{}).(*sql.Tx)
	return tx, ok
}

// WithTx calls fn with a context carrying the transaction. When ctx already
// carries one, fn joins it and the outer call decides commit or rollback.
// A panic in fn rolls back and is re-raised.
func (m *sqlTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFrom(ctx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	finished := false
	defer func() {
		if !finished {
			if p := recover(); p != nil {
				_ = tx.Rollback()
				panic(p)
			}
		}
	}()

	return finish(tx, fn(context.WithValue(ctx, txContextKey{}, tx)), &finished)
}

// finish commits tx when fnErr is nil and rolls it back otherwise. A failed
// rollback is joined to fnErr.
func finish(tx *sql.Tx, fnErr error, finished *bool) error {
	*finished = true

	if fnErr != nil {
		if err := tx.Rollback(); err != nil {
			return errors.Join(fnErr, fmt.Errorf("failed to rollback transaction: %w", err))
		}
		return fnErr
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetTx returns the transaction carried by ctx, or db outside of one.
func GetTx(ctx context.Context, db *sql.DB) Querier {
	if tx, ok := txFrom(ctx); ok {
		return tx
	}
	return db
}
