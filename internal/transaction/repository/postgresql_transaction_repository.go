// Package repository implements persistence for P2P transactions.
//
// Statements run through database.GetTx() so they join the transaction carried
// by the context when one exists.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/database"
	apperrors "github.com/DavidCuy/p2p-solution-sls-backend/internal/errors"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/schema"
	transactionDomain "github.com/DavidCuy/p2p-solution-sls-backend/internal/transaction/domain"
)

// TableName is the unqualified name of the transactions table.
const TableName = "p2p_transaction"

// selectColumns lists the columns read back for every transaction.
var selectColumns = []string{"id", "source_id", "dest_id", "amount", "status", "created_at"}

// updateColumns lists the columns an update may change.
var updateColumns = []string{"source_id", "dest_id", "amount", "status"}

// Descriptor describes the transactions table for the model registry.
func Descriptor(schemaName string) schema.Descriptor {
	return schema.Descriptor{
		Name:    "P2PTransaction",
		Schema:  schemaName,
		Table:   TableName,
		Columns: selectColumns,
	}
}

// PostgreSQLTransactionRepository implements Transaction persistence for PostgreSQL.
type PostgreSQLTransactionRepository struct {
	db    *sql.DB
	table string
}

// GetByID retrieves a Transaction by its primary key.
func (p *PostgreSQLTransactionRepository) GetByID(
	ctx context.Context,
	id int64,
) (*transactionDomain.Transaction, error) {
	querier := database.GetTx(ctx, p.db)

	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE id = $1`,
		strings.Join(selectColumns, ", "),
		p.table,
	)

	trx, err := scanTransaction(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Wrapf(transactionDomain.ErrTransactionNotFound, "id %d", id)
		}
		return nil, apperrors.Wrap(err, "failed to get transaction")
	}

	return trx, nil
}

// Update writes the mutable columns of trx in a single statement.
func (p *PostgreSQLTransactionRepository) Update(
	ctx context.Context,
	trx *transactionDomain.Transaction,
) error {
	querier := database.GetTx(ctx, p.db)

	query := fmt.Sprintf(
		`UPDATE %s SET %s WHERE id = $%d`,
		p.table,
		buildSetClause(updateColumns, 1),
		len(updateColumns)+1,
	)

	result, err := querier.ExecContext(
		ctx,
		query,
		trx.SourceID,
		trx.DestID,
		trx.Amount,
		trx.Status,
		trx.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update transaction")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows")
	}
	if rows == 0 {
		return apperrors.Wrapf(transactionDomain.ErrTransactionNotFound, "id %d", trx.ID)
	}

	return nil
}

// Create inserts trx and fills its generated id and creation time.
func (p *PostgreSQLTransactionRepository) Create(
	ctx context.Context,
	trx *transactionDomain.Transaction,
) error {
	querier := database.GetTx(ctx, p.db)

	if trx.Status == "" {
		trx.Status = transactionDomain.StatusCreated
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (source_id, dest_id, amount, status) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		p.table,
	)

	err := querier.QueryRowContext(
		ctx,
		query,
		trx.SourceID,
		trx.DestID,
		trx.Amount,
		trx.Status,
	).Scan(&trx.ID, &trx.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create transaction")
	}

	return nil
}

// List retrieves transactions matching filter, newest first.
func (p *PostgreSQLTransactionRepository) List(
	ctx context.Context,
	filter transactionDomain.ListFilter,
) ([]*transactionDomain.Transaction, error) {
	querier := database.GetTx(ctx, p.db)

	var (
		conditions []string
		args       []any
	)
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.SourceID != nil {
		args = append(args, *filter.SourceID)
		conditions = append(conditions, fmt.Sprintf("source_id = $%d", len(args)))
	}
	if filter.DestID != nil {
		args = append(args, *filter.DestID)
		conditions = append(conditions, fmt.Sprintf("dest_id = $%d", len(args)))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", strings.Join(selectColumns, ", "), p.table)
	if len(conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}
	args = append(args, filter.Limit, filter.Offset)
	fmt.Fprintf(&sb, " ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := querier.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list transactions")
	}
	defer func() {
		_ = rows.Close()
	}()

	transactions := make([]*transactionDomain.Transaction, 0)
	for rows.Next() {
		trx, err := scanTransaction(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan transaction")
		}
		transactions = append(transactions, trx)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate transactions")
	}

	return transactions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*transactionDomain.Transaction, error) {
	var trx transactionDomain.Transaction
	err := row.Scan(
		&trx.ID,
		&trx.SourceID,
		&trx.DestID,
		&trx.Amount,
		&trx.Status,
		&trx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &trx, nil
}

// buildSetClause renders "col = $n" pairs for an UPDATE, numbering from start.
func buildSetClause(columns []string, start int) string {
	parts := make([]string, len(columns))
	for i, column := range columns {
		parts[i] = fmt.Sprintf("%s = $%d", column, start+i)
	}
	return strings.Join(parts, ", ")
}

// NewPostgreSQLTransactionRepository creates a repository over schemaName.p2p_transaction.
func NewPostgreSQLTransactionRepository(db *sql.DB, schemaName string) *PostgreSQLTransactionRepository {
	return &PostgreSQLTransactionRepository{
		db:    db,
		table: pq.QuoteIdentifier(schemaName) + "." + pq.QuoteIdentifier(TableName),
	}
}
