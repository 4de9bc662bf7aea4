package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/DavidCuy/p2p-solution-sls-backend/internal/errors"
	transactionDomain "github.com/DavidCuy/p2p-solution-sls-backend/internal/transaction/domain"
	customValidation "github.com/DavidCuy/p2p-solution-sls-backend/internal/validation"
)

// importColumns is the required CSV header; status is optional.
var importColumns = []string{"source_id", "dest_id", "amount"}

// importRow is one CSV line before conversion.
type importRow struct {
	Line     int
	SourceID string
	DestID   string
	Amount   string
	Status   string
}

func (r importRow) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SourceID, validation.Required, customValidation.PositiveInteger),
		validation.Field(&r.DestID, validation.Required, customValidation.PositiveInteger),
		validation.Field(&r.Amount, validation.Required, customValidation.Decimal, customValidation.NonNegativeDecimal),
		validation.Field(&r.Status, customValidation.TransactionStatus),
	)
}

func (r importRow) toTransaction() (*transactionDomain.Transaction, error) {
	sourceID, err := strconv.ParseInt(r.SourceID, 10, 64)
	if err != nil {
		return nil, err
	}
	destID, err := strconv.ParseInt(r.DestID, 10, 64)
	if err != nil {
		return nil, err
	}
	amount, err := transactionDomain.NewAmount(r.Amount)
	if err != nil {
		return nil, err
	}

	status := transactionDomain.StatusCreated
	if r.Status != "" {
		status = transactionDomain.Status(r.Status)
	}

	return &transactionDomain.Transaction{
		SourceID: sourceID,
		DestID:   destID,
		Amount:   amount,
		Status:   status,
	}, nil
}

// Import validates every CSV row before inserting any of them.
func (t *transactionUseCase) Import(ctx context.Context, r io.Reader) (int, error) {
	rows, err := readImportRows(r)
	if err != nil {
		return 0, err
	}

	transactions := make([]*transactionDomain.Transaction, 0, len(rows))
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return 0, customValidation.WrapValidationError(fmt.Errorf("line %d: %w", row.Line, err))
		}
		trx, err := row.toTransaction()
		if err != nil {
			return 0, customValidation.WrapValidationError(fmt.Errorf("line %d: %w", row.Line, err))
		}
		transactions = append(transactions, trx)
	}

	err = t.txManager.WithTx(ctx, func(txCtx context.Context) error {
		for _, trx := range transactions {
			if err := t.repo.Create(txCtx, trx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	t.logger.Info("transactions imported", slog.Int("count", len(transactions)))
	return len(transactions), nil
}

func readImportRows(r io.Reader) ([]importRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "empty import file")
		}
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, column := range importColumns {
		if _, ok := index[column]; !ok {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "missing column "+column)
		}
	}

	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []importRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
		}
		rows = append(rows, importRow{
			Line:     line,
			SourceID: field(record, "source_id"),
			DestID:   field(record, "dest_id"),
			Amount:   field(record, "amount"),
			Status:   field(record, "status"),
		})
	}
	return rows, nil
}
