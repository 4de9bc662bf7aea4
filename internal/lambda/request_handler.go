package lambda

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	apperrors "github.com/DavidCuy/p2p-solution-sls-backend/internal/errors"
	transactionDomain "github.com/DavidCuy/p2p-solution-sls-backend/internal/transaction/domain"
	transactionUseCase "github.com/DavidCuy/p2p-solution-sls-backend/internal/transaction/usecase"
)

// MissingRecordsMessage is returned when an event has no Records collection.
const MissingRecordsMessage = "No records founded"

// batchEvent is a queue delivery. Records is nil when the key is absent or null.
type batchEvent struct {
	Records *[]batchRecord `json:"Records"`
}

// batchRecord is one queue record. Body is either a JSON document or a string
// holding one.
type batchRecord struct {
	MessageID string          `json:"messageId"`
	Body      json.RawMessage `json:"body"`
}

// RequestResult is the body of a successful batch response.
type RequestResult struct {
	Message      string                                   `json:"message"`
	Transactions []transactionDomain.ProcessedTransaction `json:"transactions"`
}

// NewRequestHandler settles the records of a queue batch one by one, in
// order. A batch without records answers an ErrorResult. Any other failure,
// a malformed body included, is returned to the runtime and leaves the
// records before it settled.
func NewRequestHandler(useCase transactionUseCase.TransactionUseCase, logger *slog.Logger) Handler {
	return HandlerFunc(func(ctx context.Context, event json.RawMessage) (any, error) {
		var batch batchEvent
		if err := json.Unmarshal(event, &batch); err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid batch event: %v", err)
		}

		if batch.Records == nil {
			logger.Warn("batch rejected", slog.Any("error", transactionDomain.ErrMissingRecords))
			return ErrorResult{Error: true, Message: MissingRecordsMessage}, nil
		}

		processed := make([]transactionDomain.ProcessedTransaction, 0, len(*batch.Records))
		for _, record := range *batch.Records {
			payload, err := decodeBody(record.Body)
			if err != nil {
				return nil, apperrors.Wrap(err, "record "+record.MessageID)
			}
			logger.Debug("record decoded",
				slog.String("message_id", record.MessageID),
				slog.Any("body", payload.Raw),
			)

			settled, err := useCase.Process(ctx, []transactionDomain.Payload{payload})
			if err != nil {
				return nil, err
			}
			processed = append(processed, settled...)
		}

		return NewAPIResponse(RequestResult{Message: "OK", Transactions: processed}, http.StatusOK), nil
	})
}

// decodeBody unwraps a string encoded body before decoding the payload.
func decodeBody(body json.RawMessage) (transactionDomain.Payload, error) {
	var payload transactionDomain.Payload

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return payload, apperrors.Wrap(apperrors.ErrInvalidInput, "missing body")
	}

	if body[0] == '"' {
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			return payload, apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
		}
		body = json.RawMessage(inner)
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid body: %v", err)
	}
	return payload, nil
}
