package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FailureMessage is the message attached to outcomes of payloads flagged with an error.
const FailureMessage = "Something goes wrong"

// Payload is the decoded body of one queue record.
type Payload struct {
	// ID references the transaction to settle; nil when the body carried no id.
	ID *int64
	// HasError is true when the body carried an "error" key, whatever its value.
	HasError bool
	// Raw keeps the original body for logging.
	Raw json.RawMessage
}

// UnmarshalJSON decodes a record body, detecting the error marker by key presence.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*p = Payload{Raw: append(json.RawMessage(nil), data...)}

	if raw, ok := fields["id"]; ok && string(raw) != "null" {
		id, err := decodeID(raw)
		if err != nil {
			return err
		}
		p.ID = &id
	}
	_, p.HasError = fields["error"]

	return nil
}

// decodeID accepts an integral JSON number (8, 8.0, 8e0) or a string holding
// one ("8").
func decodeID(raw json.RawMessage) (int64, error) {
	text := string(raw)
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, err
		}
		text = strings.TrimSpace(text)
	}

	value, err := decimal.NewFromString(text)
	if err != nil {
		return 0, fmt.Errorf("id %s is not a number", raw)
	}
	if !value.IsInteger() || value.GreaterThan(maxID) || value.LessThan(minID) {
		return 0, fmt.Errorf("id %s is not an integer", raw)
	}
	return value.IntPart(), nil
}

var (
	maxID = decimal.NewFromInt(1<<63 - 1)
	minID = decimal.NewFromInt(-1 << 63)
)

// TrxDetails carries the outcome fields of a settled transaction. Successful
// outcomes fill source, dest, amount and timestamp; failures fill error and message.
type TrxDetails struct {
	Source    *int64     `json:"source,omitempty"`
	Dest      *int64     `json:"dest,omitempty"`
	Amount    *Amount    `json:"amount,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Error     bool       `json:"error,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// Outcome is the result of settling one transaction. It is both the per record
// output returned to the caller and the detail of the emitted domain event.
type Outcome struct {
	ID          uuid.UUID    `json:"id"`
	Status      Status       `json:"status"`
	Transaction *Transaction `json:"transaction,omitempty"`
	TrxDetails  TrxDetails   `json:"trx_details"`
}

// Decide computes the target status and outcome for a payload. It has no side
// effects: the correlation id and processing time are supplied by the caller.
func Decide(payload Payload, trx Transaction, correlationID uuid.UUID, now time.Time) Outcome {
	snapshot := trx
	if payload.HasError {
		return Outcome{
			ID:          correlationID,
			Status:      StatusFailure,
			Transaction: &snapshot,
			TrxDetails: TrxDetails{
				Error:   true,
				Message: FailureMessage,
			},
		}
	}

	source, dest, amount, timestamp := trx.SourceID, trx.DestID, trx.Amount, now
	return Outcome{
		ID:          correlationID,
		Status:      StatusDone,
		Transaction: &snapshot,
		TrxDetails: TrxDetails{
			Source:    &source,
			Dest:      &dest,
			Amount:    &amount,
			Timestamp: &timestamp,
		},
	}
}

// ProcessedTransaction is the per record entry of a batch response.
type ProcessedTransaction struct {
	Input    Transaction `json:"input"`
	Output   Outcome     `json:"output"`
	EBStatus bool        `json:"eb_status"`
}
