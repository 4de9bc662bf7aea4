// Package domain defines the P2P transaction entity, its status lifecycle and
// the payloads exchanged while a transaction is settled.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a P2P transaction.
type Status string

const (
	StatusCreated Status = "created"
	StatusDone    Status = "done"
	StatusFailure Status = "failure"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusCreated, StatusDone, StatusFailure:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether s can no longer move back to created.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusFailure
}

// Amount is a decimal amount that serializes as a JSON number.
type Amount struct {
	decimal.Decimal
}

// NewAmount builds an Amount from its string representation.
func NewAmount(value string) (Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Decimal: d}, nil
}

// AmountFromFloat builds an Amount from a float64.
func AmountFromFloat(value float64) Amount {
	return Amount{Decimal: decimal.NewFromFloat(value)}
}

// MarshalJSON renders the amount unquoted.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// Transaction is a peer-to-peer fund transfer between two accounts.
type Transaction struct {
	ID        int64     `json:"id"`
	SourceID  int64     `json:"source_id"`
	DestID    int64     `json:"dest_id"`
	Amount    Amount    `json:"amount"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// WithStatus returns a copy of the transaction moved to target. The receiver is
// left untouched so callers can discard the copy when persisting it fails.
// Moving back to created is rejected; re-applying a terminal status is allowed.
func (t Transaction) WithStatus(target Status) (Transaction, error) {
	if !target.IsValid() || target == StatusCreated {
		return t, ErrInvalidStatusTransition
	}
	t.Status = target
	return t, nil
}

// ListFilter narrows transaction listings.
type ListFilter struct {
	Status   *Status
	SourceID *int64
	DestID   *int64
	Offset   int
	Limit    int
}
