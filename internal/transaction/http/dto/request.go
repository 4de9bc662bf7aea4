// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"strconv"

	validation "github.com/jellydator/validation"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/httputil"
	transactionDomain "github.com/DavidCuy/p2p-solution-sls-backend/internal/transaction/domain"
	customValidation "github.com/DavidCuy/p2p-solution-sls-backend/internal/validation"
)

// ListTransactionsQuery contains the raw query parameters of a transaction listing.
type ListTransactionsQuery struct {
	Status   string
	SourceID string
	DestID   string
	Offset   string
	Limit    string
}

// NewListTransactionsQuery reads the listing parameters through get, which
// returns an empty string for absent keys.
func NewListTransactionsQuery(get func(key string) string) ListTransactionsQuery {
	return ListTransactionsQuery{
		Status:   get("status"),
		SourceID: get("source_id"),
		DestID:   get("dest_id"),
		Offset:   get("offset"),
		Limit:    get("limit"),
	}
}

// Validate checks if the listing filters are valid.
func (q *ListTransactionsQuery) Validate() error {
	return validation.ValidateStruct(q,
		validation.Field(&q.Status, customValidation.TransactionStatus),
		validation.Field(&q.SourceID, customValidation.PositiveInteger),
		validation.Field(&q.DestID, customValidation.PositiveInteger),
	)
}

// ToFilter validates the query and converts it into a domain filter.
func (q *ListTransactionsQuery) ToFilter() (transactionDomain.ListFilter, error) {
	if err := q.Validate(); err != nil {
		return transactionDomain.ListFilter{}, customValidation.WrapValidationError(err)
	}

	page, err := httputil.ParsePage(q.Offset, q.Limit)
	if err != nil {
		return transactionDomain.ListFilter{}, customValidation.WrapValidationError(err)
	}

	filter := transactionDomain.ListFilter{Offset: page.Offset, Limit: page.Limit}
	if q.Status != "" {
		status := transactionDomain.Status(q.Status)
		filter.Status = &status
	}
	if q.SourceID != "" {
		id, _ := strconv.ParseInt(q.SourceID, 10, 64)
		filter.SourceID = &id
	}
	if q.DestID != "" {
		id, _ := strconv.ParseInt(q.DestID, 10, 64)
		filter.DestID = &id
	}

	return filter, nil
}

// ParseTransactionID converts a path parameter into a transaction id.
func ParseTransactionID(value string) (int64, error) {
	if err := validation.Validate(value, validation.Required, customValidation.PositiveInteger); err != nil {
		return 0, customValidation.WrapValidationError(validation.Errors{"id": err})
	}
	return strconv.ParseInt(value, 10, 64)
}
