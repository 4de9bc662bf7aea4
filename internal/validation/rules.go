// Package validation provides custom validation rules for the application.
package validation

import (
	"strconv"
	"strings"

	validation "github.com/jellydator/validation"
	"github.com/shopspring/decimal"

	apperrors "github.com/DavidCuy/p2p-solution-sls-backend/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Decimal validates that a string is a decimal number.
var Decimal = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := decimal.NewFromString(strings.TrimSpace(s))
		return err == nil
	},
	validation.NewError("validation_decimal", "must be a decimal number"),
)

// NonNegativeDecimal validates that a decimal string is zero or greater.
// Unparsable values are left to Decimal.
var NonNegativeDecimal = validation.NewStringRuleWithError(
	func(s string) bool {
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return true
		}
		return !d.IsNegative()
	},
	validation.NewError("validation_non_negative", "must not be negative"),
)

// TransactionStatus validates a transaction status name.
var TransactionStatus = validation.In("created", "done", "failure").
	Error("must be one of created, done, failure")

// PositiveInteger validates that a string is an integer greater than zero.
var PositiveInteger = validation.NewStringRuleWithError(
	func(s string) bool {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		return err == nil && n > 0
	},
	validation.NewError("validation_positive_integer", "must be a positive integer"),
)
