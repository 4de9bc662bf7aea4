package validation

import (
	"errors"
	"testing"

	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/DavidCuy/p2p-solution-sls-backend/internal/errors"
)

func TestNotBlank(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{name: "valid string", value: "p2p", shouldErr: false},
		{name: "empty string", value: "", shouldErr: false},
		{name: "only spaces", value: "   ", shouldErr: true},
		{name: "only tabs", value: "\t\t", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Validate(tt.value, NotBlank)
			if tt.shouldErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "must not be blank")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecimal(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{name: "integer", value: "17", shouldErr: false},
		{name: "fraction", value: "17.50", shouldErr: false},
		{name: "surrounding spaces", value: " 3.2 ", shouldErr: false},
		{name: "negative", value: "-1", shouldErr: false},
		{name: "word", value: "seventeen", shouldErr: true},
		{name: "two dots", value: "1.2.3", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Validate(tt.value, Decimal)
			if tt.shouldErr {
				assert.ErrorContains(t, err, "must be a decimal number")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNonNegativeDecimal(t *testing.T) {
	assert.NoError(t, validation.Validate("0", NonNegativeDecimal))
	assert.NoError(t, validation.Validate("12.5", NonNegativeDecimal))
	assert.NoError(t, validation.Validate("not a number", NonNegativeDecimal))
	assert.ErrorContains(t, validation.Validate("-0.01", NonNegativeDecimal), "must not be negative")
}

func TestTransactionStatus(t *testing.T) {
	assert.NoError(t, validation.Validate("created", TransactionStatus))
	assert.NoError(t, validation.Validate("done", TransactionStatus))
	assert.NoError(t, validation.Validate("failure", TransactionStatus))
	assert.NoError(t, validation.Validate("", TransactionStatus))
	assert.ErrorContains(t, validation.Validate("pending", TransactionStatus), "must be one of")
}

func TestWrapValidationError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		assert.Nil(t, WrapValidationError(nil))
	})

	t.Run("validation error wraps as ErrInvalidInput", func(t *testing.T) {
		err := WrapValidationError(errors.New("amount: must not be negative"))
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		assert.Contains(t, err.Error(), "amount: must not be negative")
	})
}

func TestPositiveInteger(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{name: "positive", value: "8", shouldErr: false},
		{name: "empty string", value: "", shouldErr: false},
		{name: "zero", value: "0", shouldErr: true},
		{name: "negative", value: "-3", shouldErr: true},
		{name: "fraction", value: "1.5", shouldErr: true},
		{name: "word", value: "eight", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Validate(tt.value, PositiveInteger)
			if tt.shouldErr {
				assert.ErrorContains(t, err, "must be a positive integer")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
