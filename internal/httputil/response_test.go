package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/DavidCuy/p2p-solution-sls-backend/internal/errors"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedErr  string
	}{
		{"not found", apperrors.Wrap(apperrors.ErrNotFound, "transaction 8"), http.StatusNotFound, "not_found"},
		{"conflict", apperrors.ErrConflict, http.StatusConflict, "conflict"},
		{"invalid input", apperrors.Wrap(apperrors.ErrInvalidInput, "bad amount"), http.StatusUnprocessableEntity, "invalid_input"},
		{"unavailable", apperrors.ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, response := MapError(tt.err)
			assert.Equal(t, tt.expectedCode, code)
			assert.Equal(t, tt.expectedErr, response.Error)
		})
	}

	t.Run("invalid input exposes message", func(t *testing.T) {
		_, response := MapError(apperrors.Wrap(apperrors.ErrInvalidInput, "bad amount"))
		assert.Equal(t, "bad amount: invalid input", response.Message)
	})

	t.Run("internal error hides message", func(t *testing.T) {
		_, response := MapError(errors.New("password=secret"))
		assert.NotContains(t, response.Message, "secret")
	})
}

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("MapsSentinel", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		WriteError(c, apperrors.Wrap(apperrors.ErrNotFound, "transaction 8"), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "not_found", response.Error)
	})

	t.Run("NilWritesNothing", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		WriteError(c, nil, nil)

		assert.Zero(t, w.Body.Len())
	})
}

func TestWriteValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	WriteValidationError(c, errors.New("status: must be one of created, done, failure."), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"validation_error","message":"status: must be one of created, done, failure."}`, w.Body.String())
}
