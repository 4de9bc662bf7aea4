package lambda

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChain_Order(t *testing.T) {
	var calls []string
	trace := func(name string) Middleware {
		return func(next Handler) Handler {
			return HandlerFunc(func(ctx context.Context, event json.RawMessage) (any, error) {
				calls = append(calls, name)
				return next.Invoke(ctx, event)
			})
		}
	}

	h := Chain(HandlerFunc(func(ctx context.Context, event json.RawMessage) (any, error) {
		calls = append(calls, "handler")
		return "ok", nil
	}), trace("outer"), trace("inner"))

	resp, err := h.Invoke(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Equal(t, []string{"outer", "inner", "handler"}, calls)
}

func TestRuntime(t *testing.T) {
	t.Run("EncodesResponse", func(t *testing.T) {
		h := HandlerFunc(func(ctx context.Context, event json.RawMessage) (any, error) {
			return NewAPIResponse("Notification was sent", 200), nil
		})

		out, err := Runtime(h).Invoke(context.Background(), []byte(`{}`))
		require.NoError(t, err)
		assert.JSONEq(t, `{"statusCode":200,"body":"Notification was sent"}`, string(out))
	})

	t.Run("PropagatesError", func(t *testing.T) {
		h := HandlerFunc(func(ctx context.Context, event json.RawMessage) (any, error) {
			return nil, errors.New("database is down")
		})

		out, err := Runtime(h).Invoke(context.Background(), []byte(`{}`))
		assert.Nil(t, out)
		assert.EqualError(t, err, "database is down")
	})
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	ok := HandlerFunc(func(ctx context.Context, event json.RawMessage) (any, error) { return "ok", nil })

	registry.Register("request-p2p-transaction", ok)
	registry.Register("p2p-transaction-find", ok)

	_, found := registry.Get("request-p2p-transaction")
	assert.True(t, found)
	_, found = registry.Get("unknown")
	assert.False(t, found)
	assert.Equal(t, []string{"p2p-transaction-find", "request-p2p-transaction"}, registry.Names())
}
