package events

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockKafkaWriter struct {
	mock.Mock
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockKafkaWriter) Close() error {
	return m.Called().Error(0)
}

func TestNewKafkaWriter(t *testing.T) {
	writer := NewKafkaWriter([]string{"k1:9092"}, "p2p_transaction_notifications")
	assert.Equal(t, "p2p_transaction_notifications", writer.Topic)
	require.NotNil(t, writer.Addr)
	assert.Equal(t, "tcp", writer.Addr.Network())
	assert.IsType(t, &kafka.LeastBytes{}, writer.Balancer)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		writer := &mockKafkaWriter{}
		writer.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
			return len(msgs) == 1 &&
				string(msgs[0].Key) == "Send Notification" &&
				len(msgs[0].Headers) == 2 &&
				string(msgs[0].Headers[0].Value) == "lambda"
		})).Return(nil).Once()

		ok, err := NewKafkaPublisher(writer).Publish(context.Background(), testEvent(t))
		require.NoError(t, err)
		assert.True(t, ok)
		writer.AssertExpectations(t)
	})

	t.Run("Error", func(t *testing.T) {
		writer := &mockKafkaWriter{}
		writer.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("leader not available")).Once()

		ok, err := NewKafkaPublisher(writer).Publish(context.Background(), testEvent(t))
		assert.False(t, ok)
		assert.ErrorContains(t, err, "leader not available")
	})

	t.Run("Close", func(t *testing.T) {
		writer := &mockKafkaWriter{}
		writer.On("Close").Return(nil).Once()

		assert.NoError(t, NewKafkaPublisher(writer).Close())
		writer.AssertExpectations(t)
	})
}
