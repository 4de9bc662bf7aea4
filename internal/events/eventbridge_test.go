package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEventBridgeAPI struct {
	mock.Mock
}

func (m *mockEventBridgeAPI) PutEvents(
	ctx context.Context,
	params *eventbridge.PutEventsInput,
	optFns ...func(*eventbridge.Options),
) (*eventbridge.PutEventsOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eventbridge.PutEventsOutput), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEventBridgePublisher_Publish(t *testing.T) {
	matchEntry := mock.MatchedBy(func(input *eventbridge.PutEventsInput) bool {
		if len(input.Entries) != 1 {
			return false
		}
		entry := input.Entries[0]
		return aws.ToString(entry.Source) == "lambda" &&
			aws.ToString(entry.DetailType) == "Send Notification" &&
			aws.ToString(entry.EventBusName) == "default" &&
			aws.ToString(entry.Detail) != "" &&
			entry.Time != nil
	})

	tests := []struct {
		name     string
		output   *eventbridge.PutEventsOutput
		expected bool
	}{
		{
			name: "Success_AllEntriesHaveEventID",
			output: &eventbridge.PutEventsOutput{
				Entries: []types.PutEventsResultEntry{{EventId: aws.String("11710aed-b79e-4468-a20b-bb3c0c3b4860")}},
			},
			expected: true,
		},
		{
			name: "Success_EntryWithoutEventID",
			output: &eventbridge.PutEventsOutput{
				FailedEntryCount: 1,
				Entries: []types.PutEventsResultEntry{{
					ErrorCode:    aws.String("InternalFailure"),
					ErrorMessage: aws.String("try again"),
				}},
			},
			expected: false,
		},
		{
			name: "Success_MixedEntries",
			output: &eventbridge.PutEventsOutput{
				Entries: []types.PutEventsResultEntry{
					{EventId: aws.String("11710aed-b79e-4468-a20b-bb3c0c3b4860")},
					{ErrorCode: aws.String("ThrottlingException")},
				},
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockEventBridgeAPI{}
			client.On("PutEvents", mock.Anything, matchEntry).Return(tt.output, nil).Once()

			publisher := NewEventBridgePublisher(client, discardLogger())
			ok, err := publisher.Publish(context.Background(), testEvent(t))

			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
			client.AssertExpectations(t)
		})
	}

	t.Run("Error_ClientFailure", func(t *testing.T) {
		client := &mockEventBridgeAPI{}
		client.On("PutEvents", mock.Anything, mock.Anything).Return(nil, errors.New("access denied")).Once()

		publisher := NewEventBridgePublisher(client, discardLogger())
		ok, err := publisher.Publish(context.Background(), testEvent(t))

		assert.False(t, ok)
		assert.ErrorContains(t, err, "access denied")
		client.AssertExpectations(t)
	})
}
