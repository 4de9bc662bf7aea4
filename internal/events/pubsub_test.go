package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/pubsub/mempubsub"
)

func TestPubSubPublisher_Publish(t *testing.T) {
	ctx := context.Background()

	topic := mempubsub.NewTopic()
	subscription := mempubsub.NewSubscription(topic, time.Minute)
	defer func() {
		_ = subscription.Shutdown(ctx)
	}()

	publisher := NewPubSubPublisher(topic)
	defer func() {
		_ = publisher.Close(ctx)
	}()

	event := testEvent(t)
	ok, err := publisher.Publish(ctx, event)
	require.NoError(t, err)
	assert.True(t, ok)

	msg, err := subscription.Receive(ctx)
	require.NoError(t, err)
	msg.Ack()

	assert.JSONEq(t, string(event.Detail), string(msg.Body))
	assert.Equal(t, "lambda", msg.Metadata["source"])
	assert.Equal(t, "Send Notification", msg.Metadata["detail-type"])
	assert.Equal(t, "default", msg.Metadata["bus"])
}

func TestOpenPubSubPublisher(t *testing.T) {
	ctx := context.Background()

	publisher, err := OpenPubSubPublisher(ctx, "mem://p2p-notifications")
	require.NoError(t, err)
	assert.NoError(t, publisher.Close(ctx))

	_, err = OpenPubSubPublisher(ctx, "unknown://topic")
	assert.ErrorContains(t, err, "failed to open topic")
}
