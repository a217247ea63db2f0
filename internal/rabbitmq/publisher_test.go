package rabbitmq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/notify"
)

func TestNewPublisherFallsBackToNoop(t *testing.T) {
	publisher := NewPublisher("", "notifications")

	assert.Equal(t, "noop", PublisherMode(publisher))
	assert.Equal(t, "empty amqp url", PublisherNoopReason(publisher))

	// Noop publishes always succeed; the messaging API must not depend on a
	// broker being present.
	err := publisher.Publish(context.Background(), "notifications.new_message", notify.Envelope{
		EventType: notify.CategoryNewMessage,
		Payload:   notify.Notification{UserID: 2},
	})
	require.NoError(t, err)
	require.NoError(t, publisher.Close())
}

func TestPublisherModeAMQP(t *testing.T) {
	publisher := &amqpPublisher{exchange: "notifications"}

	assert.Equal(t, "amqp", PublisherMode(publisher))
	assert.Empty(t, PublisherNoopReason(publisher))
}
