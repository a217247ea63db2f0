package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
)

func TestMessageSentAddressesOtherParticipant(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewEmitter(publisher, "notifications.new_message", "messaging-service", "test")

	chat := models.Chat{ID: 5, User1ID: 1, User2ID: 2}
	msg := models.Message{ID: 42, ChatID: 5, SenderID: 1, Body: "hi"}

	publisher.On("Publish", mock.Anything, "notifications.new_message", mock.MatchedBy(func(event any) bool {
		envelope, ok := event.(Envelope)
		return ok &&
			envelope.SchemaVersion == 1 &&
			envelope.EventType == CategoryNewMessage &&
			envelope.Service == "messaging-service" &&
			envelope.RequestID == "req-1" &&
			envelope.Payload.UserID == 2 &&
			envelope.Payload.Text == "You have a new message from alice" &&
			envelope.Payload.ReferenceID == 5
	})).Return(nil).Once()

	require.NoError(t, emitter.MessageSent(context.Background(), chat, msg, "alice", "req-1"))
	publisher.AssertExpectations(t)
}

func TestMessageSentPropagatesPublishError(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewEmitter(publisher, "rk", "svc", "test")

	publisher.On("Publish", mock.Anything, "rk", mock.Anything).Return(assert.AnError).Once()

	err := emitter.MessageSent(context.Background(),
		models.Chat{ID: 5, User1ID: 1, User2ID: 2},
		models.Message{ID: 42, ChatID: 5, SenderID: 2}, "bob", "")
	assert.ErrorIs(t, err, assert.AnError)
	publisher.AssertExpectations(t)
}

func TestMessageSentNilEmitterIsSafe(t *testing.T) {
	var emitter *Emitter
	err := emitter.MessageSent(context.Background(),
		models.Chat{ID: 5, User1ID: 1, User2ID: 2},
		models.Message{SenderID: 1}, "alice", "")
	assert.NoError(t, err)
}
