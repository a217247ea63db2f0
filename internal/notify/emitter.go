// Package notify fans message-send events out to the external notification
// store. It is pure composition logic: delivery and persistence live on the
// other side of the broker.
package notify

import (
	"context"
	"fmt"
	"time"

	"messaging-service/internal/models"
)

// CategoryNewMessage tags notifications produced for accepted message sends.
const CategoryNewMessage = "new_message"

// Publisher publishes notification events.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// Envelope is the versioned wrapper the notification store consumes.
type Envelope struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	OccurredAt    string       `json:"occurred_at"`
	Service       string       `json:"service"`
	Environment   string       `json:"environment"`
	RequestID     string       `json:"request_id"`
	Payload       Notification `json:"payload"`
}

// Notification is the record the store persists for the recipient.
type Notification struct {
	UserID      int    `json:"user_id"`
	Category    string `json:"category"`
	Text        string `json:"text"`
	ReferenceID int    `json:"reference_id"`
}

// Emitter builds and publishes notifications for accepted sends.
type Emitter struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
}

// NewEmitter constructs an Emitter.
func NewEmitter(publisher Publisher, routingKey, service, environment string) *Emitter {
	return &Emitter{
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
	}
}

// MessageSent emits one notification addressed to the chat participant who
// did not author the message. The caller decides what to do with a publish
// failure; the emitter never hides one.
func (e *Emitter) MessageSent(ctx context.Context, chat models.Chat, msg models.Message, senderUsername, requestID string) error {
	if e == nil || e.publisher == nil {
		return nil
	}

	recipient := chat.OtherParticipant(msg.SenderID)
	if recipient == msg.SenderID {
		return nil
	}

	envelope := Envelope{
		SchemaVersion: 1,
		EventType:     CategoryNewMessage,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		Payload: Notification{
			UserID:      recipient,
			Category:    CategoryNewMessage,
			Text:        fmt.Sprintf("You have a new message from %s", senderUsername),
			ReferenceID: chat.ID,
		},
	}

	return e.publisher.Publish(ctx, e.routingKey, envelope)
}
