package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/agriconnect/pkg/logging"
)

// EventPublisher is satisfied by the kafka producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type Event struct {
	Type    string    `json:"type"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload"`
}

// publish never fails the caller; delivery errors are logged.
func publish(ctx context.Context, p EventPublisher, topic, key, typ string, payload any) {
	if p == nil {
		return
	}
	ev := Event{Type: typ, At: time.Now().UTC(), Payload: payload}
	if err := p.PublishEvent(ctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Warn("publish event failed", "topic", topic, "type", typ, "error", err)
	}
}
