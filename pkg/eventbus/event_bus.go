// Package eventbus abstracts the message transport between benchbot services.
package eventbus

import (
	"context"

	"github.com/dukex/benchbot/pkg/events"
)

type EventHandler func(ctx context.Context, event events.Event) error

type EventBus interface {
	Publish(ctx context.Context, topic, key string, event events.Event) error
	Handle(eventType events.EventType, handler EventHandler)
	Subscribe(ctx context.Context, topic string) error
	GenerateID() string
	Close() error
}
