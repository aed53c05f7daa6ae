// Package cmd holds shared wiring used by the benchbot CLI commands.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/benchbot/pkg/channels/gochannel"
	"github.com/dukex/benchbot/pkg/channels/kafka"
	"github.com/dukex/benchbot/pkg/eventbus"
)

// NewEventBus builds the event bus for a service. Kafka is the deployment
// transport; gochannel keeps single-process setups and tests self-contained.
func NewEventBus(busType, serviceName string, logger *slog.Logger) (eventbus.EventBus, error) {
	watermillLogger := watermill.NewSlogLogger(logger)

	switch busType {
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermillLogger, serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka channel: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub, logger), nil
	case "gochannel", "":
		pub, sub, err := gochannel.CreateChannel(watermillLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gochannel: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub, logger), nil
	default:
		return nil, fmt.Errorf("unsupported event bus type: %s", busType)
	}
}
