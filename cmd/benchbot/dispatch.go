package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukex/benchbot/pkg/cmd"
	"github.com/dukex/benchbot/pkg/eventbus"
	"github.com/dukex/benchbot/pkg/events"
	"github.com/dukex/benchbot/pkg/github"
	"github.com/dukex/benchbot/pkg/log"
	"github.com/dukex/benchbot/pkg/trigger"
	"github.com/dukex/benchbot/pkg/webhook"
	"github.com/robfig/cron/v3"
	cli "github.com/urfave/cli/v3"
)

// NewDispatchCommand starts the webhook dispatcher: verified deliveries that
// carry the marker label become trigger events on the bus for the workers.
func NewDispatchCommand() *cli.Command {
	return &cli.Command{
		Name:    "dispatch",
		Aliases: []string{"d"},
		Usage:   "Receive platform webhooks and enqueue benchmark runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Usage:   "Port for the webhook HTTP server",
				Value:   8085,
				Sources: cli.EnvVars("WEBHOOK_PORT"),
			},
			&cli.StringFlag{
				Name:    "webhook-secret",
				Usage:   "Shared secret for delivery signature verification",
				Value:   "",
				Sources: cli.EnvVars("WEBHOOK_SECRET"),
			},
			&cli.StringFlag{
				Name:     "event-bus",
				Usage:    "Event bus type (kafka, gochannel)",
				Required: true,
				Sources:  cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "marker-label",
				Usage:   "Label that triggers a benchmark run",
				Value:   trigger.DefaultMarkerLabel,
				Sources: cli.EnvVars("BENCHBOT_MARKER_LABEL"),
			},
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Optional cron expression for scheduled runs",
				Value:   "",
				Sources: cli.EnvVars("BENCHBOT_SCHEDULE"),
			},
			&cli.StringFlag{
				Name:    "schedule-owner",
				Usage:   "Repository owner for scheduled runs",
				Value:   "",
				Sources: cli.EnvVars("BENCHBOT_SCHEDULE_OWNER"),
			},
			&cli.StringFlag{
				Name:    "schedule-repo",
				Usage:   "Repository name for scheduled runs",
				Value:   "",
				Sources: cli.EnvVars("BENCHBOT_SCHEDULE_REPO"),
			},
			&cli.IntFlag{
				Name:    "schedule-issue",
				Usage:   "Tracking issue that receives scheduled run reports",
				Value:   0,
				Sources: cli.EnvVars("BENCHBOT_SCHEDULE_ISSUE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("benchbot-dispatcher")

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), "benchbot-dispatcher", logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.Error("Failed to close event bus", "error", err)
				}
			}()

			gate := trigger.NewGate(command.String("marker-label"), logger)

			if expr := command.String("schedule"); expr != "" {
				scheduler := cron.New()

				_, err := scheduler.AddFunc(expr, scheduledTrigger(
					ctx,
					eventBus,
					gate.Marker(),
					command.String("schedule-owner"),
					command.String("schedule-repo"),
					int(command.Int("schedule-issue")),
					logger,
				))
				if err != nil {
					return err
				}

				scheduler.Start()
				defer scheduler.Stop()

				logger.Info("Scheduled runs enabled", "schedule", expr)
			}

			server := webhook.NewServer(command.String("webhook-secret"), gate, eventBus, logger)

			logger.Info("Starting dispatcher", "port", command.Int("port"))

			return server.Start(int(command.Int("port")))
		},
	}
}

// scheduledTrigger publishes a synthetic trigger event whose report lands on
// the configured tracking issue instead of a pull request.
func scheduledTrigger(
	ctx context.Context,
	eventBus eventbus.EventBus,
	marker, owner, repo string,
	issue int,
	logger *slog.Logger,
) func() {
	return func() {
		if owner == "" || repo == "" || issue == 0 {
			logger.Error("Scheduled run skipped: schedule-owner, schedule-repo and schedule-issue are required")

			return
		}

		triggerEvent := github.TriggerEvent{
			Action: github.ActionLabeled,
			Label:  marker,
			Owner:  owner,
			Repo:   repo,
			Number: issue,
			Sender: "benchbot-schedule",
		}

		requested := events.BenchmarkRequested{
			BaseEvent: events.BaseEvent{
				ID:        eventBus.GenerateID(),
				Type:      events.BenchmarkRequestedEvent,
				Timestamp: time.Now().UTC(),
			},
			Trigger: triggerEvent,
		}

		if err := eventBus.Publish(ctx, events.TriggerTopic, triggerEvent.Key(), requested); err != nil {
			logger.Error("Failed to publish scheduled trigger", "key", triggerEvent.Key(), "error", err)

			return
		}

		logger.Info("Scheduled benchmark run requested", "key", triggerEvent.Key())
	}
}
