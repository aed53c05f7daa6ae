package main

import (
	"context"
	"time"

	"github.com/dukex/benchbot/pkg/bench"
	"github.com/dukex/benchbot/pkg/cmd"
	"github.com/dukex/benchbot/pkg/github"
	"github.com/dukex/benchbot/pkg/log"
	"github.com/dukex/benchbot/pkg/otelhelper"
	"github.com/dukex/benchbot/pkg/pipeline"
	"github.com/dukex/benchbot/pkg/report"
	"github.com/dukex/benchbot/pkg/runlock"
	"github.com/dukex/benchbot/pkg/suite"
	"github.com/dukex/benchbot/pkg/trigger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	cli "github.com/urfave/cli/v3"
)

// NewWorkCommand starts a worker that consumes trigger events from the bus
// and executes one pipeline run per event.
func NewWorkCommand() *cli.Command {
	return &cli.Command{
		Name:    "work",
		Aliases: []string{"w"},
		Usage:   "Consume trigger events and execute benchmark runs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("WORKER_ID"),
			},
			&cli.StringFlag{
				Name:     "event-bus",
				Usage:    "Event bus type (kafka, gochannel)",
				Required: true,
				Sources:  cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:     "token",
				Usage:    "API token used to create report comments",
				Required: true,
				Sources:  cli.EnvVars("GITHUB_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "Review platform API root (for enterprise hosts)",
				Value:   "",
				Sources: cli.EnvVars("GITHUB_API_URL"),
			},
			&cli.StringFlag{
				Name:    "marker-label",
				Usage:   "Label that triggers a benchmark run",
				Value:   trigger.DefaultMarkerLabel,
				Sources: cli.EnvVars("BENCHBOT_MARKER_LABEL"),
			},
			&cli.StringFlag{
				Name:    "suite-path",
				Usage:   "Benchmark suite JSON (defaults to the built-in proof-construction suite)",
				Value:   "",
				Sources: cli.EnvVars("BENCHBOT_SUITE_PATH"),
			},
			&cli.StringFlag{
				Name:    "workdir",
				Usage:   "Directory where captured harness output is staged",
				Value:   "./benchbot-out",
				Sources: cli.EnvVars("BENCHBOT_WORKDIR"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the per-PR run lock (lock disabled when empty)",
				Value:   "",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.DurationFlag{
				Name:    "lock-ttl",
				Usage:   "Run lock expiry",
				Value:   runlock.DefaultTTL,
				Sources: cli.EnvVars("BENCHBOT_LOCK_TTL"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export pipeline stage spans over OTLP",
				Sources: cli.EnvVars("BENCHBOT_TRACING"),
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

			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = "worker-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("benchbot-worker").With("worker_id", workerID)
			logger.Info("Initializing benchbot worker")

			validate := validator.New(validator.WithRequiredStructEnabled())

			benchSuite, err := suite.Load(command.String("suite-path"), validate)
			if err != nil {
				return err
			}

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), "benchbot-worker", logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.Error("Failed to close event bus", "error", err)
				}
			}()

			gate := trigger.NewGate(command.String("marker-label"), logger)

			var clientOpts []github.ClientOption
			if apiURL := command.String("api-url"); apiURL != "" {
				clientOpts = append(clientOpts, github.WithBaseURL(apiURL))
			}

			opts := []pipeline.Option{
				pipeline.WithComposer(report.Composer{}),
				pipeline.WithNotifier(eventBus),
			}

			if command.Bool("tracing") {
				tracer, err := otelhelper.NewTracer(ctx, "benchbot-worker")
				if err != nil {
					return err
				}

				opts = append(opts, pipeline.WithTracer(tracer))
			}

			executor := pipeline.NewExecutor(
				gate,
				bench.NewProvisioner(benchSuite.Provision, logger),
				bench.NewRunner(benchSuite, command.String("workdir"), logger),
				github.NewClient(command.String("token"), clientOpts...),
				logger,
				opts...,
			)

			var locker *runlock.Locker

			if redisURL := command.String("redis-url"); redisURL != "" {
				redisOpts, err := redis.ParseURL(redisURL)
				if err != nil {
					return err
				}

				ttl := command.Duration("lock-ttl")
				if ttl <= 0 {
					ttl = 2 * time.Hour
				}

				locker = runlock.NewLocker(redis.NewClient(redisOpts), ttl)
			}

			worker := NewWorkerManager(workerID, executor, eventBus, locker, logger)

			return worker.Start(ctx)
		},
	}
}
