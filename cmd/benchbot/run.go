package main

import (
	"context"

	"github.com/dukex/benchbot/pkg/bench"
	"github.com/dukex/benchbot/pkg/github"
	"github.com/dukex/benchbot/pkg/log"
	"github.com/dukex/benchbot/pkg/otelhelper"
	"github.com/dukex/benchbot/pkg/pipeline"
	"github.com/dukex/benchbot/pkg/report"
	"github.com/dukex/benchbot/pkg/suite"
	"github.com/dukex/benchbot/pkg/trigger"
	"github.com/go-playground/validator/v10"
	cli "github.com/urfave/cli/v3"
)

// NewRunCommand is the single-shot CI mode: read the staged event payload,
// gate on the marker label, and run the whole pipeline in-process.
func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Run the benchmark pipeline once for a staged event payload",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "event-path",
				Usage:    "Path to the pull_request event payload JSON",
				Required: true,
				Sources:  cli.EnvVars("GITHUB_EVENT_PATH"),
			},
			&cli.StringFlag{
				Name:     "token",
				Usage:    "API token used to create the report comment",
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
			logger := log.WithModule("benchbot-run")

			validate := validator.New(validator.WithRequiredStructEnabled())

			benchSuite, err := suite.Load(command.String("suite-path"), validate)
			if err != nil {
				return err
			}

			labelEvent, err := github.ReadEventFile(command.String("event-path"))
			if err != nil {
				return err
			}

			triggerEvent, err := labelEvent.Trigger()
			if err != nil {
				return err
			}

			if err := validate.Struct(triggerEvent); err != nil {
				return err
			}

			gate := trigger.NewGate(command.String("marker-label"), logger)

			var clientOpts []github.ClientOption
			if apiURL := command.String("api-url"); apiURL != "" {
				clientOpts = append(clientOpts, github.WithBaseURL(apiURL))
			}

			opts := []pipeline.Option{
				pipeline.WithComposer(report.Composer{}),
			}

			if command.Bool("tracing") {
				tracer, err := otelhelper.NewTracer(ctx, "benchbot-run")
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

			result, err := executor.Execute(ctx, triggerEvent)
			if err != nil {
				return err
			}

			logger.Info("Pipeline finished", "run_id", result.RunID, "state", result.State)

			return nil
		},
	}
}
