// Package pipeline orchestrates a benchmark run: gate, provision, run both
// harnesses sequentially, compose the report, publish the comment. Stages are
// an ordered list of fallible steps; the first error ends the run with no
// retry and no partial report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/benchbot/pkg/bench"
	"github.com/dukex/benchbot/pkg/events"
	"github.com/dukex/benchbot/pkg/github"
	"github.com/dukex/benchbot/pkg/otelhelper"
	"github.com/dukex/benchbot/pkg/pipeline/state"
	"github.com/dukex/benchbot/pkg/report"
	"github.com/dukex/benchbot/pkg/trigger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Provisioner installs harness tooling before any benchmark runs.
type Provisioner interface {
	Provision(ctx context.Context) error
}

// Runner executes one harness to completion.
type Runner interface {
	Run(ctx context.Context, id bench.HarnessID) (bench.Invocation, error)
}

// Publisher creates the report comment on the review thread.
type Publisher interface {
	CreateComment(ctx context.Context, comment github.CommentRequest) error
}

// Notifier receives run lifecycle events. A nil notifier disables emission.
type Notifier interface {
	Publish(ctx context.Context, topic, key string, event events.Event) error
	GenerateID() string
}

// Executor drives one pipeline run per trigger event.
type Executor struct {
	gate        *trigger.Gate
	provisioner Provisioner
	runner      Runner
	composer    report.Composer
	publisher   Publisher
	notifier    Notifier
	tracer      trace.Tracer
	logger      *slog.Logger
}

type Option func(*Executor)

func WithNotifier(notifier Notifier) Option {
	return func(e *Executor) {
		e.notifier = notifier
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(e *Executor) {
		e.tracer = tracer
	}
}

func WithComposer(composer report.Composer) Option {
	return func(e *Executor) {
		e.composer = composer
	}
}

func NewExecutor(
	gate *trigger.Gate,
	provisioner Provisioner,
	runner Runner,
	publisher Publisher,
	logger *slog.Logger,
	opts ...Option,
) *Executor {
	executor := &Executor{
		gate:        gate,
		provisioner: provisioner,
		runner:      runner,
		publisher:   publisher,
		tracer:      noop.NewTracerProvider().Tracer("benchbot"),
		logger:      logger.With("module", "pipeline"),
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

// Result records where a run ended up.
type Result struct {
	RunID string
	State state.State
}

// Execute runs the pipeline for one trigger event. A gated-out event is a
// successful no-op; every stage failure is returned and also reflected in
// Result.State.
func (e *Executor) Execute(ctx context.Context, event github.TriggerEvent) (Result, error) {
	runID := uuid.New().String()
	logger := e.logger.With(
		"run_id", runID,
		"owner", event.Owner,
		"repo", event.Repo,
		"pr", event.Number,
	)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "pipeline.execute",
		attribute.String(otelhelper.RunIDKey, runID),
		attribute.String(otelhelper.OwnerKey, event.Owner),
		attribute.String(otelhelper.RepoKey, event.Repo),
		attribute.Int(otelhelper.NumberKey, event.Number),
	)
	defer span.End()

	if !e.gate.Proceed(event) {
		logger.Info("Event gated out", "label", event.Label, "action", event.Action)
		e.notify(ctx, event.Key(), events.RunGatedOut{
			BaseEvent: e.baseEvent(events.RunGatedOutEvent),
			Trigger:   event,
		})

		return Result{RunID: runID, State: state.GatedOut}, nil
	}

	logger.Info("Starting benchmark run", "label", event.Label)
	e.notify(ctx, event.Key(), events.RunStarted{
		BaseEvent: e.baseEvent(events.RunStartedEvent),
		RunID:     runID,
		Trigger:   event,
	})

	collector := bench.NewCollector()

	var body string

	stages := []struct {
		state state.State
		run   func(ctx context.Context) error
	}{
		{state.Provisioning, func(ctx context.Context) error {
			return e.provisioner.Provision(ctx)
		}},
		{state.RunningCounter, func(ctx context.Context) error {
			return e.runHarness(ctx, collector, bench.HarnessCounter)
		}},
		{state.RunningStatistical, func(ctx context.Context) error {
			return e.runHarness(ctx, collector, bench.HarnessStatistical)
		}},
		{state.Composing, func(ctx context.Context) error {
			counter, statistical, err := collector.Outputs()
			if err != nil {
				return err
			}

			body = e.composer.Compose(counter, statistical).Render()

			return nil
		}},
		{state.Publishing, func(ctx context.Context) error {
			return e.publisher.CreateComment(ctx, github.CommentRequest{
				Owner:  event.Owner,
				Repo:   event.Repo,
				Number: event.Number,
				Body:   body,
			})
		}},
	}

	for _, stage := range stages {
		if err := e.runStage(ctx, logger, runID, event, stage.state, stage.run); err != nil {
			return Result{RunID: runID, State: state.Failed}, err
		}
	}

	logger.Info("Benchmark run finished")
	e.notify(ctx, event.Key(), events.RunFinished{
		BaseEvent: e.baseEvent(events.RunFinishedEvent),
		RunID:     runID,
		Trigger:   event,
	})

	return Result{RunID: runID, State: state.Done}, nil
}

func (e *Executor) runStage(
	ctx context.Context,
	logger *slog.Logger,
	runID string,
	event github.TriggerEvent,
	stageState state.State,
	run func(ctx context.Context) error,
) error {
	stageCtx, span := otelhelper.StartSpan(ctx, e.tracer, "pipeline.stage",
		attribute.String(otelhelper.RunIDKey, runID),
		attribute.String(otelhelper.StageKey, string(stageState)),
	)
	defer span.End()

	logger.Debug("Entering stage", "stage", stageState)

	if err := run(stageCtx); err != nil {
		logger.Error("Stage failed", "stage", stageState, "error", err)
		otelhelper.SetError(span, err)
		e.notify(ctx, event.Key(), events.RunFailed{
			BaseEvent: e.baseEvent(events.RunFailedEvent),
			RunID:     runID,
			Stage:     stageState,
			Error:     err.Error(),
		})

		return fmt.Errorf("stage %s failed: %w", stageState, err)
	}

	e.notify(ctx, event.Key(), events.RunStageCompleted{
		BaseEvent: e.baseEvent(events.RunStageCompletedEvent),
		RunID:     runID,
		Stage:     stageState,
	})

	return nil
}

// runHarness treats a non-zero harness exit as a stage failure, so the
// remaining harness and the publisher never run after one fails.
func (e *Executor) runHarness(ctx context.Context, collector *bench.Collector, id bench.HarnessID) error {
	inv, err := e.runner.Run(ctx, id)
	if err != nil {
		return err
	}

	if inv.Failed() {
		return fmt.Errorf("%s exited with status %d", inv, inv.ExitCode)
	}

	return collector.Add(inv)
}

func (e *Executor) notify(ctx context.Context, key string, event events.Event) {
	if e.notifier == nil {
		return
	}

	if err := e.notifier.Publish(ctx, events.RunTopic, key, event); err != nil {
		e.logger.Warn("Failed to publish run event", "event_type", event.GetType(), "error", err)
	}
}

func (e *Executor) baseEvent(eventType events.EventType) events.BaseEvent {
	id := uuid.New().String()
	if e.notifier != nil {
		id = e.notifier.GenerateID()
	}

	return events.BaseEvent{
		ID:        id,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}
