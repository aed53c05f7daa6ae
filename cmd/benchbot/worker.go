package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukex/benchbot/pkg/eventbus"
	"github.com/dukex/benchbot/pkg/events"
	"github.com/dukex/benchbot/pkg/pipeline"
	"github.com/dukex/benchbot/pkg/runlock"
)

// WorkerManager consumes trigger events and executes one pipeline run per
// event, holding the per-PR run lock for the duration when one is configured.
type WorkerManager struct {
	id       string
	executor *pipeline.Executor
	eventBus eventbus.EventBus
	locker   *runlock.Locker
	logger   *slog.Logger
}

func NewWorkerManager(
	id string,
	executor *pipeline.Executor,
	eventBus eventbus.EventBus,
	locker *runlock.Locker,
	logger *slog.Logger,
) *WorkerManager {
	return &WorkerManager{
		id:       id,
		executor: executor,
		eventBus: eventBus,
		locker:   locker,
		logger:   logger.With("module", "worker_manager"),
	}
}

func (w *WorkerManager) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting worker manager")

	w.eventBus.Handle(events.BenchmarkRequestedEvent, w.handleBenchmarkRequested)

	if err := w.eventBus.Subscribe(ctx, events.TriggerTopic); err != nil {
		w.logger.ErrorContext(ctx, "Failed to subscribe to trigger topic", "error", err)

		return err
	}

	w.logger.InfoContext(ctx, "Worker started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		w.logger.InfoContext(ctx, "Shutting down worker...")
	case <-ctx.Done():
	}

	return nil
}

func (w *WorkerManager) handleBenchmarkRequested(ctx context.Context, event events.Event) error {
	requested, ok := event.(*events.BenchmarkRequested)
	if !ok {
		w.logger.ErrorContext(ctx, "Invalid event type for BenchmarkRequested")

		return nil
	}

	trigger := requested.Trigger
	logger := w.logger.With("key", trigger.Key())

	if w.locker != nil {
		token := w.id + ":" + requested.ID

		err := w.locker.Acquire(ctx, trigger.Owner, trigger.Repo, trigger.Number, token)

		var held *runlock.ErrHeld
		if errors.As(err, &held) {
			logger.InfoContext(ctx, "Run already in progress, skipping duplicate trigger")

			return nil
		}

		if err != nil {
			return err
		}

		defer func() {
			if err := w.locker.Release(ctx, trigger.Owner, trigger.Repo, trigger.Number, token); err != nil {
				logger.ErrorContext(ctx, "Failed to release run lock", "error", err)
			}
		}()
	}

	result, err := w.executor.Execute(ctx, trigger)
	if err != nil {
		logger.ErrorContext(ctx, "Benchmark run failed", "run_id", result.RunID, "error", err)

		// The failure was already surfaced as a run.failed event; acking the
		// message keeps a broken benchmark from being retried forever.
		return nil
	}

	logger.InfoContext(ctx, "Benchmark run completed", "run_id", result.RunID, "state", result.State)

	return nil
}
