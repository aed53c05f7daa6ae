// Package events defines the event types exchanged between the dispatcher and
// the benchmark workers, plus the run lifecycle notifications.
package events

import (
	"time"

	"github.com/dukex/benchbot/pkg/github"
	"github.com/dukex/benchbot/pkg/pipeline/state"
)

type EventType string

// Kafka topics.
const TriggerTopic = "benchbot.triggers" // Label events that passed the dispatcher
const RunTopic = "benchbot.runs"         // Run lifecycle events

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Dispatcher to worker.
	BenchmarkRequestedEvent EventType = "benchmark.requested"

	// Run lifecycle.
	RunStartedEvent        EventType = "run.started"
	RunGatedOutEvent       EventType = "run.gated_out"
	RunStageCompletedEvent EventType = "run.stage.completed"
	RunFinishedEvent       EventType = "run.finished"
	RunFailedEvent         EventType = "run.failed"
)

type Event interface {
	GetType() EventType
}

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	WorkerID  string         `json:"worker_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// BenchmarkRequested is published by the dispatcher for every label event that
// matched the marker. The worker re-gates before running, so replays of
// non-qualifying events stay harmless.
type BenchmarkRequested struct {
	BaseEvent

	Trigger github.TriggerEvent `json:"trigger"`
}

func (e BenchmarkRequested) GetType() EventType { return BenchmarkRequestedEvent }

type RunStarted struct {
	BaseEvent

	RunID   string              `json:"run_id"`
	Trigger github.TriggerEvent `json:"trigger"`
}

func (e RunStarted) GetType() EventType { return RunStartedEvent }

type RunGatedOut struct {
	BaseEvent

	Trigger github.TriggerEvent `json:"trigger"`
}

func (e RunGatedOut) GetType() EventType { return RunGatedOutEvent }

type RunStageCompleted struct {
	BaseEvent

	RunID string      `json:"run_id"`
	Stage state.State `json:"stage"`
}

func (e RunStageCompleted) GetType() EventType { return RunStageCompletedEvent }

type RunFinished struct {
	BaseEvent

	RunID   string              `json:"run_id"`
	Trigger github.TriggerEvent `json:"trigger"`
}

func (e RunFinished) GetType() EventType { return RunFinishedEvent }

type RunFailed struct {
	BaseEvent

	RunID string      `json:"run_id"`
	Stage state.State `json:"stage"`
	Error string      `json:"error"`
}

func (e RunFailed) GetType() EventType { return RunFailedEvent }
