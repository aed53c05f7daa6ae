// Package trigger decides whether an incoming label event qualifies a
// pipeline run.
package trigger

import (
	"log/slog"

	"github.com/dukex/benchbot/pkg/github"
)

// DefaultMarkerLabel is the label a reviewer attaches to request a benchmark
// run.
const DefaultMarkerLabel = "benchmark"

// Gate matches label events against the marker label. It has no side effects;
// a mismatch is a silent no-op, not an error.
type Gate struct {
	marker string
	logger *slog.Logger
}

func NewGate(marker string, logger *slog.Logger) *Gate {
	if marker == "" {
		marker = DefaultMarkerLabel
	}

	return &Gate{
		marker: marker,
		logger: logger.With("module", "trigger_gate", "marker", marker),
	}
}

func (g *Gate) Marker() string {
	return g.marker
}

// Proceed reports whether the pipeline should run for the given event. Only a
// label addition whose name exactly equals the marker qualifies; removals and
// unrelated labels are gated out.
func (g *Gate) Proceed(event github.TriggerEvent) bool {
	if event.Action != github.ActionLabeled {
		g.logger.Debug("Gated out: not a label addition", "action", event.Action)

		return false
	}

	if event.Label != g.marker {
		g.logger.Debug("Gated out: label does not match marker", "label", event.Label)

		return false
	}

	return true
}
