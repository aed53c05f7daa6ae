package trigger

import (
	"log/slog"
	"os"
	"testing"

	"github.com/dukex/benchbot/pkg/github"
	"github.com/stretchr/testify/assert"
)

func TestGateProceed(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	gate := NewGate("benchmark", logger)

	tests := []struct {
		name    string
		event   github.TriggerEvent
		proceed bool
	}{
		{
			name: "marker_label_added",
			event: github.TriggerEvent{
				Action: github.ActionLabeled,
				Label:  "benchmark",
				Owner:  "o",
				Repo:   "r",
				Number: 42,
			},
			proceed: true,
		},
		{
			name: "unrelated_label",
			event: github.TriggerEvent{
				Action: github.ActionLabeled,
				Label:  "needs-review",
				Owner:  "o",
				Repo:   "r",
				Number: 42,
			},
			proceed: false,
		},
		{
			name: "marker_label_removed",
			event: github.TriggerEvent{
				Action: github.ActionUnlabeled,
				Label:  "benchmark",
				Owner:  "o",
				Repo:   "r",
				Number: 42,
			},
			proceed: false,
		},
		{
			name: "label_with_marker_prefix",
			event: github.TriggerEvent{
				Action: github.ActionLabeled,
				Label:  "benchmark-later",
				Owner:  "o",
				Repo:   "r",
				Number: 42,
			},
			proceed: false,
		},
		{
			name: "empty_label",
			event: github.TriggerEvent{
				Action: github.ActionLabeled,
				Owner:  "o",
				Repo:   "r",
				Number: 42,
			},
			proceed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.proceed, gate.Proceed(tt.event))
		})
	}
}

func TestNewGateDefaultsMarker(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	gate := NewGate("", logger)

	assert.Equal(t, DefaultMarkerLabel, gate.Marker())
}
