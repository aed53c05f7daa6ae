// Package bench runs the two benchmark harnesses as subprocesses and collects
// their captured output.
package bench

import (
	"fmt"
	"time"

	"github.com/dukex/benchbot/pkg/suite"
)

// HarnessID identifies one of the two measurement methodologies.
type HarnessID string

const (
	// HarnessCounter is the deterministic instruction/cache-event counting
	// harness. Its numbers are unaffected by host scheduling noise.
	HarnessCounter HarnessID = "counter"

	// HarnessStatistical is the wall-clock harness, sensitive to host load.
	HarnessStatistical HarnessID = "statistical"
)

func (id HarnessID) Valid() bool {
	return id == HarnessCounter || id == HarnessStatistical
}

// Invocation is one completed harness run: the command, its combined
// stdout+stderr verbatim, and how it exited.
type Invocation struct {
	Harness  HarnessID     `json:"harness"`
	Command  suite.Command `json:"command"`
	Output   string        `json:"output"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
	LogPath  string        `json:"log_path,omitempty"`
}

// Failed reports whether the harness exited non-zero. A failed invocation is
// fatal to the pipeline; no partial report is published.
func (inv Invocation) Failed() bool {
	return inv.ExitCode != 0
}

func (inv Invocation) String() string {
	return fmt.Sprintf("%s harness (%s)", inv.Harness, inv.Command.Command)
}
