package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/dukex/benchbot/pkg/suite"
)

var ErrUnknownHarness = errors.New("unknown harness identity")

// Runner executes harness commands one at a time, blocking until each
// completes. Sequential execution keeps the perf counters of the counting
// harness and the timings of the statistical harness free of mutual
// interference.
type Runner struct {
	suite   suite.Suite
	workdir string
	logger  *slog.Logger
}

// NewRunner stages captured output under workdir, which is owned exclusively
// by a single run and never shared.
func NewRunner(s suite.Suite, workdir string, logger *slog.Logger) *Runner {
	return &Runner{
		suite:   s,
		workdir: workdir,
		logger:  logger.With("module", "bench_runner", "target", s.Target),
	}
}

func (r *Runner) command(id HarnessID) (suite.Command, error) {
	switch id {
	case HarnessCounter:
		return r.suite.Harnesses.Counter, nil
	case HarnessStatistical:
		return r.suite.Harnesses.Statistical, nil
	default:
		return suite.Command{}, fmt.Errorf("%w: %q", ErrUnknownHarness, id)
	}
}

// Run invokes the harness identified by id and returns its invocation record.
// The returned error covers spawn failures only; a non-zero exit is reported
// through Invocation.ExitCode so the caller decides how it propagates.
func (r *Runner) Run(ctx context.Context, id HarnessID) (Invocation, error) {
	command, err := r.command(id)
	if err != nil {
		return Invocation{}, err
	}

	logger := r.logger.With("harness", string(id), "command", command.Command)
	logger.Info("Running benchmark harness", "args", command.Args)

	start := time.Now()

	cmd := exec.CommandContext(ctx, command.Command, command.Args...)
	if r.suite.Workdir != "" {
		cmd.Dir = r.suite.Workdir
	}

	out, err := cmd.CombinedOutput()

	inv := Invocation{
		Harness:  id,
		Command:  command,
		Output:   string(out),
		Duration: time.Since(start),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Invocation{}, fmt.Errorf("failed to start %s harness %q: %w", id, command.Command, err)
		}

		inv.ExitCode = exitErr.ExitCode()
	}

	if path, err := r.stageOutput(id, out); err != nil {
		logger.Warn("Failed to stage harness output", "error", err)
	} else {
		inv.LogPath = path
	}

	logger.Info("Benchmark harness finished",
		"exit_code", inv.ExitCode,
		"duration", inv.Duration,
		"output_bytes", len(inv.Output))

	return inv, nil
}

// stageOutput writes the raw capture to the run's working directory. Staged
// files are diagnostic only; the report embeds the in-memory capture.
func (r *Runner) stageOutput(id HarnessID, out []byte) (string, error) {
	if r.workdir == "" {
		return "", nil
	}

	if err := os.MkdirAll(r.workdir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(r.workdir, fmt.Sprintf("%s-harness.log", id))
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", err
	}

	return path, nil
}
