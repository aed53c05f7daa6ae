package bench

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dukex/benchbot/pkg/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSuite(counter, statistical suite.Command) suite.Suite {
	var s suite.Suite

	s.Target = "test-target"
	s.Harnesses.Counter = counter
	s.Harnesses.Statistical = statistical

	return s
}

func newTestRunner(t *testing.T, s suite.Suite) (*Runner, string) {
	t.Helper()

	workdir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	return NewRunner(s, workdir, logger), workdir
}

func TestRunnerCapturesCombinedOutput(t *testing.T) {
	s := testSuite(
		suite.Command{Command: "sh", Args: []string{"-c", "echo counter-stdout; echo counter-stderr >&2"}},
		suite.Command{Command: "sh", Args: []string{"-c", "echo statistical"}},
	)
	runner, _ := newTestRunner(t, s)

	inv, err := runner.Run(context.Background(), HarnessCounter)
	require.NoError(t, err)

	assert.Equal(t, HarnessCounter, inv.Harness)
	assert.Equal(t, 0, inv.ExitCode)
	assert.False(t, inv.Failed())
	assert.Contains(t, inv.Output, "counter-stdout")
	assert.Contains(t, inv.Output, "counter-stderr")
	assert.Positive(t, inv.Duration)
}

func TestRunnerReportsNonZeroExit(t *testing.T) {
	s := testSuite(
		suite.Command{Command: "sh", Args: []string{"-c", "echo partial-results; exit 3"}},
		suite.Command{Command: "sh", Args: []string{"-c", "echo statistical"}},
	)
	runner, _ := newTestRunner(t, s)

	inv, err := runner.Run(context.Background(), HarnessCounter)
	require.NoError(t, err, "a non-zero exit is reported through the invocation, not the error")

	assert.Equal(t, 3, inv.ExitCode)
	assert.True(t, inv.Failed())
	assert.Contains(t, inv.Output, "partial-results", "output captured before the failure is kept")
}

func TestRunnerStagesOutputFile(t *testing.T) {
	s := testSuite(
		suite.Command{Command: "sh", Args: []string{"-c", "printf staged-content"}},
		suite.Command{Command: "sh", Args: []string{"-c", "echo statistical"}},
	)
	runner, workdir := newTestRunner(t, s)

	inv, err := runner.Run(context.Background(), HarnessCounter)
	require.NoError(t, err)

	require.Equal(t, filepath.Join(workdir, "counter-harness.log"), inv.LogPath)

	staged, err := os.ReadFile(inv.LogPath)
	require.NoError(t, err)
	assert.Equal(t, "staged-content", string(staged))
}

func TestRunnerSpawnFailure(t *testing.T) {
	s := testSuite(
		suite.Command{Command: "definitely-not-a-real-binary-4242"},
		suite.Command{Command: "sh", Args: []string{"-c", "echo statistical"}},
	)
	runner, _ := newTestRunner(t, s)

	_, err := runner.Run(context.Background(), HarnessCounter)
	assert.Error(t, err)
}

func TestRunnerUnknownHarness(t *testing.T) {
	runner, _ := newTestRunner(t, testSuite(
		suite.Command{Command: "true"},
		suite.Command{Command: "true"},
	))

	_, err := runner.Run(context.Background(), "wallclock")
	assert.ErrorIs(t, err, ErrUnknownHarness)
}
