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

func TestProvisionerRunsCommandsInOrder(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	first := filepath.Join(dir, "first")
	second := filepath.Join(dir, "second")

	provisioner := NewProvisioner([]suite.Command{
		{Command: "sh", Args: []string{"-c", "touch " + first}},
		{Command: "sh", Args: []string{"-c", "test -f " + first + " && touch " + second}},
	}, logger)

	require.NoError(t, provisioner.Provision(context.Background()))

	assert.FileExists(t, first)
	assert.FileExists(t, second)
}

func TestProvisionerStopsAtFirstFailure(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	never := filepath.Join(dir, "never")

	provisioner := NewProvisioner([]suite.Command{
		{Command: "sh", Args: []string{"-c", "echo install failed >&2; exit 1"}},
		{Command: "sh", Args: []string{"-c", "touch " + never}},
	}, logger)

	err := provisioner.Provision(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "install failed")
	assert.NoFileExists(t, never)
}

func TestProvisionerNoCommands(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	assert.NoError(t, NewProvisioner(nil, logger).Provision(context.Background()))
}
