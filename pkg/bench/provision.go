package bench

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/dukex/benchbot/pkg/suite"
)

// Provisioner installs the harness toolchain before any benchmark runs. Install
// commands run in order; the first failure aborts provisioning and, with it,
// the whole run.
type Provisioner struct {
	commands []suite.Command
	logger   *slog.Logger
}

func NewProvisioner(commands []suite.Command, logger *slog.Logger) *Provisioner {
	return &Provisioner{
		commands: commands,
		logger:   logger.With("module", "provisioner"),
	}
}

func (p *Provisioner) Provision(ctx context.Context) error {
	for _, command := range p.commands {
		p.logger.Info("Provisioning benchmark tooling", "command", command.Command, "args", command.Args)

		cmd := exec.CommandContext(ctx, command.Command, command.Args...)

		out, err := cmd.CombinedOutput()
		if err != nil {
			return fmt.Errorf("provisioning command %q failed: %w: %s", command.Command, err, out)
		}
	}

	return nil
}
