package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dukex/benchbot/pkg/log"
	"github.com/dukex/benchbot/pkg/suite"
	"github.com/go-playground/validator/v10"
	cli "github.com/urfave/cli/v3"
)

// NewValidateCommand checks a suite file against the schema and struct rules
// without running anything.
func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate a benchmark suite file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "suite-path",
				Usage:    "Benchmark suite JSON to validate",
				Required: true,
				Sources:  cli.EnvVars("BENCHBOT_SUITE_PATH"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			validate := validator.New(validator.WithRequiredStructEnabled())

			path := command.String("suite-path")

			benchSuite, err := suite.Load(path, validate)
			if err != nil {
				return fmt.Errorf("suite %s is invalid: %w", path, err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Suite %q is valid ✅\n", benchSuite.Target)
			_, _ = fmt.Fprintf(os.Stdout, "  provision commands: %d\n", len(benchSuite.Provision))
			_, _ = fmt.Fprintf(os.Stdout, "  counter harness:     %s\n", benchSuite.Harnesses.Counter.Command)
			_, _ = fmt.Fprintf(os.Stdout, "  statistical harness: %s\n", benchSuite.Harnesses.Statistical.Command)

			return nil
		},
	}
}
