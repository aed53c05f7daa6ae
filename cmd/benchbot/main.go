// Command benchbot reports benchmark results on pull requests. A reviewer
// attaches the marker label, the pipeline runs the counter-based and
// statistical harnesses, and the combined report lands as a PR comment.
package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:                  "benchbot",
		Usage:                 "Label-gated benchmark reporting for pull requests",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			NewRunCommand(),
			NewDispatchCommand(),
			NewWorkCommand(),
			NewValidateCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
