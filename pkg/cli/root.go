package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	faroserrors "github.com/faroslabs/faros/pkg/errors"
	"github.com/faroslabs/faros/pkg/logging"
)

const appName = "faros"

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/faroslabs/faros/pkg/cli.version=1.0.0"
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes reported by the faros binary. Selector mistakes are the
// caller's to fix and asking for something that is not there is its own
// outcome, so scripts can tell the three apart.
const (
	ExitOK       = 0
	ExitRuntime  = 1
	ExitUsage    = 2
	ExitNotFound = 3
)

// New assembles the faros command tree.
func New() *cli.Command {
	return &cli.Command{
		Name:  appName,
		Usage: "a read-only lens over the pods and nodes of a Kubernetes cluster",
		Description: `faros answers the questions an operator asks a cluster all day: which
pods run where, in what state, with which labels, on which nodes. It
issues at most one API call per query and renders plain aligned tables
built for eyes and for awk alike.`,
		EnableShellCompletion: true,
		ShellComplete:         commandLister,
		// Lets -vvvv parse as four -v occurrences.
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "increase log verbosity, repeat up to -vvvv for trace",
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "emit logs as JSON instead of text",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.Setup(cmd.Count("verbose"), cmd.Bool("log-json"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			getCmd(),
			snapshotCmd(),
			serveCmd(),
			versionCmd(),
		},
	}
}

// commandLister prints the visible subcommand names for shell
// completion.
func commandLister(ctx context.Context, cmd *cli.Command) {
	if cmd == nil {
		return
	}
	for _, sub := range cmd.Commands {
		if sub == nil || sub.Hidden {
			continue
		}
		fmt.Println(sub.Name)
	}
}

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case faroserrors.IsCode(err, faroserrors.ErrCodeInvalidSelector),
		faroserrors.IsCode(err, faroserrors.ErrCodeInvalidRequest):
		return ExitUsage
	case faroserrors.IsCode(err, faroserrors.ErrCodeNotFound):
		return ExitNotFound
	}
	return ExitRuntime
}
