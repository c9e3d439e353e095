package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/faroslabs/faros/pkg/serializer"
)

// buildInfo describes the build that produced this binary.
type buildInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

// versionLine is the default single-line rendering of the build info.
func versionLine() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", appName, version, commit, date)
}

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"t"},
				Usage:   "output format (yaml, json, table); omit for a single line",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.String("format") == "" {
				fmt.Println(versionLine())
				return nil
			}

			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}
			return serializer.NewStdoutWriter(outFormat).Serialize(ctx,
				buildInfo{Version: version, Commit: commit, Date: date})
		},
	}
}
