package cli

import (
	"strings"

	"github.com/urfave/cli/v3"

	faroserrors "github.com/faroslabs/faros/pkg/errors"
	"github.com/faroslabs/faros/pkg/query"
	"github.com/faroslabs/faros/pkg/serializer"
)

// kubeconfigFlag is shared by every command that talks to a cluster.
var kubeconfigFlag = &cli.StringFlag{
	Name:  "kubeconfig",
	Usage: "path to the kubeconfig file (default: $KUBECONFIG, then ~/.kube/config)",
}

// parseOutputFormat extracts and validates the output format from CLI flags.
// Returns the validated format or an error if the format is unknown.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	outFormat := serializer.Format(cmd.String("format"))
	if outFormat.IsUnknown() {
		return "", faroserrors.Newf(faroserrors.ErrCodeInvalidSelector,
			"unknown output format: %q, valid formats are: %s",
			outFormat, strings.Join(serializer.SupportedFormats(), ", "))
	}
	return outFormat, nil
}

// parseGetOutput splits the get command's -o value into a table mode
// and an optional serialization format. normal and wide pick a table
// layout; json and yaml bypass the table renderer entirely.
func parseGetOutput(arg string) (query.OutputMode, serializer.Format, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case string(serializer.FormatJSON):
		return query.ModeNormal, serializer.FormatJSON, nil
	case string(serializer.FormatYAML):
		return query.ModeNormal, serializer.FormatYAML, nil
	}
	mode, err := query.ParseOutputMode(arg)
	if err != nil {
		return "", "", faroserrors.Newf(faroserrors.ErrCodeInvalidSelector,
			"unknown output mode %q, expected normal, wide, json or yaml", arg)
	}
	return mode, "", nil
}
