package cli

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"

	faroserrors "github.com/faroslabs/faros/pkg/errors"
	"github.com/faroslabs/faros/pkg/k8s"
	"github.com/faroslabs/faros/pkg/oci"
	"github.com/faroslabs/faros/pkg/query"
	"github.com/faroslabs/faros/pkg/serializer"
	"github.com/faroslabs/faros/pkg/snapshotter"
)

// ociScheme marks an --output value as an OCI registry reference.
const ociScheme = "oci://"

// outputTarget is where a captured view goes: stdout, a file, or an
// OCI registry.
type outputTarget struct {
	OCI        bool
	Registry   string
	Repository string
	Tag        string
	File       string
}

func snapshotCmd() *cli.Command {
	return &cli.Command{
		Name:                  "snapshot",
		EnableShellCompletion: true,
		Usage:                 "Capture the pods and nodes of a cluster into one view document",
		Description: `Captures every pod and node the lens can see, in parallel, into a
single self-describing ClusterView document and writes it to stdout, a
file, or an OCI registry.

# Examples

Print the view to stdout as yaml:
  faros snapshot

Write json to a file:
  faros snapshot --output view.json --format json

Push to an OCI registry:
  faros snapshot --output oci://ghcr.io/acme/cluster-view:nightly

Re-encode or re-publish an earlier capture without touching the
cluster:
  faros snapshot --from-file view.yaml --format json
  faros snapshot --from-file view.yaml --output oci://localhost:5000/views/dev --plain-http`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output file path or oci://registry/repository[:tag] reference (default: stdout)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"t"},
				Value:   string(serializer.FormatYAML),
				Usage:   "output format (yaml, json, table)",
			},
			&cli.StringFlag{
				Name:  "from-file",
				Usage: "publish a previously captured view instead of querying the cluster",
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "use HTTP for the OCI registry (local development)",
			},
			&cli.BoolFlag{
				Name:  "insecure-tls",
				Usage: "skip TLS certificate verification for the OCI registry",
			},
			&cli.StringFlag{
				Name:  "username",
				Usage: "OCI registry username",
			},
			&cli.StringFlag{
				Name:  "password",
				Usage: "OCI registry password",
			},
			kubeconfigFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			target, err := parseOutputTarget(cmd.String("output"))
			if err != nil {
				return err
			}

			if fromFile := cmd.String("from-file"); fromFile != "" {
				view, err := snapshotter.ViewFromFile(fromFile)
				if err != nil {
					return err
				}
				if target.OCI {
					return pushView(ctx, cmd, target, outFormat, view)
				}
				return writeView(ctx, outFormat, target.File, view)
			}

			clientset, _, err := k8s.BuildKubeClient(cmd.String("kubeconfig"))
			if err != nil {
				return faroserrors.Wrap(faroserrors.ErrCodeAPIUnavailable, "failed to build kubernetes client", err)
			}

			snap := &snapshotter.ClusterSnapshotter{
				Version: version,
				Fetcher: query.NewFetcher(k8s.NewReader(clientset)),
			}

			if target.OCI {
				view, err := snap.View(ctx)
				if err != nil {
					return err
				}
				return pushView(ctx, cmd, target, outFormat, view)
			}

			w, err := serializer.NewFileWriterOrStdout(outFormat, target.File)
			if err != nil {
				return err
			}
			defer func() {
				if err := w.Close(); err != nil {
					slog.Warn("failed to close output", "error", err)
				}
			}()

			snap.Serializer = w
			return snap.Capture(ctx)
		},
	}
}

// writeView serializes an already captured view to a file or stdout.
func writeView(ctx context.Context, format serializer.Format, path string, view *snapshotter.ClusterView) error {
	w, err := serializer.NewFileWriterOrStdout(format, path)
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(); err != nil {
			slog.Warn("failed to close output", "error", err)
		}
	}()
	return w.Serialize(ctx, view)
}

// pushView encodes the view and publishes it as an OCI artifact.
func pushView(ctx context.Context, cmd *cli.Command, target outputTarget, format serializer.Format, view *snapshotter.ClusterView) error {
	if format == serializer.FormatTable {
		return faroserrors.New(faroserrors.ErrCodeInvalidSelector,
			"table output cannot be pushed as an OCI artifact, use yaml or json")
	}

	var buf bytes.Buffer
	if err := serializer.NewWriter(format, &buf).Serialize(ctx, view); err != nil {
		return err
	}

	mediaType := "application/yaml"
	if format == serializer.FormatJSON {
		mediaType = "application/json"
	}

	slog.Info("pushing cluster view",
		"registry", target.Registry,
		"repository", target.Repository,
		"tag", target.Tag,
		"bytes", buf.Len(),
	)

	result, err := oci.PushDocument(ctx, oci.PushOptions{
		Registry:    target.Registry,
		Repository:  target.Repository,
		Tag:         target.Tag,
		PlainHTTP:   cmd.Bool("plain-http"),
		InsecureTLS: cmd.Bool("insecure-tls"),
		Username:    cmd.String("username"),
		Password:    cmd.String("password"),
	}, "clusterview."+string(format), mediaType, buf.Bytes())
	if err != nil {
		return err
	}

	fmt.Printf("Pushed cluster view to %s\n", result.Reference)
	fmt.Printf("Digest: %s\n", result.Digest)
	return nil
}

// parseOutputTarget classifies an --output value. Anything that does
// not start with oci:// is a file path, with empty meaning stdout. OCI
// references carry an optional tag and default to latest.
func parseOutputTarget(input string) (outputTarget, error) {
	if !strings.HasPrefix(input, ociScheme) {
		return outputTarget{File: input}, nil
	}

	rest := strings.TrimPrefix(input, ociScheme)
	slash := strings.Index(rest, "/")
	if slash < 0 || rest[:slash] == "" {
		return outputTarget{}, faroserrors.Newf(faroserrors.ErrCodeInvalidSelector,
			"invalid OCI reference %q, expected oci://registry/repository[:tag]", input)
	}

	registry, repository := rest[:slash], rest[slash+1:]
	tag := oci.DefaultTag
	if colon := strings.LastIndex(repository, ":"); colon >= 0 {
		repository, tag = repository[:colon], repository[colon+1:]
	}

	if err := oci.ValidateRegistryReference(registry, repository); err != nil {
		return outputTarget{}, faroserrors.Wrap(faroserrors.ErrCodeInvalidSelector, "invalid OCI reference", err)
	}
	if err := oci.ValidateTag(tag); err != nil {
		return outputTarget{}, faroserrors.Wrap(faroserrors.ErrCodeInvalidSelector, "invalid OCI reference", err)
	}

	return outputTarget{OCI: true, Registry: registry, Repository: repository, Tag: tag}, nil
}
