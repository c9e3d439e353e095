// Package api mounts the cluster query pipeline on the HTTP server:
// GET /api/v1/pods and /api/v1/nodes answer with the same rows the CLI
// renders, as JSON.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/faroslabs/faros/pkg/k8s"
	"github.com/faroslabs/faros/pkg/logging"
	"github.com/faroslabs/faros/pkg/query"
	"github.com/faroslabs/faros/pkg/server"
)

const (
	name           = "faros-api-server"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/faroslabs/faros/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Serve starts the API server and blocks until ctx is canceled.
// It configures logging, builds the cluster client, mounts the query
// routes, and handles graceful shutdown. Options are applied after the
// defaults so callers can override port, address and rate limit.
func Serve(ctx context.Context, kubeconfig string, opts ...server.Option) error {
	logging.SetDefaultStructuredLogger(name, version)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	clientset, _, err := k8s.BuildKubeClient(kubeconfig)
	if err != nil {
		return err
	}

	h := NewHandler(query.NewFetcher(k8s.NewReader(clientset)))

	r := map[string]http.HandlerFunc{
		"/api/v1/pods":  h.HandlePods,
		"/api/v1/nodes": h.HandleNodes,
	}

	serverOpts := append([]server.Option{
		server.WithName(name),
		server.WithVersion(version),
		server.WithHandler(r),
	}, opts...)

	s := server.New(serverOpts...)

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}
